package simulation

import (
	"errors"
	"fmt"
)

const (
	defaultUsers        = 50
	defaultItems        = 200
	defaultRounds       = 2000
	defaultWorkers      = 8
	defaultMistakeRatio = 0.05
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config controls the size and shape of a simulation run.
type Config struct {
	Users   int
	Items   int
	Rounds  int
	Workers int

	// MistakeRatio is the share of rounds that deliberately attempt an invalid transition.
	MistakeRatio float64

	// Seed makes the operation sequence of each worker reproducible.
	Seed uint64
}

// DefaultConfig returns a small run suitable for local demos.
func DefaultConfig() Config {
	return Config{
		Users:        defaultUsers,
		Items:        defaultItems,
		Rounds:       defaultRounds,
		Workers:      defaultWorkers,
		MistakeRatio: defaultMistakeRatio,
		Seed:         1,
	}
}

// Validate checks that the run can make progress.
func (c Config) Validate() error {
	switch {
	case c.Users < 2:
		return fmt.Errorf("%w: at least 2 users are needed, got %d", ErrInvalidConfig, c.Users)
	case c.Items < 1:
		return fmt.Errorf("%w: at least 1 item is needed, got %d", ErrInvalidConfig, c.Items)
	case c.Rounds < 0:
		return fmt.Errorf("%w: rounds must not be negative", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: at least 1 worker is needed", ErrInvalidConfig)
	case c.MistakeRatio < 0 || c.MistakeRatio > 1:
		return fmt.Errorf("%w: mistake ratio must be within [0, 1]", ErrInvalidConfig)
	}

	return nil
}

package createuser

import (
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

const (
	commandType = "RegisterUser"
)

// Command represents the intent to register a new user.
type Command struct {
	Name string
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand normalizes name and creates a new Command.
// It fails with ledger.ErrEmptyName if nothing but whitespace was supplied.
func BuildCommand(name string) (Command, error) {
	normalized, err := ledger.NormalizeName(name)
	if err != nil {
		return Command{}, err
	}

	return Command{Name: normalized}, nil
}

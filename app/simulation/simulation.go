package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/lending-ledger/app/features/command/borrowitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createuser"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/returnitem"
	"github.com/AntonStoeckl/lending-ledger/app/shared/shell"
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

// ErrMissingHandler is returned by New when a command handler was not supplied.
var ErrMissingHandler = errors.New("command handler must not be nil")

// Handlers are the commands a simulation issues.
type Handlers struct {
	CreateUser shell.CommandHandler[createuser.Command, ledger.User]
	CreateItem shell.CommandHandler[createitem.Command, ledger.Item]
	BorrowItem shell.CommandHandler[borrowitem.Command, ledger.HistoryEntry]
	ReturnItem shell.CommandHandler[returnitem.Command, ledger.HistoryEntry]
}

// Report summarizes a finished run.
type Report struct {
	Borrowed int64
	Returned int64
	Rejected int64
	Failed   int64
	LentOut  int
	Duration time.Duration
}

// Simulator runs simulations against a set of command handlers.
type Simulator struct {
	handlers Handlers
	logger   ledger.Logger
	clock    func() time.Time
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger logs the phases of a run.
func WithLogger(logger ledger.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithClock sets the time source for borrow and return timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Simulator) {
		s.clock = clock
	}
}

// New creates a Simulator. All handlers are required.
func New(handlers Handlers, options ...Option) (*Simulator, error) {
	if handlers.CreateUser == nil || handlers.CreateItem == nil || handlers.BorrowItem == nil || handlers.ReturnItem == nil {
		return nil, ErrMissingHandler
	}

	s := &Simulator{handlers: handlers, clock: time.Now}

	for _, option := range options {
		option(s)
	}

	return s, nil
}

type counters struct {
	borrowed atomic.Int64
	returned atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
}

// Run registers the population and plays cfg.Rounds borrow or return attempts.
// Business rejections and storage failures are counted, not returned; only a canceled
// context or a failed registration aborts the run.
func (s *Simulator) Run(ctx context.Context, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	start := time.Now()

	st, err := s.populate(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	s.logInfo("simulation population registered", "users", cfg.Users, "items", cfg.Items)

	var (
		c    counters
		next atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)

	for w := range cfg.Workers {
		rng := rand.New(rand.NewPCG(cfg.Seed, uint64(w))) //nolint:gosec

		g.Go(func() error {
			for next.Add(1) <= int64(cfg.Rounds) {
				if err := gctx.Err(); err != nil {
					return err
				}

				s.playRound(gctx, rng, cfg.MistakeRatio, st, &c)
			}

			return nil
		})
	}

	err = g.Wait()

	report := Report{
		Borrowed: c.borrowed.Load(),
		Returned: c.returned.Load(),
		Rejected: c.rejected.Load(),
		Failed:   c.failed.Load(),
		LentOut:  st.lentOut(),
		Duration: time.Since(start),
	}

	s.logInfo("simulation finished",
		"borrowed", report.Borrowed,
		"returned", report.Returned,
		"rejected", report.Rejected,
		"failed", report.Failed,
		"lent_out", report.LentOut,
		"duration_ms", report.Duration.Milliseconds(),
	)

	return report, err
}

func (s *Simulator) populate(ctx context.Context, cfg Config) (*state, error) {
	users := make([]uuid.UUID, cfg.Users)
	items := make([]uuid.UUID, cfg.Items)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i := range users {
		g.Go(func() error {
			cmd, err := createuser.BuildCommand(fmt.Sprintf("user-%04d", i+1))
			if err != nil {
				return err
			}

			user, err := s.handlers.CreateUser.Handle(gctx, cmd)
			if err != nil {
				return err
			}

			users[i] = user.ID

			return nil
		})
	}

	for i := range items {
		g.Go(func() error {
			cmd, err := createitem.BuildCommand(fmt.Sprintf("item-%04d", i+1))
			if err != nil {
				return err
			}

			item, err := s.handlers.CreateItem.Handle(gctx, cmd)
			if err != nil {
				return err
			}

			items[i] = item.ID

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("registering simulation population: %w", err)
	}

	return newState(users, items), nil
}

func (s *Simulator) playRound(ctx context.Context, rng *rand.Rand, mistakeRatio float64, st *state, c *counters) {
	itemID := st.items[rng.IntN(len(st.items))]
	mistake := rng.Float64() < mistakeRatio
	holder, held := st.holderOf(itemID)

	switch {
	case held && !mistake:
		s.returnItem(ctx, holder, itemID, randomScore(rng), st, c)

	case held:
		s.returnItem(ctx, otherUser(rng, st.users, holder), itemID, randomScore(rng), st, c)

	case mistake:
		s.returnItem(ctx, st.users[rng.IntN(len(st.users))], itemID, randomScore(rng), st, c)

	default:
		s.borrowItem(ctx, st.users[rng.IntN(len(st.users))], itemID, st, c)
	}
}

func (s *Simulator) borrowItem(ctx context.Context, userID, itemID uuid.UUID, st *state, c *counters) {
	entryID, err := uuid.NewV7()
	if err != nil {
		c.failed.Add(1)
		return
	}

	_, err = s.handlers.BorrowItem.Handle(ctx, borrowitem.BuildCommand(entryID, userID, itemID, s.clock()))
	if s.count(err, c) {
		c.borrowed.Add(1)
		st.borrowed(itemID, userID)
	}
}

func (s *Simulator) returnItem(ctx context.Context, userID, itemID uuid.UUID, score float64, st *state, c *counters) {
	_, err := s.handlers.ReturnItem.Handle(ctx, returnitem.BuildCommand(userID, itemID, &score, s.clock()))
	if s.count(err, c) {
		c.returned.Add(1)
		st.returned(itemID)
	}
}

// count records a failed attempt and reports whether err was nil.
func (s *Simulator) count(err error, c *counters) bool {
	switch {
	case err == nil:
		return true
	case ledger.IsBusinessError(err):
		c.rejected.Add(1)
	case errors.Is(err, context.Canceled):
	default:
		c.failed.Add(1)
		s.logError("simulation operation failed", "error", err.Error())
	}

	return false
}

func (s *Simulator) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Simulator) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

// randomScore returns a score in [0, 10] with one decimal.
func randomScore(rng *rand.Rand) float64 {
	return math.Round(rng.Float64()*float64(ledger.MaxScore)*10) / 10
}

func otherUser(rng *rand.Rand, users []uuid.UUID, not uuid.UUID) uuid.UUID {
	for {
		candidate := users[rng.IntN(len(users))]
		if candidate != not {
			return candidate
		}
	}
}

package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger/app/features/command/borrowitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createuser"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/returnitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/currentholder"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/itemdetail"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/listitems"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/listusers"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/userdetail"
	"github.com/AntonStoeckl/lending-ledger/app/shared/shell"
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

const defaultRequestTimeout = 10 * time.Second

// ErrMissingHandler is returned by NewServer when a feature handler was not supplied.
var ErrMissingHandler = errors.New("feature handler must not be nil")

// Handlers bundles the feature handlers the routes dispatch to.
// Usually each one is wrapped by the observable package.
type Handlers struct {
	CreateUser    shell.CommandHandler[createuser.Command, ledger.User]
	CreateItem    shell.CommandHandler[createitem.Command, ledger.Item]
	BorrowItem    shell.CommandHandler[borrowitem.Command, ledger.HistoryEntry]
	ReturnItem    shell.CommandHandler[returnitem.Command, ledger.HistoryEntry]
	ListUsers     shell.QueryHandler[listusers.Query, listusers.Users]
	ListItems     shell.QueryHandler[listitems.Query, listitems.Items]
	UserDetail    shell.QueryHandler[userdetail.Query, userdetail.UserDetail]
	ItemDetail    shell.QueryHandler[itemdetail.Query, itemdetail.ItemDetail]
	CurrentHolder shell.QueryHandler[currentholder.Query, ledger.Availability]
}

func (h Handlers) validate() error {
	if h.CreateUser == nil || h.CreateItem == nil || h.BorrowItem == nil || h.ReturnItem == nil ||
		h.ListUsers == nil || h.ListItems == nil || h.UserDetail == nil || h.ItemDetail == nil ||
		h.CurrentHolder == nil {
		return ErrMissingHandler
	}

	return nil
}

// Server is the HTTP surface of the ledger.
type Server struct {
	handlers       Handlers
	clock          func() time.Time
	newEntryID     func() (uuid.UUID, error)
	healthCheck    func(ctx context.Context) error
	metricsPath    string
	metricsHandler http.Handler
	requestTimeout time.Duration
	logger         ledger.ContextualLogger
}

// Option configures a Server.
type Option func(*Server) error

// WithClock sets the time source for borrow and return timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) error {
		if clock == nil {
			return errors.New("clock must not be nil")
		}

		s.clock = clock

		return nil
	}
}

// WithEntryIDGenerator sets how IDs of new history entries are generated.
func WithEntryIDGenerator(newID func() (uuid.UUID, error)) Option {
	return func(s *Server) error {
		if newID == nil {
			return errors.New("entry ID generator must not be nil")
		}

		s.newEntryID = newID

		return nil
	}
}

// WithHealthCheck makes GET /health report 503 when check fails.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) error {
		s.healthCheck = check
		return nil
	}
}

// WithMetricsHandler mounts handler at GET path, usually /metrics.
func WithMetricsHandler(path string, handler http.Handler) Option {
	return func(s *Server) error {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("metrics path %q must start with a slash", path)
		}

		s.metricsPath = path
		s.metricsHandler = handler

		return nil
	}
}

// WithRequestTimeout bounds the time a request may spend in a handler.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return errors.New("request timeout must be positive")
		}

		s.requestTimeout = timeout

		return nil
	}
}

// WithLogger sets the logger for unexpected failures.
func WithLogger(logger ledger.ContextualLogger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// NewServer creates a Server. All handlers are required.
func NewServer(handlers Handlers, options ...Option) (*Server, error) {
	if err := handlers.validate(); err != nil {
		return nil, err
	}

	s := &Server{
		handlers:       handlers,
		clock:          time.Now,
		newEntryID:     uuid.NewV7,
		requestTimeout: defaultRequestTimeout,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/health", s.handleHealth)

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, s.metricsPath, s.metricsHandler)
	}

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleCreateUser)
		r.Get("/{id}", s.handleUserDetail)
		r.Post("/{userId}/borrow/{bookId}", s.handleBorrow)
		r.Post("/{userId}/return/{bookId}", s.handleReturn)
	})

	r.Route("/books", func(r chi.Router) {
		r.Get("/", s.handleListItems)
		r.Post("/", s.handleCreateItem)
		r.Get("/{id}", s.handleItemDetail)
		r.Get("/{id}/holder", s.handleCurrentHolder)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck != nil {
		if err := s.healthCheck(r.Context()); err != nil {
			s.logFailure(r, err)
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})

			return
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) logFailure(r *http.Request, err error) {
	if s.logger == nil {
		return
	}

	s.logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err.Error(),
	)
}

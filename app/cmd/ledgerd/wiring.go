package main

import (
	"github.com/AntonStoeckl/lending-ledger/app/features/command/borrowitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/createuser"
	"github.com/AntonStoeckl/lending-ledger/app/features/command/returnitem"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/currentholder"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/itemdetail"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/listitems"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/listusers"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/userdetail"
	"github.com/AntonStoeckl/lending-ledger/app/httpapi"
	"github.com/AntonStoeckl/lending-ledger/app/shared/shell"
	"github.com/AntonStoeckl/lending-ledger/app/shared/shell/observable"
	"github.com/AntonStoeckl/lending-ledger/ledger"
	"github.com/AntonStoeckl/lending-ledger/ledger/postgresengine"
)

// ledgerStore is what all features together need from storage.
type ledgerStore interface {
	borrowitem.Store
	returnitem.Store
	createuser.Store
	createitem.Store
	listusers.Store
	listitems.Store
	userdetail.Store
	itemdetail.Store
	currentholder.Store
}

var _ ledgerStore = postgresengine.Store{}

// observability holds the optional collectors; nil ones are skipped.
type observability struct {
	metrics          ledger.MetricsCollector
	tracing          ledger.TracingCollector
	contextualLogger ledger.ContextualLogger
}

func wrapCommand[C shell.Command, R any](
	core shell.CommandHandler[C, R],
	obs observability,
) (shell.CommandHandler[C, R], error) {
	var options []observable.CommandOption[C, R]

	if obs.metrics != nil {
		options = append(options, observable.WithCommandMetrics[C, R](obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, observable.WithCommandTracing[C, R](obs.tracing))
	}

	if obs.contextualLogger != nil {
		options = append(options, observable.WithCommandContextualLogging[C, R](obs.contextualLogger))
	}

	wrapper, err := observable.NewCommandWrapper(core, options...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}

func wrapQuery[Q shell.Query, R any](
	core shell.QueryHandler[Q, R],
	obs observability,
) (shell.QueryHandler[Q, R], error) {
	var options []observable.QueryOption[Q, R]

	if obs.metrics != nil {
		options = append(options, observable.WithQueryMetrics[Q, R](obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, observable.WithQueryTracing[Q, R](obs.tracing))
	}

	if obs.contextualLogger != nil {
		options = append(options, observable.WithQueryContextualLogging[Q, R](obs.contextualLogger))
	}

	wrapper, err := observable.NewQueryWrapper(core, options...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}

//nolint:funlen
func buildHandlers(store ledgerStore, obs observability) (httpapi.Handlers, error) {
	var (
		handlers httpapi.Handlers
		err      error
	)

	handlers.CreateUser, err = wrapCommand[createuser.Command, ledger.User](createuser.NewCommandHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	handlers.CreateItem, err = wrapCommand[createitem.Command, ledger.Item](createitem.NewCommandHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	handlers.BorrowItem, err = wrapCommand[borrowitem.Command, ledger.HistoryEntry](borrowitem.NewCommandHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	handlers.ReturnItem, err = wrapCommand[returnitem.Command, ledger.HistoryEntry](returnitem.NewCommandHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	handlers.ListUsers, err = wrapQuery[listusers.Query, listusers.Users](listusers.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	handlers.ListItems, err = wrapQuery[listitems.Query, listitems.Items](listitems.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	handlers.UserDetail, err = wrapQuery[userdetail.Query, userdetail.UserDetail](userdetail.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	handlers.ItemDetail, err = wrapQuery[itemdetail.Query, itemdetail.ItemDetail](itemdetail.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	handlers.CurrentHolder, err = wrapQuery[currentholder.Query, ledger.Availability](currentholder.NewQueryHandler(store), obs)
	if err != nil {
		return httpapi.Handlers{}, err
	}

	return handlers, nil
}

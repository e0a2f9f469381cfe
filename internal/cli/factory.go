package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
)

// SourceOptions selects where documents are read from.
type SourceOptions struct {
	Dir       string
	Loam      bool
	RedisAddr string
	RedisDB   int
	Debug     bool
}

// NewLoader picks the document adapter: redis when an address is set, loam
// when requested, and plain files otherwise. close releases the adapter.
func NewLoader(opts SourceOptions) (loader ports.DocumentLoader, close func() error, err error) {
	noop := func() error { return nil }
	switch {
	case opts.RedisAddr != "":
		store := redis.New(opts.RedisAddr, "", opts.RedisDB)
		return store, store.Close, nil
	case opts.Loam:
		l, err := loam.Open(opts.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open loam repository %s: %w", opts.Dir, err)
		}
		return l, noop, nil
	default:
		return file.New(opts.Dir), noop, nil
	}
}

// OpenLibrary loads every document from the selected source. Trees are built
// with open results since the CLI has no Go result types to register. In debug
// mode each node visit and evaluation is logged.
func OpenLibrary(ctx context.Context, opts SourceOptions, logger *slog.Logger, extra ...domain.LifecycleHooks) (*arbor.Library, func() error, error) {
	loader, closeFn, err := NewLoader(opts)
	if err != nil {
		return nil, nil, err
	}

	hooks := extra
	if opts.Debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}

	lib := arbor.NewLibrary(loader,
		arbor.WithLogger(logger),
		arbor.WithOpenResults(true),
		arbor.WithLifecycleHooks(observability.Combine(hooks...)),
	)
	if err := lib.Load(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return lib, closeFn, nil
}

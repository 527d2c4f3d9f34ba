// Package bootstrap provides application lifecycle helpers.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// App runs startup hooks, the main function, and shutdown hooks.
type App struct {
	mu       sync.Mutex
	startup  []namedHook
	shutdown []namedHook
}

// New creates a new App.
func New() *App {
	return &App{}
}

// AddStartupHook registers a function that must succeed before the main
// function starts. Startup hooks run concurrently.
func (a *App) AddStartupHook(name string, fn Hook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.startup = append(a.startup, namedHook{name: name, fn: fn})
}

// AddShutdownHook registers a function to call during shutdown.
// Hooks run in reverse order (LIFO). Thread-safe.
func (a *App) AddShutdownHook(name string, fn Hook) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shutdown = append(a.shutdown, namedHook{name: name, fn: fn})
}

// Run runs the startup hooks and then run until it returns or the process
// is interrupted. Shutdown hooks always run afterwards; their errors are
// joined with the error of run.
func (a *App) Run(ctx context.Context, run Hook) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.start(ctx); err != nil {
		return errors.Join(err, a.stop(context.Background()))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case runErr = <-errCh:
	}
	return errors.Join(runErr, a.stop(context.Background()))
}

func (a *App) start(ctx context.Context) error {
	a.mu.Lock()
	hooks := append([]namedHook(nil), a.startup...)
	a.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, hook := range hooks {
		g.Go(func() error {
			if err := hook.fn(ctx); err != nil {
				return fmt.Errorf("startup hook %s > %w", hook.name, err)
			}
			slog.Debug("startup hook finished", "name", hook.name)
			return nil
		})
	}
	return g.Wait()
}

func (a *App) stop(ctx context.Context) error {
	a.mu.Lock()
	hooks := append([]namedHook(nil), a.shutdown...)
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i].fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown hook %s > %w", hooks[i].name, err))
		}
	}
	return errors.Join(errs...)
}

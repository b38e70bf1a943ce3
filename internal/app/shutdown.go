package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Closer stops one component. It should return once ctx expires.
type Closer func(ctx context.Context) error

type namedCloser struct {
	name  string
	close Closer
}

// Shutdown closes registered components in reverse order of registration.
type Shutdown struct {
	logger  *zap.Logger
	mu      sync.Mutex
	closers []namedCloser
}

func NewShutdown(logger *zap.Logger) *Shutdown {
	return &Shutdown{logger: logger.Named("shutdown")}
}

// Add registers a component to close.
func (s *Shutdown) Add(name string, fn Closer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, namedCloser{name: name, close: fn})
	s.logger.Debug("Registered component for shutdown", zap.String("component", name))
}

// Run closes every component, last registered first. A component that
// overruns ctx is reported and the rest still get their turn.
func (s *Shutdown) Run(ctx context.Context) error {
	s.mu.Lock()
	closers := make([]namedCloser, len(s.closers))
	copy(closers, s.closers)
	s.closers = nil
	s.mu.Unlock()

	s.logger.Info("Starting graceful shutdown", zap.Int("components", len(closers)))

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		done := make(chan error, 1)
		go func() { done <- c.close(ctx) }()

		select {
		case err := <-done:
			if err != nil {
				s.logger.Error("Failed to shut down component", zap.String("component", c.name), zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
				continue
			}
			s.logger.Info("Component shut down", zap.String("component", c.name))
		case <-ctx.Done():
			s.logger.Error("Shutdown timeout for component", zap.String("component", c.name))
			errs = append(errs, fmt.Errorf("%s: shutdown timeout", c.name))
		}
	}
	return errors.Join(errs...)
}

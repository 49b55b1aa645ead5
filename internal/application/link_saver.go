package application

import (
	"context"
	"sync"
	"time"
)

type persister interface {
	Persist() error
}

// LinkSaver periodically persists the registry between shutdowns.
type LinkSaver struct {
	registry persister
	interval time.Duration
	logger   Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewLinkSaver(registry persister, interval time.Duration, logger Logger) *LinkSaver {
	return &LinkSaver{
		registry: registry,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *LinkSaver) Init() error {
	return nil
}

func (s *LinkSaver) Run(ctx context.Context) {
	defer close(s.done)

	if s.interval <= 0 {
		s.logger.Info("Link autosave disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.registry.Persist(); err != nil {
				s.logger.Error("Autosave failed: %v", err)
			}
		}
	}
}

// Stop ends Run and waits for an in-flight save to finish. It must only be
// called after Run has been started.
func (s *LinkSaver) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

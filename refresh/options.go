package refresh

import (
	"log/slog"
	"time"

	"github.com/sig-0/poerates/storage/types"
)

type Option func(b *Builder)

// WithLogger specifies the logger for the builder
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithProgress specifies the progress collaborator for the builder
func WithProgress(p Progress) Option {
	return func(b *Builder) {
		b.progress = p
	}
}

type SchedulerOption func(s *Scheduler)

// WithSchedulerLogger specifies the logger for the scheduler
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// WithQueryInterval specifies how often the scheduler checks for due refreshes.
// Defaults to 1s
func WithQueryInterval(q time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.queryInterval = q
	}
}

// WithOnSnapshot specifies the callback for every successful refresh snapshot
func WithOnSnapshot(fn func(*types.Snapshot)) SchedulerOption {
	return func(s *Scheduler) {
		s.onSnapshot = fn
	}
}

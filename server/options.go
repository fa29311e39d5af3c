package server

import (
	"log/slog"

	"github.com/sig-0/poerates/server/config"
)

type Option func(s *Server)

// WithLogger specifies the logger for the server
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithConfig specifies the config for the server
func WithConfig(c *config.Config) Option {
	return func(s *Server) {
		s.config = c
	}
}

// WithTrigger specifies the on-demand refresh trigger for the server
func WithTrigger(t Trigger) Option {
	return func(s *Server) {
		s.trigger = t
	}
}

// WithStatus specifies the refresh status reporter for the server
func WithStatus(r StatusReporter) Option {
	return func(s *Server) {
		s.status = r
	}
}

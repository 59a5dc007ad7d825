package handler

import (
	"context"
	"log/slog"

	"github.com/hrscreen/resume-screener/internal/orchestrator"
	"github.com/hrscreen/resume-screener/internal/store"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	Store        store.Store
	Orchestrator *orchestrator.Orchestrator
	MaxFiles     int
	// Health is optional; with nil the health endpoint only reports liveness.
	Health HealthChecker
}

// ScreeningHandler handles screening-related HTTP requests
type ScreeningHandler struct {
	logger       *slog.Logger
	store        store.Store
	orchestrator *orchestrator.Orchestrator
	maxFiles     int
}

// NewScreeningHandler creates a new ScreeningHandler instance
func NewScreeningHandler(deps *Dependencies) *ScreeningHandler {
	return &ScreeningHandler{
		logger:       deps.Logger,
		store:        deps.Store,
		orchestrator: deps.Orchestrator,
		maxFiles:     deps.MaxFiles,
	}
}

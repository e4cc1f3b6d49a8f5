package cli

import (
	"context"

	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/commands"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/application/queries"
	"github.com/felixgeelhaar/slotwise/internal/recommendation/domain"
	"github.com/felixgeelhaar/slotwise/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/slotwise/pkg/observability"
	"github.com/google/uuid"
)

// PatternReader exposes the learned focus scores.
type PatternReader interface {
	Snapshot(ctx context.Context) (domain.FocusPattern, error)
}

// CompletionEmitter publishes a task completion for asynchronous learning.
type CompletionEmitter interface {
	EmitTaskCompleted(ctx context.Context, event domain.TaskCompleted) error
}

// App holds the CLI application dependencies.
type App struct {
	RecommendSlotsHandler   *queries.RecommendSlotsHandler
	RecordCompletionHandler *commands.RecordCompletionHandler
	BookSlotHandler         *commands.BookSlotHandler // nil when the calendar is read-only

	Patterns    PatternReader
	Completions CompletionEmitter
	Health      *observability.HealthRegistry

	// NewWorker connects the broker consumer for `slotwise worker`.
	NewWorker func() (eventbus.Consumer, error)

	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI App.
func NewApp(
	recommend *queries.RecommendSlotsHandler,
	record *commands.RecordCompletionHandler,
	book *commands.BookSlotHandler,
	patterns PatternReader,
	completions CompletionEmitter,
	health *observability.HealthRegistry,
) *App {
	return &App{
		RecommendSlotsHandler:   recommend,
		RecordCompletionHandler: record,
		BookSlotHandler:         book,
		Patterns:                patterns,
		Completions:             completions,
		Health:                  health,
		CurrentUserID:           uuid.Nil,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// SetWorkerFactory sets the function used to connect the broker consumer.
func (a *App) SetWorkerFactory(fn func() (eventbus.Consumer, error)) {
	a.NewWorker = fn
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

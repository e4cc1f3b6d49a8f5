package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/slotwise/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateTypeTask         = "Task"
	AggregateTypeFocusPattern = "FocusPattern"

	RoutingKeyTaskCompleted       = "recommendation.task.completed"
	RoutingKeyFocusPatternUpdated = "recommendation.focus_pattern.updated"
)

// TaskCompleted is emitted by whatever marks a task done; it drives learning.
type TaskCompleted struct {
	sharedDomain.BaseEvent
	TaskID      uuid.UUID `json:"task_id"`
	Hour        int       `json:"hour"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewTaskCompleted creates a TaskCompleted event for the hour the task finished in.
func NewTaskCompleted(taskID uuid.UUID, completedAt time.Time) TaskCompleted {
	return TaskCompleted{
		BaseEvent:   sharedDomain.NewBaseEvent(taskID, AggregateTypeTask, RoutingKeyTaskCompleted),
		TaskID:      taskID,
		Hour:        completedAt.Hour(),
		CompletedAt: completedAt,
	}
}

// FocusPatternUpdated is emitted after a learned score changes.
type FocusPatternUpdated struct {
	sharedDomain.BaseEvent
	TaskID        uuid.UUID `json:"task_id,omitempty"`
	Hour          int       `json:"hour"`
	PreviousScore int       `json:"previous_score"`
	Score         int       `json:"score"`
	Strategy      string    `json:"strategy"`
}

// NewFocusPatternUpdated creates a FocusPatternUpdated event.
func NewFocusPatternUpdated(userID, taskID uuid.UUID, hour, previous, score int, strategy string) FocusPatternUpdated {
	return FocusPatternUpdated{
		BaseEvent:     sharedDomain.NewBaseEvent(userID, AggregateTypeFocusPattern, RoutingKeyFocusPatternUpdated),
		TaskID:        taskID,
		Hour:          hour,
		PreviousScore: previous,
		Score:         score,
		Strategy:      strategy,
	}
}

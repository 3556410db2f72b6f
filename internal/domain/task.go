package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskType distinguishes the three kinds of generated checkpoints.
// "weekly" is the historical name for any periodic stability test,
// whatever its actual interval.
type TaskType string

const (
	TaskWeekly TaskType = "weekly"
	TaskFTThaw TaskType = "ft-thaw"
	TaskFTTest TaskType = "ft-test"
)

// Task is one actionable checkpoint. Its due date is computed once at
// generation time and never re-derived. A task can flip between
// completed and not-completed any number of times; deletion is soft
// (recycle bin) until the record is purged for good, and the completed
// flag survives a delete/restore round trip untouched.
type Task struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Type      TaskType           `bson:"type" json:"type"`
	DueDate   Date               `bson:"dueDate" json:"dueDate"`
	Cycle     string             `bson:"cycle,omitempty" json:"cycle,omitempty"` // "Initial", "Week 4", "Cycle 2"

	Completed   bool       `bson:"completed" json:"completed"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Deleted     bool       `bson:"deleted" json:"deleted"`
	DeletedAt   *time.Time `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

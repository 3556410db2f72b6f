package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a test subject under stability observation. Creating a
// product generates its full task batch once; the tasks are never
// regenerated afterwards.
//
// The effective F/T configuration is resolved in this order: an
// FTCycleTemplate reference wins over the keyword; the "custom" keyword
// uses CustomCycles; a custom selection with no cycles supplied falls
// back to the consecutive pattern.
type Product struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID  `bson:"userId" json:"userId"`
	Name               string              `bson:"name" json:"name"`
	Assignee           string              `bson:"assignee,omitempty" json:"assignee,omitempty"`
	StartDate          Date                `bson:"startDate" json:"startDate"`
	ScheduleTemplateID *primitive.ObjectID `bson:"scheduleTemplateId,omitempty" json:"scheduleTemplateId,omitempty"`
	FTCycleType        FTCycleType         `bson:"ftCycleType" json:"ftCycleType"`
	FTCycleTemplateID  *primitive.ObjectID `bson:"ftCycleTemplateId,omitempty" json:"ftCycleTemplateId,omitempty"`
	CustomCycles       []FTCycle           `bson:"customCycles,omitempty" json:"customCycles,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleTemplate is a named, reusable ordered set of periodic-test
// checkpoints. Preset templates are system-owned: visible to every
// user, immutable, and never deletable. Products reference templates
// by id rather than copying them, so deleting a template that is still
// referenced is rejected at write time.
type ScheduleTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"` // unset for presets
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Intervals   []ScheduleInterval `bson:"intervals" json:"intervals"`
	IsPreset    bool               `bson:"isPreset" json:"isPreset"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FTCycleTemplate is a named, reusable freeze/thaw cycle list. Unlike
// schedule templates there is no system-owned preset variant; the
// built-in patterns are keyword-selected instead.
type FTCycleTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Cycles      []FTCycle          `bson:"cycles" json:"cycles"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

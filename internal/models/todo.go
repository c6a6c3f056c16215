package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeAddedLayout renders creation times the way en-US toLocaleString does.
const TimeAddedLayout = "1/2/2006, 3:04:05 PM"

type Todo struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username  string             `bson:"username" json:"username"`
	Content   string             `bson:"content" json:"content"`
	TimeAdded string             `bson:"timeAdded" json:"timeAdded"`
}

func FormatTimeAdded(t time.Time) string {
	return t.Format(TimeAddedLayout)
}

type TodoUpdate struct {
	Content *string
}

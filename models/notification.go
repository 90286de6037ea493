package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationTypeNewSchedule is written for the provider on every successful booking.
const NotificationTypeNewSchedule = "NEW_SCHEDULE"

// Notification is a recipient-addressed message stored in the document store.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Type      string             `bson:"type" json:"type"`
	Client    string             `bson:"client" json:"client"` // Display name of the requester
	Date      time.Time          `bson:"date" json:"date"`     // Booked slot
	User      int64              `bson:"user" json:"user"`     // Recipient (provider id)
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

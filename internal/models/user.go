package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account holder stored in the user collection.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	Email     string             `bson:"email" json:"email"`
	Username  string             `bson:"username" json:"username"`
	Age       int                `bson:"age" json:"age"`
	Phone     string             `bson:"phone" json:"phone"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserUpdate lists the profile fields that may be changed after signup.
// Nil fields are left untouched. Password must already be hashed.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Age       *int
	Phone     *string
	Password  *string
}

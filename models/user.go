package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Avatar       string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// Ref returns the slim author reference embedded in posts and comments.
func (u *User) Ref() Author {
	return Author{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

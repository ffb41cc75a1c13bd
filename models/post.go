package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Author is the slice of the user document embedded in posts and comments.
type Author struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	Avatar string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
}

// Photo is a stored asset pair. A post either carries a complete pair or no
// photo at all, never a partial one.
type Photo struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

type Comment struct {
	Author    Author    `bson:"author" json:"author"`
	Text      string    `bson:"text" json:"text"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title     string               `bson:"title" json:"title"`
	Body      string               `bson:"body" json:"body"`
	Category  string               `bson:"category,omitempty" json:"category"`
	Photo     *Photo               `bson:"photo,omitempty" json:"photo,omitempty"`
	Author    Author               `bson:"author" json:"author"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}

func (p *Post) HasPhoto() bool {
	return p.Photo != nil && p.Photo.PublicID != ""
}

func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

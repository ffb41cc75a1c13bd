package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mymind/models"
)

// Publisher fans post engagement events out over NATS. Publishing is fire
// and forget; failures are logged, never surfaced to the request.
type Publisher struct {
	nc *nats.Conn
}

func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc}, nil
}

func (p *Publisher) Close() {
	p.nc.Close()
}

type PostCreatedEvent struct {
	PostID     string `json:"post_id"`
	Title      string `json:"title"`
	Category   string `json:"category,omitempty"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	PhotoURL   string `json:"photo_url,omitempty"`
	Timestamp  string `json:"timestamp"`
}

type PostLikedEvent struct {
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Liked     bool   `json:"liked"`
	Likes     int    `json:"likes"`
	Timestamp string `json:"timestamp"`
}

type PostCommentedEvent struct {
	PostID    string `json:"post_id"`
	AuthorID  string `json:"author_id"`
	Comments  int    `json:"comments"`
	Timestamp string `json:"timestamp"`
}

func (p *Publisher) PostCreated(post *models.Post) {
	event := PostCreatedEvent{
		PostID:     post.ID.Hex(),
		Title:      post.Title,
		Category:   post.Category,
		AuthorID:   post.Author.ID.Hex(),
		AuthorName: post.Author.Name,
		Timestamp:  now(),
	}
	if post.Photo != nil {
		event.PhotoURL = post.Photo.URL
	}
	p.publish("post.created", event)
}

func (p *Publisher) PostLiked(post *models.Post, userID primitive.ObjectID, liked bool) {
	p.publish("post.liked", PostLikedEvent{
		PostID:    post.ID.Hex(),
		UserID:    userID.Hex(),
		Liked:     liked,
		Likes:     len(post.Likes),
		Timestamp: now(),
	})
}

func (p *Publisher) PostCommented(post *models.Post, comment models.Comment) {
	p.publish("post.commented", PostCommentedEvent{
		PostID:    post.ID.Hex(),
		AuthorID:  comment.Author.ID.Hex(),
		Comments:  len(post.Comments),
		Timestamp: now(),
	})
}

func (p *Publisher) publish(subject string, event any) {
	raw, err := json.Marshal(event)
	if err != nil {
		log.Printf("encode %s event: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, raw); err != nil {
		log.Printf("publish %s event: %v", subject, err)
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

package users

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mymind/models"
	"mymind/posts"
)

// Store persists users and resolves requester identifiers for the post
// engine.
type Store struct {
	coll *mongo.Collection
}

func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

func (s *Store) Resolve(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), posts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w: %v", posts.ErrUpstream, err)
	}
	return &user, nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("user %s: %w", email, posts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w: %v", posts.ErrUpstream, err)
	}
	return &user, nil
}

func (s *Store) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user: %w: %v", posts.ErrUpstream, err)
	}
	return nil
}

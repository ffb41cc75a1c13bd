package posts

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mymind/models"
	"mymind/storage"
)

// UpdateFields carries the field overwrites applied by Edit. Nil entries are
// left untouched.
type UpdateFields struct {
	Title    *string
	Body     *string
	Category *string
	Photo    *models.Photo
}

// Repository is the durable post store. Lookups return ErrNotFound when no
// post matches. AppendComment, AddLike and RemoveLike must be single
// conditional updates on the store, not read-modify-write round trips, so
// concurrent mutations of the same post cannot lose writes.
type Repository interface {
	Insert(ctx context.Context, post *models.Post) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error)
	FindCreatedSince(ctx context.Context, since time.Time) ([]models.Post, error)

	// Search matches title substring (case-insensitive) OR category equality.
	// An empty argument drops its clause; with both empty every post matches.
	// The returned count is the true filtered total, not the page length.
	Search(ctx context.Context, title, category string, skip, limit int64) ([]models.Post, int64, error)

	Update(ctx context.Context, id primitive.ObjectID, fields UpdateFields) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error)
	// AddLike inserts userID into the like set unless already present; the
	// bool reports whether the set changed. RemoveLike is the inverse.
	AddLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, bool, error)
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, bool, error)
}

// AssetStore is the image-hosting gateway consumed on create, edit and
// delete.
type AssetStore interface {
	Upload(ctx context.Context, payload, folder string) (storage.Asset, error)
	Destroy(ctx context.Context, publicID string) error
}

// UserResolver turns a requester identifier into a full user record.
// Returns ErrNotFound when the identifier does not resolve.
type UserResolver interface {
	Resolve(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// TrendingCache is an optional short-TTL cache for the default trending
// view. Implementations are best-effort; a miss just falls through.
type TrendingCache interface {
	Get(ctx context.Context) ([]models.Post, bool)
	Set(ctx context.Context, posts []models.Post)
	Invalidate(ctx context.Context)
}

// EventPublisher fans engagement events out to interested consumers.
type EventPublisher interface {
	PostCreated(post *models.Post)
	PostLiked(post *models.Post, userID primitive.ObjectID, liked bool)
	PostCommented(post *models.Post, comment models.Comment)
}

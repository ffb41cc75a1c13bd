package posts

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mymind/models"
)

// MongoRepository implements Repository on a posts collection. All mutations
// of comments and likes are single server-side updates.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

func (r *MongoRepository) Insert(ctx context.Context, post *models.Post) (primitive.ObjectID, error) {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert post: %w: %v", ErrUpstream, err)
	}
	return post.ID, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w: %v", ErrUpstream, err)
	}
	return &post, nil
}

func (r *MongoRepository) FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"author._id": authorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts by author: %w: %v", ErrUpstream, err)
	}
	return r.drain(ctx, cursor)
}

func (r *MongoRepository) FindCreatedSince(ctx context.Context, since time.Time) ([]models.Post, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
	if err != nil {
		return nil, fmt.Errorf("find recent posts: %w: %v", ErrUpstream, err)
	}
	return r.drain(ctx, cursor)
}

func (r *MongoRepository) Search(ctx context.Context, title, category string, skip, limit int64) ([]models.Post, int64, error) {
	filter := searchFilter(title, category)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts: %w: %v", ErrUpstream, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("search posts: %w: %v", ErrUpstream, err)
	}
	posts, err := r.drain(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// searchFilter builds the OR of the title and category clauses. An empty
// argument contributes nothing; with both empty the filter matches all.
func searchFilter(title, category string) bson.M {
	var clauses bson.A
	if title != "" {
		clauses = append(clauses, bson.M{"title": bson.M{
			"$regex":   regexp.QuoteMeta(title),
			"$options": "i",
		}})
	}
	if category != "" {
		clauses = append(clauses, bson.M{"category": category})
	}
	if len(clauses) == 0 {
		return bson.M{}
	}
	return bson.M{"$or": clauses}
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, fields UpdateFields) (*models.Post, error) {
	set := bson.M{}
	if fields.Title != nil {
		set["title"] = *fields.Title
	}
	if fields.Body != nil {
		set["body"] = *fields.Body
	}
	if fields.Category != nil {
		set["category"] = *fields.Category
	}
	if fields.Photo != nil {
		set["photo"] = fields.Photo
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w: %v", ErrUpstream, err)
	}
	return &post, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete post: %w: %v", ErrUpstream, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

func (r *MongoRepository) AppendComment(ctx context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"comments": comment}},
		opts,
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("append comment: %w: %v", ErrUpstream, err)
	}
	return &post, nil
}

// AddLike pushes userID guarded by a membership check in the filter, so the
// like set can never pick up duplicates under concurrency.
func (r *MongoRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "likes": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": userID}},
	)
	if err != nil {
		return nil, false, fmt.Errorf("add like: %w: %v", ErrUpstream, err)
	}
	post, ferr := r.FindByID(ctx, id)
	if ferr != nil {
		return nil, false, ferr
	}
	return post, res.ModifiedCount > 0, nil
}

func (r *MongoRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) (*models.Post, bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
	)
	if err != nil {
		return nil, false, fmt.Errorf("remove like: %w: %v", ErrUpstream, err)
	}
	post, ferr := r.FindByID(ctx, id)
	if ferr != nil {
		return nil, false, ferr
	}
	return post, res.ModifiedCount > 0, nil
}

func (r *MongoRepository) drain(ctx context.Context, cursor *mongo.Cursor) ([]models.Post, error) {
	defer cursor.Close(ctx)
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w: %v", ErrUpstream, err)
	}
	return posts, nil
}

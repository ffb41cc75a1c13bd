package posts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mymind/models"
)

const (
	// PageSize is the fixed search page size.
	PageSize = 3
	// DefaultTrendingLimit is the number of trending posts returned when the
	// caller does not ask for a specific count.
	DefaultTrendingLimit = 5
	// trendingWindow bounds the trending candidate set.
	trendingWindow = 30 * 24 * time.Hour

	photoFolder = "post"
)

// Service owns the post business rules: ownership authorization, comment and
// like mutation, search pagination and trending ranking. Cache and events
// may be nil.
type Service struct {
	repo   Repository
	assets AssetStore
	users  UserResolver
	cache  TrendingCache
	events EventPublisher

	now func() time.Time
}

func NewService(repo Repository, assets AssetStore, users UserResolver, cache TrendingCache, events EventPublisher) *Service {
	return &Service{
		repo:   repo,
		assets: assets,
		users:  users,
		cache:  cache,
		events: events,
		now:    time.Now,
	}
}

type CreateInput struct {
	Title    string
	Body     string
	Category string
	// Photo is the raw upload payload (a data URI), empty for no photo.
	Photo string
}

func (s *Service) Create(ctx context.Context, authorID primitive.ObjectID, in CreateInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("title and body are required: %w", ErrValidation)
	}

	author, err := s.users.Resolve(ctx, authorID)
	if err != nil {
		return nil, err
	}

	var photo *models.Photo
	if in.Photo != "" {
		asset, err := s.assets.Upload(ctx, in.Photo, photoFolder)
		if err != nil {
			return nil, fmt.Errorf("upload photo: %w: %v", ErrUpstream, err)
		}
		photo = &models.Photo{PublicID: asset.PublicID, URL: asset.URL}
	}

	post := &models.Post{
		Title:     in.Title,
		Body:      in.Body,
		Category:  in.Category,
		Photo:     photo,
		Author:    author.Ref(),
		Comments:  []models.Comment{},
		Likes:     []primitive.ObjectID{},
		CreatedAt: s.now().UTC(),
	}

	id, err := s.repo.Insert(ctx, post)
	if err != nil {
		// Do not leave an orphan asset behind a failed insert.
		if photo != nil {
			if derr := s.assets.Destroy(ctx, photo.PublicID); derr != nil {
				log.Printf("rollback of photo %s failed: %v", photo.PublicID, derr)
			}
		}
		return nil, err
	}
	post.ID = id

	s.invalidateTrending(ctx)
	if s.events != nil {
		s.events.PostCreated(post)
	}
	return post, nil
}

func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	return s.repo.FindByID(ctx, id)
}

// Mine returns the requester's posts, newest first.
func (s *Service) Mine(ctx context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	return s.repo.FindByAuthor(ctx, authorID)
}

type EditInput struct {
	Title    *string
	Body     *string
	Category *string
	// Photo: nil leaves the photo untouched. A value that is already a
	// stored-asset URL keeps the existing pair; anything else is raw upload
	// data and replaces it.
	Photo *string
}

func (s *Service) Edit(ctx context.Context, id, requesterID primitive.ObjectID, in EditInput) (*models.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Author.ID != requesterID {
		return nil, fmt.Errorf("edit post %s: %w", id.Hex(), ErrForbidden)
	}

	fields := UpdateFields{Title: in.Title, Body: in.Body, Category: in.Category}

	if in.Photo != nil && *in.Photo != "" && !strings.HasPrefix(*in.Photo, "https") {
		if post.HasPhoto() {
			if err := s.assets.Destroy(ctx, post.Photo.PublicID); err != nil {
				return nil, fmt.Errorf("replace photo: %w: %v", ErrUpstream, err)
			}
		}
		asset, err := s.assets.Upload(ctx, *in.Photo, photoFolder)
		if err != nil {
			return nil, fmt.Errorf("upload photo: %w: %v", ErrUpstream, err)
		}
		fields.Photo = &models.Photo{PublicID: asset.PublicID, URL: asset.URL}
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.invalidateTrending(ctx)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, requesterID primitive.ObjectID) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if post.Author.ID != requesterID {
		return fmt.Errorf("delete post %s: %w", id.Hex(), ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// The record is gone; releasing the asset is best-effort.
	if post.HasPhoto() {
		if err := s.assets.Destroy(ctx, post.Photo.PublicID); err != nil {
			log.Printf("release of photo %s failed: %v", post.Photo.PublicID, err)
		}
	}

	s.invalidateTrending(ctx)
	return nil
}

func (s *Service) AddComment(ctx context.Context, id, requesterID primitive.ObjectID, text string) (*models.Post, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment text is required: %w", ErrValidation)
	}

	author, err := s.users.Resolve(ctx, requesterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("comment author %s: %w", requesterID.Hex(), ErrUnauthorized)
		}
		return nil, err
	}

	comment := models.Comment{
		Author:    author.Ref(),
		Text:      text,
		CreatedAt: s.now().UTC(),
	}

	post, err := s.repo.AppendComment(ctx, id, comment)
	if err != nil {
		return nil, err
	}

	s.invalidateTrending(ctx)
	if s.events != nil {
		s.events.PostCommented(post, comment)
	}
	return post, nil
}

// ToggleLike flips the requester's membership in the like set. Both branches
// are conditional single updates in the repository, so two racing calls can
// never duplicate an identifier.
func (s *Service) ToggleLike(ctx context.Context, id, requesterID primitive.ObjectID) (*models.Post, error) {
	post, added, err := s.repo.AddLike(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	liked := true
	if !added {
		post, _, err = s.repo.RemoveLike(ctx, id, requesterID)
		if err != nil {
			return nil, err
		}
		liked = false
	}

	s.invalidateTrending(ctx)
	if s.events != nil {
		s.events.PostLiked(post, requesterID, liked)
	}
	return post, nil
}

type SearchResult struct {
	Posts      []models.Post
	Page       int
	TotalPages int
}

// Search pages through posts whose title contains query (case-insensitive)
// or whose category equals category, newest first. With both filters empty
// every post matches. TotalPages always reflects the true filtered total.
func (s *Service) Search(ctx context.Context, query, category string, page int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}
	skip := int64(page-1) * PageSize

	matches, total, err := s.repo.Search(ctx, query, category, skip, PageSize)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Posts:      matches,
		Page:       page,
		TotalPages: int((total + PageSize - 1) / PageSize),
	}, nil
}

func (s *Service) invalidateTrending(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

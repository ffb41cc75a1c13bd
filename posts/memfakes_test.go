package posts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mymind/models"
	"mymind/storage"
)

// memRepo is an in-memory Repository honoring the same contract as the
// Mongo implementation: lookups return ErrNotFound, comment append and like
// add/remove are atomic under the repo lock.
type memRepo struct {
	mu         sync.Mutex
	posts      map[primitive.ObjectID]*models.Post
	failInsert bool
}

func newMemRepo() *memRepo {
	return &memRepo{posts: make(map[primitive.ObjectID]*models.Post)}
}

func (r *memRepo) Insert(_ context.Context, post *models.Post) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failInsert {
		return primitive.NilObjectID, fmt.Errorf("insert post: %w: boom", ErrUpstream)
	}
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	r.posts[post.ID] = clonePost(post)
	return post.ID, nil
}

func (r *memRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *memRepo) FindByAuthor(_ context.Context, authorID primitive.ObjectID) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var mine []models.Post
	for _, p := range r.newestFirst() {
		if p.Author.ID == authorID {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

func (r *memRepo) FindCreatedSince(_ context.Context, since time.Time) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var recent []models.Post
	for _, p := range r.newestFirst() {
		if !p.CreatedAt.Before(since) {
			recent = append(recent, p)
		}
	}
	return recent, nil
}

func (r *memRepo) Search(_ context.Context, title, category string, skip, limit int64) ([]models.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	q := strings.ToLower(title)
	var matches []models.Post
	for _, p := range r.newestFirst() {
		titleHit := title != "" && strings.Contains(strings.ToLower(p.Title), q)
		categoryHit := category != "" && p.Category == category
		if (title == "" && category == "") || titleHit || categoryHit {
			matches = append(matches, p)
		}
	}

	total := int64(len(matches))
	if skip >= total {
		return []models.Post{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return matches[skip:end], total, nil
}

func (r *memRepo) Update(_ context.Context, id primitive.ObjectID, fields UpdateFields) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	if fields.Title != nil {
		p.Title = *fields.Title
	}
	if fields.Body != nil {
		p.Body = *fields.Body
	}
	if fields.Category != nil {
		p.Category = *fields.Category
	}
	if fields.Photo != nil {
		photo := *fields.Photo
		p.Photo = &photo
	}
	return clonePost(p), nil
}

func (r *memRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	delete(r.posts, id)
	return nil
}

func (r *memRepo) AppendComment(_ context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	p.Comments = append(p.Comments, comment)
	return clonePost(p), nil
}

func (r *memRepo) AddLike(_ context.Context, id, userID primitive.ObjectID) (*models.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, false, fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	if p.LikedBy(userID) {
		return clonePost(p), false, nil
	}
	p.Likes = append(p.Likes, userID)
	return clonePost(p), true, nil
}

func (r *memRepo) RemoveLike(_ context.Context, id, userID primitive.ObjectID) (*models.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, false, fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	removed := false
	kept := p.Likes[:0]
	for _, likeID := range p.Likes {
		if likeID == userID {
			removed = true
			continue
		}
		kept = append(kept, likeID)
	}
	p.Likes = kept
	return clonePost(p), removed, nil
}

func (r *memRepo) get(id primitive.ObjectID) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", id.Hex(), ErrNotFound)
	}
	return clonePost(p), nil
}

func (r *memRepo) newestFirst() []models.Post {
	all := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		all = append(all, *clonePost(p))
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Comments = append([]models.Comment(nil), p.Comments...)
	c.Likes = append([]primitive.ObjectID(nil), p.Likes...)
	if p.Photo != nil {
		photo := *p.Photo
		c.Photo = &photo
	}
	return &c
}

type fakeAssets struct {
	mu          sync.Mutex
	uploads     int
	destroyed   []string
	failUpload  bool
	failDestroy bool
}

func (a *fakeAssets) Upload(_ context.Context, _ string, folder string) (storage.Asset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failUpload {
		return storage.Asset{}, fmt.Errorf("cloudinary down")
	}
	a.uploads++
	id := fmt.Sprintf("%s/img-%d", folder, a.uploads)
	return storage.Asset{PublicID: id, URL: "https://assets.test/" + id}, nil
}

func (a *fakeAssets) Destroy(_ context.Context, publicID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failDestroy {
		return fmt.Errorf("cloudinary down")
	}
	a.destroyed = append(a.destroyed, publicID)
	return nil
}

type fakeUsers struct {
	known map[primitive.ObjectID]*models.User
}

func (u *fakeUsers) Resolve(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := u.known[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	return user, nil
}

type fakeCache struct {
	mu            sync.Mutex
	posts         []models.Post
	primed        bool
	sets          int
	invalidations int
}

func (c *fakeCache) Get(_ context.Context) ([]models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.primed {
		return nil, false
	}
	return c.posts, true
}

func (c *fakeCache) Set(_ context.Context, posts []models.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = posts
	c.primed = true
	c.sets++
}

func (c *fakeCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts = nil
	c.primed = false
	c.invalidations++
}

type recordEvents struct {
	mu        sync.Mutex
	created   int
	liked     int
	commented int
}

func (e *recordEvents) PostCreated(*models.Post) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.created++
}

func (e *recordEvents) PostLiked(*models.Post, primitive.ObjectID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.liked++
}

func (e *recordEvents) PostCommented(*models.Post, models.Comment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commented++
}

// testEnv wires the service to in-memory collaborators with a fixed clock.
type testEnv struct {
	svc    *Service
	repo   *memRepo
	assets *fakeAssets
	users  *fakeUsers
	cache  *fakeCache
	events *recordEvents
	now    time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:   newMemRepo(),
		assets: &fakeAssets{},
		users:  &fakeUsers{known: make(map[primitive.ObjectID]*models.User)},
		cache:  &fakeCache{},
		events: &recordEvents{},
		now:    time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	env.svc = NewService(env.repo, env.assets, env.users, env.cache, env.events)
	env.svc.now = func() time.Time { return env.now }
	return env
}

func (env *testEnv) addUser(name string) primitive.ObjectID {
	id := primitive.NewObjectID()
	env.users.known[id] = &models.User{ID: id, Name: name, Email: name + "@example.com"}
	return id
}

// seedPost plants a post directly in the repository.
func (env *testEnv) seedPost(authorID primitive.ObjectID, title, category string, createdAt time.Time) *models.Post {
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Body:      "body of " + title,
		Category:  category,
		Author:    models.Author{ID: authorID, Name: "seeded"},
		Comments:  []models.Comment{},
		Likes:     []primitive.ObjectID{},
		CreatedAt: createdAt,
	}
	env.repo.posts[post.ID] = post
	return post
}

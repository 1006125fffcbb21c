package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/pixmint/pixmint/internal/model"
	"github.com/pixmint/pixmint/internal/repository"
)

// MemUserStore is an in-memory user store with the same semantics as the
// PostgreSQL repository: sparse uniqueness over non-empty email and non-nil
// username/external id, field-level merge, upsert keyed by external id.
// It lets unit tests exercise the service layer without a database.
type MemUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

// NewMemUserStore creates an empty MemUserStore.
func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[string]*model.User)}
}

// Len reports the number of stored records.
func (s *MemUserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *MemUserStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflicts(user, "") {
		return repository.ErrDuplicateUser
	}

	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *MemUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *MemUserStore) GetUserByExternalID(_ context.Context, externalID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findByExternalID(externalID)
	if user == nil {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (s *MemUserStore) ListUsers(_ context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, cloneUser(u))
	}
	return users, nil
}

func (s *MemUserStore) UpdateUser(_ context.Context, id string, patch repository.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	merged := cloneUser(user)
	applyPatch(merged, patch)
	merged.UpdatedAt = time.Now().UTC()

	if s.conflicts(merged, id) {
		return nil, repository.ErrDuplicateUser
	}

	s.users[id] = merged
	return cloneUser(merged), nil
}

func (s *MemUserStore) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemUserStore) UpsertUserByExternalID(_ context.Context, draft *model.User, patch repository.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft.ExternalID != nil {
		if existing := s.findByExternalID(*draft.ExternalID); existing != nil {
			merged := cloneUser(existing)
			applyPatch(merged, patch)
			merged.UpdatedAt = time.Now().UTC()

			if s.conflicts(merged, existing.ID) {
				return nil, repository.ErrDuplicateUser
			}

			s.users[existing.ID] = merged
			return cloneUser(merged), nil
		}
	}

	if s.conflicts(draft, "") {
		return nil, repository.ErrDuplicateUser
	}

	s.users[draft.ID] = cloneUser(draft)
	return cloneUser(draft), nil
}

func (s *MemUserStore) DeleteUserByExternalID(_ context.Context, externalID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.findByExternalID(externalID)
	if user == nil {
		return false, nil
	}
	delete(s.users, user.ID)
	return true, nil
}

// findByExternalID must be called with the lock held.
func (s *MemUserStore) findByExternalID(externalID string) *model.User {
	for _, u := range s.users {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			return u
		}
	}
	return nil
}

// conflicts reports whether the candidate collides with another record on a
// non-empty unique field. Must be called with the lock held.
func (s *MemUserStore) conflicts(candidate *model.User, excludeID string) bool {
	for id, u := range s.users {
		if id == excludeID {
			continue
		}
		if candidate.Email != "" && u.Email == candidate.Email {
			return true
		}
		if candidate.Username != nil && u.Username != nil && *u.Username == *candidate.Username {
			return true
		}
		if candidate.ExternalID != nil && u.ExternalID != nil && *u.ExternalID == *candidate.ExternalID {
			return true
		}
	}
	return false
}

func applyPatch(user *model.User, patch repository.UserPatch) {
	if patch.Email != nil && *patch.Email != "" {
		user.Email = *patch.Email
	}
	if patch.Username != nil {
		user.Username = patch.Username
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.PhotoURL != nil {
		user.PhotoURL = patch.PhotoURL
	}
	if patch.CreditBalance != nil {
		user.CreditBalance = *patch.CreditBalance
	}
}

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}

// MemImageStore is an in-memory image store for unit tests. Images carry no
// uniqueness constraints, so it is a plain map with merge-on-update.
type MemImageStore struct {
	mu     sync.Mutex
	images map[string]*model.Image
}

// NewMemImageStore creates an empty MemImageStore.
func NewMemImageStore() *MemImageStore {
	return &MemImageStore{images: make(map[string]*model.Image)}
}

// Len reports the number of stored records.
func (s *MemImageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

func (s *MemImageStore) CreateImage(_ context.Context, img *model.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *img
	s.images[img.ID] = &c
	return nil
}

func (s *MemImageStore) GetImageByID(_ context.Context, id string) (*model.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return nil, repository.ErrImageNotFound
	}
	c := *img
	return &c, nil
}

func (s *MemImageStore) ListImages(_ context.Context) ([]*model.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := make([]*model.Image, 0, len(s.images))
	for _, img := range s.images {
		c := *img
		images = append(images, &c)
	}
	return images, nil
}

func (s *MemImageStore) UpdateImage(_ context.Context, id string, patch repository.ImagePatch) (*model.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return nil, repository.ErrImageNotFound
	}

	merged := *img
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.TransformationType != nil {
		merged.TransformationType = *patch.TransformationType
	}
	if patch.PublicID != nil {
		merged.PublicID = *patch.PublicID
	}
	if patch.SecureURL != nil {
		merged.SecureURL = *patch.SecureURL
	}
	if patch.Width != nil {
		merged.Width = patch.Width
	}
	if patch.Height != nil {
		merged.Height = patch.Height
	}
	if patch.Config != nil {
		merged.Config = patch.Config
	}
	if patch.TransformationURL != nil {
		merged.TransformationURL = patch.TransformationURL
	}
	if patch.AspectRatio != nil {
		merged.AspectRatio = patch.AspectRatio
	}
	if patch.Color != nil {
		merged.Color = patch.Color
	}
	if patch.Prompt != nil {
		merged.Prompt = patch.Prompt
	}
	if patch.AuthorID != nil {
		merged.AuthorID = patch.AuthorID
	}
	merged.UpdatedAt = time.Now().UTC()

	s.images[id] = &merged
	c := merged
	return &c, nil
}

func (s *MemImageStore) DeleteImage(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[id]; !ok {
		return repository.ErrImageNotFound
	}
	delete(s.images, id)
	return nil
}

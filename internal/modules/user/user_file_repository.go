package user

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fixoo-backend/internal/models"
	"fixoo-backend/internal/storage/jsonstore"
)

// storedUser shadows the password hash so it survives the JSON round trip;
// the API representation of models.User deliberately hides it.
type storedUser struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// FileRepository keeps users in memory, mirrored write-through to a JSON
// snapshot file.
type FileRepository struct {
	mu    sync.RWMutex
	path  string
	users map[string]*models.User
}

// NewFileRepository loads the snapshot at path (if any) and returns a
// file-backed user repository.
func NewFileRepository(path string) (*FileRepository, error) {
	var records []storedUser
	if err := jsonstore.Load(path, &records); err != nil {
		return nil, fmt.Errorf("user.NewFileRepository: %w", err)
	}
	users := make(map[string]*models.User, len(records))
	for i := range records {
		u := records[i].User
		u.PasswordHash = records[i].PasswordHash
		users[u.ID] = &u
	}
	return &FileRepository{path: path, users: users}, nil
}

func (r *FileRepository) persistLocked() error {
	records := make([]storedUser, 0, len(r.users))
	for _, u := range r.users {
		records = append(records, storedUser{User: *u, PasswordHash: u.PasswordHash})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.Before(records[j].CreatedAt) })
	return jsonstore.Save(r.path, records)
}

func (r *FileRepository) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Phone == u.Phone {
			return models.ErrConflict
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	if err := r.persistLocked(); err != nil {
		delete(r.users, u.ID)
		return fmt.Errorf("repository.Create: %w", err)
	}
	return nil
}

func (r *FileRepository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *FileRepository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *FileRepository) List(ctx context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *FileRepository) Update(ctx context.Context, userID string, data models.UserUpdateData, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	u := *cur
	if data.Name != nil {
		u.Name = *data.Name
	}
	if data.Surname != nil {
		u.Surname = *data.Surname
	}
	if data.Email != nil {
		u.Email = *data.Email
	}
	if data.Profession != nil {
		u.Profession = *data.Profession
	}
	if data.Region != nil {
		u.Region = *data.Region
	}
	if data.District != nil {
		u.District = *data.District
	}
	u.UpdatedAt = now

	r.users[userID] = &u
	if err := r.persistLocked(); err != nil {
		r.users[userID] = cur
		return nil, fmt.Errorf("repository.Update: %w", err)
	}
	cp := u
	return &cp, nil
}

func (r *FileRepository) UpdateRating(ctx context.Context, userID string, rating float64, reviewCount int, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u := *cur
	u.Rating = rating
	u.ReviewCount = reviewCount
	u.UpdatedAt = now

	r.users[userID] = &u
	if err := r.persistLocked(); err != nil {
		r.users[userID] = cur
		return fmt.Errorf("repository.UpdateRating: %w", err)
	}
	return nil
}

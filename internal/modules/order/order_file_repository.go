package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fixoo-backend/internal/models"
	"fixoo-backend/internal/storage/jsonstore"
)

// FileRepository keeps the order collection in memory and mirrors every
// mutation to a JSON snapshot file, write-through. One mutex serializes all
// mutations, which makes the check-then-write inside each conditional method
// atomic; reads hand out deep copies so callers never alias store state.
type FileRepository struct {
	mu     sync.RWMutex
	path   string
	orders map[string]*models.Order
}

// NewFileRepository loads the snapshot at path (if any) and returns a
// file-backed order repository.
func NewFileRepository(path string) (*FileRepository, error) {
	var records []*models.Order
	if err := jsonstore.Load(path, &records); err != nil {
		return nil, fmt.Errorf("order.NewFileRepository: %w", err)
	}
	orders := make(map[string]*models.Order, len(records))
	for _, o := range records {
		orders[o.ID] = o
	}
	return &FileRepository{path: path, orders: orders}, nil
}

// persistLocked snapshots the whole collection to disk. Callers hold mu.
func (r *FileRepository) persistLocked() error {
	records := make([]*models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		records = append(records, o)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].CreatedAt.Before(records[j].CreatedAt) })
	return jsonstore.Save(r.path, records)
}

// commitLocked installs the new record, persists, and rolls the map back if
// the write fails so no partially applied mutation is ever observable.
func (r *FileRepository) commitLocked(updated *models.Order) error {
	prev, hadPrev := r.orders[updated.ID]
	r.orders[updated.ID] = updated
	if err := r.persistLocked(); err != nil {
		if hadPrev {
			r.orders[updated.ID] = prev
		} else {
			delete(r.orders, updated.ID)
		}
		return err
	}
	return nil
}

func (r *FileRepository) Create(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[o.ID]; exists {
		return models.ErrConflict
	}
	if err := r.commitLocked(o.Clone()); err != nil {
		return fmt.Errorf("repository.Create: %w", err)
	}
	return nil
}

func (r *FileRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return o.Clone(), nil
}

func (r *FileRepository) List(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []*models.Order
	for _, o := range r.orders {
		if matchesFilter(o, f) {
			orders = append(orders, o.Clone())
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func matchesFilter(o *models.Order, f models.OrderFilter) bool {
	if f.ClientID != "" && o.ClientID != f.ClientID {
		return false
	}
	if f.SpecialistID != "" && (o.SpecialistID == nil || *o.SpecialistID != f.SpecialistID) {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Profession != "" && o.Profession != f.Profession {
		return false
	}
	if f.Region != "" && o.Region != f.Region {
		return false
	}
	if f.Rated != nil && *f.Rated != (o.Rating != nil) {
		return false
	}
	return true
}

func (r *FileRepository) Accept(ctx context.Context, id, specialistID string, note *string, price *float64, now time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if cur.Status != models.StatusPending {
		return nil, models.ErrConflict
	}

	o := cur.Clone()
	o.SpecialistID = &specialistID
	if note != nil {
		o.SpecialistNote = note
	}
	if price != nil {
		o.Price = price
	}
	o.Status = models.StatusAccepted
	acceptedAt := now
	o.AcceptedAt = &acceptedAt
	o.UpdatedAt = now

	if err := r.commitLocked(o); err != nil {
		return nil, fmt.Errorf("repository.Accept: %w", err)
	}
	return o.Clone(), nil
}

func (r *FileRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, now time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if cur.Status != from {
		return nil, models.ErrConflict
	}

	o := cur.Clone()
	o.Status = to
	if to == models.StatusCompleted {
		completedAt := now
		o.CompletedAt = &completedAt
	}
	o.UpdatedAt = now

	if err := r.commitLocked(o); err != nil {
		return nil, fmt.Errorf("repository.UpdateStatus: %w", err)
	}
	return o.Clone(), nil
}

func (r *FileRepository) SetRating(ctx context.Context, id string, rating int, review *string, now time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if cur.Status != models.StatusCompleted {
		return nil, models.ErrConflict
	}

	o := cur.Clone()
	o.Rating = &rating
	o.Review = review
	o.UpdatedAt = now

	if err := r.commitLocked(o); err != nil {
		return nil, fmt.Errorf("repository.SetRating: %w", err)
	}
	return o.Clone(), nil
}

func (r *FileRepository) UpdateDetails(ctx context.Context, id string, upd models.UpdateOrderRequest, now time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if cur.Status != models.StatusPending {
		return nil, models.ErrConflict
	}

	o := cur.Clone()
	if upd.Title != nil {
		o.Title = *upd.Title
	}
	if upd.Description != nil {
		o.Description = *upd.Description
	}
	if upd.Profession != nil {
		o.Profession = *upd.Profession
	}
	if upd.Address != nil {
		o.Address = *upd.Address
	}
	if upd.Region != nil {
		o.Region = *upd.Region
	}
	if upd.District != nil {
		o.District = *upd.District
	}
	if upd.Price != nil {
		o.Price = upd.Price
	}
	if upd.EstimatedTime != nil {
		o.EstimatedTime = upd.EstimatedTime
	}
	if upd.Urgency != nil {
		o.Urgency = *upd.Urgency
	}
	if upd.Images != nil {
		o.Images = append([]string(nil), *upd.Images...)
	}
	if upd.ClientNote != nil {
		o.ClientNote = upd.ClientNote
	}
	o.UpdatedAt = now

	if err := r.commitLocked(o); err != nil {
		return nil, fmt.Errorf("repository.UpdateDetails: %w", err)
	}
	return o.Clone(), nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.orders[id]
	if !ok {
		return models.ErrNotFound
	}
	delete(r.orders, id)
	if err := r.persistLocked(); err != nil {
		r.orders[id] = prev
		return fmt.Errorf("repository.Delete: %w", err)
	}
	return nil
}

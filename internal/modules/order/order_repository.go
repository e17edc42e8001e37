package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fixoo-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface is the storage port for orders. Lifecycle mutations
// (Accept, UpdateStatus, SetRating, UpdateDetails) are conditional on the
// expected current status so that check-then-act stays atomic per order:
// when the condition no longer holds the adapter returns ErrConflict and
// leaves the record untouched, or ErrNotFound if the record is gone.
type RepositoryInterface interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]*models.Order, error)
	Accept(ctx context.Context, id, specialistID string, note *string, price *float64, now time.Time) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, now time.Time) (*models.Order, error)
	SetRating(ctx context.Context, id string, rating int, review *string, now time.Time) (*models.Order, error)
	UpdateDetails(ctx context.Context, id string, upd models.UpdateOrderRequest, now time.Time) (*models.Order, error)
	Delete(ctx context.Context, id string) error
}

const orderColumns = `id, client_id, specialist_id, title, description, profession, address, region, district,
		price, estimated_time, urgency, status, images, client_note, specialist_note, rating, review,
		created_at, updated_at, accepted_at, completed_at`

// Repository is the PostgreSQL implementation of RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new order repository backed by Postgres.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// scanOrder is a helper to scan a row into an Order model.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.ClientID, &o.SpecialistID, &o.Title, &o.Description, &o.Profession,
		&o.Address, &o.Region, &o.District, &o.Price, &o.EstimatedTime, &o.Urgency,
		&o.Status, &o.Images, &o.ClientNote, &o.SpecialistNote, &o.Rating, &o.Review,
		&o.CreatedAt, &o.UpdatedAt, &o.AcceptedAt, &o.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

// Create inserts a new order.
func (r *Repository) Create(ctx context.Context, o *models.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

	_, err := r.db.Exec(ctx, query,
		o.ID, o.ClientID, o.SpecialistID, o.Title, o.Description, o.Profession,
		o.Address, o.Region, o.District, o.Price, o.EstimatedTime, o.Urgency,
		o.Status, o.Images, o.ClientNote, o.SpecialistNote, o.Rating, o.Review,
		o.CreatedAt, o.UpdatedAt, o.AcceptedAt, o.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("repository.Create: %w", err)
	}
	return nil
}

// FindByID retrieves a single order by its ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return o, nil
}

// List retrieves orders matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	var whereClauses []string
	var args []interface{}
	argIdx := 1

	addClause := func(column, value string) {
		if value != "" {
			whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
			args = append(args, value)
			argIdx++
		}
	}
	addClause("client_id", f.ClientID)
	addClause("specialist_id", f.SpecialistID)
	addClause("status", string(f.Status))
	addClause("profession", f.Profession)
	addClause("region", f.Region)
	if f.Rated != nil {
		if *f.Rated {
			whereClauses = append(whereClauses, "rating IS NOT NULL")
		} else {
			whereClauses = append(whereClauses, "rating IS NULL")
		}
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.List.Query: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.List.Scan: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Accept assigns the specialist to a pending order. The status condition is
// part of the UPDATE so only one of two racing specialists can win.
func (r *Repository) Accept(ctx context.Context, id, specialistID string, note *string, price *float64, now time.Time) (*models.Order, error) {
	query := `
		UPDATE orders
		SET specialist_id = $2,
		    specialist_note = COALESCE($3, specialist_note),
		    price = COALESCE($4, price),
		    status = $5,
		    accepted_at = $6,
		    updated_at = $6
		WHERE id = $1 AND status = $7
		RETURNING ` + orderColumns

	o, err := scanOrder(r.db.QueryRow(ctx, query, id, specialistID, note, price, models.StatusAccepted, now, models.StatusPending))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, r.missOrConflict(ctx, id)
		}
		return nil, fmt.Errorf("repository.Accept: %w", err)
	}
	return o, nil
}

// UpdateStatus moves an order along a lifecycle edge, conditional on the
// expected current status. completed_at is stamped when completing.
func (r *Repository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, now time.Time) (*models.Order, error) {
	query := `
		UPDATE orders
		SET status = $2,
		    updated_at = $3,
		    completed_at = CASE WHEN $2 = 'completed' THEN $3 ELSE completed_at END
		WHERE id = $1 AND status = $4
		RETURNING ` + orderColumns

	o, err := scanOrder(r.db.QueryRow(ctx, query, id, to, now, from))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, r.missOrConflict(ctx, id)
		}
		return nil, fmt.Errorf("repository.UpdateStatus: %w", err)
	}
	return o, nil
}

// SetRating attaches (or overwrites) the client's rating on a completed
// order.
func (r *Repository) SetRating(ctx context.Context, id string, rating int, review *string, now time.Time) (*models.Order, error) {
	query := `
		UPDATE orders
		SET rating = $2, review = $3, updated_at = $4
		WHERE id = $1 AND status = $5
		RETURNING ` + orderColumns

	o, err := scanOrder(r.db.QueryRow(ctx, query, id, rating, review, now, models.StatusCompleted))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, r.missOrConflict(ctx, id)
		}
		return nil, fmt.Errorf("repository.SetRating: %w", err)
	}
	return o, nil
}

// UpdateDetails merges the supplied descriptive fields over a pending order.
func (r *Repository) UpdateDetails(ctx context.Context, id string, upd models.UpdateOrderRequest, now time.Time) (*models.Order, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	set := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Description != nil {
		set("description", *upd.Description)
	}
	if upd.Profession != nil {
		set("profession", *upd.Profession)
	}
	if upd.Address != nil {
		set("address", *upd.Address)
	}
	if upd.Region != nil {
		set("region", *upd.Region)
	}
	if upd.District != nil {
		set("district", *upd.District)
	}
	if upd.Price != nil {
		set("price", *upd.Price)
	}
	if upd.EstimatedTime != nil {
		set("estimated_time", *upd.EstimatedTime)
	}
	if upd.Urgency != nil {
		set("urgency", *upd.Urgency)
	}
	if upd.Images != nil {
		set("images", *upd.Images)
	}
	if upd.ClientNote != nil {
		set("client_note", *upd.ClientNote)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	set("updated_at", now)
	args = append(args, id, models.StatusPending)

	query := fmt.Sprintf(`
		UPDATE orders SET %s
		WHERE id = $%d AND status = $%d
		RETURNING `+orderColumns,
		strings.Join(setClauses, ", "), argIdx, argIdx+1)

	o, err := scanOrder(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, r.missOrConflict(ctx, id)
		}
		return nil, fmt.Errorf("repository.UpdateDetails: %w", err)
	}
	return o, nil
}

// Delete permanently removes the order.
func (r *Repository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository.Delete: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// missOrConflict distinguishes "row gone" from "row exists but the status
// condition failed" after a conditional update matched nothing.
func (r *Repository) missOrConflict(ctx context.Context, id string) error {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("repository.missOrConflict: %w", err)
	}
	if exists {
		return models.ErrConflict
	}
	return models.ErrNotFound
}

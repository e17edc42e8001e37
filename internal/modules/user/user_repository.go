package user

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

// RepositoryInterface defines methods for interacting with user storage.
type RepositoryInterface interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, userID string, data models.UserUpdateData, now time.Time) (*models.User, error)
	UpdateRating(ctx context.Context, userID string, rating float64, reviewCount int, now time.Time) error
}

const userColumns = `id, phone, email, name, surname, password_hash, role, profession, region, district,
		rating, review_count, created_at, updated_at`

// Repository is the PostgreSQL implementation of RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Phone, &u.Email, &u.Name, &u.Surname, &u.PasswordHash, &u.Role,
		&u.Profession, &u.Region, &u.District, &u.Rating, &u.ReviewCount,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Phone, u.Email, u.Name, u.Surname, u.PasswordHash, u.Role,
		u.Profession, u.Region, u.District, u.Rating, u.ReviewCount,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository.Create: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return u, nil
}

func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByPhone: %w", err)
	}
	return u, nil
}

func (r *Repository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("repository.List.Query: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.List.Scan: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *Repository) Update(ctx context.Context, userID string, data models.UserUpdateData, now time.Time) (*models.User, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	set := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}
	if data.Name != nil {
		set("name", *data.Name)
	}
	if data.Surname != nil {
		set("surname", *data.Surname)
	}
	if data.Email != nil {
		set("email", *data.Email)
	}
	if data.Profession != nil {
		set("profession", *data.Profession)
	}
	if data.Region != nil {
		set("region", *data.Region)
	}
	if data.District != nil {
		set("district", *data.District)
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, userID)
	}

	set("updated_at", now)
	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(setClauses, ", "), argIdx)

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Update: %w", err)
	}
	return u, nil
}

// UpdateRating overwrites the specialist's aggregate in one statement, so
// concurrent recomputations cannot interleave partial values.
func (r *Repository) UpdateRating(ctx context.Context, userID string, rating float64, reviewCount int, now time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE users SET rating = $2, review_count = $3, updated_at = $4 WHERE id = $1`,
		userID, rating, reviewCount, now)
	if err != nil {
		return fmt.Errorf("repository.UpdateRating: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

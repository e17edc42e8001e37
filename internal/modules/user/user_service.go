package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixoo-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ServiceInterface defines methods for user business logic. The last two
// methods are the identity port the order engine consumes.
type ServiceInterface interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)

	FindUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateSpecialistRating(ctx context.Context, specialistID string, rating float64, reviewCount int) error
}

type Service struct {
	userRepo  RepositoryInterface
	jwtSecret string

	// Now is the clock; tests override it.
	Now func() time.Time
}

func NewService(userRepo RepositoryInterface, jwtSecret string) *Service {
	return &Service{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		Now:       time.Now,
	}
}

// Signup registers a new client or specialist account and logs it in.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	_, err := s.userRepo.FindByPhone(ctx, req.Phone)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Signup.FindByPhone: %w", err)
	}
	if err == nil {
		return nil, fmt.Errorf("%w: phone number already registered", models.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.HashPassword: %w", err)
	}

	now := s.Now()
	u := &models.User{
		ID:           uuid.NewString(),
		Phone:        req.Phone,
		Email:        req.Email,
		Name:         req.Name,
		Surname:      req.Surname,
		PasswordHash: string(hashedPassword),
		Role:         req.Role,
		Profession:   req.Profession,
		Region:       req.Region,
		District:     req.District,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: phone number already registered", models.ErrConflict)
		}
		return nil, fmt.Errorf("service.Signup.Create: %w", err)
	}

	token, err := s.generateToken(u)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.Token: %w", err)
	}
	return &models.AuthResponse{AccessToken: token, User: u}, nil
}

// Login verifies the phone/password pair and issues an access token.
// Unknown phone and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	u, err := s.userRepo.FindByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("service.Login.FindByPhone: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	token, err := s.generateToken(u)
	if err != nil {
		return nil, fmt.Errorf("service.Login.Token: %w", err)
	}
	return &models.AuthResponse{AccessToken: token, User: u}, nil
}

func (s *Service) generateToken(u *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: u.ID,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.Now().Add(72 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(s.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *Service) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.GetUserProfile: %w", err)
	}
	return u, nil
}

func (s *Service) UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	u, err := s.userRepo.Update(ctx, userID, data, s.Now())
	if err != nil {
		return nil, fmt.Errorf("service.UpdateUserProfile: %w", err)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ListUsers: %w", err)
	}
	return users, nil
}

// FindUserByID is the identity lookup consumed by the order engine.
func (s *Service) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateSpecialistRating writes the recomputed aggregate back onto the
// specialist's account.
func (s *Service) UpdateSpecialistRating(ctx context.Context, specialistID string, rating float64, reviewCount int) error {
	u, err := s.userRepo.FindByID(ctx, specialistID)
	if err != nil {
		return fmt.Errorf("service.UpdateSpecialistRating: %w", err)
	}
	if u.Role != models.RoleSpecialist {
		return fmt.Errorf("%w: user %s is not a specialist", models.ErrValidation, specialistID)
	}
	if err := s.userRepo.UpdateRating(ctx, specialistID, rating, reviewCount, s.Now()); err != nil {
		return fmt.Errorf("service.UpdateSpecialistRating: %w", err)
	}
	return nil
}

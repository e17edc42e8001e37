package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"fixoo-backend/internal/models"
	emailSvc "fixoo-backend/pkg/email"

	"github.com/google/uuid"
)

// IdentityInterface is the narrow slice of the user module the engine needs:
// user lookup and the specialist rating accumulator.
type IdentityInterface interface {
	FindUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateSpecialistRating(ctx context.Context, specialistID string, rating float64, reviewCount int) error
}

// ServiceInterface defines the contract for the order lifecycle engine.
type ServiceInterface interface {
	Create(ctx context.Context, clientID string, req models.CreateOrderRequest) (*models.Order, error)
	GetByID(ctx context.Context, orderID, userID string, role models.Role) (*models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]*models.Order, error)
	ListPending(ctx context.Context, f models.OrderFilter) ([]*models.Order, error)
	Accept(ctx context.Context, orderID, specialistID string, req models.AcceptOrderRequest) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID, actingUserID string, target models.OrderStatus) (*models.Order, error)
	Rate(ctx context.Context, orderID, clientID string, req models.RateOrderRequest) (*models.Order, error)
	Update(ctx context.Context, orderID, clientID string, req models.UpdateOrderRequest) (*models.Order, error)
	Delete(ctx context.Context, orderID, actingUserID string) error
}

// Service implements the order lifecycle engine. Transition legality lives in
// the state machine (statemachine.go); this layer adds the authorization
// guard, timestamps, the rating aggregate, and notification side effects.
type Service struct {
	repo      RepositoryInterface
	identity  IdentityInterface
	emailer   emailSvc.ServiceInterface // nil when notifications are disabled
	templates *emailSvc.TemplateManager

	// Now is the clock; tests override it for deterministic timestamps.
	Now func() time.Time
}

// NewService creates a new order service. emailer and templates may be nil.
func NewService(repo RepositoryInterface, identity IdentityInterface, emailer emailSvc.ServiceInterface, templates *emailSvc.TemplateManager) *Service {
	return &Service{
		repo:      repo,
		identity:  identity,
		emailer:   emailer,
		templates: templates,
		Now:       time.Now,
	}
}

// Create opens a new pending order for the client.
func (s *Service) Create(ctx context.Context, clientID string, req models.CreateOrderRequest) (*models.Order, error) {
	if req.Title == "" || req.Description == "" || req.Profession == "" || req.Address == "" || req.Region == "" {
		return nil, fmt.Errorf("%w: title, description, profession, address and region are required", models.ErrValidation)
	}
	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}
	switch urgency {
	case models.UrgencyUrgent, models.UrgencyNormal, models.UrgencyFlexible:
	default:
		return nil, fmt.Errorf("%w: unknown urgency %q", models.ErrValidation, urgency)
	}

	now := s.Now()
	o := &models.Order{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		Title:         req.Title,
		Description:   req.Description,
		Profession:    req.Profession,
		Address:       req.Address,
		Region:        req.Region,
		District:      req.District,
		Price:         req.Price,
		EstimatedTime: req.EstimatedTime,
		Urgency:       urgency,
		Status:        models.StatusPending,
		Images:        req.Images,
		ClientNote:    req.ClientNote,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}
	return o, nil
}

// GetByID retrieves an order for one of its parties, or for an admin.
// Non-parties get NotFound rather than a denial so the response does not
// reveal whether the order exists.
func (s *Service) GetByID(ctx context.Context, orderID, userID string, role models.Role) (*models.Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GetByID: %w", err)
	}
	if role != models.RoleAdmin && !o.IsParty(userID) {
		return nil, models.ErrNotFound
	}
	return o, nil
}

// List returns orders matching the filter, newest first.
func (s *Service) List(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	orders, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.List: %w", err)
	}
	return orders, nil
}

// ListPending returns the pending pool, optionally narrowed by profession
// and region.
func (s *Service) ListPending(ctx context.Context, f models.OrderFilter) ([]*models.Order, error) {
	f.Status = models.StatusPending
	return s.List(ctx, f)
}

// Accept assigns the specialist to a pending order. Exactly one of two
// racing specialists wins; the loser gets ErrInvalidTransition.
func (s *Service) Accept(ctx context.Context, orderID, specialistID string, req models.AcceptOrderRequest) (*models.Order, error) {
	cur, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.Accept: %w", err)
	}
	if cur.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: order is %s, not pending", models.ErrInvalidTransition, cur.Status)
	}

	o, err := s.repo.Accept(ctx, orderID, specialistID, req.SpecialistNote, req.EstimatedPrice, s.Now())
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: order was accepted by another specialist", models.ErrInvalidTransition)
		}
		return nil, fmt.Errorf("service.Accept: %w", err)
	}

	s.notifyClient(ctx, o, "Your order was accepted",
		fmt.Sprintf("A specialist accepted your order %q.", o.Title))
	return o, nil
}

// UpdateStatus moves an order along a legal lifecycle edge on behalf of one
// of its parties. The authorization check runs before transition legality so
// an outsider always sees a denial, never transition details.
func (s *Service) UpdateStatus(ctx context.Context, orderID, actingUserID string, target models.OrderStatus) (*models.Order, error) {
	if !models.KnownStatus(target) {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, target)
	}

	cur, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateStatus: %w", err)
	}
	if !cur.IsParty(actingUserID) {
		return nil, models.ErrUnauthorized
	}
	if !CanTransition(cur.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, cur.Status, target)
	}

	o, err := s.repo.UpdateStatus(ctx, orderID, cur.Status, target, s.Now())
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: order status changed concurrently", models.ErrInvalidTransition)
		}
		return nil, fmt.Errorf("service.UpdateStatus: %w", err)
	}

	if target == models.StatusCompleted {
		s.notifyClient(ctx, o, "Your order was completed",
			fmt.Sprintf("Order %q has been marked completed. You can now rate the specialist.", o.Title))
	}
	return o, nil
}

// Rate attaches the client's rating to a completed order and recomputes the
// specialist's aggregate. Re-rating overwrites the previous value; the
// recomputation re-derives from current data, so nothing is double counted.
func (s *Service) Rate(ctx context.Context, orderID, clientID string, req models.RateOrderRequest) (*models.Order, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrValidation)
	}

	cur, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.Rate: %w", err)
	}
	if cur.ClientID != clientID {
		return nil, models.ErrUnauthorized
	}
	if cur.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: only completed orders can be rated", models.ErrInvalidState)
	}

	o, err := s.repo.SetRating(ctx, orderID, req.Rating, req.Review, s.Now())
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: only completed orders can be rated", models.ErrInvalidState)
		}
		return nil, fmt.Errorf("service.Rate: %w", err)
	}

	// The order's own rating is already durable; a failure from here on
	// leaves the specialist aggregate stale, which is recoverable, so it is
	// logged instead of rolled back.
	if o.SpecialistID != nil {
		if err := s.recomputeSpecialistRating(ctx, *o.SpecialistID); err != nil {
			log.Printf("order %s rated but aggregate update for specialist %s failed: %v", o.ID, *o.SpecialistID, err)
		}
	}
	return o, nil
}

// recomputeSpecialistRating re-derives the specialist's mean rating (one
// decimal place) and review count from all of their rated orders.
func (s *Service) recomputeSpecialistRating(ctx context.Context, specialistID string) error {
	rated := true
	orders, err := s.repo.List(ctx, models.OrderFilter{SpecialistID: specialistID, Rated: &rated})
	if err != nil {
		return err
	}

	var sum int
	for _, o := range orders {
		sum += *o.Rating
	}
	var avg float64
	if len(orders) > 0 {
		avg = math.Round(float64(sum)/float64(len(orders))*10) / 10
	}
	return s.identity.UpdateSpecialistRating(ctx, specialistID, avg, len(orders))
}

// Update merges allow-listed descriptive fields over a pending order owned
// by the caller. Wrong owner and wrong status both come back as the same
// denial so the response does not reveal the state of someone else's order.
func (s *Service) Update(ctx context.Context, orderID, clientID string, req models.UpdateOrderRequest) (*models.Order, error) {
	cur, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.Update: %w", err)
	}
	if cur.ClientID != clientID || cur.Status != models.StatusPending {
		log.Printf("update denied on order %s: owner=%t pending=%t", orderID, cur.ClientID == clientID, cur.Status == models.StatusPending)
		return nil, models.ErrUnauthorized
	}

	o, err := s.repo.UpdateDetails(ctx, orderID, req, s.Now())
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("service.Update: %w", err)
	}
	return o, nil
}

// Delete removes the order entirely. Unlike cancellation it is not a
// lifecycle transition: either party may delete at any stage.
func (s *Service) Delete(ctx context.Context, orderID, actingUserID string) error {
	cur, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("service.Delete: %w", err)
	}
	if !cur.IsParty(actingUserID) {
		return models.ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return fmt.Errorf("service.Delete: %w", err)
	}
	return nil
}

// notifyClient emails the order's client, best effort. Notification failures
// never fail the operation that triggered them.
func (s *Service) notifyClient(ctx context.Context, o *models.Order, subject, text string) {
	if s.emailer == nil || s.templates == nil {
		return
	}
	client, err := s.identity.FindUserByID(ctx, o.ClientID)
	if err != nil || client.Email == "" {
		return
	}
	html, err := s.templates.GenerateOrderEventEmailHTML(emailSvc.TemplateData{
		Name:       client.Name,
		OrderTitle: o.Title,
		Message:    text,
	})
	if err != nil {
		log.Printf("render notification for order %s: %v", o.ID, err)
		return
	}
	if err := s.emailer.SendEmail(ctx, client.Email, subject, text, html); err != nil {
		log.Printf("send notification for order %s: %v", o.ID, err)
	}
}

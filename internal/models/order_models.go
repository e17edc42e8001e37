package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusAccepted   OrderStatus = "accepted"
	StatusInProgress OrderStatus = "in_progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// KnownStatus reports whether s is one of the defined lifecycle states.
func KnownStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Urgency describes how soon the client needs the work done.
type Urgency string

const (
	UrgencyUrgent   Urgency = "urgent"
	UrgencyNormal   Urgency = "normal"
	UrgencyFlexible Urgency = "flexible"
)

// Order represents a client's service request tracked through its lifecycle.
// SpecialistID is nil until a specialist accepts; it is set exactly once and
// never cleared. Rating/Review appear only after the client rates a completed
// order.
type Order struct {
	ID             string      `json:"id"`
	ClientID       string      `json:"client_id"`
	SpecialistID   *string     `json:"specialist_id,omitempty"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Profession     string      `json:"profession"`
	Address        string      `json:"address"`
	Region         string      `json:"region"`
	District       string      `json:"district,omitempty"`
	Price          *float64    `json:"price,omitempty"`
	EstimatedTime  *string     `json:"estimated_time,omitempty"`
	Urgency        Urgency     `json:"urgency"`
	Status         OrderStatus `json:"status"`
	Images         []string    `json:"images,omitempty"`
	ClientNote     *string     `json:"client_note,omitempty"`
	SpecialistNote *string     `json:"specialist_note,omitempty"`
	Rating         *int        `json:"rating,omitempty"`
	Review         *string     `json:"review,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	AcceptedAt     *time.Time  `json:"accepted_at,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
}

// IsParty reports whether userID is the client or the assigned specialist.
func (o *Order) IsParty(userID string) bool {
	if o.ClientID == userID {
		return true
	}
	return o.SpecialistID != nil && *o.SpecialistID == userID
}

// Clone returns a deep copy so repository internals never alias caller state.
func (o *Order) Clone() *Order {
	c := *o
	c.SpecialistID = clonePtr(o.SpecialistID)
	c.Price = clonePtr(o.Price)
	c.EstimatedTime = clonePtr(o.EstimatedTime)
	c.ClientNote = clonePtr(o.ClientNote)
	c.SpecialistNote = clonePtr(o.SpecialistNote)
	c.Rating = clonePtr(o.Rating)
	c.Review = clonePtr(o.Review)
	c.AcceptedAt = clonePtr(o.AcceptedAt)
	c.CompletedAt = clonePtr(o.CompletedAt)
	if o.Images != nil {
		c.Images = append([]string(nil), o.Images...)
	}
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CreateOrderRequest represents the data a client submits to open an order.
type CreateOrderRequest struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Profession    string   `json:"profession" validate:"required"`
	Address       string   `json:"address" validate:"required"`
	Region        string   `json:"region" validate:"required"`
	District      string   `json:"district,omitempty"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gt=0"`
	EstimatedTime *string  `json:"estimated_time,omitempty"`
	Urgency       Urgency  `json:"urgency,omitempty" validate:"omitempty,oneof=urgent normal flexible"`
	Images        []string `json:"images,omitempty"`
	ClientNote    *string  `json:"client_note,omitempty"`
}

// AcceptOrderRequest is the specialist's acceptance payload. EstimatedPrice,
// when present, replaces the client's estimate.
type AcceptOrderRequest struct {
	SpecialistNote *string  `json:"specialist_note,omitempty"`
	EstimatedPrice *float64 `json:"estimated_price,omitempty" validate:"omitempty,gt=0"`
}

// UpdateStatusRequest names the target lifecycle state. Whether the edge is
// legal from the current state is decided by the state machine, not here.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending accepted in_progress completed cancelled"`
}

// RateOrderRequest carries the client's rating for a completed order.
type RateOrderRequest struct {
	Rating int     `json:"rating" validate:"required,min=1,max=5"`
	Review *string `json:"review,omitempty"`
}

// UpdateOrderRequest is the allow-list of fields a client may change while an
// order is still pending. Anything not listed here is immutable through the
// update operation; unknown JSON keys are rejected at the boundary.
type UpdateOrderRequest struct {
	Title         *string   `json:"title,omitempty" validate:"omitempty,min=1"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	Profession    *string   `json:"profession,omitempty" validate:"omitempty,min=1"`
	Address       *string   `json:"address,omitempty" validate:"omitempty,min=1"`
	Region        *string   `json:"region,omitempty" validate:"omitempty,min=1"`
	District      *string   `json:"district,omitempty"`
	Price         *float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	EstimatedTime *string   `json:"estimated_time,omitempty"`
	Urgency       *Urgency  `json:"urgency,omitempty" validate:"omitempty,oneof=urgent normal flexible"`
	Images        *[]string `json:"images,omitempty"`
	ClientNote    *string   `json:"client_note,omitempty"`
}

// OrderFilter is a conjunctive filter for listing orders. Zero values mean
// "no constraint".
type OrderFilter struct {
	ClientID     string
	SpecialistID string
	Status       OrderStatus
	Profession   string
	Region       string
	Rated        *bool
}

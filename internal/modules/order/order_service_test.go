package order_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fixoo-backend/internal/models"
	"fixoo-backend/internal/modules/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIdentity implements order.IdentityInterface and records aggregate
// writes so tests can assert on them.
type fakeIdentity struct {
	mu      sync.Mutex
	users   map[string]*models.User
	ratings map[string]float64
	counts  map[string]int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		users:   make(map[string]*models.User),
		ratings: make(map[string]float64),
		counts:  make(map[string]int),
	}
}

func (f *fakeIdentity) FindUserByID(ctx context.Context, userID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func (f *fakeIdentity) UpdateSpecialistRating(ctx context.Context, specialistID string, rating float64, reviewCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[specialistID] = rating
	f.counts[specialistID] = reviewCount
	return nil
}

type testEnv struct {
	svc      *order.Service
	repo     *order.FileRepository
	identity *fakeIdentity
	ctx      context.Context
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := order.NewFileRepository(filepath.Join(t.TempDir(), "orders.json"))
	require.NoError(t, err)

	identity := newFakeIdentity()
	svc := order.NewService(repo, identity, nil, nil)

	// Deterministic, strictly increasing, goroutine-safe clock.
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	var ticks int64
	svc.Now = func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&ticks, 1)) * time.Second)
	}

	return &testEnv{svc: svc, repo: repo, identity: identity, ctx: context.Background()}
}

func (e *testEnv) createOrder(t *testing.T, clientID string) *models.Order {
	t.Helper()
	o, err := e.svc.Create(e.ctx, clientID, models.CreateOrderRequest{
		Title:       "Fix sink",
		Description: "Kitchen sink is leaking",
		Profession:  "plumber",
		Address:     "12 Amir Temur street",
		Region:      "tashkent",
	})
	require.NoError(t, err)
	return o
}

// completeOrder drives an order to completed: accept, start, finish.
func (e *testEnv) completeOrder(t *testing.T, clientID, specialistID string) *models.Order {
	t.Helper()
	o := e.createOrder(t, clientID)
	_, err := e.svc.Accept(e.ctx, o.ID, specialistID, models.AcceptOrderRequest{})
	require.NoError(t, err)
	_, err = e.svc.UpdateStatus(e.ctx, o.ID, specialistID, models.StatusInProgress)
	require.NoError(t, err)
	done, err := e.svc.UpdateStatus(e.ctx, o.ID, clientID, models.StatusCompleted)
	require.NoError(t, err)
	return done
}

func TestCreateDefaults(t *testing.T) {
	e := newTestEnv(t)

	o := e.createOrder(t, "client-1")
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Equal(t, models.UrgencyNormal, o.Urgency)
	assert.Nil(t, o.SpecialistID)
	assert.Nil(t, o.AcceptedAt)
	assert.Nil(t, o.CompletedAt)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
}

func TestCreateRequiresDescriptiveFields(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.svc.Create(e.ctx, "client-1", models.CreateOrderRequest{
		Title: "Fix sink", Description: "leak", Profession: "plumber", Address: "somewhere",
	})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = e.svc.Create(e.ctx, "client-1", models.CreateOrderRequest{
		Title: "Fix sink", Description: "leak", Profession: "plumber", Address: "somewhere",
		Region: "tashkent", Urgency: models.Urgency("yesterday"),
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAcceptAssignsSpecialist(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t, "client-1")

	note := "can come tomorrow"
	price := 150.0
	accepted, err := e.svc.Accept(e.ctx, o.ID, "spec-1", models.AcceptOrderRequest{
		SpecialistNote: &note,
		EstimatedPrice: &price,
	})
	require.NoError(t, err)

	require.NotNil(t, accepted.SpecialistID)
	assert.Equal(t, "spec-1", *accepted.SpecialistID)
	assert.Equal(t, models.StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)
	require.NotNil(t, accepted.Price)
	assert.Equal(t, 150.0, *accepted.Price)
	require.NotNil(t, accepted.SpecialistNote)
	assert.Equal(t, note, *accepted.SpecialistNote)

	// A second accept must lose: the order already left pending.
	_, err = e.svc.Accept(e.ctx, o.ID, "spec-2", models.AcceptOrderRequest{})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAcceptKeepsClientPriceWhenNoEstimate(t *testing.T) {
	e := newTestEnv(t)
	clientPrice := 80.0
	o, err := e.svc.Create(e.ctx, "client-1", models.CreateOrderRequest{
		Title: "Fix sink", Description: "leak", Profession: "plumber",
		Address: "somewhere", Region: "tashkent", Price: &clientPrice,
	})
	require.NoError(t, err)

	accepted, err := e.svc.Accept(e.ctx, o.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)
	require.NotNil(t, accepted.Price)
	assert.Equal(t, 80.0, *accepted.Price)
}

func TestAcceptMissingOrder(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.svc.Accept(e.ctx, "no-such-order", "spec-1", models.AcceptOrderRequest{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t, "client-1")

	specialists := []string{"spec-1", "spec-2", "spec-3", "spec-4"}
	errs := make([]error, len(specialists))
	var wg sync.WaitGroup
	for i, spec := range specialists {
		wg.Add(1)
		go func(i int, spec string) {
			defer wg.Done()
			_, errs[i] = e.svc.Accept(e.ctx, o.ID, spec, models.AcceptOrderRequest{})
		}(i, spec)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, models.ErrInvalidTransition)
		}
	}
	assert.Equal(t, 1, wins, "exactly one specialist must win the accept race")
}

func TestUpdateStatusByOutsider(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t, "client-1")
	_, err := e.svc.Accept(e.ctx, o.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)

	// Denied for a legal edge...
	_, err = e.svc.UpdateStatus(e.ctx, o.ID, "stranger", models.StatusInProgress)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	// ...and for an illegal one: authorization is checked first.
	_, err = e.svc.UpdateStatus(e.ctx, o.ID, "stranger", models.StatusCompleted)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestUpdateStatusIllegalEdgeLeavesOrderUntouched(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t, "client-1")
	accepted, err := e.svc.Accept(e.ctx, o.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)

	// accepted -> completed skips in_progress and must be rejected.
	_, err = e.svc.UpdateStatus(e.ctx, o.ID, "spec-1", models.StatusCompleted)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	after, err := e.repo.FindByID(e.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, accepted, after, "a rejected transition must not modify the order")
}

func TestUpdateStatusCannotLeavePending(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t, "client-1")

	for _, target := range []models.OrderStatus{
		models.StatusAccepted, models.StatusInProgress, models.StatusCompleted, models.StatusCancelled,
	} {
		_, err := e.svc.UpdateStatus(e.ctx, o.ID, "client-1", target)
		assert.ErrorIs(t, err, models.ErrInvalidTransition, "pending -> %s", target)
	}
}

func TestUpdateStatusUnknownTarget(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t, "client-1")
	_, err := e.svc.UpdateStatus(e.ctx, o.ID, "client-1", models.OrderStatus("paused"))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCancellationByEitherParty(t *testing.T) {
	e := newTestEnv(t)

	// Client cancels an accepted order.
	o1 := e.createOrder(t, "client-1")
	_, err := e.svc.Accept(e.ctx, o1.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)
	cancelled, err := e.svc.UpdateStatus(e.ctx, o1.ID, "client-1", models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// Specialist cancels an in-progress order.
	o2 := e.createOrder(t, "client-1")
	_, err = e.svc.Accept(e.ctx, o2.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)
	_, err = e.svc.UpdateStatus(e.ctx, o2.ID, "spec-1", models.StatusInProgress)
	require.NoError(t, err)
	cancelled, err = e.svc.UpdateStatus(e.ctx, o2.ID, "spec-1", models.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// Terminal: nothing leaves cancelled.
	_, err = e.svc.UpdateStatus(e.ctx, o2.ID, "spec-1", models.StatusInProgress)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestFullLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.identity.users["spec-a"] = &models.User{ID: "spec-a", Role: models.RoleSpecialist}

	o := e.createOrder(t, "client-1")
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Nil(t, o.SpecialistID)

	accepted, err := e.svc.Accept(e.ctx, o.ID, "spec-a", models.AcceptOrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.SpecialistID)
	assert.Equal(t, "spec-a", *accepted.SpecialistID)
	assert.NotNil(t, accepted.AcceptedAt)

	_, err = e.svc.UpdateStatus(e.ctx, o.ID, "spec-a", models.StatusInProgress)
	require.NoError(t, err)

	// The client is a party too and may complete.
	completed, err := e.svc.UpdateStatus(e.ctx, o.ID, "client-1", models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	review := "great"
	rated, err := e.svc.Rate(e.ctx, o.ID, "client-1", models.RateOrderRequest{Rating: 5, Review: &review})
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 5, *rated.Rating)
	assert.Equal(t, 5.0, e.identity.ratings["spec-a"])
	assert.Equal(t, 1, e.identity.counts["spec-a"])
}

func TestRateValidation(t *testing.T) {
	e := newTestEnv(t)
	o := e.completeOrder(t, "client-1", "spec-1")

	for _, bad := range []int{0, 6, -1, 100} {
		_, err := e.svc.Rate(e.ctx, o.ID, "client-1", models.RateOrderRequest{Rating: bad})
		assert.ErrorIs(t, err, models.ErrValidation, "rating %d", bad)
	}

	// Boundary values succeed.
	_, err := e.svc.Rate(e.ctx, o.ID, "client-1", models.RateOrderRequest{Rating: 1})
	assert.NoError(t, err)
	_, err = e.svc.Rate(e.ctx, o.ID, "client-1", models.RateOrderRequest{Rating: 5})
	assert.NoError(t, err)
}

func TestRateAuthorizationAndState(t *testing.T) {
	e := newTestEnv(t)

	pending := e.createOrder(t, "client-1")
	_, err := e.svc.Rate(e.ctx, pending.ID, "client-1", models.RateOrderRequest{Rating: 4})
	assert.ErrorIs(t, err, models.ErrInvalidState)

	done := e.completeOrder(t, "client-1", "spec-1")
	_, err = e.svc.Rate(e.ctx, done.ID, "client-2", models.RateOrderRequest{Rating: 4})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = e.svc.Rate(e.ctx, "no-such-order", "client-1", models.RateOrderRequest{Rating: 4})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRatingAggregate(t *testing.T) {
	e := newTestEnv(t)

	ratings := []int{5, 3, 4}
	for _, r := range ratings {
		o := e.completeOrder(t, "client-1", "spec-1")
		_, err := e.svc.Rate(e.ctx, o.ID, "client-1", models.RateOrderRequest{Rating: r})
		require.NoError(t, err)
	}

	fourth := e.completeOrder(t, "client-1", "spec-1")
	_, err := e.svc.Rate(e.ctx, fourth.ID, "client-1", models.RateOrderRequest{Rating: 2})
	require.NoError(t, err)
	assert.Equal(t, 3.5, e.identity.ratings["spec-1"])
	assert.Equal(t, 4, e.identity.counts["spec-1"])

	// Re-rating overwrites; the aggregate re-derives without double counting.
	_, err = e.svc.Rate(e.ctx, fourth.ID, "client-1", models.RateOrderRequest{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, 4.0, e.identity.ratings["spec-1"])
	assert.Equal(t, 4, e.identity.counts["spec-1"])
}

func TestUpdateScoping(t *testing.T) {
	e := newTestEnv(t)
	newTitle := "Fix bathroom sink"

	// Not pending: denied even for the owner.
	o := e.createOrder(t, "client-1")
	_, err := e.svc.Accept(e.ctx, o.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)
	_, err = e.svc.Update(e.ctx, o.ID, "client-1", models.UpdateOrderRequest{Title: &newTitle})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Pending but wrong owner: same denial.
	p := e.createOrder(t, "client-1")
	_, err = e.svc.Update(e.ctx, p.ID, "client-2", models.UpdateOrderRequest{Title: &newTitle})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Owner on a pending order: only supplied fields change.
	updated, err := e.svc.Update(e.ctx, p.ID, "client-1", models.UpdateOrderRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, p.Description, updated.Description)
	assert.Equal(t, p.Profession, updated.Profession)
	assert.Equal(t, p.Region, updated.Region)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
}

func TestDeleteAnyStatusEitherParty(t *testing.T) {
	e := newTestEnv(t)

	// Pending order, deleted by the client.
	o1 := e.createOrder(t, "client-1")
	require.NoError(t, e.svc.Delete(e.ctx, o1.ID, "client-1"))
	_, err := e.repo.FindByID(e.ctx, o1.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Accepted order, deleted by the specialist.
	o2 := e.createOrder(t, "client-1")
	_, err = e.svc.Accept(e.ctx, o2.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)
	require.NoError(t, e.svc.Delete(e.ctx, o2.ID, "spec-1"))

	// In-progress order, deleted by the client.
	o3 := e.createOrder(t, "client-1")
	_, err = e.svc.Accept(e.ctx, o3.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)
	_, err = e.svc.UpdateStatus(e.ctx, o3.ID, "spec-1", models.StatusInProgress)
	require.NoError(t, err)
	require.NoError(t, e.svc.Delete(e.ctx, o3.ID, "client-1"))

	// Outsiders cannot delete.
	o4 := e.createOrder(t, "client-1")
	assert.ErrorIs(t, e.svc.Delete(e.ctx, o4.ID, "stranger"), models.ErrUnauthorized)
	assert.ErrorIs(t, e.svc.Delete(e.ctx, "no-such-order", "client-1"), models.ErrNotFound)
}

func TestListFiltersAndOrdering(t *testing.T) {
	e := newTestEnv(t)

	electric, err := e.svc.Create(e.ctx, "client-2", models.CreateOrderRequest{
		Title: "Rewire socket", Description: "Socket sparks", Profession: "electrician",
		Address: "5 Navoi street", Region: "samarkand",
	})
	require.NoError(t, err)
	plumbing := e.createOrder(t, "client-1")
	_, err = e.svc.Accept(e.ctx, plumbing.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)

	all, err := e.svc.List(e.ctx, models.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	// Newest first.
	assert.Equal(t, plumbing.ID, all[0].ID)
	assert.Equal(t, electric.ID, all[1].ID)

	bySpec, err := e.svc.List(e.ctx, models.OrderFilter{SpecialistID: "spec-1"})
	require.NoError(t, err)
	require.Len(t, bySpec, 1)
	assert.Equal(t, plumbing.ID, bySpec[0].ID)

	pool, err := e.svc.ListPending(e.ctx, models.OrderFilter{Profession: "electrician", Region: "samarkand"})
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, electric.ID, pool[0].ID)

	empty, err := e.svc.ListPending(e.ctx, models.OrderFilter{Profession: "plumber"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetByIDVisibility(t *testing.T) {
	e := newTestEnv(t)
	o := e.createOrder(t, "client-1")

	// A non-party sees NotFound, not a denial.
	_, err := e.svc.GetByID(e.ctx, o.ID, "stranger", models.RoleClient)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := e.svc.GetByID(e.ctx, o.ID, "client-1", models.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	// Admins see everything.
	_, err = e.svc.GetByID(e.ctx, o.ID, "admin-1", models.RoleAdmin)
	assert.NoError(t, err)
}

func TestFileRepositoryReload(t *testing.T) {
	e := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "orders.json")
	repo, err := order.NewFileRepository(path)
	require.NoError(t, err)

	svc := order.NewService(repo, e.identity, nil, nil)
	o, err := svc.Create(e.ctx, "client-1", models.CreateOrderRequest{
		Title: "Fix sink", Description: "leak", Profession: "plumber",
		Address: "somewhere", Region: "tashkent",
	})
	require.NoError(t, err)
	_, err = svc.Accept(e.ctx, o.ID, "spec-1", models.AcceptOrderRequest{})
	require.NoError(t, err)

	// A fresh repository over the same file sees the persisted state.
	reloaded, err := order.NewFileRepository(path)
	require.NoError(t, err)
	got, err := reloaded.FindByID(e.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
	require.NotNil(t, got.SpecialistID)
	assert.Equal(t, "spec-1", *got.SpecialistID)
}

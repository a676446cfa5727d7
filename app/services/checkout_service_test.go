package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishivikram/vastra/app/models"
	"github.com/rishivikram/vastra/app/repositories"
	"github.com/rishivikram/vastra/pkg/apperr"
	"github.com/rishivikram/vastra/pkg/idempotency"
)

// ─── in-memory store shared by the fake repositories ───

// checkoutState backs the fake repositories. The fake transaction runner
// snapshots it before running and restores the snapshot on error, giving
// tests real all-or-nothing semantics. mu guards the data; txMu
// serializes whole transactions the way document-level locks would.
type checkoutState struct {
	mu     sync.Mutex
	txMu   sync.Mutex
	carts  map[primitive.ObjectID][]models.CartItem
	orders []models.Order
	stock  map[primitive.ObjectID]*models.Product

	failCartClear bool
}

func newCheckoutState() *checkoutState {
	return &checkoutState{
		carts: map[primitive.ObjectID][]models.CartItem{},
		stock: map[primitive.ObjectID]*models.Product{},
	}
}

func (s *checkoutState) snapshot() *checkoutState {
	copied := newCheckoutState()
	for k, v := range s.carts {
		copied.carts[k] = append([]models.CartItem(nil), v...)
	}
	copied.orders = append([]models.Order(nil), s.orders...)
	for k, v := range s.stock {
		p := *v
		copied.stock[k] = &p
	}
	return copied
}

func (s *checkoutState) restore(from *checkoutState) {
	s.carts = from.carts
	s.orders = from.orders
	s.stock = from.stock
}

// tx serializes transactions and rolls the state back when fn fails.
func (s *checkoutState) tx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

// ─── fake repositories ───

var errNotImplemented = errors.New("not implemented in fake")

type fakeCarts struct{ state *checkoutState }

func (f *fakeCarts) Add(_ context.Context, item *models.CartItem) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	f.state.carts[item.UserID] = append(f.state.carts[item.UserID], *item)
	return nil
}

func (f *fakeCarts) ItemsByUser(_ context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	return append([]models.CartItem(nil), f.state.carts[userID]...), nil
}

func (f *fakeCarts) ItemsExpanded(context.Context, primitive.ObjectID) ([]models.CartItemView, error) {
	return nil, errNotImplemented
}

func (f *fakeCarts) UpdateQuantity(context.Context, primitive.ObjectID, primitive.ObjectID, int64) (models.CartItem, error) {
	return models.CartItem{}, errNotImplemented
}

func (f *fakeCarts) Remove(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return errNotImplemented
}

func (f *fakeCarts) Clear(_ context.Context, userID primitive.ObjectID) error {
	if f.state.failCartClear {
		return errors.New("simulated cart clear failure")
	}
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	delete(f.state.carts, userID)
	return nil
}

type fakeOrders struct{ state *checkoutState }

func (f *fakeOrders) Create(_ context.Context, order *models.Order) error {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	// Mirror the partial unique (orderby, idempotencyKey) index.
	if order.IdempotencyKey != "" {
		for _, o := range f.state.orders {
			if o.UserID == order.UserID && o.IdempotencyKey == order.IdempotencyKey {
				return apperr.Wrap(apperr.KindConflict, "duplicate checkout request", repositories.ErrDuplicateOrder)
			}
		}
	}
	order.ID = primitive.NewObjectID()
	order.CreatedAt = time.Now().UTC()
	f.state.orders = append(f.state.orders, *order)
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (models.Order, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for _, o := range f.state.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return models.Order{}, apperr.NotFound("order not found")
}

func (f *fakeOrders) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	var out []models.Order
	for _, o := range f.state.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) FindByIdempotencyKey(_ context.Context, userID primitive.ObjectID, key string) (models.Order, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	for _, o := range f.state.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			return o, nil
		}
	}
	return models.Order{}, apperr.NotFound("order not found")
}

func (f *fakeOrders) All(context.Context, int, int) ([]models.Order, int64, error) {
	return nil, 0, errNotImplemented
}

func (f *fakeOrders) UpdateStatus(context.Context, primitive.ObjectID, string, string) (models.Order, error) {
	return models.Order{}, errNotImplemented
}

type fakeProducts struct{ state *checkoutState }

func (f *fakeProducts) Create(context.Context, *models.Product) error { return errNotImplemented }

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if p, ok := f.state.stock[id]; ok {
		return *p, nil
	}
	return models.Product{}, apperr.NotFound("product not found")
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.state.stock[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) All(context.Context, repositories.ProductFilter, int, int) ([]models.Product, int64, error) {
	return nil, 0, errNotImplemented
}

func (f *fakeProducts) Update(context.Context, primitive.ObjectID, bson.M) (models.Product, error) {
	return models.Product{}, errNotImplemented
}

func (f *fakeProducts) Delete(context.Context, primitive.ObjectID) error { return errNotImplemented }

func (f *fakeProducts) AddImage(context.Context, primitive.ObjectID, models.Image) error {
	return errNotImplemented
}

func (f *fakeProducts) UpsertRating(context.Context, primitive.ObjectID, models.Rating) ([]models.Rating, error) {
	return nil, errNotImplemented
}

func (f *fakeProducts) SetTotalRating(context.Context, primitive.ObjectID, int) error {
	return errNotImplemented
}

func (f *fakeProducts) TopRated(context.Context, int) ([]models.Product, error) {
	return nil, errNotImplemented
}

// DecrementStock mirrors the conditional BulkWrite: each line matches
// only while enough stock remains.
func (f *fakeProducts) DecrementStock(_ context.Context, items []models.OrderItem) (int64, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	var matched int64
	for _, item := range items {
		p, ok := f.state.stock[item.ProductID]
		if !ok || p.Quantity < item.Quantity {
			continue
		}
		p.Quantity -= item.Quantity
		p.Sold += item.Quantity
		matched++
	}
	return matched, nil
}

// ─── fake idempotency store ───

type fakeIdem struct {
	mu      sync.Mutex
	pending map[string]bool
	done    map[string]string // key → order id

	failComplete bool
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{pending: map[string]bool{}, done: map[string]string{}}
}

func (f *fakeIdem) Acquire(_ context.Context, userID, key string) (idempotency.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := userID + ":" + key
	if orderID, ok := f.done[k]; ok {
		return idempotency.Claim{OrderID: orderID}, nil
	}
	if f.pending[k] {
		return idempotency.Claim{InFlight: true}, nil
	}
	f.pending[k] = true
	return idempotency.Claim{Acquired: true}, nil
}

func (f *fakeIdem) Complete(_ context.Context, userID, key, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failComplete {
		return errors.New("simulated complete failure")
	}
	k := userID + ":" + key
	delete(f.pending, k)
	f.done[k] = orderID
	return nil
}

func (f *fakeIdem) Release(_ context.Context, userID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, userID+":"+key)
	return nil
}

// degradedIdem mimics the store with no Redis behind it: every claim is
// granted and nothing is remembered.
type degradedIdem struct{}

func (degradedIdem) Acquire(context.Context, string, string) (idempotency.Claim, error) {
	return idempotency.Claim{Acquired: true}, nil
}
func (degradedIdem) Complete(context.Context, string, string, string) error { return nil }
func (degradedIdem) Release(context.Context, string, string) error          { return nil }

// ─── test harness ───

func newTestCheckout(state *checkoutState) *CheckoutService {
	return &CheckoutService{
		carts:     &fakeCarts{state: state},
		orders:    &fakeOrders{state: state},
		products:  &fakeProducts{state: state},
		idem:      newFakeIdem(),
		tx:        state.tx,
		timeout:   time.Second,
		priceMode: PriceModeCaptured,
	}
}

func seedProduct(state *checkoutState, quantity int64, price float64) primitive.ObjectID {
	id := primitive.NewObjectID()
	state.stock[id] = &models.Product{ID: id, Quantity: quantity, Price: price}
	return id
}

func addToCart(state *checkoutState, userID, productID primitive.ObjectID, quantity int64, price float64) {
	state.carts[userID] = append(state.carts[userID], models.CartItem{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	})
}

// ─── tests ───

func TestPlaceOrderTotalsAndStock(t *testing.T) {
	state := newCheckoutState()
	userID := primitive.NewObjectID()
	p1 := seedProduct(state, 10, 10.0)
	p2 := seedProduct(state, 3, 5.0)
	addToCart(state, userID, p1, 2, 10.0)
	addToCart(state, userID, p2, 1, 5.0)

	svc := newTestCheckout(state)
	order, replayed, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{Name: "A"}, "")

	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 25.0, order.TotalPrice)
	assert.Equal(t, models.StatusCreated, order.Status)
	assert.Len(t, order.Items, 2)

	// Cart is emptied and stock moved into sold.
	assert.Empty(t, state.carts[userID])
	assert.Equal(t, int64(8), state.stock[p1].Quantity)
	assert.Equal(t, int64(2), state.stock[p1].Sold)
	assert.Equal(t, int64(2), state.stock[p2].Quantity)
	assert.Equal(t, int64(1), state.stock[p2].Sold)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	state := newCheckoutState()
	svc := newTestCheckout(state)

	_, _, err := svc.PlaceOrder(context.Background(), primitive.NewObjectID(), models.Shipping{}, "")

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, state.orders)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	state := newCheckoutState()
	userID := primitive.NewObjectID()
	p1 := seedProduct(state, 1, 10.0)
	addToCart(state, userID, p1, 5, 10.0)

	svc := newTestCheckout(state)
	_, _, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "")

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// The abort left nothing behind: no order, stock intact, cart intact.
	assert.Empty(t, state.orders)
	assert.Equal(t, int64(1), state.stock[p1].Quantity)
	assert.Equal(t, int64(0), state.stock[p1].Sold)
	assert.Len(t, state.carts[userID], 1)
}

func TestPlaceOrderRollsBackOnMidWorkflowFailure(t *testing.T) {
	state := newCheckoutState()
	state.failCartClear = true
	userID := primitive.NewObjectID()
	p1 := seedProduct(state, 10, 10.0)
	addToCart(state, userID, p1, 2, 10.0)

	svc := newTestCheckout(state)
	_, _, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "")

	require.Error(t, err)

	// Order insert and stock decrement both rolled back with the failed
	// cart clear.
	assert.Empty(t, state.orders)
	assert.Equal(t, int64(10), state.stock[p1].Quantity)
	assert.Equal(t, int64(0), state.stock[p1].Sold)
	assert.Len(t, state.carts[userID], 1)
}

func TestPlaceOrderIdempotentReplay(t *testing.T) {
	state := newCheckoutState()
	userID := primitive.NewObjectID()
	p1 := seedProduct(state, 10, 10.0)
	addToCart(state, userID, p1, 1, 10.0)

	svc := newTestCheckout(state)
	first, replayed, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-1")
	require.NoError(t, err)
	require.False(t, replayed)

	// Same key again: the original order comes back, nothing new happens.
	second, replayed, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-1")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, state.orders, 1)
	assert.Equal(t, int64(9), state.stock[p1].Quantity)
}

func TestPlaceOrderKeyReleasedAfterFailure(t *testing.T) {
	state := newCheckoutState()
	userID := primitive.NewObjectID()
	svc := newTestCheckout(state)

	// Empty cart fails the checkout; the key must be reusable.
	_, _, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-2")
	require.Error(t, err)

	p1 := seedProduct(state, 5, 10.0)
	addToCart(state, userID, p1, 1, 10.0)

	order, replayed, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-2")
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 10.0, order.TotalPrice)
}

func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	state := newCheckoutState()
	userA := primitive.NewObjectID()
	userB := primitive.NewObjectID()
	p1 := seedProduct(state, 1, 10.0)
	addToCart(state, userA, p1, 1, 10.0)
	addToCart(state, userB, p1, 1, 10.0)

	svc := newTestCheckout(state)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, uid := range []primitive.ObjectID{userA, userB} {
		wg.Add(1)
		go func(i int, uid primitive.ObjectID) {
			defer wg.Done()
			_, _, errs[i] = svc.PlaceOrder(context.Background(), uid, models.Shipping{}, "")
		}(i, uid)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperr.KindOf(err) == apperr.KindConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one buyer wins the last unit")
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, int64(0), state.stock[p1].Quantity)
	assert.Len(t, state.orders, 1)
}

func TestPlaceOrderLivePriceMode(t *testing.T) {
	state := newCheckoutState()
	userID := primitive.NewObjectID()
	p1 := seedProduct(state, 10, 12.0) // current price 12
	addToCart(state, userID, p1, 2, 10.0)

	svc := newTestCheckout(state)
	svc.priceMode = PriceModeLive

	order, _, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "")
	require.NoError(t, err)
	assert.Equal(t, 24.0, order.TotalPrice)
}

func TestPlaceOrderDegradedModeRetryReplays(t *testing.T) {
	state := newCheckoutState()
	userID := primitive.NewObjectID()
	p1 := seedProduct(state, 10, 10.0)
	addToCart(state, userID, p1, 1, 10.0)

	svc := newTestCheckout(state)
	svc.idem = degradedIdem{} // Redis down: every claim is granted

	first, replayed, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-1")
	require.NoError(t, err)
	assert.False(t, replayed)

	// The cart is empty now; a client retry with the same key must get
	// the original order back, not a validation error or a 500.
	second, replayed, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-1")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, state.orders, 1)
	assert.Equal(t, int64(9), state.stock[p1].Quantity)
}

func TestPlaceOrderDegradedModeDuplicateInsertReplays(t *testing.T) {
	state := newCheckoutState()
	userID := primitive.NewObjectID()
	p1 := seedProduct(state, 10, 10.0)
	addToCart(state, userID, p1, 1, 10.0)

	svc := newTestCheckout(state)
	svc.idem = degradedIdem{}

	first, _, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-2")
	require.NoError(t, err)

	// New cart contents, same key: the unique order index rejects the
	// second insert and the original order is replayed with no extra
	// stock movement.
	addToCart(state, userID, p1, 3, 10.0)

	second, replayed, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-2")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, state.orders, 1)
	assert.Equal(t, int64(9), state.stock[p1].Quantity, "retry must not decrement stock again")
	assert.Len(t, state.carts[userID], 1, "aborted retry leaves the cart alone")
}

func TestPlaceOrderReleasesKeyWhenCompleteFails(t *testing.T) {
	state := newCheckoutState()
	userID := primitive.NewObjectID()
	p1 := seedProduct(state, 10, 10.0)
	addToCart(state, userID, p1, 1, 10.0)

	svc := newTestCheckout(state)
	idem := newFakeIdem()
	idem.failComplete = true
	svc.idem = idem

	first, _, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-3")
	require.NoError(t, err)

	idem.mu.Lock()
	pending := len(idem.pending)
	idem.mu.Unlock()
	assert.Zero(t, pending, "claim must not stay pending for the TTL")

	// With the claim freed a retry re-acquires the key and resolves the
	// existing order instead of returning 409 until the TTL expires.
	idem.failComplete = false
	second, replayed, err := svc.PlaceOrder(context.Background(), userID, models.Shipping{}, "key-3")
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, state.orders, 1)
}

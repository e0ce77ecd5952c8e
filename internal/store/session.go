package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.uber.org/zap"
)

// Persister loads a session snapshot at open and saves it after every
// committed mutation.
type Persister interface {
	Load(ctx context.Context) (domain.Snapshot, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
}

// ProductLookup resolves current catalog data for a product.
type ProductLookup interface {
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
}

// State is what every mutation hands back.
type State struct {
	Cart     CartState     `json:"cart"`
	Wishlist WishlistState `json:"wishlist"`
}

type Option func(*Session)

func WithPersister(p Persister) Option {
	return func(s *Session) { s.persister = p }
}

func WithRemote(r Remote, strategy SyncStrategy) Option {
	return func(s *Session) {
		s.remote = r
		if strategy != "" {
			s.strategy = strategy
		}
	}
}

func WithCatalog(c ProductLookup) Option {
	return func(s *Session) { s.catalog = c }
}

func WithBulkMode(m BulkMode) Option {
	return func(s *Session) {
		if m != "" {
			s.bulkMode = m
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session owns one shopper's cart and wishlist. Mutations are serialized by
// writeMu and are atomic from the caller's side: they either commit fully or
// leave both stores untouched. mu only guards the swap of the committed
// stores, so reads never wait for a remote call or a persister.
type Session struct {
	writeMu sync.Mutex
	mu      sync.Mutex

	id       string
	cart     *Cart
	wishlist *Wishlist

	persister Persister
	remote    Remote
	strategy  SyncStrategy
	catalog   ProductLookup
	bulkMode  BulkMode
	logger    *zap.Logger
	now       func() time.Time

	snapshotID string
	createdAt  time.Time
}

var errUnchanged = errors.New("unchanged")

func NewSession(id string, opts ...Option) *Session {
	s := &Session{
		id:       id,
		strategy: SyncPessimistic,
		bulkMode: BulkCopy,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session_id", id))
	s.cart = NewCart(nil)
	s.wishlist = NewWishlist(nil, s.now)
	s.createdAt = s.now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Open loads the persisted snapshot, if a persister is configured.
func (s *Session) Open(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	snap, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session %s: %w", s.id, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = NewCart(snap.Cart)
	s.wishlist = NewWishlist(snap.Wishlist, s.now)
	s.snapshotID = snap.ID
	if !snap.CreatedAt.IsZero() {
		s.createdAt = snap.CreatedAt
	}
	s.logger.Debug("session loaded",
		zap.Int("cart_lines", s.cart.Len()),
		zap.Int("wishlist_entries", s.wishlist.Len()))
	return nil
}

func (s *Session) CartState() CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.State()
}

func (s *Session) WishlistState(order SortOrder, filter Filter) WishlistState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlist.State(order, filter)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Checkout prices the current cart with the checkout rules.
func (s *Session) Checkout(opts pricing.CheckoutOptions) (pricing.CheckoutTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Checkout(s.cart.Items(), opts)
}

func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) AddToCart(ctx context.Context, item domain.LineItem, quantity int) (State, error) {
	return s.mutate(ctx, "add to cart", func(next *Cart, _ *Wishlist) (syncFunc, error) {
		if err := next.Add(item, quantity); err != nil {
			return nil, err
		}
		return func(ctx context.Context, r Remote) error {
			return r.AddToCart(ctx, item.ProductID, quantity)
		}, nil
	})
}

func (s *Session) UpdateQuantity(ctx context.Context, key domain.Key, quantity int) (State, error) {
	return s.mutate(ctx, "update quantity", func(next *Cart, _ *Wishlist) (syncFunc, error) {
		if _, ok := next.Get(key); !ok {
			return nil, errUnchanged
		}
		if err := next.UpdateQuantity(key, quantity); err != nil {
			return nil, err
		}
		updated, ok := next.Get(key)
		if !ok {
			return func(ctx context.Context, r Remote) error {
				return ignoreNotFound(r.RemoveCartItem(ctx, key.ProductID))
			}, nil
		}
		return func(ctx context.Context, r Remote) error {
			return r.UpdateCartItem(ctx, key.ProductID, updated.Quantity)
		}, nil
	})
}

func (s *Session) RemoveFromCart(ctx context.Context, key domain.Key) (State, error) {
	return s.mutate(ctx, "remove from cart", func(next *Cart, _ *Wishlist) (syncFunc, error) {
		if !next.Remove(key) {
			return nil, errUnchanged
		}
		return func(ctx context.Context, r Remote) error {
			return ignoreNotFound(r.RemoveCartItem(ctx, key.ProductID))
		}, nil
	})
}

// ClearCart empties the cart. Confirming with the shopper is the caller's job.
func (s *Session) ClearCart(ctx context.Context) (State, error) {
	return s.mutate(ctx, "clear cart", func(next *Cart, _ *Wishlist) (syncFunc, error) {
		if next.Len() == 0 {
			return nil, errUnchanged
		}
		next.Clear()
		return func(ctx context.Context, r Remote) error {
			return ignoreNotFound(r.ClearCart(ctx))
		}, nil
	})
}

func (s *Session) AddToWishlist(ctx context.Context, entry domain.WishlistEntry) (State, error) {
	return s.mutate(ctx, "add to wishlist", func(_ *Cart, next *Wishlist) (syncFunc, error) {
		added, err := next.Add(entry)
		if err != nil {
			return nil, err
		}
		if !added {
			return nil, errUnchanged
		}
		return func(ctx context.Context, r Remote) error {
			return r.AddToWishlist(ctx, entry.ProductID)
		}, nil
	})
}

func (s *Session) RemoveFromWishlist(ctx context.Context, id domain.ProductID) (State, error) {
	return s.mutate(ctx, "remove from wishlist", func(_ *Cart, next *Wishlist) (syncFunc, error) {
		if !next.Remove(id) {
			return nil, errUnchanged
		}
		return func(ctx context.Context, r Remote) error {
			return ignoreNotFound(r.RemoveWishlistItem(ctx, id))
		}, nil
	})
}

func (s *Session) ClearWishlist(ctx context.Context) (State, error) {
	return s.mutate(ctx, "clear wishlist", func(_ *Cart, next *Wishlist) (syncFunc, error) {
		if next.Len() == 0 {
			return nil, errUnchanged
		}
		next.Clear()
		return func(ctx context.Context, r Remote) error {
			return ignoreNotFound(r.ClearWishlist(ctx))
		}, nil
	})
}

type mutation func(cart *Cart, wishlist *Wishlist) (syncFunc, error)

// mutate applies change to clones of both stores and mirrors it to the
// remote according to the sync strategy. Committed stores are never
// modified in place, so readers may hold them while a writer works.
func (s *Session) mutate(ctx context.Context, op string, change mutation) (State, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	prevCart, prevWishlist := s.cart, s.wishlist
	s.mu.Unlock()

	nextCart, nextWishlist := prevCart.clone(), prevWishlist.clone()
	push, err := change(nextCart, nextWishlist)
	if errors.Is(err, errUnchanged) {
		return s.State(), nil
	}
	if err != nil {
		s.logger.Debug("mutation rejected", zap.String("op", op), zap.Error(err))
		return s.State(), err
	}

	switch s.strategy {
	case SyncApplyThenReconcile:
		s.commit(nextCart, nextWishlist)
		pushErr := s.push(ctx, op, push)
		if pushErr != nil {
			s.commit(prevCart, prevWishlist)
		}
		if s.reconcile(ctx, op) || pushErr == nil {
			s.save(ctx, op)
		}
		if pushErr != nil {
			return s.State(), pushErr
		}
	default:
		if err := s.push(ctx, op, push); err != nil {
			return s.State(), err
		}
		s.commit(nextCart, nextWishlist)
		s.save(ctx, op)
	}

	return s.State(), nil
}

func (s *Session) commit(cart *Cart, wishlist *Wishlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart, s.wishlist = cart, wishlist
}

func (s *Session) push(ctx context.Context, op string, fn syncFunc) error {
	if s.remote == nil || fn == nil {
		return nil
	}
	if err := fn(ctx, s.remote); err != nil {
		logger.WithTrace(ctx, s.logger).Warn("remote sync failed", zap.String("op", op), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// reconcile corrects the committed stores to the remote's contents. It is
// a no-op for remotes that cannot report them. A failed fetch is logged and
// the local state stays as it is. It reports whether anything changed.
func (s *Session) reconcile(ctx context.Context, op string) bool {
	rc, ok := s.remote.(Reconciler)
	if !ok {
		return false
	}
	log := logger.WithTrace(ctx, s.logger)

	remote, err := rc.RemoteState(ctx)
	if err != nil {
		log.Warn("reconcile fetch failed", zap.String("op", op), zap.Error(err))
		return false
	}

	s.mu.Lock()
	cart, wishlist := s.cart.clone(), s.wishlist.clone()
	s.mu.Unlock()

	changed := false
	want := make(map[domain.ProductID]int, len(remote.Cart))
	for _, line := range remote.Cart {
		want[line.ProductID] += line.Quantity
	}
	local := make(map[domain.ProductID]bool)
	for _, item := range cart.Items() {
		if local[item.ProductID] {
			continue
		}
		local[item.ProductID] = true
		if cart.setProductTotal(item.ProductID, want[item.ProductID]) {
			changed = true
		}
	}
	for _, line := range remote.Cart {
		if local[line.ProductID] || want[line.ProductID] < 1 {
			continue
		}
		local[line.ProductID] = true
		if s.addRemoteLine(ctx, cart, line.ProductID, want[line.ProductID]) {
			changed = true
		}
	}

	onRemote := make(map[domain.ProductID]bool, len(remote.Wishlist))
	for _, id := range remote.Wishlist {
		onRemote[id] = true
	}
	for _, entry := range wishlist.Items() {
		if !onRemote[entry.ProductID] {
			wishlist.Remove(entry.ProductID)
			changed = true
		}
	}
	for _, id := range remote.Wishlist {
		if !wishlist.Contains(id) && s.addRemoteEntry(ctx, wishlist, id) {
			changed = true
		}
	}

	if changed {
		s.commit(cart, wishlist)
		log.Info("session reconciled with remote", zap.String("op", op))
	}
	return changed
}

// addRemoteLine builds a cart line for a product only the remote knows about.
func (s *Session) addRemoteLine(ctx context.Context, cart *Cart, id domain.ProductID, quantity int) bool {
	p, ok := s.lookup(ctx, id)
	if !ok || p.Stock < 1 {
		return false
	}
	item, err := domain.NewLineItem(*p, "", "")
	if err != nil {
		return false
	}
	return cart.Add(item, min(quantity, p.Stock)) == nil
}

func (s *Session) addRemoteEntry(ctx context.Context, wishlist *Wishlist, id domain.ProductID) bool {
	p, ok := s.lookup(ctx, id)
	if !ok {
		return false
	}
	entry, err := domain.NewWishlistEntry(*p)
	if err != nil {
		return false
	}
	added, err := wishlist.Add(entry)
	return err == nil && added
}

func (s *Session) lookup(ctx context.Context, id domain.ProductID) (*domain.Product, bool) {
	if s.catalog == nil {
		return nil, false
	}
	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		logger.WithTrace(ctx, s.logger).Warn("catalog lookup failed", zap.String("product_id", string(id)), zap.Error(err))
		return nil, false
	}
	return p, true
}

// save is best effort: the in-process state stays authoritative and a
// failed write is retried by the next mutation.
func (s *Session) save(ctx context.Context, op string) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.Snapshot()); err != nil {
		logger.WithTrace(ctx, s.logger).Error("persist session failed", zap.String("op", op), zap.Error(err))
	}
}

func (s *Session) stateLocked() State {
	return State{
		Cart:     s.cart.State(),
		Wishlist: s.wishlist.State(SortNewest, FilterAll),
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		ID:        s.snapshotID,
		SessionID: s.id,
		Cart:      s.cart.Items(),
		Wishlist:  s.wishlist.Items(),
		CreatedAt: s.createdAt,
		UpdatedAt: s.now(),
	}
}

package remote

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/store"
)

var (
	_ store.Remote     = (*UserClient)(nil)
	_ store.Reconciler = (*UserClient)(nil)
)

type CartItem struct {
	ID        string           `json:"id"`
	ProductID domain.ProductID `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     domain.Money     `json:"price"`
}

type CartSummary struct {
	Items      []CartItem   `json:"items"`
	Subtotal   domain.Money `json:"subtotal"`
	Shipping   domain.Money `json:"shipping"`
	Tax        domain.Money `json:"tax"`
	Total      domain.Money `json:"total"`
	TotalItems int          `json:"totalItems"`
}

type WishlistItem struct {
	ID        string           `json:"id"`
	ProductID domain.ProductID `json:"productId"`
	CreatedAt time.Time        `json:"createdAt"`
}

type wishlistPage struct {
	Data []WishlistItem `json:"data"`
}

type moveAllResponse struct {
	MovedCount int `json:"movedCount"`
}

// UserClient is the remote API as seen by one shopper. Items are addressed by
// product id.
type UserClient struct {
	client *Client
	userID string
}

func (u *UserClient) do(ctx context.Context, method, path string, in, out any) error {
	return u.client.do(ctx, u.userID, method, path, in, out)
}

func itemPath(prefix string, id domain.ProductID, suffix string) string {
	return prefix + url.PathEscape(string(id)) + suffix
}

func (u *UserClient) GetCart(ctx context.Context) (CartSummary, error) {
	var summary CartSummary
	err := u.do(ctx, http.MethodGet, "/cart", nil, &summary)
	return summary, err
}

func (u *UserClient) AddToCart(ctx context.Context, id domain.ProductID, quantity int) error {
	return u.do(ctx, http.MethodPost, "/cart/add", map[string]any{
		"productId": id,
		"quantity":  quantity,
	}, nil)
}

// UpdateCartItem sets an item's quantity. Anything below 1 is sent as a removal.
func (u *UserClient) UpdateCartItem(ctx context.Context, id domain.ProductID, quantity int) error {
	if quantity < 1 {
		return u.RemoveCartItem(ctx, id)
	}
	return u.do(ctx, http.MethodPatch, itemPath("/cart/items/", id, ""), map[string]int{"quantity": quantity}, nil)
}

func (u *UserClient) RemoveCartItem(ctx context.Context, id domain.ProductID) error {
	return u.do(ctx, http.MethodDelete, itemPath("/cart/items/", id, ""), nil, nil)
}

func (u *UserClient) ClearCart(ctx context.Context) error {
	return u.do(ctx, http.MethodDelete, "/cart/clear", nil, nil)
}

func (u *UserClient) MoveToWishlist(ctx context.Context, id domain.ProductID) error {
	return u.do(ctx, http.MethodPost, itemPath("/cart/items/", id, "/move-to-wishlist"), nil, nil)
}

func (u *UserClient) GetWishlist(ctx context.Context) ([]WishlistItem, error) {
	var page wishlistPage
	if err := u.do(ctx, http.MethodGet, "/wishlist", nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (u *UserClient) AddToWishlist(ctx context.Context, id domain.ProductID) error {
	return u.do(ctx, http.MethodPost, "/wishlist/add", map[string]any{"productId": id}, nil)
}

func (u *UserClient) RemoveWishlistItem(ctx context.Context, id domain.ProductID) error {
	return u.do(ctx, http.MethodDelete, itemPath("/wishlist/items/", id, ""), nil, nil)
}

func (u *UserClient) ClearWishlist(ctx context.Context) error {
	return u.do(ctx, http.MethodDelete, "/wishlist/clear", nil, nil)
}

func (u *UserClient) MoveToCart(ctx context.Context, id domain.ProductID) error {
	return u.do(ctx, http.MethodPost, itemPath("/wishlist/items/", id, "/move-to-cart"), nil, nil)
}

func (u *UserClient) MoveAllToCart(ctx context.Context) error {
	var resp moveAllResponse
	return u.do(ctx, http.MethodPost, "/wishlist/move-all-to-cart", nil, &resp)
}

// RemoteState reads the cart and the wishlist for reconciliation.
func (u *UserClient) RemoteState(ctx context.Context) (store.RemoteState, error) {
	cart, err := u.GetCart(ctx)
	if err != nil {
		return store.RemoteState{}, err
	}
	wishlist, err := u.GetWishlist(ctx)
	if err != nil {
		return store.RemoteState{}, err
	}

	state := store.RemoteState{
		Cart:     make([]store.RemoteLine, 0, len(cart.Items)),
		Wishlist: make([]domain.ProductID, 0, len(wishlist)),
	}
	for _, item := range cart.Items {
		state.Cart = append(state.Cart, store.RemoteLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	for _, item := range wishlist {
		state.Wishlist = append(state.Wishlist, item.ProductID)
	}
	return state, nil
}

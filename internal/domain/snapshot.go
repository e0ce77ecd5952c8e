package domain

import "time"

// Snapshot is the persisted state of one shopper's session.
type Snapshot struct {
	ID        string          `json:"id,omitempty" bson:"_id,omitempty"`
	SessionID string          `json:"sessionId" bson:"session_id"`
	Cart      []LineItem      `json:"cart" bson:"cart"`
	Wishlist  []WishlistEntry `json:"wishlist" bson:"wishlist"`
	CreatedAt time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" bson:"updated_at"`
}

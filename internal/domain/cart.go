package domain

import "time"

// CartItem is one product line in a user's cart. Snapshot keeps the product
// fields as they were when the line was added.
type CartItem struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Snapshot  CartItemSnapshot `json:"snapshot"`
	CreatedAt time.Time        `json:"createdAt"`
}

type CartItemSnapshot struct {
	Name       string `json:"name"`
	PriceCents *int64 `json:"priceCents,omitempty"`
	VPPoints   int64  `json:"vpPoints"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

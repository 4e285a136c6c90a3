package domain

import "time"

const EventTypeOrderPlaced = "order_placed"

// OrderPlacedEvent is published after an order document is written.
type OrderPlacedEvent struct {
	EventID     string      `json:"event_id"`
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Items       []OrderItem `json:"items"`
	PlacedAt    time.Time   `json:"placed_at"`
}

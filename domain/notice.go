package domain

import "time"

// Coupon is a discount code members can apply to rent payments.
type Coupon struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Discount    int       `json:"discount"`
	Description string    `json:"description,omitempty"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

// Announcement is a building-wide notice published by an admin.
type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

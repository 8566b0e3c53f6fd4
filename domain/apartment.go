package domain

import "time"

// Apartment is a rentable unit in the building.
type Apartment struct {
	ID          string    `json:"id"`
	Image       string    `json:"image,omitempty"`
	FloorNo     int       `json:"floor_no"`
	BlockName   string    `json:"block_name"`
	ApartmentNo int       `json:"apartment_no"`
	Rent        float64   `json:"rent"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

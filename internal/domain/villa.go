package domain

import "time"

type Villa struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Details     string     `json:"details"`
	Rate        float64    `json:"rate"`
	Sqft        int        `json:"sqft"`
	Occupancy   int        `json:"occupancy"`
	ImageURL    string     `json:"imageUrl"`
	CreatedDate time.Time  `json:"createdDate"`
	UpdatedDate *time.Time `json:"updatedDate,omitempty"`
}

type VillaAmenity struct {
	ID          int64      `json:"id"`
	VillaID     int64      `json:"villaId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedDate time.Time  `json:"createdDate"`
	UpdatedDate *time.Time `json:"updatedDate,omitempty"`
}

package domain

import "time"

type Costume struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Size          string    `json:"size,omitempty"`
	PricePerDay   float64   `json:"price_per_day"`
	ImageURL      string    `json:"image_url,omitempty"`
	Available     bool      `json:"available"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AnimationPackage struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	DurationHours int       `json:"duration_hours"`
	Price         float64   `json:"price"`
	Includes      string    `json:"includes,omitempty"`
	MaxChildren   *int      `json:"max_children,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	Available     bool      `json:"available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CostumePatch carries a partial update; nil fields keep their prior value.
type CostumePatch struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Category      *string  `json:"category"`
	Size          *string  `json:"size"`
	PricePerDay   *float64 `json:"price_per_day"`
	ImageURL      *string  `json:"image_url"`
	Available     *bool    `json:"available"`
	StockQuantity *int     `json:"stock_quantity"`
}

type PackagePatch struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	DurationHours *int     `json:"duration_hours"`
	Price         *float64 `json:"price"`
	Includes      *string  `json:"includes"`
	MaxChildren   *int     `json:"max_children"`
	ImageURL      *string  `json:"image_url"`
	Available     *bool    `json:"available"`
}

// CostumeFilter holds optional equality filters for catalog listings.
type CostumeFilter struct {
	Category  string
	Available *bool
}

type PackageFilter struct {
	Available *bool
}

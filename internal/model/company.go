package model

import "time"

// Company is an organization that owns assets and campaigns.
type Company struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ShortInfo string    `json:"short_info" db:"short_info"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CompanySummary aggregates a company's non-deleted assets.
type CompanySummary struct {
	Total     int                 `json:"total"`
	ByStatus  map[AssetStatus]int `json:"by_status"`
	Locations []LocationCount     `json:"locations"`
}

// LocationCount is the number of assets at one location.
type LocationCount struct {
	Location string `json:"location" db:"location"`
	Count    int    `json:"count" db:"count"`
}

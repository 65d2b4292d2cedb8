package model

import "time"

// CampaignState is derived from a campaign's finish timestamp.
type CampaignState string

// Campaign states.
const (
	CampaignOpen   CampaignState = "open"
	CampaignClosed CampaignState = "closed"
)

// InventoryCampaign is a bounded physical inventory exercise.
type InventoryCampaign struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	FinishedAt  *time.Time `json:"finished_at" db:"finished_at"`
	CompanyID   *int64     `json:"company_id" db:"company_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	// Joined fields (not always populated).
	CompanyName *string `json:"company_name,omitempty" db:"company_name"`
}

// State returns CampaignClosed once the campaign has a finish timestamp.
func (c *InventoryCampaign) State() CampaignState {
	if c.FinishedAt != nil {
		return CampaignClosed
	}
	return CampaignOpen
}

// InventoryItem is one expected or found line within a campaign.
type InventoryItem struct {
	ID               int64      `json:"id" db:"id"`
	CampaignID       int64      `json:"campaign_id" db:"campaign_id"`
	AssetID          *int64     `json:"asset_id" db:"asset_id"`
	ExpectedLocation *string    `json:"expected_location" db:"expected_location"`
	Found            bool       `json:"found" db:"found"`
	FoundAt          *time.Time `json:"found_at" db:"found_at"`
	Notes            *string    `json:"notes" db:"notes"`

	// Joined fields (not always populated).
	AssetName     *string `json:"asset_name,omitempty" db:"asset_name"`
	AssetSerial   *string `json:"asset_serial,omitempty" db:"asset_serial"`
	AssetLocation *string `json:"asset_location,omitempty" db:"asset_location"`
}

// CampaignProgress counts a campaign's items.
type CampaignProgress struct {
	Total int `json:"total" db:"total"`
	Found int `json:"found" db:"found"`
}

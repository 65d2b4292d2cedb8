package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/model"
)

const selectCampaign = `SELECT ic.id, ic.name, ic.description, ic.started_at, ic.finished_at,
	        ic.company_id, ic.created_at, c.name AS company_name
	 FROM inventory_campaigns ic
	 LEFT JOIN companies c ON c.id = ic.company_id`

const selectItem = `SELECT ii.id, ii.campaign_id, ii.asset_id, ii.expected_location, ii.found,
	        ii.found_at, ii.notes, a.name AS asset_name, a.serial_number AS asset_serial,
	        a.location AS asset_location
	 FROM inventory_items ii
	 LEFT JOIN assets a ON a.id = ii.asset_id`

// CampaignInput holds the editable fields of a campaign.
type CampaignInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CompanyID   *int64     `json:"company_id"`
	StartedAt   *time.Time `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at"`
}

// CreateCampaign creates an open campaign. The start defaults to now.
func CreateCampaign(ctx context.Context, db *sql.DB, in CampaignInput) (*model.InventoryCampaign, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	now := time.Now().UTC()
	started := now
	if in.StartedAt != nil {
		started = in.StartedAt.UTC()
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO inventory_campaigns (name, description, started_at, company_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		name, strings.TrimSpace(in.Description), started, in.CompanyID, now,
	)
	if isForeignKeyViolation(err) {
		return nil, apperr.NotFound("company")
	}
	if err != nil {
		return nil, fmt.Errorf("creating campaign: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting campaign id: %w", err)
	}

	return GetCampaign(ctx, db, id)
}

// GetCampaign returns a campaign by ID.
func GetCampaign(ctx context.Context, db *sql.DB, id int64) (*model.InventoryCampaign, error) {
	return getCampaign(ctx, x(db), id)
}

func getCampaign(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.InventoryCampaign, error) {
	c := &model.InventoryCampaign{}
	err := sqlx.GetContext(ctx, q, c, selectCampaign+` WHERE ic.id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting campaign: %w", err)
	}
	return c, nil
}

// ListCampaigns returns all campaigns, most recently started first.
func ListCampaigns(ctx context.Context, db *sql.DB) ([]model.InventoryCampaign, error) {
	var campaigns []model.InventoryCampaign
	err := x(db).SelectContext(ctx, &campaigns, selectCampaign+` ORDER BY ic.started_at DESC, ic.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	return campaigns, nil
}

// ActiveCampaigns returns campaigns that have not been finished.
func ActiveCampaigns(ctx context.Context, db *sql.DB) ([]model.InventoryCampaign, error) {
	var campaigns []model.InventoryCampaign
	err := x(db).SelectContext(ctx, &campaigns,
		selectCampaign+` WHERE ic.finished_at IS NULL ORDER BY ic.started_at DESC, ic.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing active campaigns: %w", err)
	}
	return campaigns, nil
}

// UpdateCampaign overwrites a campaign's fields. A nil start keeps the
// stored one; a nil finish reopens the campaign.
func UpdateCampaign(ctx context.Context, db *sql.DB, id int64, in CampaignInput) (*model.InventoryCampaign, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	var started, finished any
	if in.StartedAt != nil {
		started = in.StartedAt.UTC()
	}
	if in.FinishedAt != nil {
		finished = in.FinishedAt.UTC()
	}

	result, err := db.ExecContext(ctx,
		`UPDATE inventory_campaigns
		 SET name = ?, description = ?, company_id = ?,
		     started_at = COALESCE(?, started_at), finished_at = ?
		 WHERE id = ?`,
		name, strings.TrimSpace(in.Description), in.CompanyID, started, finished, id,
	)
	if isForeignKeyViolation(err) {
		return nil, apperr.NotFound("company")
	}
	if err != nil {
		return nil, fmt.Errorf("updating campaign: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("campaign")
	}
	return GetCampaign(ctx, db, id)
}

// FinishCampaign closes a campaign. It returns false when the campaign
// does not exist. Finishing an already closed campaign moves its finish
// time.
func FinishCampaign(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE inventory_campaigns SET finished_at = ? WHERE id = ?`, time.Now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("finishing campaign: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("finishing campaign: %w", err)
	}
	return n > 0, nil
}

// DeleteCampaign removes a campaign and its items.
func DeleteCampaign(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM inventory_campaigns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting campaign: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.NotFound("campaign")
	}
	return nil
}

// ScopeAssetIDs returns the IDs of the non-deleted assets a campaign of
// companyID covers, ordered by name. A nil company covers all assets.
func ScopeAssetIDs(ctx context.Context, db *sql.DB, companyID *int64) ([]int64, error) {
	return scopeAssetIDs(ctx, x(db), companyID)
}

func scopeAssetIDs(ctx context.Context, q sqlx.QueryerContext, companyID *int64) ([]int64, error) {
	query := `SELECT id FROM assets WHERE deleted_at IS NULL`
	var args []any
	if companyID != nil {
		query += ` AND company_id = ?`
		args = append(args, *companyID)
	}
	query += ` ORDER BY name, id`

	var ids []int64
	if err := sqlx.SelectContext(ctx, q, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("listing scope assets: %w", err)
	}
	return ids, nil
}

// GenerateScope replaces a campaign's items with one unfound item per
// asset in its scope and returns the number of items created. Prior
// items and their found marks are discarded. Finished campaigns are
// rejected.
func GenerateScope(ctx context.Context, db *sql.DB, campaignID int64) (int, error) {
	tx, err := x(db).BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	campaign, err := getCampaign(ctx, tx, campaignID)
	if err != nil {
		return 0, err
	}
	if campaign == nil {
		return 0, apperr.NotFound("campaign")
	}
	if campaign.State() == model.CampaignClosed {
		return 0, apperr.Validation("campaign is finished")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE campaign_id = ?`, campaignID); err != nil {
		return 0, fmt.Errorf("clearing campaign items: %w", err)
	}

	ids, err := scopeAssetIDs(ctx, tx, campaign.CompanyID)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO inventory_items (campaign_id, asset_id, found) VALUES (?, ?, 0)`,
	)
	if err != nil {
		return 0, fmt.Errorf("preparing item insert: %w", err)
	}
	defer stmt.Close()

	for _, assetID := range ids {
		if _, err := stmt.ExecContext(ctx, campaignID, assetID); err != nil {
			return 0, fmt.Errorf("creating campaign item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing campaign scope: %w", err)
	}

	return len(ids), nil
}

// ItemInput holds the fields of a manually added item.
type ItemInput struct {
	AssetID          *int64  `json:"asset_id"`
	ExpectedLocation *string `json:"expected_location"`
	Notes            *string `json:"notes"`
}

// AddItem inserts one item into a campaign. Duplicate assets are allowed.
func AddItem(ctx context.Context, db *sql.DB, campaignID int64, in ItemInput) (*model.InventoryItem, error) {
	tx, err := x(db).BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	campaign, err := getCampaign(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, apperr.NotFound("campaign")
	}
	if in.AssetID != nil {
		a, err := getAsset(ctx, tx, *in.AssetID)
		if err != nil {
			return nil, err
		}
		if a == nil {
			return nil, apperr.NotFound("asset")
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_items (campaign_id, asset_id, expected_location, notes, found)
		 VALUES (?, ?, ?, ?, 0)`,
		campaignID, in.AssetID, blankToNil(in.ExpectedLocation), blankToNil(in.Notes),
	)
	if err != nil {
		return nil, fmt.Errorf("adding campaign item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing campaign item: %w", err)
	}
	return GetItem(ctx, db, campaignID, id)
}

// GetItem returns an item of a campaign by ID.
func GetItem(ctx context.Context, db *sql.DB, campaignID, itemID int64) (*model.InventoryItem, error) {
	item := &model.InventoryItem{}
	err := x(db).GetContext(ctx, item, selectItem+` WHERE ii.id = ? AND ii.campaign_id = ?`, itemID, campaignID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting campaign item: %w", err)
	}
	return item, nil
}

// ListItems returns a campaign's items in insertion order.
func ListItems(ctx context.Context, db *sql.DB, campaignID int64) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := x(db).SelectContext(ctx, &items, selectItem+` WHERE ii.campaign_id = ? ORDER BY ii.id`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("listing campaign items: %w", err)
	}
	return items, nil
}

// ListAssetItems returns the items that reference an asset across all
// campaigns.
func ListAssetItems(ctx context.Context, db *sql.DB, assetID int64) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := x(db).SelectContext(ctx, &items, selectItem+` WHERE ii.asset_id = ? ORDER BY ii.id DESC`, assetID)
	if err != nil {
		return nil, fmt.Errorf("listing asset items: %w", err)
	}
	return items, nil
}

// MarkAssetFound marks an asset as found in a campaign. Existing items
// for the asset are updated; when there are none a found item is created.
func MarkAssetFound(ctx context.Context, db *sql.DB, campaignID, assetID int64) error {
	tx, err := x(db).BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	campaign, err := getCampaign(ctx, tx, campaignID)
	if err != nil {
		return err
	}
	if campaign == nil {
		return apperr.NotFound("campaign")
	}
	a, err := getAsset(ctx, tx, assetID)
	if err != nil {
		return err
	}
	if a == nil {
		return apperr.NotFound("asset")
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE inventory_items SET found = 1, found_at = ? WHERE campaign_id = ? AND asset_id = ?`,
		now, campaignID, assetID,
	)
	if err != nil {
		return fmt.Errorf("marking asset found: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO inventory_items (campaign_id, asset_id, found, found_at) VALUES (?, ?, 1, ?)`,
			campaignID, assetID, now,
		)
		if err != nil {
			return fmt.Errorf("adding found item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing found mark: %w", err)
	}

	return nil
}

// MarkItemFound marks an item of a campaign as found. It returns false
// when the campaign has no such item.
func MarkItemFound(ctx context.Context, db *sql.DB, campaignID, itemID int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE inventory_items SET found = 1, found_at = ? WHERE id = ? AND campaign_id = ?`,
		time.Now().UTC(), itemID, campaignID,
	)
	if err != nil {
		return false, fmt.Errorf("marking item found: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking item found: %w", err)
	}
	return n > 0, nil
}

// CampaignProgress counts a campaign's items and how many were found.
func CampaignProgress(ctx context.Context, db *sql.DB, campaignID int64) (*model.CampaignProgress, error) {
	p := &model.CampaignProgress{}
	err := x(db).GetContext(ctx, p,
		`SELECT COUNT(*) AS total, COALESCE(SUM(found), 0) AS found
		 FROM inventory_items WHERE campaign_id = ?`, campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting campaign items: %w", err)
	}
	return p, nil
}

// CountCampaigns returns the number of campaigns and how many are open.
func CountCampaigns(ctx context.Context, db *sql.DB) (total, active int, err error) {
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN finished_at IS NULL THEN 1 ELSE 0 END), 0)
		 FROM inventory_campaigns`,
	).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("counting campaigns: %w", err)
	}
	return total, active, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

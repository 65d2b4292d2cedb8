package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/text/cases"

	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/changes"
	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/model"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Event descriptions written by asset operations.
const (
	DescCreated   = "Создание карточки"
	DescImported  = "Импорт из Excel"
	DescChanged   = "Изменение карточки"
	DescUnchanged = "Карточка сохранена без изменений"
	DescDeleted   = "Удаление карточки"
)

// DefaultInactiveDays is how long an asset may go unseen before it counts
// as inactive.
const DefaultInactiveDays = 30

// Sort orders for asset listings.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
)

// fieldColumns are the assets columns backing model.AssetFields.
var fieldColumns = []string{
	"name", "serial_number", "asset_type", "equipment_kind", "model", "location",
	"status", "description", "last_seen_at", "cpu", "ram", "disk1_type",
	"disk1_capacity", "network_card", "motherboard", "screen_diagonal",
	"screen_resolution", "power_supply", "monitor_diagonal", "rack_units",
	"extra_components", "company_id", "os", "network_interfaces", "current_user",
	"manufacture_date",
}

var (
	selectAsset = func() string {
		cols := make([]string, 0, len(fieldColumns)+5)
		cols = append(cols, "a.id")
		for _, c := range fieldColumns {
			cols = append(cols, "a."+c)
		}
		cols = append(cols, "a.created_at", "a.updated_at", "a.deleted_at", "c.name AS company_name")
		return `SELECT ` + strings.Join(cols, ", ") + `
		 FROM assets a LEFT JOIN companies c ON c.id = a.company_id`
	}()

	insertAsset = `INSERT INTO assets (` + strings.Join(fieldColumns, ", ") + `, created_at, updated_at)
		 VALUES (:` + strings.Join(fieldColumns, ", :") + `, :created_at, :updated_at)`

	updateAsset = func() string {
		sets := make([]string, 0, len(fieldColumns)+1)
		for _, c := range fieldColumns {
			sets = append(sets, c+" = :"+c)
		}
		sets = append(sets, "updated_at = :updated_at")
		return `UPDATE assets SET ` + strings.Join(sets, ", ") + ` WHERE id = :id AND deleted_at IS NULL`
	}()
)

// prepareFields normalizes and validates a field set before it is stored.
func prepareFields(f *model.AssetFields) error {
	f.Normalize()
	if f.Status == "" {
		f.Status = model.StatusActive
	}
	if f.LastSeenAt != nil {
		t := f.LastSeenAt.UTC()
		f.LastSeenAt = &t
	}
	if err := f.Validate(); err != nil {
		return apperr.Validation("%s", err.Error())
	}
	return nil
}

// CreateAsset inserts an asset together with its created event.
func CreateAsset(ctx context.Context, db *sql.DB, fields model.AssetFields, userID *int64, description string) (*model.Asset, error) {
	if err := prepareFields(&fields); err != nil {
		return nil, err
	}
	if description == "" {
		description = DescCreated
	}

	tx, err := x(db).BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := createAssetTx(ctx, tx, fields, userID, description)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing asset creation: %w", err)
	}

	return GetAsset(ctx, db, id)
}

func createAssetTx(ctx context.Context, tx *sqlx.Tx, fields model.AssetFields, userID *int64, description string) (int64, error) {
	now := time.Now().UTC()
	row := model.Asset{AssetFields: fields, CreatedAt: now, UpdatedAt: now}

	result, err := tx.NamedExecContext(ctx, insertAsset, row)
	if isUniqueViolation(err) {
		return 0, apperr.Conflict("serial number already exists", err)
	}
	if isForeignKeyViolation(err) {
		return 0, apperr.NotFound("company")
	}
	if err != nil {
		return 0, fmt.Errorf("creating asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting asset id: %w", err)
	}

	if _, err := insertEvent(ctx, tx, id, model.EventCreated, description, nil, userID, now); err != nil {
		return 0, err
	}
	return id, nil
}

// GetAsset returns a non-deleted asset by ID.
func GetAsset(ctx context.Context, db *sql.DB, id int64) (*model.Asset, error) {
	return getAsset(ctx, x(db), id)
}

func getAsset(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Asset, error) {
	a := &model.Asset{}
	err := sqlx.GetContext(ctx, q, a, selectAsset+` WHERE a.id = ? AND a.deleted_at IS NULL`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return a, nil
}

// UpdateAsset replaces an asset's fields with candidate and records an
// updated event carrying the field-level changes. Retired assets cannot
// change location or current user; such updates are rejected whole.
func UpdateAsset(ctx context.Context, db *sql.DB, id int64, candidate model.AssetFields, userID *int64, tbl *labels.Table) (*model.Asset, error) {
	if err := prepareFields(&candidate); err != nil {
		return nil, err
	}

	tx, err := x(db).BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getAsset(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.NotFound("asset")
	}

	if err := changes.CheckRetired(&current.AssetFields, &candidate); err != nil {
		return nil, err
	}

	list := changes.Diff(&current.AssetFields, &candidate, tbl)
	payload, err := changes.Encode(list)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	row := model.Asset{ID: id, AssetFields: candidate, UpdatedAt: now}
	_, err = tx.NamedExecContext(ctx, updateAsset, row)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("serial number already exists", err)
	}
	if isForeignKeyViolation(err) {
		return nil, apperr.NotFound("company")
	}
	if err != nil {
		return nil, fmt.Errorf("updating asset: %w", err)
	}

	description := DescUnchanged
	if len(list) > 0 {
		description = DescChanged
	}
	if _, err := insertEvent(ctx, tx, id, model.EventUpdated, description, payload, userID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing asset update: %w", err)
	}

	return GetAsset(ctx, db, id)
}

// DeleteAsset soft-deletes an asset and records a deleted event.
func DeleteAsset(ctx context.Context, db *sql.DB, id int64, userID *int64) error {
	tx, err := x(db).BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE assets SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, now, id,
	)
	if err != nil {
		return fmt.Errorf("deleting asset: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.NotFound("asset")
	}

	if _, err := insertEvent(ctx, tx, id, model.EventDeleted, DescDeleted, nil, userID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing asset deletion: %w", err)
	}

	return nil
}

// TouchAssets sets last_seen_at on every non-deleted asset.
func TouchAssets(ctx context.Context, db *sql.DB, seen time.Time) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE assets SET last_seen_at = ? WHERE deleted_at IS NULL`, seen.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("touching assets: %w", err)
	}
	return result.RowsAffected()
}

// AssetFilter selects assets for listings and exports.
type AssetFilter struct {
	Name               string
	Status             model.AssetStatus
	InactiveByActivity bool
	InactiveDays       int
	EquipmentKind      model.EquipmentKind
	Location           string
	CompanyID          *int64
	Sort               string
}

// ListAssets returns non-deleted assets matching f. Unknown status and
// kind values are ignored. Inactive-by-activity excludes retired assets
// and keeps those never seen or not seen within InactiveDays of now; it
// takes precedence over Status.
func ListAssets(ctx context.Context, db *sql.DB, f AssetFilter, now time.Time) ([]model.Asset, error) {
	where := []string{"a.deleted_at IS NULL"}
	var args []any

	if f.InactiveByActivity {
		days := f.InactiveDays
		if days <= 0 {
			days = DefaultInactiveDays
		}
		cutoff := now.UTC().Add(-time.Duration(days) * 24 * time.Hour)
		where = append(where, "a.status != ?", "(a.last_seen_at IS NULL OR a.last_seen_at < ?)")
		args = append(args, model.StatusRetired, cutoff)
	} else if f.Status.Valid() {
		where = append(where, "a.status = ?")
		args = append(args, f.Status)
	}
	if f.EquipmentKind.Valid() {
		where = append(where, "a.equipment_kind = ?")
		args = append(args, f.EquipmentKind)
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		where = append(where, "a.location = ?")
		args = append(args, loc)
	}
	if f.CompanyID != nil {
		where = append(where, "a.company_id = ?")
		args = append(args, *f.CompanyID)
	}

	order := "a.created_at DESC, a.id DESC"
	if f.Sort == SortOldest {
		order = "a.created_at ASC, a.id ASC"
	}

	var assets []model.Asset
	err := x(db).SelectContext(ctx, &assets,
		selectAsset+` WHERE `+strings.Join(where, " AND ")+` ORDER BY `+order, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}

	if name := strings.TrimSpace(f.Name); name != "" {
		assets = filterByName(assets, name)
	}
	return assets, nil
}

// filterByName keeps assets whose name contains needle, ignoring case
// for all scripts. SQLite's LIKE folds ASCII only.
func filterByName(assets []model.Asset, needle string) []model.Asset {
	fold := cases.Fold()
	needle = fold.String(needle)
	out := assets[:0]
	for _, a := range assets {
		if strings.Contains(fold.String(a.Name), needle) {
			out = append(out, a)
		}
	}
	return out
}

// TrafficLightAssets returns non-deleted computing equipment, optionally
// limited to one company.
func TrafficLightAssets(ctx context.Context, db *sql.DB, companyID *int64) ([]model.Asset, error) {
	query := selectAsset + ` WHERE a.deleted_at IS NULL AND a.equipment_kind IN (?)`
	args := []any{model.ComputingKinds}
	if companyID != nil {
		query += ` AND a.company_id = ?`
		args = append(args, *companyID)
	}
	query += ` ORDER BY a.company_id, a.name`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("building traffic light query: %w", err)
	}

	dbx := x(db)
	var assets []model.Asset
	if err := dbx.SelectContext(ctx, &assets, dbx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing traffic light assets: %w", err)
	}
	return assets, nil
}

// DistinctLocations returns the non-empty locations of non-deleted assets.
func DistinctLocations(ctx context.Context, db *sql.DB) ([]string, error) {
	var locations []string
	err := x(db).SelectContext(ctx, &locations,
		`SELECT DISTINCT location FROM assets
		 WHERE deleted_at IS NULL AND location IS NOT NULL AND location != ''
		 ORDER BY location`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	return locations, nil
}

// ExistingSerials returns the serial numbers in use by non-deleted assets.
func ExistingSerials(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	var serials []string
	err := x(db).SelectContext(ctx, &serials,
		`SELECT serial_number FROM assets
		 WHERE deleted_at IS NULL AND serial_number IS NOT NULL AND serial_number != ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing serial numbers: %w", err)
	}
	set := make(map[string]bool, len(serials))
	for _, s := range serials {
		set[s] = true
	}
	return set, nil
}

// CountAssets returns the number of non-deleted assets.
func CountAssets(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets WHERE deleted_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting assets: %w", err)
	}
	return n, nil
}

// CountInactiveAssets returns the number of non-retired, non-deleted
// assets not seen within days of now.
func CountInactiveAssets(ctx context.Context, db *sql.DB, days int, now time.Time) (int, error) {
	if days <= 0 {
		days = DefaultInactiveDays
	}
	cutoff := now.UTC().Add(-time.Duration(days) * 24 * time.Hour)

	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assets
		 WHERE deleted_at IS NULL AND status != ?
		   AND (last_seen_at IS NULL OR last_seen_at < ?)`,
		model.StatusRetired, cutoff,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting inactive assets: %w", err)
	}
	return n, nil
}

type statusCount struct {
	Status model.AssetStatus `db:"status"`
	Count  int               `db:"count"`
}

// StatusCounts returns the number of non-deleted assets per status,
// optionally limited to one company.
func StatusCounts(ctx context.Context, db *sql.DB, companyID *int64) (map[model.AssetStatus]int, error) {
	query := `SELECT status, COUNT(*) AS count FROM assets WHERE deleted_at IS NULL`
	var args []any
	if companyID != nil {
		query += ` AND company_id = ?`
		args = append(args, *companyID)
	}
	query += ` GROUP BY status`

	var rows []statusCount
	if err := x(db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("counting assets by status: %w", err)
	}

	counts := make(map[model.AssetStatus]int, len(model.AssetStatuses))
	for _, s := range model.AssetStatuses {
		counts[s] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

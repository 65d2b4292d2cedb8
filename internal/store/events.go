package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/changes"
	"github.com/erazemk/opis/internal/model"
)

// RecentEventsLimit caps the movements journal.
const RecentEventsLimit = 500

const selectEvent = `SELECT e.id, e.asset_id, e.event_type, e.description, e.changes_json,
	        e.created_at, e.created_by, a.name AS asset_name, u.username AS created_by_name
	 FROM asset_events e
	 JOIN assets a ON a.id = e.asset_id
	 LEFT JOIN users u ON u.id = e.created_by`

func insertEvent(ctx context.Context, tx *sqlx.Tx, assetID int64, typ model.EventType, description string, changesJSON *string, userID *int64, at time.Time) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO asset_events (asset_id, event_type, description, changes_json, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		assetID, typ, description, changesJSON, at, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("recording %s event: %w", typ, err)
	}
	return result.LastInsertId()
}

// AddAssetEvent records a manual event on a non-deleted asset. Events
// that move or reassign equipment are rejected for retired assets.
func AddAssetEvent(ctx context.Context, db *sql.DB, assetID int64, typ model.EventType, description string, userID *int64) (*model.AssetEvent, error) {
	if !typ.IsManual() {
		return nil, apperr.Validation("event type %q cannot be added manually", typ)
	}
	description = strings.TrimSpace(description)

	tx, err := x(db).BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var status model.AssetStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM assets WHERE id = ? AND deleted_at IS NULL`, assetID,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("asset")
	}
	if err != nil {
		return nil, fmt.Errorf("checking asset: %w", err)
	}
	if status == model.StatusRetired && typ.MovesAsset() {
		return nil, apperr.Validation("retired asset cannot be moved or reassigned")
	}

	id, err := insertEvent(ctx, tx, assetID, typ, description, nil, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing event: %w", err)
	}

	return GetAssetEvent(ctx, db, id)
}

// GetAssetEvent returns an event by ID.
func GetAssetEvent(ctx context.Context, db *sql.DB, id int64) (*model.AssetEvent, error) {
	e := &model.AssetEvent{}
	err := x(db).GetContext(ctx, e, selectEvent+` WHERE e.id = ?`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting event: %w", err)
	}
	e.Changes = changes.Decode(e.ChangesJSON)
	return e, nil
}

// ListAssetEvents returns an asset's events, newest first.
func ListAssetEvents(ctx context.Context, db *sql.DB, assetID int64) ([]model.AssetEvent, error) {
	return selectEvents(ctx, db,
		selectEvent+` WHERE e.asset_id = ? ORDER BY e.created_at DESC, e.id DESC`, assetID,
	)
}

// RecentEvents returns the latest events of non-deleted assets across
// the whole inventory, newest first.
func RecentEvents(ctx context.Context, db *sql.DB, limit int) ([]model.AssetEvent, error) {
	if limit <= 0 || limit > RecentEventsLimit {
		limit = RecentEventsLimit
	}
	return selectEvents(ctx, db,
		selectEvent+` WHERE a.deleted_at IS NULL ORDER BY e.created_at DESC, e.id DESC LIMIT ?`, limit,
	)
}

func selectEvents(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.AssetEvent, error) {
	var events []model.AssetEvent
	if err := x(db).SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	for i := range events {
		events[i].Changes = changes.Decode(events[i].ChangesJSON)
	}
	return events, nil
}

package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/erazemk/opis/internal/aging"
	"github.com/erazemk/opis/internal/apperr"
)

// Setting keys.
const (
	settingJWTSecret        = "jwt_secret"
	settingTrafficThreshold = "traffic_light_threshold"
)

// GetSetting returns a stored setting, or "" and false when unset.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting setting %s: %w", key, err)
	}
	return value, true, nil
}

// PutSetting stores a setting, replacing any previous value.
func PutSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}
	return nil
}

// GetJWTSecret returns the signing secret, generating and storing one on
// first use. Concurrent first calls agree on the stored value.
func GetJWTSecret(ctx context.Context, db *sql.DB) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`,
		settingJWTSecret, hex.EncodeToString(buf),
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt secret: %w", err)
	}

	secret, _, err := GetSetting(ctx, db, settingJWTSecret)
	return secret, err
}

// TrafficLightThreshold returns the stored warning threshold in years,
// falling back to def when unset or invalid.
func TrafficLightThreshold(ctx context.Context, db *sql.DB, def int) (int, error) {
	raw, ok, err := GetSetting(ctx, db, settingTrafficThreshold)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !aging.ValidThreshold(n) {
		return def, nil
	}
	return n, nil
}

// SetTrafficLightThreshold stores the warning threshold in years.
func SetTrafficLightThreshold(ctx context.Context, db *sql.DB, years int) error {
	if !aging.ValidThreshold(years) {
		return apperr.Validation("threshold must be between %d and %d years", aging.MinThreshold, aging.MaxThreshold)
	}
	return PutSetting(ctx, db, settingTrafficThreshold, strconv.Itoa(years))
}

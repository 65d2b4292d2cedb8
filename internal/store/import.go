package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/model"
)

// ImportRow is one parsed spreadsheet row ready for import.
type ImportRow struct {
	// Line is the 1-based spreadsheet row number, used in messages.
	Line        int
	Fields      model.AssetFields
	CompanyName string
}

// ImportSkip explains why a row was not imported.
type ImportSkip struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported int          `json:"imported"`
	Skipped  []ImportSkip `json:"skipped"`
}

// ImportAssets creates one asset per row, each in its own transaction
// with an imported event. Rows whose serial number already exists, repeats
// an earlier row, or fails validation are skipped and reported; the rest
// of the batch still goes in.
func ImportAssets(ctx context.Context, db *sql.DB, rows []ImportRow, userID *int64) (*ImportResult, error) {
	existing, err := ExistingSerials(ctx, db)
	if err != nil {
		return nil, err
	}

	companies := map[string]*int64{}
	batch := map[string]bool{}
	res := &ImportResult{Skipped: []ImportSkip{}}

	skip := func(line int, format string, args ...any) {
		res.Skipped = append(res.Skipped, ImportSkip{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	for _, r := range rows {
		fields := r.Fields

		serial := ""
		if fields.SerialNumber != nil {
			serial = strings.TrimSpace(*fields.SerialNumber)
		}
		if serial != "" {
			if batch[serial] {
				skip(r.Line, "serial number %q repeats an earlier row", serial)
				continue
			}
			if existing[serial] {
				skip(r.Line, "serial number %q already exists", serial)
				continue
			}
		}

		if name := strings.TrimSpace(r.CompanyName); name != "" {
			id, ok := companies[name]
			if !ok {
				c, err := FindCompanyByName(ctx, db, name)
				if err != nil {
					return nil, err
				}
				if c != nil {
					id = &c.ID
				}
				companies[name] = id
			}
			fields.CompanyID = id
		}

		if err := importRow(ctx, db, fields, userID); err != nil {
			if apperr.KindOf(err) == "" {
				return nil, err
			}
			skip(r.Line, "%s", apperr.Message(err, "row rejected"))
			continue
		}

		res.Imported++
		if serial != "" {
			batch[serial] = true
		}
	}

	return res, nil
}

func importRow(ctx context.Context, db *sql.DB, fields model.AssetFields, userID *int64) error {
	if err := prepareFields(&fields); err != nil {
		return err
	}

	tx, err := x(db).BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := createAssetTx(ctx, tx, fields, userID, DescImported); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing imported asset: %w", err)
	}
	return nil
}

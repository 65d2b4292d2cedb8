package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/model"
)

// CompanyLocationLimit caps the locations reported in a company summary.
const CompanyLocationLimit = 20

// CreateCompany creates a new company.
func CreateCompany(ctx context.Context, db *sql.DB, name, shortInfo string) (*model.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO companies (name, short_info) VALUES (?, ?)`,
		name, strings.TrimSpace(shortInfo),
	)
	if err != nil {
		return nil, fmt.Errorf("creating company: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting company id: %w", err)
	}

	return GetCompany(ctx, db, id)
}

// GetCompany returns a company by ID.
func GetCompany(ctx context.Context, db *sql.DB, id int64) (*model.Company, error) {
	c := &model.Company{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, short_info, created_at FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &c.ShortInfo, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	return c, nil
}

// ListCompanies returns all companies ordered by name.
func ListCompanies(ctx context.Context, db *sql.DB) ([]model.Company, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, short_info, created_at FROM companies ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.ShortInfo, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// FindCompanyByName returns the oldest company with exactly the given
// trimmed name.
func FindCompanyByName(ctx context.Context, db *sql.DB, name string) (*model.Company, error) {
	c := &model.Company{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, short_info, created_at FROM companies WHERE name = ? ORDER BY id LIMIT 1`,
		strings.TrimSpace(name),
	).Scan(&c.ID, &c.Name, &c.ShortInfo, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding company: %w", err)
	}
	return c, nil
}

// UpdateCompany updates a company's name and short info.
func UpdateCompany(ctx context.Context, db *sql.DB, id int64, name, shortInfo string) (*model.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	result, err := db.ExecContext(ctx,
		`UPDATE companies SET name = ?, short_info = ? WHERE id = ?`,
		name, strings.TrimSpace(shortInfo), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating company: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, apperr.NotFound("company")
	}
	return GetCompany(ctx, db, id)
}

// DeleteCompany removes a company. Its assets and campaigns are kept
// with the company reference cleared.
func DeleteCompany(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting company: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apperr.NotFound("company")
	}

	return nil
}

// CompanySummary aggregates a company's non-deleted assets: the total,
// counts per status and the most populated locations.
func CompanySummary(ctx context.Context, db *sql.DB, id int64) (*model.CompanySummary, error) {
	byStatus, err := StatusCounts(ctx, db, &id)
	if err != nil {
		return nil, err
	}

	summary := &model.CompanySummary{ByStatus: byStatus}
	for _, n := range byStatus {
		summary.Total += n
	}

	err = x(db).SelectContext(ctx, &summary.Locations,
		`SELECT location, COUNT(*) AS count FROM assets
		 WHERE company_id = ? AND deleted_at IS NULL AND location IS NOT NULL AND location != ''
		 GROUP BY location
		 ORDER BY count DESC, location
		 LIMIT ?`, id, CompanyLocationLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("counting company locations: %w", err)
	}
	if summary.Locations == nil {
		summary.Locations = []model.LocationCount{}
	}
	return summary, nil
}

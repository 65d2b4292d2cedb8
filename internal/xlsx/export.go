package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/opis/internal/aging"
	"github.com/erazemk/opis/internal/changes"
	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
)

// WriteAssets writes an equipment export with one column per tracked
// field, preceded by a metadata sheet when meta is not nil.
func WriteAssets(w io.Writer, assets []model.Asset, tbl *labels.Table, meta *Meta) error {
	tx := textsFor(tbl)
	f, s, err := newBook(tx, tx.Assets, meta)
	if err != nil {
		return fmt.Errorf("creating workbook: %w", err)
	}

	titles := []string{tx.ID}
	for _, fd := range changes.Fields {
		titles = append(titles, tbl.Field(fd.Key))
	}
	titles = append(titles, tx.Created)
	if err := s.header(1, titles); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := range assets {
		a := &assets[i]
		values := []any{a.ID}
		for _, fd := range changes.Fields {
			values = append(values, assetCell(a, fd, tbl))
		}
		values = append(values, a.CreatedAt.UTC().Format(changes.TimestampLayout))
		if err := s.row(i+2, values...); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	return save(f, w)
}

// assetCell renders one field for a spreadsheet cell. Codes become labels
// and the company reference becomes the company name.
func assetCell(a *model.Asset, fd changes.Field, tbl *labels.Table) string {
	switch fd.Key {
	case "status":
		return tbl.Status(a.Status)
	case "equipment_kind":
		if a.EquipmentKind == nil {
			return ""
		}
		return tbl.Kind(a.EquipmentKind)
	case "company_id":
		if a.CompanyName == nil {
			return ""
		}
		return *a.CompanyName
	}
	v := fd.Value(&a.AssetFields)
	if !v.Set {
		return ""
	}
	return v.Render(tbl)
}

// WriteTrafficLight writes the aging report with each row filled in its
// tier color.
func WriteTrafficLight(w io.Writer, rows []aging.Row, threshold int, tbl *labels.Table, meta *Meta) error {
	tx := textsFor(tbl)
	f, s, err := newBook(tx, tx.Report, meta)
	if err != nil {
		return fmt.Errorf("creating workbook: %w", err)
	}

	titles := []string{
		tbl.Field("name"), tbl.Field("equipment_kind"), tbl.Field("company_id"),
		tbl.Field("manufacture_date"), tx.Age, tbl.Field("status"),
	}
	if err := s.header(1, titles); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	fills := map[aging.Tier]int{}
	for i, r := range rows {
		line := i + 2
		company, mfg, age := tbl.Empty, tbl.Empty, tbl.Empty
		if r.Asset.CompanyName != nil {
			company = *r.Asset.CompanyName
		}
		if r.Asset.ManufactureDate != nil {
			mfg = r.Asset.ManufactureDate.Format("02.01.2006")
		}
		if r.Age != nil {
			age = r.Age.StringFixed(1)
		}
		err := s.row(line,
			r.Asset.Name, tbl.Kind(r.Asset.EquipmentKind), company, mfg, age,
			tbl.Tier(string(r.Tier), threshold),
		)
		if err != nil {
			return fmt.Errorf("writing row %d: %w", line, err)
		}

		id, ok := fills[r.Tier]
		if !ok {
			id, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{r.Tier.Fill()}},
			})
			if err != nil {
				return fmt.Errorf("creating fill: %w", err)
			}
			fills[r.Tier] = id
		}
		if err := s.style(line, len(titles), id); err != nil {
			return fmt.Errorf("filling row %d: %w", line, err)
		}
	}

	return save(f, w)
}

// WriteCampaign writes a campaign header block followed by its items.
func WriteCampaign(w io.Writer, c *model.InventoryCampaign, items []model.InventoryItem, tbl *labels.Table) error {
	tx := textsFor(tbl)
	f, s, err := newBook(tx, tx.Inventory, nil)
	if err != nil {
		return fmt.Errorf("creating workbook: %w", err)
	}

	finished := ""
	if c.FinishedAt != nil {
		finished = c.FinishedAt.UTC().Format(changes.TimestampLayout)
	}
	head := [][2]string{
		{tx.Campaign, c.Name},
		{tx.Started, c.StartedAt.UTC().Format(changes.TimestampLayout)},
		{tx.Finished, finished},
	}
	for i, h := range head {
		if err := s.row(i+1, h[0], h[1]); err != nil {
			return fmt.Errorf("writing campaign header: %w", err)
		}
	}

	const start = 5
	titles := []string{tx.Item, tx.AssetID, tx.Asset, tx.Expected, tx.Found, tx.FoundAt, tx.Notes}
	if err := s.header(start, titles); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, it := range items {
		found := tx.No
		if it.Found {
			found = tx.Yes
		}
		var assetID any = ""
		if it.AssetID != nil {
			assetID = *it.AssetID
		}
		foundAt := ""
		if it.FoundAt != nil {
			foundAt = it.FoundAt.UTC().Format(changes.TimestampLayout)
		}
		err := s.row(start+1+i, it.ID, assetID, deref(it.AssetName), deref(it.ExpectedLocation), found, foundAt, deref(it.Notes))
		if err != nil {
			return fmt.Errorf("writing item %d: %w", it.ID, err)
		}
	}

	return save(f, w)
}

// DescribeFilter renders an asset filter for the metadata sheet.
func DescribeFilter(fl store.AssetFilter, tbl *labels.Table) string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, strings.ToLower(tbl.Field(key))+": "+value)
	}
	if fl.Name != "" {
		add("name", fl.Name)
	}
	if fl.InactiveByActivity {
		parts = append(parts, strings.ToLower(tbl.Statuses[model.StatusInactive])+" (last seen)")
	} else if fl.Status.Valid() {
		add("status", tbl.Status(fl.Status))
	}
	if fl.EquipmentKind.Valid() {
		k := fl.EquipmentKind
		add("equipment_kind", tbl.Kind(&k))
	}
	if fl.Location != "" {
		add("location", fl.Location)
	}
	if fl.CompanyID != nil {
		add("company_id", fmt.Sprintf("ID %d", *fl.CompanyID))
	}
	sort := fl.Sort
	if sort == "" {
		sort = store.SortNewest
	}
	parts = append(parts, "sort: "+sort)
	return strings.Join(parts, "; ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

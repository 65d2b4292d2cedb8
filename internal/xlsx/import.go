package xlsx

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
)

// Import columns, keyed by the asset field they fill. "company" carries
// an organization name rather than an ID.
const colCompany = "company"

// TemplateHeaders are the column titles of the import template, in order.
var TemplateHeaders = []string{
	"Название", "Модель", "Тип техники", "Серийный номер", "Расположение",
	"Статус", "Категория", "Описание", "Организация", "Пользователь (кто использует)",
	"Дата выпуска",
}

// headerAliases maps lower-cased column titles to import columns. Older
// inventory sheets use several spellings.
var headerAliases = map[string]string{
	"название":                      "name",
	"имя":                           "name",
	"наименование":                  "name",
	"name":                          "name",
	"модель":                        "model",
	"model":                         "model",
	"тип техники":                   "equipment_kind",
	"тип":                           "equipment_kind",
	"вид техники":                   "equipment_kind",
	"equipment kind":                "equipment_kind",
	"kind":                          "equipment_kind",
	"серийный номер":                "serial_number",
	"серийный":                      "serial_number",
	"s/n":                           "serial_number",
	"serial number":                 "serial_number",
	"расположение":                  "location",
	"локация":                       "location",
	"кабинет":                       "location",
	"место":                         "location",
	"location":                      "location",
	"статус":                        "status",
	"status":                        "status",
	"категория":                     "asset_type",
	"category":                      "asset_type",
	"описание":                      "description",
	"description":                   "description",
	"организация":                   colCompany,
	"компания":                      colCompany,
	"organization":                  colCompany,
	"пользователь (кто использует)": "current_user",
	"пользователь":                  "current_user",
	"ответственный":                 "current_user",
	"фио":                           "current_user",
	"current user":                  "current_user",
	"дата выпуска":                  "manufacture_date",
	"manufacture date":              "manufacture_date",
}

// dateLayouts are the manufacture date spellings accepted on import.
var dateLayouts = []string{model.DateLayout, "02.01.2006", "01-02-06", "1/2/06", "2006/01/02"}

// WriteTemplate writes an empty import workbook with the header row.
func WriteTemplate(w io.Writer) error {
	f, s, err := newBook(textsByLang["ru"], textsByLang["ru"].Assets, nil)
	if err != nil {
		return fmt.Errorf("creating workbook: %w", err)
	}
	if err := s.header(1, TemplateHeaders); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return save(f, w)
}

// ParseImport reads the active sheet of an uploaded workbook. The first
// row holds column titles; rows without a name are skipped. Unknown
// equipment kinds are dropped, unknown statuses are kept so the row is
// rejected on import.
func ParseImport(r io.Reader) ([]store.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("cannot open workbook: %v", err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		return nil, apperr.Validation("workbook has no sheets")
	}
	grid, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", name, err)
	}
	if len(grid) == 0 {
		return nil, apperr.Validation("header row not found")
	}

	columns := make([]string, len(grid[0]))
	hasName := false
	for i, title := range grid[0] {
		columns[i] = headerAliases[strings.ToLower(strings.TrimSpace(title))]
		if columns[i] == "name" {
			hasName = true
		}
	}
	if !hasName {
		return nil, apperr.Validation("required column %q not found", TemplateHeaders[0])
	}

	var rows []store.ImportRow
	for i, cells := range grid[1:] {
		values := map[string]string{}
		for c, v := range cells {
			if c < len(columns) && columns[c] != "" {
				values[columns[c]] = strings.TrimSpace(v)
			}
		}
		if values["name"] == "" {
			continue
		}
		rows = append(rows, buildRow(i+2, values))
	}
	return rows, nil
}

func buildRow(line int, v map[string]string) store.ImportRow {
	fields := model.AssetFields{
		Name:         v["name"],
		Model:        model.Str(v["model"]),
		SerialNumber: model.Str(v["serial_number"]),
		Location:     model.Str(v["location"]),
		AssetType:    model.Str(v["asset_type"]),
		Description:  model.Str(v["description"]),
		CurrentUser:  model.Str(v["current_user"]),
	}

	if raw := v["status"]; raw != "" {
		if st, ok := labels.StatusFromLabel(raw); ok {
			fields.Status = st
		} else {
			fields.Status = model.AssetStatus(raw)
		}
	}
	if k, ok := labels.KindFromLabel(v["equipment_kind"]); ok {
		fields.EquipmentKind = &k
	}
	if d, ok := parseDate(v["manufacture_date"]); ok {
		fields.ManufactureDate = &d
	}

	return store.ImportRow{Line: line, Fields: fields, CompanyName: v[colCompany]}
}

func parseDate(s string) (model.Date, bool) {
	if s == "" {
		return model.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.NewDate(t.Year(), t.Month(), t.Day()), true
		}
	}
	return model.Date{}, false
}

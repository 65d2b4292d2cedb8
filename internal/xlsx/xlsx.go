// Package xlsx reads and writes the Excel workbooks exchanged with users:
// equipment exports, the traffic-light report, campaign sheets and the
// import template.
package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/opis/internal/labels"
)

// ContentType is the MIME type of every workbook produced here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	columnWidth = 18
	headerFill  = "DDDDDD"
	// excelize names the first sheet of a new workbook.
	defaultSheet = "Sheet1"
)

// Meta describes who produced an export and how.
type Meta struct {
	GeneratedAt time.Time
	GeneratedBy string
	Filters     string
}

// texts are the fixed strings of a workbook in one language.
type texts struct {
	Assets, Report, Inventory, Metadata   string
	GeneratedAt, GeneratedBy, Parameters string
	Campaign, Started, Finished           string
	Item, AssetID, Asset, Expected        string
	Found, FoundAt, Notes, Yes, No        string
	ID, Created, Age                      string
}

var textsByLang = map[string]texts{
	"ru": {
		Assets: "Оборудование", Report: "Светофор", Inventory: "Инвентаризация", Metadata: "Метаданные",
		GeneratedAt: "Сформировано", GeneratedBy: "Пользователь", Parameters: "Параметры отчёта",
		Campaign: "Кампания", Started: "Начало", Finished: "Окончание",
		Item: "ID", AssetID: "ID оборудования", Asset: "Оборудование", Expected: "Ожидаемое расположение",
		Found: "Найдено", FoundAt: "Когда найдено", Notes: "Примечание", Yes: "Да", No: "Нет",
		ID: "ID", Created: "Дата создания", Age: "Возраст (лет)",
	},
	"en": {
		Assets: "Equipment", Report: "Traffic light", Inventory: "Inventory", Metadata: "Metadata",
		GeneratedAt: "Generated at", GeneratedBy: "User", Parameters: "Report parameters",
		Campaign: "Campaign", Started: "Started", Finished: "Finished",
		Item: "ID", AssetID: "Asset ID", Asset: "Asset name", Expected: "Expected location",
		Found: "Found", FoundAt: "Found at", Notes: "Notes", Yes: "Yes", No: "No",
		ID: "ID", Created: "Created", Age: "Age (years)",
	},
}

func textsFor(tbl *labels.Table) texts {
	if t, ok := textsByLang[tbl.Lang]; ok {
		return t
	}
	return textsByLang["ru"]
}

// sheet writes rows into one worksheet.
type sheet struct {
	f    *excelize.File
	name string
}

func (s sheet) set(col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.f.SetCellValue(s.name, cell, v)
}

func (s sheet) row(row int, values ...any) error {
	for i, v := range values {
		if err := s.set(i+1, row, v); err != nil {
			return err
		}
	}
	return nil
}

// style applies styleID to columns 1..cols of row.
func (s sheet) style(row, cols, styleID int) error {
	from, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return s.f.SetCellStyle(s.name, from, to, styleID)
}

func (s sheet) header(row int, titles []string) error {
	values := make([]any, len(titles))
	for i, t := range titles {
		values[i] = t
	}
	if err := s.row(row, values...); err != nil {
		return err
	}
	id, err := s.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	})
	if err != nil {
		return err
	}
	if err := s.style(row, len(titles), id); err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(titles))
	if err != nil {
		return err
	}
	return s.f.SetColWidth(s.name, "A", last, columnWidth)
}

// newBook creates a workbook whose first sheet is the metadata sheet when
// meta is given, followed by the data sheet, which is made active.
func newBook(tx texts, data string, meta *Meta) (*excelize.File, sheet, error) {
	f := excelize.NewFile()

	if meta == nil {
		if err := f.SetSheetName(defaultSheet, data); err != nil {
			return nil, sheet{}, err
		}
		return f, sheet{f, data}, nil
	}

	if err := f.SetSheetName(defaultSheet, tx.Metadata); err != nil {
		return nil, sheet{}, err
	}
	if err := writeMeta(sheet{f, tx.Metadata}, tx, *meta); err != nil {
		return nil, sheet{}, err
	}
	idx, err := f.NewSheet(data)
	if err != nil {
		return nil, sheet{}, err
	}
	f.SetActiveSheet(idx)
	return f, sheet{f, data}, nil
}

func writeMeta(s sheet, tx texts, m Meta) error {
	by, filters := m.GeneratedBy, m.Filters
	if by == "" {
		by = "—"
	}
	if filters == "" {
		filters = "—"
	}
	rows := [][2]string{
		{tx.GeneratedAt, m.GeneratedAt.UTC().Format("2006-01-02 15:04:05") + " UTC"},
		{tx.GeneratedBy, by},
		{tx.Parameters, filters},
	}
	for i, r := range rows {
		if err := s.row(i+1, r[0], r[1]); err != nil {
			return err
		}
	}
	bold, err := s.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := s.f.SetCellStyle(s.name, "A1", "A3", bold); err != nil {
		return err
	}
	return s.f.SetColWidth(s.name, "A", "B", 30)
}

func save(f *excelize.File, w io.Writer) error {
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

package xlsx

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/erazemk/opis/internal/aging"
	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
)

func open(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref)
	if err != nil {
		t.Fatalf("reading %s!%s: %v", sheet, ref, err)
	}
	return v
}

func TestWriteAssetsWithMetadata(t *testing.T) {
	laptop := model.KindLaptop
	acme := "Acme"
	assets := []model.Asset{{
		ID: 7,
		AssetFields: model.AssetFields{
			Name:            "PC-1",
			Status:          model.StatusRetired,
			EquipmentKind:   &laptop,
			Location:        model.Str("A-1"),
			ExtraComponents: model.JSONList(`[{"type":"ram","name":"16GB"}]`),
		},
		CompanyName: &acme,
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	meta := &Meta{
		GeneratedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		GeneratedBy: "admin",
		Filters:     "sort: newest",
	}

	var buf bytes.Buffer
	if err := WriteAssets(&buf, assets, labels.Russian, meta); err != nil {
		t.Fatal(err)
	}
	f := open(t, &buf)

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Метаданные" || sheets[1] != "Оборудование" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	if got := cell(t, f, "Метаданные", "B1"); got != "2024-06-01 10:00:00 UTC" {
		t.Errorf("unexpected generated at %q", got)
	}
	if got := cell(t, f, "Метаданные", "B2"); got != "admin" {
		t.Errorf("unexpected author %q", got)
	}

	rows, err := f.GetRows("Оборудование")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d", len(rows))
	}
	byTitle := map[string]string{}
	for i, title := range rows[0] {
		if i < len(rows[1]) {
			byTitle[title] = rows[1][i]
		}
	}
	want := map[string]string{
		"Название":        "PC-1",
		"Статус":          "Списано",
		"Тип техники":     "Ноутбук",
		"Организация":     "Acme",
		"Расположение":    "A-1",
		"Доп. устройства": "ОЗУ: 16GB",
		"Дата создания":   "2024-01-02 03:04:05",
	}
	for title, v := range want {
		if byTitle[title] != v {
			t.Errorf("%s: got %q, want %q", title, byTitle[title], v)
		}
	}
}

func TestWriteTrafficLightFills(t *testing.T) {
	age := decimal.RequireFromString("6.2")
	mfg := model.NewDate(2018, 3, 15)
	rows := []aging.Row{
		{Asset: model.Asset{AssetFields: model.AssetFields{Name: "Old", ManufactureDate: &mfg}}, Age: &age, Tier: aging.TierStale},
		{Asset: model.Asset{AssetFields: model.AssetFields{Name: "Unknown"}}, Tier: aging.TierUnknown},
	}

	var buf bytes.Buffer
	if err := WriteTrafficLight(&buf, rows, 5, labels.Russian, nil); err != nil {
		t.Fatal(err)
	}
	f := open(t, &buf)

	if got := cell(t, f, "Светофор", "D2"); got != "15.03.2018" {
		t.Errorf("unexpected date %q", got)
	}
	if got := cell(t, f, "Светофор", "E2"); got != "6.2" {
		t.Errorf("unexpected age %q", got)
	}
	if got := cell(t, f, "Светофор", "F2"); got != "старше 5" {
		t.Errorf("unexpected tier label %q", got)
	}
	if got := cell(t, f, "Светофор", "E3"); got != "—" {
		t.Errorf("expected dash for unknown age, got %q", got)
	}

	for ref, fill := range map[string]string{"A2": "FFCDD2", "F3": "EEEEEE"} {
		id, err := f.GetCellStyle("Светофор", ref)
		if err != nil {
			t.Fatal(err)
		}
		style, err := f.GetStyle(id)
		if err != nil {
			t.Fatal(err)
		}
		if len(style.Fill.Color) == 0 || !strings.HasSuffix(strings.ToUpper(style.Fill.Color[0]), fill) {
			t.Errorf("%s: expected fill %s, got %v", ref, fill, style.Fill.Color)
		}
	}
}

func TestWriteCampaign(t *testing.T) {
	assetID := int64(3)
	found := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := &model.InventoryCampaign{Name: "Q2", StartedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}
	items := []model.InventoryItem{
		{ID: 1, AssetID: &assetID, AssetName: model.Str("PC"), Found: true, FoundAt: &found},
		{ID: 2, Notes: model.Str("extra")},
	}

	var buf bytes.Buffer
	if err := WriteCampaign(&buf, c, items, labels.English); err != nil {
		t.Fatal(err)
	}
	f := open(t, &buf)

	checks := map[string]string{
		"B1": "Q2",
		"B3": "",
		"C6": "PC",
		"E6": "Yes",
		"F6": "2024-05-01 09:00:00",
		"E7": "No",
		"G7": "extra",
	}
	for ref, want := range checks {
		if got := cell(t, f, "Inventory", ref); got != want {
			t.Errorf("%s: got %q, want %q", ref, got, want)
		}
	}
}

func buildUpload(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		ref, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", ref, &r); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestParseImport(t *testing.T) {
	upload := buildUpload(t, [][]any{
		{"Наименование", "S/N", "Тип", "Статус", "Кабинет", "Компания", "Ignored", "Дата выпуска"},
		{"PC-1", "SN1", "Десктоп", "На обслуживании", "101", "Acme", "x", "15.03.2018"},
		{"", "SN2"},
		{"PC-2", "", "toaster", "lost"},
		{"PC-3", "", "Laptop", ""},
	})

	rows, err := ParseImport(upload)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Line != 2 || first.Fields.Name != "PC-1" || first.CompanyName != "Acme" {
		t.Errorf("unexpected first row %+v", first)
	}
	if first.Fields.Status != model.StatusMaintenance {
		t.Errorf("expected maintenance, got %q", first.Fields.Status)
	}
	if first.Fields.EquipmentKind == nil || *first.Fields.EquipmentKind != model.KindDesktop {
		t.Errorf("expected desktop, got %v", first.Fields.EquipmentKind)
	}
	if first.Fields.ManufactureDate == nil || first.Fields.ManufactureDate.String() != "2018-03-15" {
		t.Errorf("unexpected manufacture date %v", first.Fields.ManufactureDate)
	}

	second := rows[1]
	if second.Line != 4 || second.Fields.EquipmentKind != nil || second.Fields.Status != "lost" {
		t.Errorf("unexpected second row %+v", second)
	}
	if rows[2].Fields.Status != "" {
		t.Errorf("expected blank status left for the default, got %q", rows[2].Fields.Status)
	}
}

func TestParseImportErrors(t *testing.T) {
	noName := buildUpload(t, [][]any{{"Модель"}, {"X"}})
	if _, err := ParseImport(noName); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error without name column, got %v", err)
	}
	if _, err := ParseImport(bytes.NewReader([]byte("not a workbook"))); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for garbage, got %v", err)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf); err != nil {
		t.Fatal(err)
	}
	rows, err := ParseImport(&buf)
	if err != nil {
		t.Fatalf("parsing template: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no data rows, got %d", len(rows))
	}
	for _, h := range TemplateHeaders {
		if headerAliases[strings.ToLower(h)] == "" {
			t.Errorf("template header %q is not recognized on import", h)
		}
	}
}

func TestDescribeFilter(t *testing.T) {
	id := int64(4)
	got := DescribeFilter(store.AssetFilter{Name: "pc", Status: model.StatusActive, CompanyID: &id}, labels.English)
	want := "name: pc; status: Active; organization: ID 4; sort: newest"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

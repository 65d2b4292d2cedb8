package changes

import (
	"strings"
	"testing"
	"time"

	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/model"
)

func strp(s string) *string { return &s }

func baseFields() model.AssetFields {
	kind := model.KindDesktop
	seen := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	mfg := model.NewDate(2020, 1, 15)
	units := 2
	company := int64(3)
	return model.AssetFields{
		Name:              "PC-1",
		SerialNumber:      strp("SN-1"),
		EquipmentKind:     &kind,
		Location:          strp("A-1"),
		Status:            model.StatusActive,
		LastSeenAt:        &seen,
		RackUnits:         &units,
		CompanyID:         &company,
		CurrentUser:       strp("ivanov"),
		ManufactureDate:   &mfg,
		ExtraComponents:   model.JSONList(`[{"type":"ram","name":"16GB"},{"type":"disk","name":""}]`),
		NetworkInterfaces: model.JSONList(`[{"label":"eth0","type":"network","ip":"10.0.0.1"}]`),
	}
}

func TestDiffNoChanges(t *testing.T) {
	old := baseFields()
	candidate := baseFields()

	if got := Diff(&old, &candidate, labels.Russian); len(got) != 0 {
		t.Errorf("expected no changes, got %+v", got)
	}

	enc, err := Encode(Diff(&old, &candidate, labels.Russian))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if enc != nil {
		t.Errorf("expected nil payload, got %q", *enc)
	}
}

func TestDiffReorderedJSONKeys(t *testing.T) {
	old := baseFields()
	candidate := baseFields()
	candidate.ExtraComponents = model.JSONList(`[ {"name":"16GB", "type":"ram"}, {"name":"","type":"disk"} ]`)
	candidate.NetworkInterfaces = model.JSONList(`[{"ip":"10.0.0.1","type":"network","label":"eth0"}]`)

	if got := Diff(&old, &candidate, labels.Russian); len(got) != 0 {
		t.Errorf("expected no changes for reordered keys, got %+v", got)
	}
}

func TestDiffLocation(t *testing.T) {
	old := baseFields()
	candidate := baseFields()
	candidate.Location = strp("A-2")

	got := Diff(&old, &candidate, labels.Russian)
	if len(got) != 1 {
		t.Fatalf("expected 1 change, got %+v", got)
	}
	want := model.FieldChange{FieldLabel: "Расположение", Old: "A-1", New: "A-2"}
	if got[0] != want {
		t.Errorf("expected %+v, got %+v", want, got[0])
	}

	got = Diff(&old, &candidate, labels.English)
	if got[0].FieldLabel != "Location" {
		t.Errorf("expected English label, got %q", got[0].FieldLabel)
	}
}

func TestDiffRendering(t *testing.T) {
	old := baseFields()
	candidate := baseFields()
	laptop := model.KindLaptop
	candidate.EquipmentKind = &laptop
	candidate.Status = model.StatusRetired
	candidate.SerialNumber = nil
	seen := time.Date(2024, 5, 7, 1, 2, 3, 500, time.UTC)
	candidate.LastSeenAt = &seen
	mfg := model.NewDate(2021, 2, 3)
	candidate.ManufactureDate = &mfg
	units := 4
	candidate.RackUnits = &units
	candidate.ExtraComponents = model.JSONList(`[{"type":"cpu","name":" i5 "},{"type":"gpu","name":"rtx"},{"name":"fan"}]`)
	candidate.NetworkInterfaces = model.JSONList(`[{"label":"","type":"network","ip":"10.0.0.2"},{"type":"oob","ip":"10.0.1.1"},{"type":"oob"},{"label":"wan","ip":""}]`)

	got := Diff(&old, &candidate, labels.Russian)
	byLabel := map[string]model.FieldChange{}
	var order []string
	for _, c := range got {
		byLabel[c.FieldLabel] = c
		order = append(order, c.FieldLabel)
	}

	tests := []struct {
		label, old, new string
	}{
		{"Серийный номер", "SN-1", "—"},
		{"Тип техники", "desktop", "laptop"},
		{"Статус", "active", "retired"},
		{"Последняя активность", "2024-05-06 07:08:09", "2024-05-07 01:02:03"},
		{"Юниты (U)", "2", "4"},
		{"Доп. устройства", "ОЗУ: 16GB; Диск", "Процессор: i5; gpu: rtx; Прочее: fan"},
		{"Сетевые интерфейсы", "eth0: 10.0.0.1", "Интерфейс: 10.0.0.2; OOB: 10.0.1.1; OOB; wan"},
		{"Дата выпуска", "2020-01-15", "2021-02-03"},
	}
	for _, tt := range tests {
		c, ok := byLabel[tt.label]
		if !ok {
			t.Errorf("missing change for %q", tt.label)
			continue
		}
		if c.Old != tt.old || c.New != tt.new {
			t.Errorf("%s: got %q -> %q, want %q -> %q", tt.label, c.Old, c.New, tt.old, tt.new)
		}
	}
	if len(got) != len(tests) {
		t.Errorf("expected %d changes, got %d: %v", len(tests), len(got), order)
	}
	if order[0] != "Серийный номер" || order[len(order)-1] != "Дата выпуска" {
		t.Errorf("changes not in declared field order: %v", order)
	}
}

func TestDiffSameRenderingSkipped(t *testing.T) {
	old := baseFields()
	candidate := baseFields()
	// Sub-second difference renders identically.
	seen := old.LastSeenAt.Add(300 * time.Millisecond)
	candidate.LastSeenAt = &seen

	if got := Diff(&old, &candidate, labels.Russian); len(got) != 0 {
		t.Errorf("expected no changes, got %+v", got)
	}
}

func TestDiffLabelFallback(t *testing.T) {
	tbl := *labels.English
	tbl.Fields = map[string]string{}

	old := baseFields()
	candidate := baseFields()
	candidate.OS = strp("Linux")

	got := Diff(&old, &candidate, &tbl)
	if len(got) != 1 || got[0].FieldLabel != "os" {
		t.Errorf("expected raw key label, got %+v", got)
	}
}

func TestDiffMalformedJSON(t *testing.T) {
	old := baseFields()
	old.ExtraComponents = model.JSONList(`{not json`)
	old.NetworkInterfaces = model.JSONList(`"a string"`)
	candidate := old
	candidate.ExtraComponents = model.JSONList(`[]`)
	candidate.NetworkInterfaces = nil

	// Both sides render as absent.
	if got := Diff(&old, &candidate, labels.Russian); len(got) != 0 {
		t.Errorf("expected malformed lists to render as absent, got %+v", got)
	}

	candidate.ExtraComponents = model.JSONList(`[{"type":"ram","name":"8GB"}]`)
	got := Diff(&old, &candidate, labels.Russian)
	if len(got) != 1 || got[0].Old != "—" || got[0].New != "ОЗУ: 8GB" {
		t.Errorf("unexpected change %+v", got)
	}
}

func TestCheckRetired(t *testing.T) {
	old := baseFields()
	old.Status = model.StatusRetired

	same := baseFields()
	same.Status = model.StatusRetired
	same.Description = strp("written off")
	if err := CheckRetired(&old, &same); err != nil {
		t.Errorf("unexpected error for unrelated change: %v", err)
	}

	moved := baseFields()
	moved.Location = strp("A-3")
	err := CheckRetired(&old, &moved)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for move, got %v", err)
	}

	reassigned := baseFields()
	reassigned.Status = model.StatusRetired
	reassigned.CurrentUser = nil
	if err := CheckRetired(&old, &reassigned); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("expected validation error for reassign, got %v", err)
	}

	active := baseFields()
	moved2 := baseFields()
	moved2.Location = strp("B-1")
	if err := CheckRetired(&active, &moved2); err != nil {
		t.Errorf("active assets may move: %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	list := []model.FieldChange{{FieldLabel: "Расположение", Old: "Room A", New: "Room B"}}
	enc, err := Encode(list)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(*enc, "Room A") || !strings.Contains(*enc, "Room B") {
		t.Errorf("payload missing values: %s", *enc)
	}
	if got := Decode(enc); len(got) != 1 || got[0] != list[0] {
		t.Errorf("unexpected decode %+v", got)
	}

	bad := "not json"
	if got := Decode(&bad); got != nil {
		t.Errorf("expected nil for malformed payload, got %+v", got)
	}
}

func TestComponentsAndInterfaces(t *testing.T) {
	comps := Components(model.JSONList(`[{"type":"ram","name":"8GB"}]`))
	if len(comps) != 1 || comps[0].Type != "ram" || comps[0].Name != "8GB" {
		t.Errorf("unexpected components %+v", comps)
	}
	ifaces := Interfaces(model.JSONList(`[{"label":"eth0","ip":"10.0.0.1"}]`))
	if len(ifaces) != 1 || ifaces[0].Type != model.InterfaceNetwork {
		t.Errorf("unexpected interfaces %+v", ifaces)
	}
	if got := Components(model.JSONList(`oops`)); len(got) != 0 {
		t.Errorf("expected empty list for malformed input, got %+v", got)
	}
}

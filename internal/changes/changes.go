// Package changes computes the audit trail of asset updates: which fields
// changed in a displayable sense and how they read before and after.
package changes

import (
	"encoding/json"
	"fmt"

	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/model"
)

// Field is one tracked asset attribute.
type Field struct {
	Key  string
	Kind Kind
	get  func(*model.AssetFields) Value
}

// Value extracts the field from f.
func (fd Field) Value(f *model.AssetFields) Value {
	return fd.get(f)
}

// Render extracts and renders the field from f.
func (fd Field) Render(f *model.AssetFields, tbl *labels.Table) string {
	return fd.get(f).Render(tbl)
}

// Fields lists the tracked attributes in declaration order. Diff reports
// changes in this order.
var Fields = []Field{
	{"name", KindText, func(f *model.AssetFields) Value { return text(f.Name) }},
	{"serial_number", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.SerialNumber) }},
	{"asset_type", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.AssetType) }},
	{"equipment_kind", KindCode, func(f *model.AssetFields) Value {
		if f.EquipmentKind == nil {
			return code("")
		}
		return code(string(*f.EquipmentKind))
	}},
	{"model", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.Model) }},
	{"location", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.Location) }},
	{"status", KindCode, func(f *model.AssetFields) Value { return code(string(f.Status)) }},
	{"description", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.Description) }},
	{"last_seen_at", KindTimestamp, func(f *model.AssetFields) Value { return timestamp(f.LastSeenAt) }},
	{"cpu", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.CPU) }},
	{"ram", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.RAM) }},
	{"disk1_type", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.Disk1Type) }},
	{"disk1_capacity", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.Disk1Capacity) }},
	{"network_card", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.NetworkCard) }},
	{"motherboard", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.Motherboard) }},
	{"screen_diagonal", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.ScreenDiagonal) }},
	{"screen_resolution", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.ScreenResolution) }},
	{"power_supply", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.PowerSupply) }},
	{"monitor_diagonal", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.MonitorDiagonal) }},
	{"rack_units", KindInt, func(f *model.AssetFields) Value { return integer(f.RackUnits) }},
	{"extra_components", KindComponents, func(f *model.AssetFields) Value { return list(KindComponents, f.ExtraComponents) }},
	{"company_id", KindInt, func(f *model.AssetFields) Value { return integer(f.CompanyID) }},
	{"os", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.OS) }},
	{"network_interfaces", KindInterfaces, func(f *model.AssetFields) Value { return list(KindInterfaces, f.NetworkInterfaces) }},
	{"current_user", KindOptionalText, func(f *model.AssetFields) Value { return optText(f.CurrentUser) }},
	{"manufacture_date", KindDate, func(f *model.AssetFields) Value { return date(f.ManufactureDate) }},
}

// Diff returns the fields whose rendered value differs between old and
// candidate. Fields with identical raw values are skipped without
// rendering; fields whose raw values differ but render the same are
// skipped too.
func Diff(old, candidate *model.AssetFields, tbl *labels.Table) []model.FieldChange {
	var out []model.FieldChange
	for _, fd := range Fields {
		ov, nv := fd.get(old), fd.get(candidate)
		if ov.Equal(nv) {
			continue
		}
		from, to := ov.Render(tbl), nv.Render(tbl)
		if from == to {
			continue
		}
		out = append(out, model.FieldChange{FieldLabel: tbl.Field(fd.Key), Old: from, New: to})
	}
	return out
}

// CheckRetired rejects a candidate that would move or reassign a retired
// asset.
func CheckRetired(old, candidate *model.AssetFields) error {
	if old.Status != model.StatusRetired {
		return nil
	}
	if !optText(old.Location).Equal(optText(candidate.Location)) ||
		!optText(old.CurrentUser).Equal(optText(candidate.CurrentUser)) {
		return apperr.Validation("retired asset cannot be moved or reassigned")
	}
	return nil
}

// Encode serializes a change list for storage. An empty list encodes as
// nil so that no payload is stored.
func Encode(list []model.FieldChange) (*string, error) {
	if len(list) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encoding changes: %w", err)
	}
	s := string(b)
	return &s, nil
}

// Decode parses a stored change list. Malformed payloads decode as empty.
func Decode(s *string) []model.FieldChange {
	if s == nil || *s == "" {
		return nil
	}
	var list []model.FieldChange
	if err := json.Unmarshal([]byte(*s), &list); err != nil {
		return nil
	}
	return list
}

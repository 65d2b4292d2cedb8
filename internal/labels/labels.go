// Package labels holds the display text for codes stored in the database.
package labels

import (
	"fmt"
	"strings"

	"github.com/erazemk/opis/internal/model"
)

// Table maps stored codes to display text for one language.
type Table struct {
	Lang             string
	Fields           map[string]string
	Components       map[string]string
	Statuses         map[model.AssetStatus]string
	Kinds            map[model.EquipmentKind]string
	Events           map[model.EventType]string
	Roles            map[string]string
	Tiers            map[string]string
	DefaultInterface string
	Empty            string
}

// Field returns the label of an asset field, or the key itself.
func (t *Table) Field(key string) string {
	if l, ok := t.Fields[key]; ok {
		return l
	}
	return key
}

// Component returns the label of a component type, or the type itself.
func (t *Table) Component(typ string) string {
	if l, ok := t.Components[typ]; ok {
		return l
	}
	return typ
}

// Status returns the label of a status, or the code itself.
func (t *Table) Status(s model.AssetStatus) string {
	if s == "" {
		return t.Empty
	}
	if l, ok := t.Statuses[s]; ok {
		return l
	}
	return string(s)
}

// Kind returns the label of an equipment kind, or the code itself.
func (t *Table) Kind(k *model.EquipmentKind) string {
	if k == nil || *k == "" {
		return t.Empty
	}
	if l, ok := t.Kinds[*k]; ok {
		return l
	}
	return string(*k)
}

// Event returns the label of an event type, or the code itself.
func (t *Table) Event(e model.EventType) string {
	if l, ok := t.Events[e]; ok {
		return l
	}
	return string(e)
}

// Tier returns the label of a traffic-light tier. Labels may embed the
// threshold in years.
func (t *Table) Tier(tier string, threshold int) string {
	l, ok := t.Tiers[tier]
	if !ok {
		return tier
	}
	if strings.Contains(l, "%d") {
		return fmt.Sprintf(l, threshold)
	}
	return l
}

// StatusFromLabel resolves either a status code or its label in any
// language, case-insensitively.
func StatusFromLabel(s string) (model.AssetStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range model.AssetStatuses {
		if s == string(st) {
			return st, true
		}
	}
	for _, t := range tables {
		for st, l := range t.Statuses {
			if strings.ToLower(l) == s {
				return st, true
			}
		}
	}
	return "", false
}

// KindFromLabel resolves either an equipment kind code or its label in
// any language, case-insensitively.
func KindFromLabel(s string) (model.EquipmentKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range model.EquipmentKinds {
		if s == string(k) {
			return k, true
		}
	}
	if k, ok := kindAliases[s]; ok {
		return k, true
	}
	for _, t := range tables {
		for k, l := range t.Kinds {
			if strings.ToLower(l) == s {
				return k, true
			}
		}
	}
	return "", false
}

// kindAliases are spellings found in older inventory sheets.
var kindAliases = map[string]model.EquipmentKind{
	"десктоп":     model.KindDesktop,
	"sip телефон": model.KindSIPPhone,
	"pc":          model.KindDesktop,
	"notebook":    model.KindLaptop,
}

var tables = map[string]*Table{
	"ru": Russian,
	"en": English,
}

// ForLang returns the table for lang, defaulting to Russian.
func ForLang(lang string) *Table {
	if t, ok := tables[strings.ToLower(lang)]; ok {
		return t
	}
	return Russian
}

// Russian is the default label table.
var Russian = &Table{
	Lang: "ru",
	Fields: map[string]string{
		"name":               "Название",
		"serial_number":      "Серийный номер",
		"asset_type":         "Категория",
		"equipment_kind":     "Тип техники",
		"model":              "Модель",
		"location":           "Расположение",
		"status":             "Статус",
		"description":        "Описание",
		"last_seen_at":       "Последняя активность",
		"cpu":                "Процессор",
		"ram":                "ОЗУ",
		"disk1_type":         "Тип диска",
		"disk1_capacity":     "Объём диска",
		"network_card":       "IP адрес",
		"motherboard":        "Материнская плата",
		"screen_diagonal":    "Диагональ экрана",
		"screen_resolution":  "Разрешение экрана",
		"power_supply":       "Блок питания",
		"monitor_diagonal":   "Монитор (диагональ)",
		"rack_units":         "Юниты (U)",
		"company_id":         "Организация",
		"os":                 "ОС",
		"network_interfaces": "Сетевые интерфейсы",
		"current_user":       "Пользователь (кто использует)",
		"manufacture_date":   "Дата выпуска",
		"extra_components":   "Доп. устройства",
	},
	Components: map[string]string{
		model.ComponentCPU:         "Процессор",
		model.ComponentRAM:         "ОЗУ",
		model.ComponentDisk:        "Диск",
		model.ComponentNetworkCard: "IP адрес",
		model.ComponentOther:       "Прочее",
	},
	Statuses: map[model.AssetStatus]string{
		model.StatusActive:      "Активно",
		model.StatusInactive:    "Неактивно",
		model.StatusMaintenance: "На обслуживании",
		model.StatusRetired:     "Списано",
	},
	Kinds: map[model.EquipmentKind]string{
		model.KindDesktop:   "Системный блок",
		model.KindNettop:    "Неттоп",
		model.KindLaptop:    "Ноутбук",
		model.KindMonitor:   "Монитор",
		model.KindMFU:       "МФУ",
		model.KindPrinter:   "Принтер",
		model.KindScanner:   "Сканер",
		model.KindSwitch:    "Коммутатор",
		model.KindServer:    "Сервер",
		model.KindSIPPhone:  "SIP-телефон",
		model.KindMonoblock: "Моноблок",
	},
	Events: map[model.EventType]string{
		model.EventCreated:     "Создание",
		model.EventUpdated:     "Изменение",
		model.EventMoved:       "Перемещение",
		model.EventAssigned:    "Назначение",
		model.EventReturned:    "Возврат",
		model.EventMaintenance: "Обслуживание",
		model.EventRetired:     "Списание",
		model.EventDeleted:     "Удаление",
		model.EventOther:       "Прочее",
	},
	Roles: map[string]string{
		model.RoleAdmin:  "Администратор",
		model.RoleUser:   "Пользователь",
		model.RoleViewer: "Наблюдатель",
	},
	Tiers: map[string]string{
		"fresh":   "до 3 лет",
		"warning": "3–%d лет",
		"stale":   "старше %d",
		"unknown": "нет даты",
	},
	DefaultInterface: "Интерфейс",
	Empty:            "—",
}

// English is the alternative label table.
var English = &Table{
	Lang: "en",
	Fields: map[string]string{
		"name":               "Name",
		"serial_number":      "Serial number",
		"asset_type":         "Category",
		"equipment_kind":     "Equipment kind",
		"model":              "Model",
		"location":           "Location",
		"status":             "Status",
		"description":        "Description",
		"last_seen_at":       "Last seen",
		"cpu":                "CPU",
		"ram":                "RAM",
		"disk1_type":         "Disk type",
		"disk1_capacity":     "Disk capacity",
		"network_card":       "IP address",
		"motherboard":        "Motherboard",
		"screen_diagonal":    "Screen diagonal",
		"screen_resolution":  "Screen resolution",
		"power_supply":       "Power supply",
		"monitor_diagonal":   "Monitor diagonal",
		"rack_units":         "Rack units (U)",
		"company_id":         "Organization",
		"os":                 "OS",
		"network_interfaces": "Network interfaces",
		"current_user":       "Current user",
		"manufacture_date":   "Manufacture date",
		"extra_components":   "Extra components",
	},
	Components: map[string]string{
		model.ComponentCPU:         "CPU",
		model.ComponentRAM:         "RAM",
		model.ComponentDisk:        "Disk",
		model.ComponentNetworkCard: "IP address",
		model.ComponentOther:       "Other",
	},
	Statuses: map[model.AssetStatus]string{
		model.StatusActive:      "Active",
		model.StatusInactive:    "Inactive",
		model.StatusMaintenance: "Maintenance",
		model.StatusRetired:     "Retired",
	},
	Kinds: map[model.EquipmentKind]string{
		model.KindDesktop:   "Desktop",
		model.KindNettop:    "Nettop",
		model.KindLaptop:    "Laptop",
		model.KindMonitor:   "Monitor",
		model.KindMFU:       "MFP",
		model.KindPrinter:   "Printer",
		model.KindScanner:   "Scanner",
		model.KindSwitch:    "Switch",
		model.KindServer:    "Server",
		model.KindSIPPhone:  "SIP phone",
		model.KindMonoblock: "All-in-one",
	},
	Events: map[model.EventType]string{
		model.EventCreated:     "Created",
		model.EventUpdated:     "Updated",
		model.EventMoved:       "Moved",
		model.EventAssigned:    "Assigned",
		model.EventReturned:    "Returned",
		model.EventMaintenance: "Maintenance",
		model.EventRetired:     "Retired",
		model.EventDeleted:     "Deleted",
		model.EventOther:       "Other",
	},
	Roles: map[string]string{
		model.RoleAdmin:  "Administrator",
		model.RoleUser:   "User",
		model.RoleViewer: "Viewer",
	},
	Tiers: map[string]string{
		"fresh":   "under 3 years",
		"warning": "3–%d years",
		"stale":   "over %d",
		"unknown": "no date",
	},
	DefaultInterface: "Interface",
	Empty:            "—",
}

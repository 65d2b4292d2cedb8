package model

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

// Asset statuses.
const (
	StatusActive      AssetStatus = "active"
	StatusInactive    AssetStatus = "inactive"
	StatusMaintenance AssetStatus = "maintenance"
	StatusRetired     AssetStatus = "retired"
)

// AssetStatuses lists statuses in display order.
var AssetStatuses = []AssetStatus{StatusActive, StatusInactive, StatusMaintenance, StatusRetired}

// Valid reports whether s is a known status.
func (s AssetStatus) Valid() bool {
	for _, v := range AssetStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// EquipmentKind classifies the physical device.
type EquipmentKind string

// Equipment kinds.
const (
	KindDesktop   EquipmentKind = "desktop"
	KindNettop    EquipmentKind = "nettop"
	KindLaptop    EquipmentKind = "laptop"
	KindMonitor   EquipmentKind = "monitor"
	KindMFU       EquipmentKind = "mfu"
	KindPrinter   EquipmentKind = "printer"
	KindScanner   EquipmentKind = "scanner"
	KindSwitch    EquipmentKind = "switch"
	KindServer    EquipmentKind = "server"
	KindSIPPhone  EquipmentKind = "sip_phone"
	KindMonoblock EquipmentKind = "monoblock"
)

// EquipmentKinds lists kinds in display order.
var EquipmentKinds = []EquipmentKind{
	KindDesktop, KindNettop, KindLaptop, KindMonitor, KindMFU, KindPrinter,
	KindScanner, KindSwitch, KindServer, KindSIPPhone, KindMonoblock,
}

// ComputingKinds are the kinds that carry a manufacture date and appear
// in the aging report.
var ComputingKinds = []EquipmentKind{KindDesktop, KindNettop, KindLaptop, KindServer}

// Valid reports whether k is a known kind.
func (k EquipmentKind) Valid() bool {
	for _, v := range EquipmentKinds {
		if k == v {
			return true
		}
	}
	return false
}

// Component is one entry of an asset's extra components list.
type Component struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Component types.
const (
	ComponentCPU         = "cpu"
	ComponentRAM         = "ram"
	ComponentDisk        = "disk"
	ComponentNetworkCard = "network_card"
	ComponentOther       = "other"
)

// NetworkInterface is one entry of an asset's network interfaces list.
type NetworkInterface struct {
	Label string `json:"label"`
	Type  string `json:"type"`
	IP    string `json:"ip"`
}

// Network interface types.
const (
	InterfaceNetwork = "network"
	InterfaceOOB     = "oob"
)

// AssetFields is the mutable attribute set of an asset. Optional values
// are pointers; a nil pointer is an absent value.
type AssetFields struct {
	Name              string         `json:"name" db:"name"`
	SerialNumber      *string        `json:"serial_number" db:"serial_number"`
	AssetType         *string        `json:"asset_type" db:"asset_type"`
	EquipmentKind     *EquipmentKind `json:"equipment_kind" db:"equipment_kind"`
	Model             *string        `json:"model" db:"model"`
	Location          *string        `json:"location" db:"location"`
	Status            AssetStatus    `json:"status" db:"status"`
	Description       *string        `json:"description" db:"description"`
	LastSeenAt        *time.Time     `json:"last_seen_at" db:"last_seen_at"`
	CPU               *string        `json:"cpu" db:"cpu"`
	RAM               *string        `json:"ram" db:"ram"`
	Disk1Type         *string        `json:"disk1_type" db:"disk1_type"`
	Disk1Capacity     *string        `json:"disk1_capacity" db:"disk1_capacity"`
	NetworkCard       *string        `json:"network_card" db:"network_card"`
	Motherboard       *string        `json:"motherboard" db:"motherboard"`
	ScreenDiagonal    *string        `json:"screen_diagonal" db:"screen_diagonal"`
	ScreenResolution  *string        `json:"screen_resolution" db:"screen_resolution"`
	PowerSupply       *string        `json:"power_supply" db:"power_supply"`
	MonitorDiagonal   *string        `json:"monitor_diagonal" db:"monitor_diagonal"`
	RackUnits         *int           `json:"rack_units" db:"rack_units"`
	ExtraComponents   JSONList       `json:"extra_components" db:"extra_components"`
	CompanyID         *int64         `json:"company_id" db:"company_id"`
	OS                *string        `json:"os" db:"os"`
	NetworkInterfaces JSONList       `json:"network_interfaces" db:"network_interfaces"`
	CurrentUser       *string        `json:"current_user" db:"current_user"`
	ManufactureDate   *Date          `json:"manufacture_date" db:"manufacture_date"`
}

// Asset is a tracked physical equipment unit.
type Asset struct {
	ID int64 `json:"id" db:"id"`
	AssetFields
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	// Joined fields (not always populated).
	CompanyName *string `json:"company_name,omitempty" db:"company_name"`
}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Normalize trims the name and turns blank optional text into absent
// values, so that "" and NULL compare equal.
func (f *AssetFields) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	for _, p := range []**string{
		&f.SerialNumber, &f.AssetType, &f.Model, &f.Location, &f.Description,
		&f.CPU, &f.RAM, &f.Disk1Type, &f.Disk1Capacity, &f.NetworkCard,
		&f.Motherboard, &f.ScreenDiagonal, &f.ScreenResolution, &f.PowerSupply,
		&f.MonitorDiagonal, &f.OS, &f.CurrentUser,
	} {
		if *p == nil {
			continue
		}
		v := strings.TrimSpace(**p)
		if v == "" {
			*p = nil
			continue
		}
		*p = &v
	}
	if f.EquipmentKind != nil && *f.EquipmentKind == "" {
		f.EquipmentKind = nil
	}
	if f.ManufactureDate != nil && f.ManufactureDate.IsZero() {
		f.ManufactureDate = nil
	}
	if len(bytes.TrimSpace(f.ExtraComponents)) == 0 {
		f.ExtraComponents = nil
	}
	if len(bytes.TrimSpace(f.NetworkInterfaces)) == 0 {
		f.NetworkInterfaces = nil
	}
}

// Validate checks the invariants of a field set before it is stored.
func (f *AssetFields) Validate() error {
	if f.Name == "" {
		return errors.New("name is required")
	}
	if !f.Status.Valid() {
		return fmt.Errorf("invalid status %q", f.Status)
	}
	if f.EquipmentKind != nil && !f.EquipmentKind.Valid() {
		return fmt.Errorf("invalid equipment kind %q", *f.EquipmentKind)
	}
	if f.RackUnits != nil && *f.RackUnits < 0 {
		return errors.New("rack units must not be negative")
	}
	return nil
}

package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
)

type sampleCompany struct {
	name, info string
}

var sampleCompanies = []sampleCompany{
	{"ООО «Ромашка»", "Головной офис"},
	{"АО «Вектор»", "Филиал, склад"},
}

type sampleAsset struct {
	name, serial, model, location, user string
	kind                                model.EquipmentKind
	status                              model.AssetStatus
	company                             int
	// ageMonths is the age at seeding time; negative means no date.
	ageMonths int
}

var sampleAssets = []sampleAsset{
	{"Бухгалтерия ПК-1", "SEED-0001", "HP ProDesk 400", "Каб. 101", "Иванова А.", model.KindDesktop, model.StatusActive, 0, 84},
	{"Бухгалтерия ПК-2", "SEED-0002", "HP ProDesk 600", "Каб. 101", "Петров С.", model.KindDesktop, model.StatusActive, 0, 44},
	{"Ноутбук директора", "SEED-0003", "Lenovo T14", "Каб. 201", "Сидоров В.", model.KindLaptop, model.StatusActive, 0, 14},
	{"Сервер 1С", "SEED-0004", "Dell R640", "Серверная", "", model.KindServer, model.StatusActive, 0, 70},
	{"Неттоп ресепшн", "SEED-0005", "Intel NUC", "Холл", "", model.KindNettop, model.StatusMaintenance, 0, -1},
	{"Монитор ресепшн", "SEED-0006", "Dell P2422H", "Холл", "", model.KindMonitor, model.StatusActive, 0, -1},
	{"МФУ бухгалтерии", "SEED-0007", "Kyocera M2040", "Каб. 101", "", model.KindMFU, model.StatusActive, 0, -1},
	{"Коммутатор этажа", "SEED-0008", "Cisco SG350", "Серверная", "", model.KindSwitch, model.StatusActive, 0, -1},
	{"Склад ПК", "SEED-0009", "Acer Veriton", "Склад", "Кузнецов Д.", model.KindDesktop, model.StatusInactive, 1, 30},
	{"Склад ноутбук", "SEED-0010", "ASUS ExpertBook", "Склад", "", model.KindLaptop, model.StatusRetired, 1, 110},
	{"Склад SIP", "SEED-0011", "Yealink T31P", "Склад", "", model.KindSIPPhone, model.StatusActive, 1, -1},
}

// SeedResult counts what Seed added.
type SeedResult struct {
	Companies int
	Assets    int
	Skipped   int
}

// Seed inserts sample companies and assets whose manufacture dates cover
// every traffic-light tier as of now. Running it again adds nothing:
// companies are matched by name and assets by serial number.
func Seed(ctx context.Context, database *sql.DB, now time.Time, userID *int64) (*SeedResult, error) {
	res := &SeedResult{}

	for _, c := range sampleCompanies {
		existing, err := store.FindCompanyByName(ctx, database, c.name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}
		if _, err := store.CreateCompany(ctx, database, c.name, c.info); err != nil {
			return nil, fmt.Errorf("seeding company %s: %w", c.name, err)
		}
		res.Companies++
	}

	rows := make([]store.ImportRow, 0, len(sampleAssets))
	for i, a := range sampleAssets {
		kind := a.kind
		fields := model.AssetFields{
			Name:          a.name,
			SerialNumber:  model.Str(a.serial),
			Model:         model.Str(a.model),
			Location:      model.Str(a.location),
			CurrentUser:   model.Str(a.user),
			EquipmentKind: &kind,
			Status:        a.status,
		}
		if a.ageMonths >= 0 {
			d := now.UTC().AddDate(0, -a.ageMonths, 0)
			mfg := model.NewDate(d.Year(), d.Month(), d.Day())
			fields.ManufactureDate = &mfg
		}
		rows = append(rows, store.ImportRow{
			Line:        i + 1,
			Fields:      fields,
			CompanyName: sampleCompanies[a.company].name,
		})
	}

	imported, err := store.ImportAssets(ctx, database, rows, userID)
	if err != nil {
		return nil, fmt.Errorf("seeding assets: %w", err)
	}
	res.Assets = imported.Imported
	res.Skipped = len(imported.Skipped)

	slog.Info("sample data seeded", "companies", res.Companies, "assets", res.Assets, "skipped", res.Skipped)
	return res, nil
}

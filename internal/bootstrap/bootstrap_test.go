package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/opis/internal/aging"
	"github.com/erazemk/opis/internal/db"
	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
)

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword(PasswordLength)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	b, _ := GeneratePassword(PasswordLength)
	if len(a) != PasswordLength {
		t.Errorf("expected length %d, got %d", PasswordLength, len(a))
	}
	if a == b {
		t.Error("two generated passwords should differ")
	}
}

func TestCreateAdmin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	password, err := CreateAdmin(ctx, database, "Admin")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	u, err := store.GetUserByUsername(ctx, database, "Admin")
	if err != nil || u == nil {
		t.Fatalf("GetUserByUsername: %v, %v", u, err)
	}
	if u.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %s", u.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		t.Errorf("stored hash does not match returned password: %v", err)
	}
}

func TestInitDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "opis.sqlite3")

	password, err := InitDatabase(context.Background(), path, "Admin")
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	if password == "" {
		t.Error("expected a password")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file: %v", err)
	}
}

func TestSeedIsRepeatable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	res, err := Seed(ctx, database, now, nil)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Companies != len(sampleCompanies) || res.Assets != len(sampleAssets) || res.Skipped != 0 {
		t.Errorf("unexpected first seed %+v", res)
	}

	res, err = Seed(ctx, database, now, nil)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if res.Companies != 0 || res.Assets != 0 || res.Skipped != len(sampleAssets) {
		t.Errorf("unexpected second seed %+v", res)
	}
}

func TestSeedCoversEveryTier(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := Seed(ctx, database, now, nil); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	assets, err := store.TrafficLightAssets(ctx, database, nil)
	if err != nil {
		t.Fatalf("TrafficLightAssets: %v", err)
	}
	seen := map[aging.Tier]bool{}
	for _, row := range aging.BuildRows(assets, aging.DefaultThreshold, now) {
		seen[row.Tier] = true
		if row.Asset.CompanyID == nil {
			t.Errorf("%s has no company", row.Asset.Name)
		}
	}
	for _, tier := range []aging.Tier{aging.TierStale, aging.TierWarning, aging.TierFresh, aging.TierUnknown} {
		if !seen[tier] {
			t.Errorf("no sample asset in tier %s", tier)
		}
	}

	for _, a := range assets {
		if !strings.HasPrefix(*a.SerialNumber, "SEED-") {
			t.Errorf("unexpected serial %v", a.SerialNumber)
		}
	}
}

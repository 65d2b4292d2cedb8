package store

import (
	"context"
	"testing"

	"github.com/erazemk/opis/internal/apperr"
	"github.com/erazemk/opis/internal/db"
	"github.com/erazemk/opis/internal/model"
)

func TestAddAssetEvent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "tech", "hash", model.RoleUser)
	a := newAsset(t, database, model.AssetFields{Name: "PC"})

	e, err := AddAssetEvent(ctx, database, a.ID, model.EventMoved, " to 204 ", &user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if e.Description != "to 204" || e.AssetName != "PC" {
		t.Errorf("unexpected event %+v", e)
	}
	if e.CreatedByName == nil || *e.CreatedByName != "tech" {
		t.Errorf("expected author tech, got %v", e.CreatedByName)
	}

	events, _ := ListAssetEvents(ctx, database, a.ID)
	if len(events) != 2 || events[0].ID != e.ID {
		t.Errorf("expected manual event first, got %+v", events)
	}
}

func TestAddAssetEventRules(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	retired := newAsset(t, database, model.AssetFields{Name: "Old", Status: model.StatusRetired})

	tests := []struct {
		name    string
		assetID int64
		typ     model.EventType
		kind    apperr.Kind
	}{
		{"system type", retired.ID, model.EventCreated, apperr.KindValidation},
		{"retired moved", retired.ID, model.EventMoved, apperr.KindValidation},
		{"retired assigned", retired.ID, model.EventAssigned, apperr.KindValidation},
		{"retired returned", retired.ID, model.EventReturned, apperr.KindValidation},
		{"missing asset", 999, model.EventOther, apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddAssetEvent(ctx, database, tt.assetID, tt.typ, "", nil)
			if !apperr.Is(err, tt.kind) {
				t.Errorf("expected %s, got %v", tt.kind, err)
			}
		})
	}

	if _, err := AddAssetEvent(ctx, database, retired.ID, model.EventMaintenance, "check", nil); err != nil {
		t.Errorf("maintenance on retired asset: %v", err)
	}
}

func TestRecentEventsLimit(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a := newAsset(t, database, model.AssetFields{Name: "PC"})
	for i := 0; i < 3; i++ {
		if _, err := AddAssetEvent(ctx, database, a.ID, model.EventOther, "", nil); err != nil {
			t.Fatal(err)
		}
	}

	events, err := RecentEvents(ctx, database, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID < events[1].ID {
		t.Error("expected newest first")
	}
}

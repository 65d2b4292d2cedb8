package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/opis/internal/changes"
	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
	"github.com/erazemk/opis/internal/xlsx"
)

// AssetsHandler handles asset, event and spreadsheet import endpoints.
type AssetsHandler struct {
	DB   *sql.DB
	Opts Options
}

// assetDetail carries the list fields decoded next to their stored form.
type assetDetail struct {
	*model.Asset
	Components     []model.Component        `json:"components"`
	Interfaces     []model.NetworkInterface `json:"interfaces"`
	Events         []model.AssetEvent       `json:"events"`
	InventoryItems []model.InventoryItem    `json:"inventory_items"`
}

type addEventRequest struct {
	EventType   model.EventType `json:"event_type"`
	Description string          `json:"description"`
}

type markFoundRequest struct {
	CampaignID int64 `json:"campaign_id"`
}

// assetFilter reads listing filters from the query string. Unknown
// status and kind values are ignored by the store.
func assetFilter(r *http.Request, inactiveDays int) (store.AssetFilter, error) {
	q := r.URL.Query()
	companyID, err := queryID(r, "company_id")
	if err != nil {
		return store.AssetFilter{}, err
	}
	inactive, _ := strconv.ParseBool(q.Get("inactive_by_activity"))
	return store.AssetFilter{
		Name:               q.Get("name"),
		Status:             model.AssetStatus(q.Get("status")),
		InactiveByActivity: inactive,
		InactiveDays:       inactiveDays,
		EquipmentKind:      model.EquipmentKind(q.Get("equipment_kind")),
		Location:           q.Get("location"),
		CompanyID:          companyID,
		Sort:               q.Get("sort"),
	}, nil
}

// List handles GET /api/assets.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := assetFilter(r, h.Opts.InactiveDays)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	assets, err := store.ListAssets(r.Context(), h.DB, filter, time.Now())
	if err != nil {
		storeError(w, r, err, "list assets")
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Create handles POST /api/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields model.AssetFields
	if err := decodeJSON(r, &fields); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := store.CreateAsset(r.Context(), h.DB, fields, actingUser(r.Context()), "")
	if err != nil {
		storeError(w, r, err, "create asset")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset created", "user", claims.Username, "asset_id", asset.ID, "name", asset.Name)
	jsonResponse(w, http.StatusCreated, asset)
}

// Get handles GET /api/assets/{id}. The response includes the asset's
// events and the inventory items that reference it.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	asset, err := store.GetAsset(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get asset")
		return
	}
	if asset == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}

	events, err := store.ListAssetEvents(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "list asset events")
		return
	}
	items, err := store.ListAssetItems(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "list inventory items")
		return
	}
	if events == nil {
		events = []model.AssetEvent{}
	}
	if items == nil {
		items = []model.InventoryItem{}
	}

	jsonResponse(w, http.StatusOK, assetDetail{
		Asset:          asset,
		Components:     changes.Components(asset.ExtraComponents),
		Interfaces:     changes.Interfaces(asset.NetworkInterfaces),
		Events:         events,
		InventoryItems: items,
	})
}

// Update handles PUT /api/assets/{id}. The body is decoded over the
// asset's current fields: absent keys keep their value and null clears
// an optional field.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	current, err := store.GetAsset(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get asset")
		return
	}
	if current == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}

	candidate := current.AssetFields
	if err := decodeJSON(r, &candidate); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := store.UpdateAsset(r.Context(), h.DB, id, candidate, actingUser(r.Context()), h.Opts.Labels)
	if err != nil {
		storeError(w, r, err, "update asset")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset updated", "user", claims.Username, "asset_id", id)
	jsonResponse(w, http.StatusOK, asset)
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	if err := store.DeleteAsset(r.Context(), h.DB, id, actingUser(r.Context())); err != nil {
		storeError(w, r, err, "delete asset")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset deleted", "user", claims.Username, "asset_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "asset deleted"})
}

// Events handles GET /api/assets/{id}/events.
func (h *AssetsHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	asset, err := store.GetAsset(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get asset")
		return
	}
	if asset == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}

	events, err := store.ListAssetEvents(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "list asset events")
		return
	}
	if events == nil {
		events = []model.AssetEvent{}
	}
	jsonResponse(w, http.StatusOK, events)
}

// AddEvent handles POST /api/assets/{id}/events.
func (h *AssetsHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req addEventRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := store.AddAssetEvent(r.Context(), h.DB, id, req.EventType, req.Description, actingUser(r.Context()))
	if err != nil {
		storeError(w, r, err, "add event")
		return
	}
	claims := GetClaims(r.Context())
	slog.Info("asset event added", "user", claims.Username, "asset_id", id, "event_type", event.EventType)

	jsonResponse(w, http.StatusCreated, event)
}

// MarkFound handles POST /api/assets/{id}/mark-inventory-found.
func (h *AssetsHandler) MarkFound(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req markFoundRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CampaignID <= 0 {
		jsonError(w, http.StatusBadRequest, "campaign_id required")
		return
	}

	if err := store.MarkAssetFound(r.Context(), h.DB, req.CampaignID, id); err != nil {
		storeError(w, r, err, "mark asset found")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("asset marked found", "user", claims.Username, "asset_id", id, "campaign_id", req.CampaignID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "asset marked found"})
}

// Locations handles GET /api/assets/locations.
func (h *AssetsHandler) Locations(w http.ResponseWriter, r *http.Request) {
	locations, err := store.DistinctLocations(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "list locations")
		return
	}
	if locations == nil {
		locations = []string{}
	}
	jsonResponse(w, http.StatusOK, locations)
}

// Journal handles GET /api/events, the movements journal across all
// assets. An optional limit is capped by the store.
func (h *AssetsHandler) Journal(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := store.RecentEvents(r.Context(), h.DB, limit)
	if err != nil {
		storeError(w, r, err, "list events")
		return
	}
	if events == nil {
		events = []model.AssetEvent{}
	}
	jsonResponse(w, http.StatusOK, events)
}

// Import handles POST /api/assets/import. The workbook is sent as the
// "file" part of a multipart form. Rows are imported one by one; rejected
// rows are listed in the response.
func (h *AssetsHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Opts.MaxImportBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, http.StatusRequestEntityTooLarge, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	rows, err := xlsx.ParseImport(file)
	if err != nil {
		storeError(w, r, err, "read workbook")
		return
	}

	res, err := store.ImportAssets(r.Context(), h.DB, rows, actingUser(r.Context()))
	if err != nil {
		storeError(w, r, err, "import assets")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("assets imported", "user", claims.Username, "imported", res.Imported, "skipped", len(res.Skipped))
	jsonResponse(w, http.StatusOK, res)
}

// Template handles GET /api/assets/import/template.
func (h *AssetsHandler) Template(w http.ResponseWriter, r *http.Request) {
	sendWorkbook(w, r, "import_template.xlsx", xlsx.WriteTemplate)
}

package api

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
	"github.com/erazemk/opis/internal/xlsx"
)

// InventoryHandler handles inventory campaign endpoints.
type InventoryHandler struct {
	DB   *sql.DB
	Opts Options
}

type campaignSummary struct {
	*model.InventoryCampaign
	State model.CampaignState `json:"state"`
}

type campaignDetail struct {
	campaignSummary
	Progress *model.CampaignProgress `json:"progress"`
	Items    []model.InventoryItem   `json:"items"`
}

func summarize(campaigns []model.InventoryCampaign) []campaignSummary {
	out := make([]campaignSummary, 0, len(campaigns))
	for i := range campaigns {
		out = append(out, campaignSummary{InventoryCampaign: &campaigns[i], State: campaigns[i].State()})
	}
	return out
}

// List handles GET /api/inventory.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	campaigns, err := store.ListCampaigns(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "list campaigns")
		return
	}
	jsonResponse(w, http.StatusOK, summarize(campaigns))
}

// Active handles GET /api/inventory/active.
func (h *InventoryHandler) Active(w http.ResponseWriter, r *http.Request) {
	campaigns, err := store.ActiveCampaigns(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "list active campaigns")
		return
	}
	jsonResponse(w, http.StatusOK, summarize(campaigns))
}

// Create handles POST /api/inventory.
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req store.CampaignInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := store.CreateCampaign(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, r, err, "create campaign")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("inventory campaign created", "user", claims.Username, "campaign_id", c.ID, "name", c.Name)
	jsonResponse(w, http.StatusCreated, campaignSummary{InventoryCampaign: c, State: c.State()})
}

// Get handles GET /api/inventory/{id}.
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	c, items, ok := h.load(w, r, id)
	if !ok {
		return
	}

	progress, err := store.CampaignProgress(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "count campaign items")
		return
	}

	jsonResponse(w, http.StatusOK, campaignDetail{
		campaignSummary: campaignSummary{InventoryCampaign: c, State: c.State()},
		Progress:        progress,
		Items:           items,
	})
}

// load fetches a campaign with its items, writing a response and
// returning false when that fails.
func (h *InventoryHandler) load(w http.ResponseWriter, r *http.Request, id int64) (*model.InventoryCampaign, []model.InventoryItem, bool) {
	c, err := store.GetCampaign(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get campaign")
		return nil, nil, false
	}
	if c == nil {
		jsonError(w, http.StatusNotFound, "campaign not found")
		return nil, nil, false
	}

	items, err := store.ListItems(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "list campaign items")
		return nil, nil, false
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	return c, items, true
}

// Update handles PUT /api/inventory/{id}. All fields are overwritten; an
// absent finished_at reopens the campaign.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	var req store.CampaignInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := store.UpdateCampaign(r.Context(), h.DB, id, req)
	if err != nil {
		storeError(w, r, err, "update campaign")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("inventory campaign updated", "user", claims.Username, "campaign_id", id)
	jsonResponse(w, http.StatusOK, campaignSummary{InventoryCampaign: c, State: c.State()})
}

// Delete handles DELETE /api/inventory/{id}.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	if err := store.DeleteCampaign(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err, "delete campaign")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("inventory campaign deleted", "user", claims.Username, "campaign_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "campaign deleted"})
}

// GenerateScope handles POST /api/inventory/{id}/generate-scope. Existing
// items, found or not, are replaced.
func (h *InventoryHandler) GenerateScope(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	n, err := store.GenerateScope(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "generate scope")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("inventory scope generated", "user", claims.Username, "campaign_id", id, "items", n)
	jsonResponse(w, http.StatusOK, map[string]int{"items": n})
}

// Finish handles POST /api/inventory/{id}/finish.
func (h *InventoryHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	ok, err := store.FinishCampaign(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "finish campaign")
		return
	}
	if !ok {
		jsonError(w, http.StatusNotFound, "campaign not found")
		return
	}
	claims := GetClaims(r.Context())
	slog.Info("inventory campaign finished", "user", claims.Username, "campaign_id", id)

	c, err := store.GetCampaign(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get campaign")
		return
	}
	jsonResponse(w, http.StatusOK, campaignSummary{InventoryCampaign: c, State: c.State()})
}

// AddItem handles POST /api/inventory/{id}/items.
func (h *InventoryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	var req store.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.AddItem(r.Context(), h.DB, id, req)
	if err != nil {
		storeError(w, r, err, "add item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// MarkItemFound handles POST /api/inventory/{id}/items/{item_id}/found.
func (h *InventoryHandler) MarkItemFound(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	ok, err := store.MarkItemFound(r.Context(), h.DB, id, itemID)
	if err != nil {
		storeError(w, r, err, "mark item found")
		return
	}
	if !ok {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	claims := GetClaims(r.Context())
	slog.Info("inventory item found", "user", claims.Username, "campaign_id", id, "item_id", itemID)

	item, err := store.GetItem(r.Context(), h.DB, id, itemID)
	if err != nil {
		storeError(w, r, err, "get item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Export handles GET /api/inventory/{id}/export.
func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	c, items, ok := h.load(w, r, id)
	if !ok {
		return
	}

	sendWorkbook(w, r, fmt.Sprintf("inventory_%d.xlsx", id), func(out io.Writer) error {
		return xlsx.WriteCampaign(out, c, items, h.Opts.Labels)
	})
}

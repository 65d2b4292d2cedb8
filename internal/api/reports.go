package api

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/opis/internal/aging"
	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
	"github.com/erazemk/opis/internal/xlsx"
)

// ReportsHandler handles reports, exports and the dashboard.
type ReportsHandler struct {
	DB   *sql.DB
	Opts Options
}

type trafficLightRow struct {
	AssetID         int64                `json:"asset_id"`
	Name            string               `json:"name"`
	SerialNumber    *string              `json:"serial_number"`
	EquipmentKind   *model.EquipmentKind `json:"equipment_kind"`
	Location        *string              `json:"location"`
	CompanyName     *string              `json:"company_name"`
	ManufactureDate *model.Date          `json:"manufacture_date"`
	AgeYears        *string              `json:"age_years"`
	Tier            aging.Tier           `json:"tier"`
	TierLabel       string               `json:"tier_label"`
	Color           string               `json:"color"`
}

type trafficLightReport struct {
	Threshold int                `json:"threshold_years"`
	CompanyID *int64             `json:"company_id"`
	Counts    map[aging.Tier]int `json:"counts"`
	Rows      []trafficLightRow  `json:"rows"`
}

type thresholdRequest struct {
	Years int `json:"threshold_years"`
}

// trafficLight classifies the requested assets. The threshold comes from
// the query, then the stored setting, then the configured default.
func (h *ReportsHandler) trafficLight(w http.ResponseWriter, r *http.Request) (rows []aging.Row, companyID *int64, threshold int, ok bool) {
	companyID, err := queryID(r, "company_id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return nil, nil, 0, false
	}

	if raw := r.URL.Query().Get("threshold_years"); raw != "" {
		threshold, err = strconv.Atoi(raw)
		if err != nil || !aging.ValidThreshold(threshold) {
			jsonError(w, http.StatusBadRequest,
				fmt.Sprintf("threshold_years must be between %d and %d", aging.MinThreshold, aging.MaxThreshold))
			return nil, nil, 0, false
		}
	} else {
		threshold, err = store.TrafficLightThreshold(r.Context(), h.DB, h.Opts.TrafficLightThreshold)
		if err != nil {
			storeError(w, r, err, "read threshold")
			return nil, nil, 0, false
		}
	}

	assets, err := store.TrafficLightAssets(r.Context(), h.DB, companyID)
	if err != nil {
		storeError(w, r, err, "list assets")
		return nil, nil, 0, false
	}
	return aging.BuildRows(assets, threshold, time.Now()), companyID, threshold, true
}

// TrafficLight handles GET /api/reports/traffic-light.
func (h *ReportsHandler) TrafficLight(w http.ResponseWriter, r *http.Request) {
	rows, companyID, threshold, ok := h.trafficLight(w, r)
	if !ok {
		return
	}

	report := trafficLightReport{
		Threshold: threshold,
		CompanyID: companyID,
		Counts:    map[aging.Tier]int{},
		Rows:      make([]trafficLightRow, 0, len(rows)),
	}
	for _, row := range rows {
		var age *string
		if row.Age != nil {
			s := row.Age.StringFixed(1)
			age = &s
		}
		report.Counts[row.Tier]++
		report.Rows = append(report.Rows, trafficLightRow{
			AssetID:         row.Asset.ID,
			Name:            row.Asset.Name,
			SerialNumber:    row.Asset.SerialNumber,
			EquipmentKind:   row.Asset.EquipmentKind,
			Location:        row.Asset.Location,
			CompanyName:     row.Asset.CompanyName,
			ManufactureDate: row.Asset.ManufactureDate,
			AgeYears:        age,
			Tier:            row.Tier,
			TierLabel:       h.Opts.Labels.Tier(string(row.Tier), threshold),
			Color:           row.Tier.Color(),
		})
	}
	jsonResponse(w, http.StatusOK, report)
}

// TrafficLightExport handles GET /api/reports/traffic-light/export.
func (h *ReportsHandler) TrafficLightExport(w http.ResponseWriter, r *http.Request) {
	rows, companyID, threshold, ok := h.trafficLight(w, r)
	if !ok {
		return
	}

	filters := fmt.Sprintf("threshold: %d", threshold)
	if companyID != nil {
		filters += fmt.Sprintf("; company: ID %d", *companyID)
	}
	meta := h.meta(r, filters)

	sendWorkbook(w, r, "traffic_light.xlsx", func(out io.Writer) error {
		return xlsx.WriteTrafficLight(out, rows, threshold, h.Opts.Labels, meta)
	})
}

// SetThreshold handles PUT /api/reports/traffic-light/threshold.
func (h *ReportsHandler) SetThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.SetTrafficLightThreshold(r.Context(), h.DB, req.Years); err != nil {
		storeError(w, r, err, "store threshold")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("traffic light threshold changed", "user", claims.Username, "years", req.Years)
	jsonResponse(w, http.StatusOK, req)
}

// EquipmentExport handles GET /api/reports/equipment/export and
// GET /api/assets/export. It accepts the asset listing filters.
func (h *ReportsHandler) EquipmentExport(w http.ResponseWriter, r *http.Request) {
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

	meta := h.meta(r, xlsx.DescribeFilter(filter, h.Opts.Labels))
	sendWorkbook(w, r, "equipment.xlsx", func(out io.Writer) error {
		return xlsx.WriteAssets(out, assets, h.Opts.Labels, meta)
	})
}

func (h *ReportsHandler) meta(r *http.Request, filters string) *xlsx.Meta {
	m := &xlsx.Meta{GeneratedAt: time.Now(), Filters: filters}
	if claims := GetClaims(r.Context()); claims != nil {
		m.GeneratedBy = claims.Username
	}
	return m
}

// Dashboard handles GET /api/dashboard.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := store.Dashboard(r.Context(), h.DB, h.Opts.InactiveDays, time.Now())
	if err != nil {
		storeError(w, r, err, "build dashboard")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

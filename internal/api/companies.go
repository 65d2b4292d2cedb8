package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
)

// CompaniesHandler handles company CRUD endpoints.
type CompaniesHandler struct {
	DB *sql.DB
}

type companyRequest struct {
	Name      string `json:"name"`
	ShortInfo string `json:"short_info"`
}

type companyDetail struct {
	*model.Company
	Summary *model.CompanySummary `json:"summary"`
}

// List handles GET /api/companies.
func (h *CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := store.ListCompanies(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, err, "list companies")
		return
	}
	if companies == nil {
		companies = []model.Company{}
	}
	jsonResponse(w, http.StatusOK, companies)
}

// Create handles POST /api/companies.
func (h *CompaniesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	company, err := store.CreateCompany(r.Context(), h.DB, req.Name, req.ShortInfo)
	if err != nil {
		storeError(w, r, err, "create company")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("company created", "user", claims.Username, "company", company.Name)
	jsonResponse(w, http.StatusCreated, company)
}

// Get handles GET /api/companies/{id}. The response carries a summary
// of the company's assets.
func (h *CompaniesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	company, err := store.GetCompany(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "get company")
		return
	}
	if company == nil {
		jsonError(w, http.StatusNotFound, "company not found")
		return
	}

	summary, err := store.CompanySummary(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "summarize company")
		return
	}

	jsonResponse(w, http.StatusOK, companyDetail{Company: company, Summary: summary})
}

// Update handles PUT /api/companies/{id}.
func (h *CompaniesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	var req companyRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	company, err := store.UpdateCompany(r.Context(), h.DB, id, req.Name, req.ShortInfo)
	if err != nil {
		storeError(w, r, err, "update company")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("company updated", "user", claims.Username, "company_id", id)
	jsonResponse(w, http.StatusOK, company)
}

// Delete handles DELETE /api/companies/{id}.
func (h *CompaniesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid company id")
		return
	}

	if err := store.DeleteCompany(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err, "delete company")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("company deleted", "user", claims.Username, "company_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "company deleted"})
}

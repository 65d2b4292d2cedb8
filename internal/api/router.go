package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/opis/internal/aging"
	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
)

// Options tunes the API beyond the database and signing secret.
type Options struct {
	// Labels renders field names and enumerations. Defaults to Russian.
	Labels *labels.Table
	// InactiveDays is the last-seen window of the inactive filter.
	InactiveDays int
	// MaxImportBytes caps uploaded spreadsheets.
	MaxImportBytes int64
	// TrafficLightThreshold is the stale age used when none is stored.
	TrafficLightThreshold int
}

func (o Options) withDefaults() Options {
	if o.Labels == nil {
		o.Labels = labels.ForLang("")
	}
	if o.InactiveDays <= 0 {
		o.InactiveDays = store.DefaultInactiveDays
	}
	if o.MaxImportBytes <= 0 {
		o.MaxImportBytes = 20 << 20
	}
	if o.TrafficLightThreshold <= 0 {
		o.TrafficLightThreshold = aging.DefaultThreshold
	}
	return o
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, opts Options) http.Handler {
	opts = opts.withDefaults()
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	companiesHandler := &CompaniesHandler{DB: db}
	assetsHandler := &AssetsHandler{DB: db, Opts: opts}
	inventoryHandler := &InventoryHandler{DB: db, Opts: opts}
	reportsHandler := &ReportsHandler{DB: db, Opts: opts}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireUser := RequireRole(model.RoleUser)

	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(requireUser(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", read(authHandler.Logout))
	mux.Handle("GET /api/me", read(authHandler.Me))
	mux.Handle("PUT /api/me/avatar", read(usersHandler.UploadAvatar))
	mux.Handle("DELETE /api/me/avatar", read(usersHandler.DeleteAvatar))

	// Users (admin only, avatars readable by everyone).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))
	mux.Handle("GET /api/users/{id}/avatar", read(usersHandler.GetAvatar))

	// Companies: read (all roles), write (user+).
	mux.Handle("GET /api/companies", read(companiesHandler.List))
	mux.Handle("POST /api/companies", write(companiesHandler.Create))
	mux.Handle("GET /api/companies/{id}", read(companiesHandler.Get))
	mux.Handle("PUT /api/companies/{id}", write(companiesHandler.Update))
	mux.Handle("DELETE /api/companies/{id}", write(companiesHandler.Delete))

	// Assets: read (all roles), write (user+).
	mux.Handle("GET /api/assets", read(assetsHandler.List))
	mux.Handle("POST /api/assets", write(assetsHandler.Create))
	mux.Handle("GET /api/assets/locations", read(assetsHandler.Locations))
	mux.Handle("GET /api/assets/export", read(reportsHandler.EquipmentExport))
	mux.Handle("POST /api/assets/import", write(assetsHandler.Import))
	mux.Handle("GET /api/assets/import/template", read(assetsHandler.Template))
	mux.Handle("GET /api/assets/{id}", read(assetsHandler.Get))
	mux.Handle("PUT /api/assets/{id}", write(assetsHandler.Update))
	mux.Handle("DELETE /api/assets/{id}", write(assetsHandler.Delete))
	mux.Handle("GET /api/assets/{id}/events", read(assetsHandler.Events))
	mux.Handle("POST /api/assets/{id}/events", write(assetsHandler.AddEvent))
	mux.Handle("POST /api/assets/{id}/mark-inventory-found", write(assetsHandler.MarkFound))

	// Movements journal.
	mux.Handle("GET /api/events", read(assetsHandler.Journal))

	// Inventory campaigns: read (all roles), write (user+).
	mux.Handle("GET /api/inventory", read(inventoryHandler.List))
	mux.Handle("GET /api/inventory/active", read(inventoryHandler.Active))
	mux.Handle("POST /api/inventory", write(inventoryHandler.Create))
	mux.Handle("GET /api/inventory/{id}", read(inventoryHandler.Get))
	mux.Handle("PUT /api/inventory/{id}", write(inventoryHandler.Update))
	mux.Handle("DELETE /api/inventory/{id}", write(inventoryHandler.Delete))
	mux.Handle("POST /api/inventory/{id}/generate-scope", write(inventoryHandler.GenerateScope))
	mux.Handle("POST /api/inventory/{id}/finish", write(inventoryHandler.Finish))
	mux.Handle("POST /api/inventory/{id}/items", write(inventoryHandler.AddItem))
	mux.Handle("POST /api/inventory/{id}/items/{item_id}/found", write(inventoryHandler.MarkItemFound))
	mux.Handle("GET /api/inventory/{id}/export", read(inventoryHandler.Export))

	// Reports.
	mux.Handle("GET /api/reports/traffic-light", read(reportsHandler.TrafficLight))
	mux.Handle("GET /api/reports/traffic-light/export", read(reportsHandler.TrafficLightExport))
	mux.Handle("PUT /api/reports/traffic-light/threshold", admin(reportsHandler.SetThreshold))
	mux.Handle("GET /api/reports/equipment/export", read(reportsHandler.EquipmentExport))
	mux.Handle("GET /api/dashboard", read(reportsHandler.Dashboard))

	return LoggingMiddleware(mux)
}

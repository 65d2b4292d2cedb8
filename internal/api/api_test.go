package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/opis/internal/auth"
	"github.com/erazemk/opis/internal/db"
	"github.com/erazemk/opis/internal/labels"
	"github.com/erazemk/opis/internal/logging"
	"github.com/erazemk/opis/internal/model"
	"github.com/erazemk/opis/internal/store"
	"github.com/erazemk/opis/internal/xlsx"
)

const testJWTSecret = "test-secret"

type testServer struct {
	*httptest.Server
	db    *sql.DB
	admin string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret, Options{Labels: labels.ForLang("en")})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ts := &testServer{Server: server, db: database}
	ts.createUser(t, "admin", model.RoleAdmin)
	ts.admin = ts.login(t, "admin", "password")
	return ts
}

func (ts *testServer) createUser(t *testing.T, username, role string) *model.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	u, err := store.CreateUser(context.Background(), ts.db, username, string(hash), role)
	if err != nil {
		t.Fatalf("CreateUser %s: %v", username, err)
	}
	return u
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(ts.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	return loginResp.Token
}

// do sends an authenticated JSON request and decodes the response into
// out when it is not nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestLoginEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(ts.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	var e errorResponse
	json.NewDecoder(resp.Body).Decode(&e)
	resp.Body.Close()
	if e.Code != codeUnauthorized {
		t.Errorf("expected code %q, got %q", codeUnauthorized, e.Code)
	}

	var me model.User
	if status := ts.do(t, "GET", "/api/me", ts.admin, nil, &me); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if me.Username != "admin" || me.Role != model.RoleAdmin {
		t.Errorf("unexpected user %+v", me)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	ts := setupTestServer(t)

	resp, _ := http.Get(ts.URL + "/api/assets")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	ts := setupTestServer(t)

	viewer := ts.createUser(t, "viewer1", model.RoleViewer)
	user := ts.createUser(t, "user1", model.RoleUser)
	viewerToken, _ := auth.GenerateToken(testJWTSecret, viewer)
	userToken, _ := auth.GenerateToken(testJWTSecret, user)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"viewer lists assets", "GET", "/api/assets", viewerToken, nil, http.StatusOK},
		{"viewer cannot create asset", "POST", "/api/assets", viewerToken, map[string]string{"name": "PC"}, http.StatusForbidden},
		{"viewer cannot create campaign", "POST", "/api/inventory", viewerToken, map[string]string{"name": "Q1"}, http.StatusForbidden},
		{"user creates asset", "POST", "/api/assets", userToken, map[string]string{"name": "PC"}, http.StatusCreated},
		{"user cannot list users", "GET", "/api/users", userToken, nil, http.StatusForbidden},
		{"user cannot set threshold", "PUT", "/api/reports/traffic-light/threshold", userToken, map[string]int{"threshold_years": 4}, http.StatusForbidden},
		{"admin lists users", "GET", "/api/users", ts.admin, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ts.do(t, tt.method, tt.path, tt.token, tt.body, nil); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestRoleChangeAppliesToExistingToken(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.createUser(t, "user1", model.RoleUser)
	token, _ := auth.GenerateToken(testJWTSecret, user)

	status := ts.do(t, "PUT", fmt.Sprintf("/api/users/%d", user.ID), ts.admin, map[string]string{"role": model.RoleViewer}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if got := ts.do(t, "POST", "/api/assets", token, map[string]string{"name": "PC"}, nil); got != http.StatusForbidden {
		t.Errorf("expected 403 after demotion, got %d", got)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := setupTestServer(t)

	if status := ts.do(t, "POST", "/api/auth/logout", ts.admin, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if status := ts.do(t, "GET", "/api/assets", ts.admin, nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", status)
	}
}

func TestDeletedUserTokenRejected(t *testing.T) {
	ts := setupTestServer(t)
	user := ts.createUser(t, "user1", model.RoleUser)
	token, _ := auth.GenerateToken(testJWTSecret, user)

	if status := ts.do(t, "DELETE", fmt.Sprintf("/api/users/%d", user.ID), ts.admin, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if status := ts.do(t, "GET", "/api/assets", token, nil, nil); status != http.StatusUnauthorized {
		t.Errorf("expected 401 for deleted user, got %d", status)
	}
}

func TestChangePassword(t *testing.T) {
	ts := setupTestServer(t)

	status := ts.do(t, "PUT", "/api/auth/password", ts.admin, map[string]string{
		"current_password": "password",
		"new_password":     "short",
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", status)
	}

	status = ts.do(t, "PUT", "/api/auth/password", ts.admin, map[string]string{
		"current_password": "password",
		"new_password":     "a-longer-secret",
	}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	ts.login(t, "admin", "a-longer-secret")
}

func TestAssetLifecycleOverHTTP(t *testing.T) {
	ts := setupTestServer(t)

	var created model.Asset
	status := ts.do(t, "POST", "/api/assets", ts.admin, map[string]any{
		"name": "PC-1", "status": "active", "location": "A-1", "serial_number": "SN-1",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	path := fmt.Sprintf("/api/assets/%d", created.ID)
	status = ts.do(t, "PUT", path, ts.admin, map[string]any{"location": "A-2", "status": "active"}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var detail struct {
		model.Asset
		Events []model.AssetEvent `json:"events"`
	}
	ts.do(t, "GET", path, ts.admin, nil, &detail)
	if detail.SerialNumber == nil || *detail.SerialNumber != "SN-1" {
		t.Errorf("absent key should keep serial number, got %v", detail.SerialNumber)
	}
	if len(detail.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(detail.Events))
	}
	update := detail.Events[0]
	if update.EventType != model.EventUpdated || len(update.Changes) != 1 {
		t.Fatalf("unexpected update event %+v", update)
	}
	want := model.FieldChange{FieldLabel: "Location", Old: "A-1", New: "A-2"}
	if update.Changes[0] != want {
		t.Errorf("expected %+v, got %+v", want, update.Changes[0])
	}

	ts.do(t, "PUT", path, ts.admin, map[string]any{"status": "retired"}, nil)

	var e errorResponse
	status = ts.do(t, "PUT", path, ts.admin, map[string]any{"location": "A-3"}, &e)
	if status != http.StatusBadRequest || e.Code != codeBadRequest {
		t.Errorf("expected 400 bad_request for retired move, got %d %q", status, e.Code)
	}

	var after model.Asset
	ts.do(t, "GET", path, ts.admin, nil, &after)
	if after.Location == nil || *after.Location != "A-2" {
		t.Errorf("expected location A-2 after rejection, got %v", after.Location)
	}

	status = ts.do(t, "POST", path+"/events", ts.admin, map[string]string{"event_type": "moved"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for moving a retired asset, got %d", status)
	}
}

func TestAssetDetailDecodesLists(t *testing.T) {
	ts := setupTestServer(t)

	var a model.Asset
	ts.do(t, "POST", "/api/assets", ts.admin, map[string]any{
		"name":               "SRV-1",
		"extra_components":   []map[string]string{{"type": "ram", "name": "64GB"}},
		"network_interfaces": []map[string]string{{"label": "eth0", "type": "network", "ip": "10.0.0.5"}, {"type": "oob", "ip": "10.0.1.5"}},
	}, &a)

	var detail assetDetail
	if status := ts.do(t, "GET", fmt.Sprintf("/api/assets/%d", a.ID), ts.admin, nil, &detail); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(detail.Components) != 1 || detail.Components[0].Name != "64GB" {
		t.Errorf("unexpected components %+v", detail.Components)
	}
	if len(detail.Interfaces) != 2 || detail.Interfaces[1].Type != model.InterfaceOOB || detail.Interfaces[0].IP != "10.0.0.5" {
		t.Errorf("unexpected interfaces %+v", detail.Interfaces)
	}

	// Malformed stored lists decode to nothing rather than failing the page.
	ts.db.Exec(`UPDATE assets SET extra_components = 'not json' WHERE id = ?`, a.ID)
	detail = assetDetail{}
	if status := ts.do(t, "GET", fmt.Sprintf("/api/assets/%d", a.ID), ts.admin, nil, &detail); status != http.StatusOK {
		t.Fatalf("expected 200 for malformed list, got %d", status)
	}
	if len(detail.Components) != 0 {
		t.Errorf("expected no components, got %+v", detail.Components)
	}
}

// lockedBuffer is written by the server goroutines while the test reads it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestAssetMutationsLoggedOnce(t *testing.T) {
	ts := setupTestServer(t)

	var out, errOut lockedBuffer
	prev := slog.Default()
	slog.SetDefault(slog.New(logging.NewHandler(&out, &errOut)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var a model.Asset
	ts.do(t, "POST", "/api/assets", ts.admin, map[string]any{"name": "PC-1"}, &a)
	path := fmt.Sprintf("/api/assets/%d", a.ID)
	ts.do(t, "PUT", path, ts.admin, map[string]any{"location": "A-2"}, nil)
	ts.do(t, "DELETE", path, ts.admin, nil, nil)

	for _, msg := range []string{`msg="asset created"`, `msg="asset updated"`, `msg="asset deleted"`} {
		if n := strings.Count(out.String(), msg); n != 1 {
			t.Errorf("expected %s once, got %d in:\n%s", msg, n, out.String())
		}
	}
	if !strings.Contains(out.String(), "user=admin") {
		t.Errorf("expected acting user in log, got:\n%s", out.String())
	}
}

func TestAssetErrors(t *testing.T) {
	ts := setupTestServer(t)

	ts.do(t, "POST", "/api/assets", ts.admin, map[string]any{"name": "PC-1", "serial_number": "SN-1"}, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"duplicate serial", "POST", "/api/assets", map[string]any{"name": "PC-2", "serial_number": "SN-1"}, http.StatusConflict, codeConflict},
		{"missing name", "POST", "/api/assets", map[string]any{"name": " "}, http.StatusBadRequest, codeBadRequest},
		{"unknown asset", "GET", "/api/assets/999", nil, http.StatusNotFound, codeNotFound},
		{"bad id", "GET", "/api/assets/abc", nil, http.StatusBadRequest, codeBadRequest},
		{"unknown campaign", "POST", "/api/inventory/999/generate-scope", nil, http.StatusNotFound, codeNotFound},
		{"create with unknown company", "POST", "/api/assets", map[string]any{"name": "PC-3", "company_id": 999}, http.StatusNotFound, codeNotFound},
		{"update with unknown company", "PUT", "/api/assets/1", map[string]any{"company_id": 999}, http.StatusNotFound, codeNotFound},
		{"campaign with unknown company", "POST", "/api/inventory", map[string]any{"name": "C", "company_id": 999}, http.StatusNotFound, codeNotFound},
		{"clear manufacture date with blank", "PUT", "/api/assets/1", map[string]any{"manufacture_date": ""}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e errorResponse
			if got := ts.do(t, tt.method, tt.path, ts.admin, tt.body, &e); got != tt.status {
				t.Errorf("expected %d, got %d", tt.status, got)
			}
			if e.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, e.Code)
			}
		})
	}
}

func TestCampaignFlow(t *testing.T) {
	ts := setupTestServer(t)

	var company model.Company
	ts.do(t, "POST", "/api/companies", ts.admin, map[string]string{"name": "Acme"}, &company)

	var ids []int64
	for _, name := range []string{"PC-1", "PC-2", "PC-3"} {
		var a model.Asset
		ts.do(t, "POST", "/api/assets", ts.admin, map[string]any{"name": name, "company_id": company.ID}, &a)
		ids = append(ids, a.ID)
	}
	var other model.Asset
	ts.do(t, "POST", "/api/assets", ts.admin, map[string]any{"name": "Elsewhere"}, &other)

	var campaign campaignSummary
	status := ts.do(t, "POST", "/api/inventory", ts.admin, map[string]any{"name": "Q1", "company_id": company.ID}, &campaign)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if campaign.State != model.CampaignOpen {
		t.Errorf("expected open campaign, got %s", campaign.State)
	}

	base := fmt.Sprintf("/api/inventory/%d", campaign.ID)
	var scope map[string]int
	ts.do(t, "POST", base+"/generate-scope", ts.admin, nil, &scope)
	if scope["items"] != 3 {
		t.Fatalf("expected 3 items, got %d", scope["items"])
	}

	status = ts.do(t, "POST", fmt.Sprintf("/api/assets/%d/mark-inventory-found", ids[0]), ts.admin, map[string]int64{"campaign_id": campaign.ID}, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	ts.do(t, "POST", fmt.Sprintf("/api/assets/%d/mark-inventory-found", other.ID), ts.admin, map[string]int64{"campaign_id": campaign.ID}, nil)

	var detail campaignDetail
	ts.do(t, "GET", base, ts.admin, nil, &detail)
	if detail.Progress.Total != 4 || detail.Progress.Found != 2 {
		t.Errorf("expected 2/4 found, got %d/%d", detail.Progress.Found, detail.Progress.Total)
	}

	var item model.InventoryItem
	for _, it := range detail.Items {
		if !it.Found {
			item = it
			break
		}
	}
	status = ts.do(t, "POST", fmt.Sprintf("%s/items/%d/found", base, item.ID), ts.admin, nil, &item)
	if status != http.StatusOK || !item.Found {
		t.Errorf("expected item found, got %d %+v", status, item)
	}

	var active []campaignSummary
	ts.do(t, "GET", "/api/inventory/active", ts.admin, nil, &active)
	if len(active) != 1 {
		t.Fatalf("expected 1 active campaign, got %d", len(active))
	}

	ts.do(t, "POST", base+"/finish", ts.admin, nil, &campaign)
	if campaign.State != model.CampaignClosed {
		t.Errorf("expected closed campaign, got %s", campaign.State)
	}
	if status := ts.do(t, "POST", base+"/generate-scope", ts.admin, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for finished campaign scope, got %d", status)
	}

	req, _ := http.NewRequest("GET", ts.URL+base+"/export", nil)
	req.Header.Set("Authorization", "Bearer "+ts.admin)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != xlsx.ContentType {
		t.Errorf("unexpected export response %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestTrafficLightReport(t *testing.T) {
	ts := setupTestServer(t)

	for _, a := range []map[string]any{
		{"name": "Old", "equipment_kind": "desktop", "manufacture_date": "2001-01-01"},
		{"name": "Unknown", "equipment_kind": "laptop"},
		{"name": "Screen", "equipment_kind": "monitor", "manufacture_date": "2001-01-01"},
	} {
		ts.do(t, "POST", "/api/assets", ts.admin, a, nil)
	}

	var report trafficLightReport
	if status := ts.do(t, "GET", "/api/reports/traffic-light", ts.admin, nil, &report); status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if report.Threshold != 5 {
		t.Errorf("expected default threshold 5, got %d", report.Threshold)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 computing rows, got %d", len(report.Rows))
	}
	if report.Rows[0].Name != "Old" || report.Rows[0].Tier != "stale" {
		t.Errorf("expected stale Old first, got %+v", report.Rows[0])
	}
	if report.Rows[1].Tier != "unknown" || report.Rows[1].AgeYears != nil {
		t.Errorf("expected unknown tier without age, got %+v", report.Rows[1])
	}

	if status := ts.do(t, "GET", "/api/reports/traffic-light?threshold_years=99", ts.admin, nil, nil); status != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range threshold, got %d", status)
	}

	ts.do(t, "PUT", "/api/reports/traffic-light/threshold", ts.admin, map[string]int{"threshold_years": 8}, nil)
	ts.do(t, "GET", "/api/reports/traffic-light", ts.admin, nil, &report)
	if report.Threshold != 8 {
		t.Errorf("expected stored threshold 8, got %d", report.Threshold)
	}
}

func uploadWorkbook(t *testing.T, ts *testServer, rows [][]any) *store.ImportResult {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var book bytes.Buffer
	if err := f.Write(&book); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "assets.xlsx")
	part.Write(book.Bytes())
	mw.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/api/assets/import", &body)
	req.Header.Set("Authorization", "Bearer "+ts.admin)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("import request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		t.Fatalf("import failed: %d %s", resp.StatusCode, msg)
	}

	var res store.ImportResult
	json.NewDecoder(resp.Body).Decode(&res)
	return &res
}

func TestImportAndExport(t *testing.T) {
	ts := setupTestServer(t)
	ts.do(t, "POST", "/api/assets", ts.admin, map[string]any{"name": "Existing", "serial_number": "SN-1"}, nil)

	res := uploadWorkbook(t, ts, [][]any{
		{"Name", "Serial number", "Status", "Location"},
		{"PC-1", "SN-2", "Active", "Room 1"},
		{"PC-2", "SN-1", "Active", "Room 1"},
		{"PC-3", "SN-2", "Active", "Room 2"},
		{"PC-4", "", "Lost", "Room 2"},
	})
	if res.Imported != 1 {
		t.Errorf("expected 1 imported row, got %d", res.Imported)
	}
	if len(res.Skipped) != 3 {
		t.Fatalf("expected 3 skipped rows, got %+v", res.Skipped)
	}

	var locations []string
	ts.do(t, "GET", "/api/assets/locations", ts.admin, nil, &locations)
	if len(locations) != 1 || locations[0] != "Room 1" {
		t.Errorf("unexpected locations %v", locations)
	}

	req, _ := http.NewRequest("GET", ts.URL+"/api/assets/export?location=Room+1", nil)
	req.Header.Set("Authorization", "Bearer "+ts.admin)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer resp.Body.Close()
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "equipment.xlsx") {
		t.Errorf("unexpected disposition %q", resp.Header.Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Equipment")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 || rows[1][1] != "PC-1" {
		t.Errorf("expected header and PC-1, got %v", rows)
	}
}

func TestDashboardAndJournal(t *testing.T) {
	ts := setupTestServer(t)

	var a model.Asset
	ts.do(t, "POST", "/api/assets", ts.admin, map[string]any{"name": "PC-1"}, &a)
	ts.do(t, "POST", "/api/assets", ts.admin, map[string]any{"name": "PC-2", "status": "retired"}, nil)
	ts.do(t, "POST", fmt.Sprintf("/api/assets/%d/events", a.ID), ts.admin, map[string]string{"event_type": "moved", "description": "to storage"}, nil)

	var stats store.DashboardStats
	ts.do(t, "GET", "/api/dashboard", ts.admin, nil, &stats)
	if stats.TotalAssets != 2 || stats.RetiredAssets != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	var events []model.AssetEvent
	ts.do(t, "GET", "/api/events", ts.admin, nil, &events)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].EventType != model.EventMoved || events[0].AssetName != "PC-1" {
		t.Errorf("expected newest moved event first, got %+v", events[0])
	}
}

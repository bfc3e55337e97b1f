package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"assetdesk/internal/auth"
	"assetdesk/internal/db"
	"assetdesk/internal/model"
	"assetdesk/internal/store"
	"assetdesk/internal/workflow"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB, string) {
	t.Helper()
	database := db.NewTestDB(t)
	engine := &workflow.Engine{DB: database, Chain: workflow.DefaultChain()}
	router := NewRouter(database, testJWTSecret, engine, nil)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), "Admin", model.RoleAdmin)

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password1"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, database, token
}

func tokenFor(t *testing.T, database *sql.DB, username, role string) string {
	t.Helper()
	user, err := store.CreateUser(context.Background(), database, username, "x", username, role)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := auth.GenerateToken(testJWTSecret, user.ID, user.Username, user.Name, user.Role)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func createAsset(t *testing.T, server *httptest.Server, token string) model.Asset {
	t.Helper()
	req, _ := authRequest("POST", server.URL+"/api/assets", token, map[string]string{
		"name":              "Dell Laptop",
		"asset_type":        model.AssetTypePhysical,
		"category":          "Lab Equipment",
		"registration_date": "2024-01-15",
	})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var asset model.Asset
	json.NewDecoder(resp.Body).Decode(&asset)
	return asset
}

func TestLoginEndpoint(t *testing.T) {
	server, _, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/assets")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout failed: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The revoked token must no longer authenticate.
	req, _ = authRequest("GET", server.URL+"/api/assets", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAssetLabelScanFlow(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	facultyToken := tokenFor(t, database, "faculty1", model.RoleFaculty)

	asset := createAsset(t, server, adminToken)

	// Fetch the printable label.
	req, _ := authRequest("GET", server.URL+"/api/assets/"+asset.ID+"/qr", facultyToken, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get qr: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for qr, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %s", ct)
	}
	label, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	// Scan it back through the decode endpoint.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("image", "label.png")
	part.Write(label)
	mw.Close()

	scanReq, _ := http.NewRequest("POST", server.URL+"/api/scan/decode", &buf)
	scanReq.Header.Set("Authorization", "Bearer "+facultyToken)
	scanReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err = http.DefaultClient.Do(scanReq)
	if err != nil {
		t.Fatalf("scan decode: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for scan, got %d", resp.StatusCode)
	}

	var scan scanResponse
	json.NewDecoder(resp.Body).Decode(&scan)
	if scan.Summary == nil || scan.Summary.AssetID != asset.ID {
		t.Errorf("decoded summary does not match asset: %+v", scan.Summary)
	}
	if scan.Scan == nil || scan.Scan.AssetID != asset.ID {
		t.Errorf("scan event does not reference asset: %+v", scan.Scan)
	}
	for _, action := range scan.Actions {
		if action == workflow.ActionStartAudit {
			t.Error("faculty scan must not offer the audit action")
		}
	}
}

func TestScanViewActionAttachesOnce(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	facultyToken := tokenFor(t, database, "faculty1", model.RoleFaculty)

	asset := createAsset(t, server, adminToken)

	req, _ := authRequest("POST", server.URL+"/api/scans", facultyToken, map[string]string{
		"asset_id": asset.ID,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for scan, got %d", resp.StatusCode)
	}
	var scan scanResponse
	json.NewDecoder(resp.Body).Decode(&scan)
	resp.Body.Close()

	viewURL := server.URL + "/api/scans/" + scan.Scan.ID + "/view"

	req, _ = authRequest("POST", viewURL, facultyToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for first view, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("POST", viewURL, facultyToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for second action, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHandoverDecisionFlow(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	facultyToken := tokenFor(t, database, "faculty1", model.RoleFaculty)
	hodToken := tokenFor(t, database, "hod1", model.RoleHOD)
	principalToken := tokenFor(t, database, "principal1", model.RolePrincipal)

	asset := createAsset(t, server, adminToken)

	req, _ := authRequest("POST", server.URL+"/api/handovers", facultyToken, map[string]string{
		"asset_id":                  asset.ID,
		"person_name":               "Priya Nair",
		"department":                "Computer Science",
		"purpose":                   "Semester project",
		"condition_before_handover": "Good",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 for handover, got %d", resp.StatusCode)
	}
	var created model.HandoverRequest
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if created.Stage != 1 || created.Status != model.HandoverStatusPending {
		t.Fatalf("expected stage 1 pending, got stage %d %s", created.Stage, created.Status)
	}

	decisionURL := server.URL + "/api/handovers/" + created.ID + "/decision"

	// The principal is not the stage 1 reviewer.
	req, _ = authRequest("POST", decisionURL, principalToken, map[string]string{"decision": "approve"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for wrong reviewer, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// The HOD is.
	req, _ = authRequest("POST", decisionURL, hodToken, map[string]string{"decision": "approve"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for hod approval, got %d", resp.StatusCode)
	}
	var advanced model.HandoverRequest
	json.NewDecoder(resp.Body).Decode(&advanced)
	resp.Body.Close()
	if advanced.Stage != 2 || advanced.Status != model.HandoverStatusPending {
		t.Errorf("expected stage 2 pending, got stage %d %s", advanced.Stage, advanced.Status)
	}

	// The decision is in the review history.
	req, _ = authRequest("GET", server.URL+"/api/handovers/"+created.ID+"/reviews", facultyToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	var reviews []model.HandoverReview
	json.NewDecoder(resp.Body).Decode(&reviews)
	resp.Body.Close()
	if len(reviews) != 1 || reviews[0].Decision != workflow.DecisionApprove {
		t.Errorf("expected one approve review, got %+v", reviews)
	}
}

func TestHandoverValidationRejected(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	facultyToken := tokenFor(t, database, "faculty1", model.RoleFaculty)

	asset := createAsset(t, server, adminToken)

	req, _ := authRequest("POST", server.URL+"/api/handovers", facultyToken, map[string]string{
		"asset_id":                  asset.ID,
		"person_name":               "Priya Nair",
		"department":                "Computer Science",
		"condition_before_handover": "Good",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing purpose, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAuditEndpointRoleGated(t *testing.T) {
	server, database, adminToken := setupTestServer(t)
	facultyToken := tokenFor(t, database, "faculty1", model.RoleFaculty)
	auditorToken := tokenFor(t, database, "auditor1", model.RoleAuditor)

	asset := createAsset(t, server, adminToken)

	payload := map[string]string{
		"asset_id":           asset.ID,
		"auditor_name":       "R. Deshmukh",
		"audit_date":         "2024-03-10",
		"audit_type":         model.AuditTypeRoutine,
		"physical_condition": "Good",
		"functional_status":  "Working",
		"location":           "Lab 2",
	}

	req, _ := authRequest("POST", server.URL+"/api/audits", facultyToken, payload)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for faculty audit, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("POST", server.URL+"/api/audits", auditorToken, payload)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201 for auditor audit, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	server, database, _ := setupTestServer(t)
	facultyToken := tokenFor(t, database, "faculty1", model.RoleFaculty)

	// Faculty cannot register assets.
	req, _ := authRequest("POST", server.URL+"/api/assets", facultyToken, map[string]string{
		"name": "Test",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for faculty creating asset, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Faculty cannot access user management.
	req, _ = authRequest("GET", server.URL+"/api/users", facultyToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for faculty accessing users, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

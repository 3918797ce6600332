package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	logger = zap.NewNop().Sugar()
	jwtSecret = []byte("test-secret")
	tmp := t.TempDir()
	_ = os.Setenv("UPLOAD_BASE", tmp)
	initDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func loginAs(t *testing.T, r http.Handler, username, password string) (string, uint) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp := performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(body), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("login %s failed status=%d body=%s", username, resp.Code, resp.Body.String())
	}
	var out struct {
		Token  string `json:"token"`
		UserID uint   `json:"user_id"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	if out.Token == "" {
		t.Fatalf("empty token in login response: %s", resp.Body.String())
	}
	return out.Token, out.UserID
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Login as the seeded administrator (initial password is the phone's last 4 digits)
	adminToken, _ := loginAs(t, r, "admin@example.com", "1234")

	// 2. Admin creates a regular user
	userBody, _ := json.Marshal(map[string]string{"name": "Kim", "email": "kim@example.com", "phone": "010-1234-5678"})
	resp := performRequest(r, http.MethodPost, "/admin/users", bytes.NewBuffer(userBody), adminToken, "application/json")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("create user failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 3. Login as the new user
	userToken, userID := loginAs(t, r, "kim@example.com", "5678")

	// 4. Save a note (upsert: first save inserts)
	noteURL := fmt.Sprintf("/users/%d/notes/2025/3/14", userID)
	noteBody, _ := json.Marshal(map[string]string{"text": "watched the open", "profit_amount": "100", "return_rate": "1.2"})
	resp = performRequest(r, http.MethodPut, noteURL, bytes.NewBuffer(noteBody), userToken, "application/json")
	if resp.Code != 200 {
		t.Fatalf("save note failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 5. Save again with a different amount; the second write must win
	noteBody, _ = json.Marshal(map[string]string{"text": "watched the open", "profit_amount": "-40"})
	resp = performRequest(r, http.MethodPut, noteURL, bytes.NewBuffer(noteBody), userToken, "application/json")
	if resp.Code != 200 {
		t.Fatalf("second save failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, noteURL, nil, userToken, "")
	if resp.Code != 200 {
		t.Fatalf("get note failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var note map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &note)
	if note["profit_amount"] != "-40" {
		t.Fatalf("expected second write to win, got %v", note["profit_amount"])
	}

	// 6. Writing to someone else's journal is rejected before storage
	adminAttempt := performRequest(r, http.MethodPut, noteURL, bytes.NewBuffer(noteBody), adminToken, "application/json")
	if adminAttempt.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner write, got %d", adminAttempt.Code)
	}

	// 7. Reading someone else's journal is allowed
	resp = performRequest(r, http.MethodGet, noteURL, nil, adminToken, "")
	if resp.Code != 200 {
		t.Fatalf("cross-user read failed status=%d", resp.Code)
	}

	// 8. Image upload against an unsaved day fails with 412
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, _ := mw.CreateFormFile("file", "chart.png")
	_, _ = w.Write([]byte("not really a png"))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, fmt.Sprintf("/users/%d/notes/2025/3/15/images", userID), buf, userToken, mw.FormDataContentType())
	if resp.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected 412 for image on unsaved note, got %d body=%s", resp.Code, resp.Body.String())
	}

	// 9. Image upload against the saved day succeeds
	buf = &bytes.Buffer{}
	mw = multipart.NewWriter(buf)
	w, _ = mw.CreateFormFile("file", "chart.png")
	_, _ = w.Write([]byte("not really a png"))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, noteURL+"/images", buf, userToken, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("image upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 10. Month summary reflects the saved note
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/users/%d/notes/2025/3", userID), nil, userToken, "")
	if resp.Code != 200 {
		t.Fatalf("month summary failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var summary struct {
		Days   []map[string]any `json:"days"`
		Totals map[string]any   `json:"totals"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &summary)
	if len(summary.Days) != 31 {
		t.Fatalf("expected 31 day slots for March, got %d", len(summary.Days))
	}
	if summary.Totals == nil {
		t.Fatal("expected totals block for a month with profit data")
	}

	// 11. Shared resource library
	buf = &bytes.Buffer{}
	mw = multipart.NewWriter(buf)
	_ = mw.WriteField("name", "Weekly market review")
	w, _ = mw.CreateFormFile("file", "review.pdf")
	_, _ = w.Write([]byte("%PDF-1.4 fake"))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/resources", buf, userToken, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("resource upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var created map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &created)
	resID := int(created["id"].(float64))

	resp = performRequest(r, http.MethodGet, "/resources", nil, adminToken, "")
	if resp.Code != 200 {
		t.Fatalf("resource list failed status=%d", resp.Code)
	}

	// only the uploader can delete
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/resources/%d", resID), nil, adminToken, "")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-uploader delete, got %d", resp.Code)
	}
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/resources/%d", resID), nil, userToken, "")
	if resp.Code != 200 {
		t.Fatalf("uploader delete failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 12. Unauthorized access to protected endpoints should be 401
	unauth := performRequest(r, http.MethodGet, "/users", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", unauth.Code)
	}

	// 13. Regular users cannot reach admin endpoints
	resp = performRequest(r, http.MethodPost, "/admin/users", bytes.NewBuffer(userBody), userToken, "application/json")
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", resp.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	logger = zap.NewNop().Sugar()
	initDB()
}

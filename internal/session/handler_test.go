package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yazelin/jaba-ai/internal/backend"
	"github.com/yazelin/jaba-ai/internal/menu"
)

func setupTestRouter(t *testing.T, fb *fakeBackend, stores []backend.Store) (*gin.Engine, *Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager := NewManager(ManagerConfig{
		Backend:        fb,
		Directory:      testDirectory(t, stores),
		APIPrefix:      "/api/admin",
		CanCreateStore: true,
	})
	handler := NewHandler(manager)

	r := gin.New()
	sessions := r.Group("/api/admin/menu-sessions")
	{
		sessions.POST("", handler.Open)
		sessions.GET("/:id", handler.Get)
		sessions.DELETE("/:id", handler.Close)
		sessions.POST("/:id/image", handler.UploadImage)
		sessions.DELETE("/:id/image", handler.ClearImage)
		sessions.POST("/:id/target", handler.SelectTarget)
		sessions.POST("/:id/recognize", handler.Recognize)
		sessions.POST("/:id/save", handler.Save)
		sessions.POST("/:id/back", handler.BackToUpload)
	}
	r.GET("/api/admin/stores", handler.ListStores)
	r.GET("/api/admin/stores/:id/menu", handler.EditExisting)

	return r, manager
}

type sessionResponse struct {
	Session *ViewModel `json:"session"`
	Notices []Notice   `json:"notices"`
	Error   string     `json:"error"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, *sessionResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed sessionResponse
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("invalid response body %q: %v", w.Body.String(), err)
		}
	}
	return w, &parsed
}

func openSession(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/api/admin/menu-sessions", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Session == nil || resp.Session.ID == "" {
		t.Fatalf("missing session in response: %s", w.Body.String())
	}
	return resp.Session.ID
}

func uploadImage(t *testing.T, r *gin.Engine, id string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "menu.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(testImage(t)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/menu-sessions/"+id+"/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --------------------------------------------------

func TestHandler_FullUploadToSaveFlow(t *testing.T) {
	fb := &fakeBackend{
		recognizeResp: &backend.RecognizeResponse{
			Categories: []menu.Category{{Name: "Drinks", Items: []menu.Item{{Name: "Tea", Price: 30}}}},
		},
	}
	r, manager := setupTestRouter(t, fb, []backend.Store{{ID: "s1", Name: "Cafe A"}})

	id := openSession(t, r)

	if w := uploadImage(t, r, id); w.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w, _ := doJSON(t, r, http.MethodPost, "/api/admin/menu-sessions/"+id+"/target",
		gin.H{"store_id": "s1"})
	if w.Code != http.StatusOK {
		t.Fatalf("target: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w, resp := doJSON(t, r, http.MethodPost, "/api/admin/menu-sessions/"+id+"/recognize", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("recognize: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Session.Phase != PhaseResult || resp.Session.Result == nil {
		t.Fatalf("expected result phase, got %s", w.Body.String())
	}

	w, _ = doJSON(t, r, http.MethodPost, "/api/admin/menu-sessions/"+id+"/save", SaveInput{
		Categories: []menu.Category{{Name: "Drinks", Items: []menu.Item{{Name: "Tea", Price: 30}}}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if fb.replaceStore != "s1" {
		t.Fatalf("expected menu write against s1, got %q", fb.replaceStore)
	}

	// The session is gone once saved.
	if _, _, ok := manager.Get(id); ok {
		t.Fatal("session must be discarded after save")
	}
	if w, _ := doJSON(t, r, http.MethodGet, "/api/admin/menu-sessions/"+id, nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for saved session, got %d", w.Code)
	}
}

func TestHandler_UnknownSessionReturns404(t *testing.T) {
	r, _ := setupTestRouter(t, &fakeBackend{}, nil)

	w, resp := doJSON(t, r, http.MethodGet, "/api/admin/menu-sessions/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if resp.Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestHandler_TargetRejectsBothChoices(t *testing.T) {
	r, _ := setupTestRouter(t, &fakeBackend{}, []backend.Store{{ID: "s1", Name: "Cafe A"}})
	id := openSession(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/admin/menu-sessions/"+id+"/target",
		gin.H{"store_id": "s1", "new_store_name": "Cafe B"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandler_RecognizeWithoutImageReturns400(t *testing.T) {
	r, _ := setupTestRouter(t, &fakeBackend{}, []backend.Store{{ID: "s1", Name: "Cafe A"}})
	id := openSession(t, r)

	w, resp := doJSON(t, r, http.MethodPost, "/api/admin/menu-sessions/"+id+"/recognize", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if len(resp.Notices) == 0 {
		t.Fatal("validation failure must carry a notice")
	}
}

func TestHandler_BackendErrorReturns502WithNotice(t *testing.T) {
	fb := &fakeBackend{recognizeResp: &backend.RecognizeResponse{Error: "timeout"}}
	r, _ := setupTestRouter(t, fb, []backend.Store{{ID: "s1", Name: "Cafe A"}})
	id := openSession(t, r)

	uploadImage(t, r, id)
	doJSON(t, r, http.MethodPost, "/api/admin/menu-sessions/"+id+"/target", gin.H{"store_id": "s1"})

	w, resp := doJSON(t, r, http.MethodPost, "/api/admin/menu-sessions/"+id+"/recognize", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
	found := false
	for _, n := range resp.Notices {
		if strings.Contains(n.Message, "recognition failed: timeout") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected failure notice, got %+v", resp.Notices)
	}

	// Retry is possible: the session is back in the upload phase.
	w, getResp := doJSON(t, r, http.MethodGet, "/api/admin/menu-sessions/"+id, nil)
	if w.Code != http.StatusOK || getResp.Session.Phase != PhaseUpload {
		t.Fatalf("expected upload phase after failure, got %s", w.Body.String())
	}
	if getResp.Session.SelectedImage == "" {
		t.Fatal("image must survive a failed recognition")
	}
}

func TestHandler_ClearImage(t *testing.T) {
	r, _ := setupTestRouter(t, &fakeBackend{}, nil)
	id := openSession(t, r)
	uploadImage(t, r, id)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/menu-sessions/"+id+"/image", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	_, resp := doJSON(t, r, http.MethodGet, "/api/admin/menu-sessions/"+id, nil)
	if resp.Session.SelectedImage != "" {
		t.Fatal("image must be cleared")
	}
}

func TestHandler_CloseRemovesSession(t *testing.T) {
	r, manager := setupTestRouter(t, &fakeBackend{}, nil)
	id := openSession(t, r)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/menu-sessions/"+id, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if _, _, ok := manager.Get(id); ok {
		t.Fatal("session must be removed")
	}
}

func TestHandler_OpenWithGroupCode(t *testing.T) {
	r, _ := setupTestRouter(t, &fakeBackend{}, nil)

	w, resp := doJSON(t, r, http.MethodPost, "/api/admin/menu-sessions", gin.H{"group_code": "g42"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if resp.Session.GroupCode != "g42" {
		t.Fatalf("expected group code g42, got %q", resp.Session.GroupCode)
	}
}

func TestHandler_ListStores(t *testing.T) {
	r, _ := setupTestRouter(t, &fakeBackend{}, []backend.Store{
		{ID: "s1", Name: "Cafe A"},
		{ID: "s2", Name: "Cafe B"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stores", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var parsed struct {
		Stores []backend.Store `json:"stores"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatal(err)
	}
	if len(parsed.Stores) != 2 {
		t.Fatalf("expected 2 stores, got %+v", parsed.Stores)
	}
}

func TestHandler_EditExistingOpensResultSession(t *testing.T) {
	fb := &fakeBackend{fetchMenu: menuWith(menu.Item{Name: "Tea", Price: 30})}
	r, manager := setupTestRouter(t, fb, []backend.Store{{ID: "s1", Name: "Cafe A"}})

	w, resp := doJSON(t, r, http.MethodGet, "/api/admin/stores/s1/menu", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Session.Phase != PhaseResult || resp.Session.Result == nil || resp.Session.Result.DiffMode {
		t.Fatalf("expected normal-mode result session, got %s", w.Body.String())
	}
	if _, _, ok := manager.Get(resp.Session.ID); !ok {
		t.Fatal("session must stay registered for editing")
	}
}

func TestHandler_EditExistingFetchFailureDiscardsSession(t *testing.T) {
	fb := &fakeBackend{fetchErr: errors.New("store not found")}
	r, manager := setupTestRouter(t, fb, []backend.Store{{ID: "s1", Name: "Cafe A"}})

	w, resp := doJSON(t, r, http.MethodGet, "/api/admin/stores/s1/menu", nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	if resp.Session != nil {
		if _, _, ok := manager.Get(resp.Session.ID); ok {
			t.Fatal("failed session must not stay registered")
		}
	}
}

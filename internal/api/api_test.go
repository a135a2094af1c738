package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zapstore-app/zapstore/internal/models"
	"github.com/zapstore-app/zapstore/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.InMemoryStore) {
	t.Helper()
	st := store.NewInMemoryStore()
	return &Server{st: st}, st
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return resp
}

func TestHealthHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	w := httptest.NewRecorder()
	srv.healthHandler(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Status != string(models.APIStatusOK) {
		t.Errorf("status field = %q, want ok", resp.Status)
	}
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	srv, _ := newTestServer(t)
	w := httptest.NewRecorder()
	srv.healthHandler(w, httptest.NewRequest("POST", "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestSessionsHandlerListsSessions(t *testing.T) {
	srv, st := newTestServer(t)
	if _, err := st.UpsertSession("5511999990000", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	srv.sessionsHandler(w, httptest.NewRequest("GET", "/sessions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeResponse(t, w)
	sessions, ok := resp.Result.([]interface{})
	if !ok || len(sessions) != 1 {
		t.Errorf("result = %v, want one session", resp.Result)
	}
}

func TestSessionDeleteHandler(t *testing.T) {
	srv, st := newTestServer(t)
	if _, err := st.UpsertSession("5511999990000", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	srv.sessionDeleteHandler(w, httptest.NewRequest("DELETE", "/sessions/5511999990000", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if sess, _ := st.GetSession("5511999990000"); sess != nil {
		t.Errorf("session survived deletion: %+v", sess)
	}
}

func TestSessionDeleteHandlerNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	w := httptest.NewRecorder()
	srv.sessionDeleteHandler(w, httptest.NewRequest("DELETE", "/sessions/000", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSessionDeleteHandlerRejectsBadPaths(t *testing.T) {
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.sessionDeleteHandler(w, httptest.NewRequest("DELETE", "/sessions/", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty id: status = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	srv.sessionDeleteHandler(w, httptest.NewRequest("GET", "/sessions/123", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method: status = %d, want 405", w.Code)
	}
}

func TestBuildStoreDefaultsToInMemory(t *testing.T) {
	st, err := buildStore(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer st.Close()
	if _, ok := st.(*store.InMemoryStore); !ok {
		t.Errorf("store without DSN is %T, want *store.InMemoryStore", st)
	}
}

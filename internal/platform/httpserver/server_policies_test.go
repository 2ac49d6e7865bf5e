package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func postPolicyJSON(t *testing.T, server *Server, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func TestCreatePolicyReturnsCreated(t *testing.T) {
	server := newTestServer()

	rr := postPolicyJSON(t, server, "/api/policies/v1/policies",
		`{"policy_id":"allow-read","name":"Allow read","content":"permit(principal, action, resource);"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		PolicyID       string `json:"policy_id"`
		CurrentVersion int    `json:"current_version"`
		Status         string `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PolicyID != "allow-read" || resp.CurrentVersion != 1 || resp.Status != "active" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreatePolicyDuplicateConflicts(t *testing.T) {
	server := newTestServer()
	body := `{"policy_id":"allow-read","name":"Allow read","content":"permit(principal, action, resource);"}`

	if rr := postPolicyJSON(t, server, "/api/policies/v1/policies", body); rr.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", rr.Code)
	}
	if rr := postPolicyJSON(t, server, "/api/policies/v1/policies", body); rr.Code != http.StatusConflict {
		t.Fatalf("second create: expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreatePolicyRejectsMalformedContent(t *testing.T) {
	server := newTestServer()

	rr := postPolicyJSON(t, server, "/api/policies/v1/policies",
		`{"policy_id":"broken","name":"Broken","content":"permit(principal"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGetPolicyNotFound(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/policies/v1/policies/missing", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestListPoliciesRejectsBadLimit(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/policies/v1/policies?limit=abc", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

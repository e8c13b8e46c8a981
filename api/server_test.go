package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stanimation3d/bessambly/api"
)

func TestServer_HealthCheck(t *testing.T) {
	srv := api.NewServer(0)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestServer_SubmitJob_SucceedsForValidSource(t *testing.T) {
	srv := api.NewServer(0)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body, _ := json.Marshal(api.CompileRequest{Source: "A = 10\n"})
	resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var job api.Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if job.Status != api.StatusSucceeded {
		t.Fatalf("expected job to succeed, got status=%v diagnostics=%+v", job.Status, job.Diagnostics)
	}
	if len(job.Words) == 0 {
		t.Fatal("expected non-empty encoded words")
	}
}

func TestServer_SubmitJob_FailsForSyntaxError(t *testing.T) {
	srv := api.NewServer(0)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body, _ := json.Marshal(api.CompileRequest{Source: "10 = A\n"})
	resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var job api.Job
	json.NewDecoder(resp.Body).Decode(&job)
	if job.Status != api.StatusFailed {
		t.Fatalf("expected job to fail for an invalid destination, got %v", job.Status)
	}
	if len(job.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}

func TestServer_GetJob_NotFound(t *testing.T) {
	srv := api.NewServer(0)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/jobs/does-not-exist")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestServer_SubmitJob_RejectsEmptySource(t *testing.T) {
	srv := api.NewServer(0)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body, _ := json.Marshal(api.CompileRequest{Source: "   "})
	resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

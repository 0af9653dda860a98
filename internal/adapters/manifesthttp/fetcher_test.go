package manifesthttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testFetcher() *Fetcher {
	return NewFetcher(5 * time.Second)
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const validManifest = `{
	"version": 1,
	"services": [
		{"key": "payments", "name": "Payments API", "endpoint": "https://payments.internal", "poll_interval_seconds": 30},
		{"key": "billing", "name": "Billing", "dependencies": ["payments"]}
	]
}`

func TestFetcher_ValidManifest(t *testing.T) {
	srv := serve(t, http.StatusOK, validManifest)

	manifest, result, err := testFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, got %+v", result)
	}
	if result.ServiceCount != 2 {
		t.Errorf("expected 2 services, got %d", result.ServiceCount)
	}
	if len(manifest.Services) != 2 || manifest.Services[0].Key != "payments" {
		t.Errorf("unexpected manifest %+v", manifest)
	}
	if manifest.Services[0].PollIntervalSeconds != 30 {
		t.Errorf("poll interval not decoded: %+v", manifest.Services[0])
	}
	if len(manifest.Services[1].Dependencies) != 1 {
		t.Errorf("dependencies not decoded: %+v", manifest.Services[1])
	}
}

func TestFetcher_Non2xxIsFetchFailure(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, "boom")

	_, _, err := testFetcher().Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestFetcher_NetworkErrorIsFetchFailure(t *testing.T) {
	srv := serve(t, http.StatusOK, validManifest)
	url := srv.URL
	srv.Close()

	_, _, err := testFetcher().Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestFetcher_InvalidJSON(t *testing.T) {
	srv := serve(t, http.StatusOK, "{not json")

	manifest, result, err := testFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch itself should not fail: %v", err)
	}
	if manifest != nil || result.Valid {
		t.Errorf("expected invalid result, got %+v", result)
	}
	if len(result.Errors) == 0 {
		t.Error("expected at least one error")
	}
}

func TestFetcher_SchemaViolations(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"version": 1,
		"services": [
			{"key": "Payments!", "name": "Payments"},
			{"key": "billing"}
		]
	}`)

	manifest, result, err := testFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if manifest != nil || result.Valid {
		t.Fatalf("expected invalid result, got %+v", result)
	}
	if len(result.Errors) < 2 {
		t.Fatalf("expected issues for bad key and missing name, got %+v", result.Errors)
	}
	for _, issue := range result.Errors {
		if !strings.HasPrefix(issue.Path, "/services/") {
			t.Errorf("expected issue path under /services, got %q", issue.Path)
		}
	}
}

func TestFetcher_UnknownFieldWarning(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"version": 1,
		"services": [
			{"key": "payments", "name": "Payments", "owner": "platform"}
		]
	}`)

	_, result, err := testFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("unknown fields must not invalidate: %+v", result)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %+v", result.Warnings)
	}
	if result.Warnings[0].Path != "/services/0/owner" {
		t.Errorf("unexpected warning path %q", result.Warnings[0].Path)
	}
}

func TestFetcher_FileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte(validManifest), 0644); err != nil {
		t.Fatal(err)
	}

	manifest, result, err := testFetcher().Fetch(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !result.Valid || len(manifest.Services) != 2 {
		t.Errorf("unexpected result %+v %+v", result, manifest)
	}

	if _, _, err := testFetcher().Fetch(context.Background(), "file://"+filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cobmap/cobmap/pkg/cache"
	"github.com/cobmap/cobmap/pkg/export"
	"github.com/cobmap/cobmap/pkg/pipeline"
)

const serveTestSource = `       IDENTIFICATION DIVISION.
       PROGRAM-ID. MAIN.
       PROCEDURE DIVISION.
       MAIN-LOGIC.
           CALL "HELPER".
           STOP RUN.
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.cob")
	if err := os.WriteFile(path, []byte(serveTestSource), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	srv := &graphServer{
		cli:    c,
		runner: pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger),
		paths:  []string{dir},
	}

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestServeHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServeGraph(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/graph")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var doc export.GraphDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2 (MAIN + phantom HELPER)", len(doc.Nodes))
	}
}

func TestServeProgramDetail(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/programs/MAIN")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var detail programDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.ID != "MAIN" {
		t.Errorf("id = %q, want MAIN", detail.ID)
	}
	if len(detail.Callees) != 1 || detail.Callees[0] != "HELPER" {
		t.Errorf("callees = %v, want [HELPER]", detail.Callees)
	}
}

func TestServeProgramNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/programs/MISSING")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServeRenderDOT(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/render?format=dot&style=calls-only")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(body), "digraph") {
		t.Errorf("body should be DOT, got %q", string(body[:min(len(body), 40)]))
	}
}

func TestServeRenderBadStyle(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/render?style=nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

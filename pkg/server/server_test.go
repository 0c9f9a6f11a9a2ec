package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/surveyplot/pkg/cache"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
)

const scenarioCSV = `instrument,start_year,area,galaxy_z_lt_2.1,galaxy_z_gt_2.1,star_rvs
Spec-S5,2029,14000,5000000,3000000,7000000
DESI,2021,14000,30000000,0,
Euclid,2023,15000,10000000,2000000,0
`

func newTestServer(t *testing.T, input string) *httptest.Server {
	t.Helper()
	if input == "" {
		input = filepath.Join(t.TempDir(), "surveys.csv")
		if err := os.WriteFile(input, []byte(scenarioCSV), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(c, nil, log.New(io.Discard))
	srv := httptest.NewServer(New(runner, Options{Input: input}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, body
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, "")
	resp, body := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !bytes.Contains(body, []byte(`"ok"`)) {
		t.Errorf("body = %s", body)
	}
	if _, err := uuid.Parse(resp.Header.Get("X-Request-ID")); err != nil {
		t.Errorf("X-Request-ID = %q is not a UUID", resp.Header.Get("X-Request-ID"))
	}
}

func TestSurveys(t *testing.T) {
	srv := newTestServer(t, "")
	resp, body := get(t, srv.URL+"/surveys")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}

	var rows []surveyJSON
	if err := json.Unmarshal(body, &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	want := []float64{8e6, 3e7, 1.2e7}
	for i, row := range rows {
		if row.TotalRedshifts == nil || *row.TotalRedshifts != want[i] {
			t.Errorf("%s total_redshifts = %v, want %g", row.Instrument, row.TotalRedshifts, want[i])
		}
	}
	if rows[1].StarRVs != nil {
		t.Errorf("empty cell should encode as null, got %v", *rows[1].StarRVs)
	}
}

func TestChart(t *testing.T) {
	srv := newTestServer(t, "")

	tests := []struct {
		path        string
		contentType string
		magic       string
	}{
		{"/charts/correlations.pdf", "application/pdf", "%PDF"},
		{"/charts/timeline.svg", "image/svg+xml", "<?xml"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !bytes.HasPrefix(body, []byte(tt.magic)) {
				t.Errorf("body starts with %q", body[:min(len(body), 8)])
			}
			if resp.Header.Get("X-Cache") != "miss" {
				t.Errorf("first request X-Cache = %q", resp.Header.Get("X-Cache"))
			}

			resp, _ = get(t, srv.URL+tt.path)
			if resp.Header.Get("X-Cache") != "hit" {
				t.Errorf("second request X-Cache = %q", resp.Header.Get("X-Cache"))
			}
		})
	}
}

func TestChartErrors(t *testing.T) {
	srv := newTestServer(t, "")
	missing := newTestServer(t, filepath.Join(t.TempDir(), "nope.csv"))

	tests := []struct {
		name string
		url  string
		want int
		code string // empty when chi answers before any handler runs
	}{
		{"unknown family", srv.URL + "/charts/histogram.pdf", http.StatusNotFound, "INVALID_FAMILY"},
		{"unknown format", srv.URL + "/charts/timeline.gif", http.StatusBadRequest, "INVALID_FORMAT"},
		{"blank highlight", srv.URL + "/charts/timeline.pdf?highlight=", http.StatusBadRequest, "INVALID_HIGHLIGHT"},
		{"no format", srv.URL + "/charts/timeline", http.StatusNotFound, ""},
		{"missing input", missing.URL + "/charts/timeline.pdf", http.StatusInternalServerError, "DATA_NOT_FOUND"},
		{"missing input surveys", missing.URL + "/surveys", http.StatusInternalServerError, "DATA_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, tt.url)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.want, body)
			}
			if tt.code == "" {
				return
			}
			var e struct {
				Code  string `json:"code"`
				Error string `json:"error"`
			}
			if err := json.Unmarshal(body, &e); err != nil {
				t.Fatalf("error body %q: %v", body, err)
			}
			if e.Code != tt.code || e.Error == "" {
				t.Errorf("error body = %+v, want code %s", e, tt.code)
			}
		})
	}
}

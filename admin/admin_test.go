package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatuh/surreal-migrate/admin"
	"github.com/aatuh/surreal-migrate/logzap"
	"github.com/aatuh/surreal-migrate/ports/fakeconn"
	"github.com/aatuh/surreal-migrate/runner"
	"github.com/aatuh/surreal-migrate/validation"
)

func newTestService(t *testing.T, dir string) (*admin.Service, *fakeconn.Conn) {
	t.Helper()
	conn := fakeconn.New("root")
	cfg := runner.Config{MigrationsFolder: dir, MigrationsTable: "migrations"}
	r := runner.New(cfg, conn, "root")
	svc := admin.New(r, conn, logzap.NewProduction(), validation.New())
	return svc, conn
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestHealthzReportsHealthy(t *testing.T) {
	dir := t.TempDir()
	svc, _ := newTestService(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReportsHealthy(t *testing.T) {
	dir := t.TempDir()
	svc, _ := newTestService(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusReportsDefinedAndAppliedCounts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")
	svc, _ := newTestService(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		DefinedCount int `json:"defined_count"`
		AppliedCount int `json:"applied_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.DefinedCount)
	assert.Equal(t, 0, body.AppliedCount)
}

func TestMigrationsRejectsInvalidKind(t *testing.T) {
	dir := t.TempDir()
	svc, _ := newTestService(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/migrations?kind=sideways", nil)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMigrationsFiltersByKind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")
	writeFile(t, dir, "20250101_000000_first.down.surql", "REMOVE TABLE a;")
	svc, _ := newTestService(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/migrations?kind=down", nil)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "down", out[0].Kind)
}

func TestVerifyReportsNoProblemsFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "20250101_000000_first.up.surql", "DEFINE TABLE a SCHEMAFULL;")
	svc, conn := newTestService(t, dir)

	cfg := runner.Config{MigrationsFolder: dir, MigrationsTable: "migrations"}
	r := runner.New(cfg, conn, "root")
	_, err := r.Migrate(context.Background())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/verify", nil)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "no_problems_found", body.State)
}

func TestVerifyRejectsInvalidChecksumParam(t *testing.T) {
	dir := t.TempDir()
	svc, _ := newTestService(t, dir)

	req := httptest.NewRequest(http.MethodPost, "/verify?checksum=maybe", nil)
	rec := httptest.NewRecorder()
	svc.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

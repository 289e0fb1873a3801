package admin

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aatuh/surreal-migrate/httpx"
	"github.com/aatuh/surreal-migrate/migration"
	"github.com/aatuh/surreal-migrate/ports"
	"github.com/aatuh/surreal-migrate/runner"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleHealthz(w http.ResponseWriter, r *http.Request) {
	result := s.health.GetLiveness(r.Context())
	status := http.StatusOK
	if result.Status != ports.HealthStatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

func (s *Service) handleReadyz(w http.ResponseWriter, r *http.Request) {
	result := s.health.GetReadiness(r.Context())
	status := http.StatusOK
	if result.Status != ports.HealthStatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

type statusResponse struct {
	DefinedCount     int    `json:"defined_count"`
	AppliedCount     int    `json:"applied_count"`
	LastAppliedKey   string `json:"last_applied_key,omitempty"`
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	defined, err := s.runner.ListDefinedMigrations(nil)
	if err != nil {
		httpx.WriteSimpleProblem(w, http.StatusInternalServerError,
			"scan failed", err.Error())
		return
	}
	applied, err := s.runner.ListAppliedMigrations(r.Context())
	if err != nil {
		httpx.WriteSimpleProblem(w, http.StatusInternalServerError,
			"ledger query failed", err.Error())
		return
	}

	forwardDefined, backwardDefined := 0, 0
	for _, m := range defined {
		if m.Kind.Forward() {
			forwardDefined++
		} else {
			backwardDefined++
		}
	}
	s.gauges.setDefined("forward", forwardDefined)
	s.gauges.setDefined("backward", backwardDefined)
	s.gauges.setApplied(len(applied))

	resp := statusResponse{
		DefinedCount: len(defined),
		AppliedCount: len(applied),
	}
	if len(applied) > 0 {
		last := applied[len(applied)-1]
		resp.LastAppliedKey = last.Key.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

type migrationView struct {
	Key        string `json:"key"`
	Kind       string `json:"kind"`
	Title      string `json:"title,omitempty"`
	ScriptPath string `json:"script_path"`
	Applied    bool   `json:"applied"`
}

type migrationsQuery struct {
	Kind  string `json:"kind" validate:"omitempty,oneof=up down baseline"`
	State string `json:"state" validate:"omitempty,oneof=applied open"`
}

func (s *Service) handleMigrations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := migrationsQuery{Kind: q.Get("kind"), State: q.Get("state")}
	if err := s.validator.ValidateStruct(r.Context(), &query); err != nil {
		httpx.WriteSimpleProblem(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	kind, state := query.Kind, query.State

	var predicate func(migration.Kind) bool
	switch kind {
	case "up":
		predicate = func(k migration.Kind) bool { return k == migration.Up }
	case "down":
		predicate = func(k migration.Kind) bool { return k == migration.Down }
	case "baseline":
		predicate = func(k migration.Kind) bool { return k == migration.Baseline }
	}

	defined, err := s.runner.ListDefinedMigrations(predicate)
	if err != nil {
		httpx.WriteSimpleProblem(w, http.StatusInternalServerError, "scan failed", err.Error())
		return
	}

	appliedKeys := map[string]bool{}
	if state != "" {
		applied, err := s.runner.ListAppliedMigrations(r.Context())
		if err != nil {
			httpx.WriteSimpleProblem(w, http.StatusInternalServerError, "ledger query failed", err.Error())
			return
		}
		for _, e := range applied {
			appliedKeys[e.Key.String()] = true
		}
	}

	out := make([]migrationView, 0, len(defined))
	for _, m := range defined {
		applied := appliedKeys[m.Key.String()]
		if state == "applied" && !applied {
			continue
		}
		if state == "open" && applied {
			continue
		}
		out = append(out, migrationView{
			Key:        m.Key.String(),
			Kind:       m.Kind.String(),
			Title:      m.Title,
			ScriptPath: m.ScriptPath,
			Applied:    applied,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type problemView struct {
	Key        string `json:"key"`
	Kind       string `json:"kind"`
	ScriptPath string `json:"script_path"`
	Problem    string `json:"problem"`
}

type verifyQuery struct {
	Checksum string `json:"checksum" validate:"omitempty,oneof=true false"`
	Order    string `json:"order" validate:"omitempty,oneof=true false"`
}

func (s *Service) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := verifyQuery{Checksum: q.Get("checksum"), Order: q.Get("order")}
	if err := s.validator.ValidateStruct(r.Context(), &query); err != nil {
		httpx.WriteSimpleProblem(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	checksum := boolParam(q, "checksum", true)
	order := boolParam(q, "order", true)

	var checks runner.Checks
	switch {
	case checksum && order:
		checks = runner.AllChecks()
	case checksum:
		checks = runner.OnlyChecks(runner.CheckChecksum)
	case order:
		checks = runner.OnlyChecks(runner.CheckOrder)
	default:
		checks = runner.AllChecks()
	}

	result, err := s.runner.VerifyChecks(r.Context(), checks)
	if err != nil {
		httpx.WriteSimpleProblem(w, http.StatusInternalServerError, "verify failed", err.Error())
		return
	}

	out := make([]problemView, 0, len(result.Problems))
	for _, p := range result.Problems {
		out = append(out, problemView{
			Key:        p.Key.String(),
			Kind:       p.Kind.String(),
			ScriptPath: p.ScriptPath,
			Problem:    p.Problem.String(),
		})
	}
	writeJSON(w, http.StatusOK, struct {
		State    string        `json:"state"`
		Problems []problemView `json:"problems"`
	}{
		State:    verifiedStateName(result.State),
		Problems: out,
	})
}

func boolParam(q map[string][]string, key string, def bool) bool {
	vals, ok := q[key]
	if !ok || len(vals) == 0 || vals[0] == "" {
		return def
	}
	b, err := strconv.ParseBool(vals[0])
	if err != nil {
		return def
	}
	return b
}

func verifiedStateName(state runner.VerifiedState) string {
	switch state {
	case runner.VerifiedNoProblemsFound:
		return "no_problems_found"
	case runner.VerifiedFoundProblems:
		return "found_problems"
	case runner.VerifiedNoMigrationsFound:
		return "no_migrations_found"
	default:
		return "unknown"
	}
}

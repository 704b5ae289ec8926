package telemetry

import (
	"fmt"
	"strings"
	"sync"
)

// Report is a single call recorded by MemoryAPI.
type Report struct {
	Kind   string
	Id     string
	Params []any
}

// MemoryAPI records reports in memory, it is meant for tests that assert on
// what a component reported.
type MemoryAPI struct {
	mu      sync.Mutex
	reports []Report
}

func (m *MemoryAPI) record(kind, id string, params []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, Report{Kind: kind, Id: id, Params: params})
}

func (m *MemoryAPI) ReportBroken(id string, params ...any) {
	m.record("broken", id, params)
}

func (m *MemoryAPI) ReportWarning(id string, params ...any) {
	m.record("warning", id, params)
}

func (m *MemoryAPI) ReportDebug(msg string, params ...any) {
	m.record("debug", msg, params)
}

func (m *MemoryAPI) ReportCount(id string, count int64) {
	m.record("count", id, []any{count})
}

// Reports returns a copy of everything recorded so far.
func (m *MemoryAPI) Reports() []Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Report, len(m.reports))
	copy(out, m.reports)
	return out
}

// Broken returns the ids of every ReportBroken call.
func (m *MemoryAPI) Broken() []string {
	var ids []string
	for _, r := range m.Reports() {
		if r.Kind == "broken" {
			ids = append(ids, r.Id)
		}
	}
	return ids
}

// Contains returns true if any recorded report mentions the given text
// in its id or params.
func (m *MemoryAPI) Contains(text string) bool {
	for _, r := range m.Reports() {
		if strings.Contains(r.Id, text) {
			return true
		}
		for _, p := range r.Params {
			if strings.Contains(fmt.Sprint(p), text) {
				return true
			}
		}
	}
	return false
}

package overview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrWong99/ynab-mcp/internal/observe"
)

// newStore returns a FileStore writing into a temp dir with a fixed clock.
func newStore(t *testing.T) *FileStore {
	t.Helper()
	s := NewFileStore(filepath.Join(t.TempDir(), "financial_overview.json"))
	s.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return s
}

// TestLoadMissingFile verifies that a missing file loads as an empty document
// rather than failing.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("doc = %v, want empty", doc)
	}
	if doc.LastUpdated() != "" {
		t.Errorf("LastUpdated = %q, want empty for never-written document", doc.LastUpdated())
	}
}

// TestSaveStampsLastUpdated verifies the write timestamp.
func TestSaveStampsLastUpdated(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	if err := s.Save(Document{"goals": map[string]any{"target": 5000.0}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := doc.LastUpdated(), "2025-06-15T12:00:00Z"; got != want {
		t.Errorf("LastUpdated = %q, want %q", got, want)
	}
}

// TestUpdateSectionPreservesOthers verifies that a partial update replaces
// exactly the named section.
func TestUpdateSectionPreservesOthers(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	if err := s.Save(Document{"action_items": []any{"review subscriptions"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.UpdateSection("goals", map[string]any{"target": 5000.0}); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := doc["action_items"]; !ok {
		t.Error("action_items section was dropped by unrelated update")
	}
	goals, ok := doc["goals"].(map[string]any)
	if !ok || goals["target"] != 5000.0 {
		t.Errorf("goals = %v, want {target: 5000}", doc["goals"])
	}
}

// TestLoadMalformedFile verifies that corrupt persisted content surfaces as a
// *StoreError instead of an empty document.
func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "financial_overview.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)

	_, err := s.Load()
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("error = %v, want *StoreError", err)
	}
	if storeErr.Op != "load" {
		t.Errorf("Op = %q, want load", storeErr.Op)
	}
}

// TestConcurrentSectionUpdates verifies that parallel writers targeting
// different sections cannot drop each other's sections.
func TestConcurrentSectionUpdates(t *testing.T) {
	t.Parallel()
	s := newStore(t)

	var wg sync.WaitGroup
	sections := []string{"goals", "action_items", "spending_patterns", "notes"}
	for _, section := range sections {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.UpdateSection(section, map[string]any{"v": section}); err != nil {
				t.Errorf("UpdateSection(%q): %v", section, err)
			}
		}()
	}
	wg.Wait()

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, section := range sections {
		if _, ok := doc[section]; !ok {
			t.Errorf("section %q lost in concurrent update", section)
		}
	}
}

// TestSaveLeavesNoTempFiles verifies that writes land through a rename and
// leave only the document behind.
func TestSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "financial_overview.json"))

	if err := s.Save(Document{"goals": "retire"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.UpdateSection("action_items", []string{"rebalance"}); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "financial_overview.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contents = %v, want only financial_overview.json", names)
	}
}

// newMeteredStore returns a FileStore recording write metrics into a manual
// reader.
func newMeteredStore(t *testing.T) (*FileStore, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return NewFileStore(filepath.Join(t.TempDir(), "financial_overview.json"), WithMetrics(m)), reader
}

// writeCount returns the per-operation totals of the overview write counter.
func writeCount(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if met.Name != "ynab_mcp.overview.writes" {
				continue
			}
			sum, ok := met.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("overview.writes is %T, want Sum[int64]", met.Data)
			}
			for _, dp := range sum.DataPoints {
				for _, kv := range dp.Attributes.ToSlice() {
					if string(kv.Key) == "op" {
						counts[kv.Value.AsString()] += dp.Value
					}
				}
			}
		}
	}
	return counts
}

// TestWriteMetrics verifies that Save and UpdateSection each count under
// their own operation.
func TestWriteMetrics(t *testing.T) {
	t.Parallel()
	s, reader := newMeteredStore(t)

	if err := s.Save(Document{"goals": "retire"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.UpdateSection("action_items", []string{"rebalance"}); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if err := s.UpdateSection("goals", "travel"); err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}

	counts := writeCount(t, reader)
	if counts["save"] != 1 {
		t.Errorf("save writes = %d, want 1", counts["save"])
	}
	if counts["update_section"] != 2 {
		t.Errorf("update_section writes = %d, want 2", counts["update_section"])
	}
}

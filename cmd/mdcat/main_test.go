package main

import (
	"context"
	"testing"

	"github.com/dnswlt/mdcat/internal/config"
	"github.com/dnswlt/mdcat/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
)

func TestSetupDiskStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	e, err := setup(Options{RootDir: "../../testdata/catalog", ConfigFile: "config.yaml"}, reg)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if e.bundle.Convert.ServiceName != "subject-area" {
		t.Errorf("config not loaded: %+v", e.bundle.Convert)
	}
	elements, relationships := e.repo.Counts()
	if elements != 9 || relationships != 7 {
		t.Errorf("Counts() = %d, %d, want 9, 7", elements, relationships)
	}
	term, err := e.client.GetTerm(context.Background(), "alice", "t-revenue")
	if err != nil {
		t.Fatalf("GetTerm failed: %v", err)
	}
	if term.Name != "Revenue" {
		t.Errorf("term.Name = %q, want %q", term.Name, "Revenue")
	}
}

func TestSetupNoStore(t *testing.T) {
	if _, err := setup(Options{}, nil); err == nil {
		t.Error("setup without -root-dir and -git-url succeeded")
	}
}

func TestLoadConfigFallback(t *testing.T) {
	st := store.NewDiskStore(t.TempDir())
	b, err := loadConfig(st, "mdcat.yml")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if diff := cmp.Diff(config.Default(), b); diff != "" {
		t.Errorf("loadConfig() mismatch (-want +got):\n%s", diff)
	}
}

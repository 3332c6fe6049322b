package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"hush/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	cfg.Paths.DataDir = dir
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	return &cfg
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := Run{
		RunID:          "run-1",
		InputPath:      "/media/in.mkv",
		OutputPath:     "/media/out.mp3",
		Codec:          "aac",
		SampleRate:     48000,
		Channels:       2,
		Status:         StatusCompleted,
		PacketsRead:    120,
		FramesDecoded:  118,
		PacketsWritten: 240,
		ElapsedMS:      1500,
	}
	if _, err := store.Record(ctx, first); err != nil {
		t.Fatalf("record first run: %v", err)
	}

	second := Run{
		RunID:        "run-2",
		InputPath:    "/media/broken.mkv",
		OutputPath:   "/media/broken.mp3",
		Status:       StatusFailed,
		Stage:        "decoder",
		ErrorMessage: "decoder error: open decoder: invalid data",
	}
	if _, err := store.Record(ctx, second); err != nil {
		t.Fatalf("record second run: %v", err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-2" || runs[1].RunID != "run-1" {
		t.Fatalf("runs not ordered newest first: %q, %q", runs[0].RunID, runs[1].RunID)
	}
	if runs[0].Stage != "decoder" || runs[0].Status != StatusFailed {
		t.Fatalf("failed run lost stage or status: %+v", runs[0])
	}
	if runs[1].PacketsWritten != 240 || runs[1].SampleRate != 48000 {
		t.Fatalf("completed run lost stats: %+v", runs[1])
	}
	if runs[0].CreatedAt.IsZero() {
		t.Fatal("created_at did not round trip")
	}
}

func TestListHonorsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		run := Run{RunID: fmt.Sprintf("run-%d", i), InputPath: "in", OutputPath: "out", Status: StatusCompleted}
		if _, err := store.Record(ctx, run); err != nil {
			t.Fatalf("record run %d: %v", i, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-4" {
		t.Fatalf("expected newest run first, got %q", runs[0].RunID)
	}
}

func TestPruneKeepsMostRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		run := Run{RunID: fmt.Sprintf("run-%d", i), InputPath: "in", OutputPath: "out", Status: StatusCompleted}
		if _, err := store.Record(ctx, run); err != nil {
			t.Fatalf("record run %d: %v", i, err)
		}
	}

	removed, err := store.Prune(ctx, 4)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 pruned rows, got %d", removed)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 4 {
		t.Fatalf("expected 4 runs after prune, got %d", len(runs))
	}
	if runs[len(runs)-1].RunID != "run-2" {
		t.Fatalf("oldest surviving run should be run-2, got %q", runs[len(runs)-1].RunID)
	}

	if removed, err = store.Prune(ctx, 0); err != nil || removed != 0 {
		t.Fatalf("prune with keep=0 should be a no-op, got removed=%d err=%v", removed, err)
	}
}

func TestReopenPreservesData(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.Record(ctx, Run{RunID: "run-1", InputPath: "in", OutputPath: "out", Status: StatusCompleted}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.List(ctx, 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-1" {
		t.Fatalf("data did not survive reopen: %+v", runs)
	}
}

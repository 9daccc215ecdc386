package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/spreads/internal/domain"
)

func TestReportFileRepository_LoadMissing(t *testing.T) {
	repo := NewReportFileRepository(t.TempDir(), "")

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Total != 0 || len(got.Pages) != 0 {
		t.Errorf("Load() = %+v, want empty report", got)
	}
}

func TestReportFileRepository_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	repo := NewReportFileRepository(dir, "")

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	res := domain.BatchResult{
		{Path: "/raw/0000.jpg", Index: 0}: {Rect: domain.Rect{Left: 50, Top: 90, Width: 920, Height: 1340}, Attempts: 1},
		{Path: "/raw/0001.jpg", Index: 1}: {Err: errors.New("decode: unexpected EOF"), Attempts: 1},
	}
	report := domain.NewReport("autocrop", "native", res, start, start.Add(time.Second))

	if err := repo.Save(context.Background(), report); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if repo.Path() != filepath.Join(dir, DefaultReportName) {
		t.Errorf("Path() = %s", repo.Path())
	}

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Total != 2 || got.Succeeded != 1 {
		t.Errorf("Total/Succeeded = %d/%d, want 2/1", got.Total, got.Succeeded)
	}
	if failed := got.FailedPages(); len(failed) != 1 || failed[0] != "0001.jpg" {
		t.Errorf("FailedPages() = %v", failed)
	}
	if got.Pages[0].Rect == nil || got.Pages[0].Rect.Left != 50 {
		t.Errorf("page 0 rect = %+v", got.Pages[0].Rect)
	}
	if got.Pages[1].Parity != "odd" {
		t.Errorf("page 1 parity = %s, want odd", got.Pages[1].Parity)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the report", len(entries))
	}
}

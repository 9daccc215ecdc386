package magick

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/internal/ports"
)

func TestParseMeasurement(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Rect
		wantErr bool
	}{
		{"10,20,240,340", domain.Rect{Left: 10, Top: 20, Width: 240, Height: 340}, false},
		{" 0,0,5,6\n", domain.Rect{Width: 5, Height: 6}, false},
		{"10,20,240", domain.Rect{}, true},
		{"10,20,240,340,1", domain.Rect{}, true},
		{"a,b,c,d", domain.Rect{}, true},
		{"10,-1,240,340", domain.Rect{}, true},
		{"10.5,20,240,340", domain.Rect{}, true},
		{"", domain.Rect{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMeasurement(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMeasurement(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrDetection) {
				t.Errorf("error %v does not wrap ErrDetection", err)
			}
			if got != tt.want {
				t.Errorf("ParseMeasurement(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDetector_Args(t *testing.T) {
	d := NewDetector(Config{})
	args := strings.Join(d.Args("/tmp/x.png"), " ")

	for _, want := range []string{"/tmp/x.png", "-colors 2", "-blur 0x15", "-fuzz 25%", "-trim", "info:"} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

// fakeConvert writes a shell script that prints out and records its first
// argument (the temp file) into a side file.
func fakeConvert(t *testing.T, out string, exit int) (bin, seen string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in requires a POSIX shell")
	}
	dir := t.TempDir()
	bin = filepath.Join(dir, "convert")
	seen = filepath.Join(dir, "seen")
	script := "#!/bin/sh\necho \"$1\" > " + seen + "\nprintf '%s' '" + out + "'\nexit " + string(rune('0'+exit)) + "\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return bin, seen
}

func page(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.SetGray(w/2, h/2, color.Gray{Y: 0})
	return img
}

func TestDetector_ScalesMeasurementAndRemovesTemp(t *testing.T) {
	bin, seen := fakeConvert(t, "10,20,240,340", 0)
	tmpDir := t.TempDir()
	d := NewDetector(Config{Binary: bin, ReduceFactor: 4, TempDir: tmpDir})

	got, err := d.Detect(context.Background(), ports.Source{Path: "p.jpg", Image: page(1000, 1500)})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	want := domain.Rect{Left: 40, Top: 80, Width: 960, Height: 1360}
	if got != want {
		t.Errorf("Detect() = %v, want %v", got, want)
	}

	b, err := os.ReadFile(seen)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(strings.TrimSpace(string(b))); !os.IsNotExist(err) {
		t.Errorf("temporary reduced copy still exists (stat err = %v)", err)
	}
	if entries, _ := os.ReadDir(tmpDir); len(entries) != 0 {
		t.Errorf("temp dir holds %d entries, want 0", len(entries))
	}
}

func TestDetector_FailuresRemoveTemp(t *testing.T) {
	tests := []struct {
		name string
		out  string
		exit int
	}{
		{"malformed output", "garbage", 0},
		{"non-zero exit", "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bin, _ := fakeConvert(t, tt.out, tt.exit)
			tmpDir := t.TempDir()
			d := NewDetector(Config{Binary: bin, TempDir: tmpDir})

			_, err := d.Detect(context.Background(), ports.Source{Image: page(400, 400)})
			if !errors.Is(err, domain.ErrDetection) {
				t.Fatalf("Detect() error = %v, want ErrDetection", err)
			}
			if entries, _ := os.ReadDir(tmpDir); len(entries) != 0 {
				t.Errorf("temp dir holds %d entries, want 0", len(entries))
			}
		})
	}
}

func TestDetector_MissingBinary(t *testing.T) {
	d := NewDetector(Config{Binary: filepath.Join(t.TempDir(), "no-such-convert")})

	_, err := d.Detect(context.Background(), ports.Source{Image: page(100, 100)})
	if !errors.Is(err, domain.ErrDetection) {
		t.Fatalf("Detect() error = %v, want ErrDetection", err)
	}
}

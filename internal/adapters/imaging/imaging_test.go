package imaging

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bft-labs/spreads/internal/domain"
	"github.com/bft-labs/spreads/internal/ports"
)

// scanPage draws a dark content block on a light background.
func scanPage(w, h int, content image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	light := color.RGBA{235, 230, 220, 255}
	dark := color.RGBA{30, 30, 35, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if image.Pt(x, y).In(content) {
				img.SetRGBA(x, y, dark)
			} else {
				img.SetRGBA(x, y, light)
			}
		}
	}
	return img
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func assertNear(t *testing.T, got, want domain.Rect, tol int) {
	t.Helper()
	gotR, wantR := got.Left+got.Width, want.Left+want.Width
	gotB, wantB := got.Top+got.Height, want.Top+want.Height
	if abs(got.Left-want.Left) > tol || abs(got.Top-want.Top) > tol ||
		abs(gotR-wantR) > tol || abs(gotB-wantB) > tol {
		t.Errorf("rect = %v, want %v (±%d per edge)", got, want, tol)
	}
}

func TestDetector_FindsContentBlock(t *testing.T) {
	content := image.Rect(100, 200, 900, 1300)
	img := scanPage(1000, 1500, content)

	tests := []struct {
		name string
		cfg  DetectorConfig
		tol  int
	}{
		{"defaults", DefaultDetectorConfig(), 2 * DefaultReduceFactor},
		{"no blur", DetectorConfig{ReduceFactor: 4, Fuzz: 0.25}, DefaultReduceFactor},
		{"reduce 2", DetectorConfig{ReduceFactor: 2, Fuzz: 0.25, BlurRadius: 1}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(tt.cfg)
			got, err := d.Detect(context.Background(), ports.Source{Path: "page.png", Image: img})
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if !got.Within(1000, 1500) {
				t.Fatalf("Detect() = %v outside image", got)
			}
			assertNear(t, got, domain.FromImage(content, image.Point{}), tt.tol)
		})
	}
}

func TestDetector_ScaleConsistent(t *testing.T) {
	content := image.Rect(160, 240, 1440, 1920)
	img := scanPage(1600, 2400, content)

	r4, err := NewDetector(DetectorConfig{ReduceFactor: 4, Fuzz: 0.25}).Detect(context.Background(), ports.Source{Image: img})
	if err != nil {
		t.Fatal(err)
	}
	r8, err := NewDetector(DetectorConfig{ReduceFactor: 8, Fuzz: 0.25}).Detect(context.Background(), ports.Source{Image: img})
	if err != nil {
		t.Fatal(err)
	}

	// One reduced pixel at the coarser factor.
	assertNear(t, r8, r4, 8)
}

func TestDetector_UniformPageReturnsFullRect(t *testing.T) {
	img := scanPage(400, 600, image.Rectangle{})

	got, err := NewDetector(DefaultDetectorConfig()).Detect(context.Background(), ports.Source{Image: img})
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if got != domain.Full(400, 600) {
		t.Errorf("Detect() = %v, want full rect", got)
	}
}

func TestDetector_TooSmallIsDetectionError(t *testing.T) {
	img := scanPage(3, 3, image.Rect(1, 1, 2, 2))

	_, err := NewDetector(DefaultDetectorConfig()).Detect(context.Background(), ports.Source{Image: img})
	if !errors.Is(err, domain.ErrDetection) {
		t.Fatalf("Detect() error = %v, want ErrDetection", err)
	}
}

func TestDetector_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDetector(DefaultDetectorConfig()).Detect(ctx, ports.Source{Image: scanPage(40, 40, image.Rect(5, 5, 30, 30))})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Detect() error = %v, want context.Canceled", err)
	}
}

func TestScaleToOriginal(t *testing.T) {
	tests := []struct {
		name string
		box  domain.Rect
		ok   bool
		want domain.Rect
	}{
		{"scaled", domain.Rect{Left: 10, Top: 20, Width: 240, Height: 340}, true, domain.Rect{Left: 40, Top: 80, Width: 960, Height: 1360}},
		{"no content", domain.Rect{}, false, domain.Full(1000, 1500)},
		{"zero area", domain.Rect{Left: 3, Top: 3}, true, domain.Full(1000, 1500)},
		{"overflow clamped", domain.Rect{Left: 200, Top: 300, Width: 100, Height: 100}, true, domain.Rect{Left: 800, Top: 1200, Width: 200, Height: 300}},
		{"outside image", domain.Rect{Left: 300, Top: 0, Width: 10, Height: 10}, true, domain.Full(1000, 1500)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScaleToOriginal(tt.box, tt.ok, 4, 1000, 1500); got != tt.want {
				t.Errorf("ScaleToOriginal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrim(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 10, 8))
	for i := range g.Pix {
		g.Pix[i] = 255
	}
	g.SetGray(2, 3, color.Gray{Y: 0})
	g.SetGray(6, 5, color.Gray{Y: 0})
	g.SetGray(8, 1, color.Gray{Y: 220}) // within fuzz

	got, ok := Trim(g, 0.25)
	if !ok {
		t.Fatal("Trim() found no content")
	}
	want := domain.Rect{Left: 2, Top: 3, Width: 5, Height: 3}
	if got != want {
		t.Errorf("Trim() = %v, want %v", got, want)
	}
}

func TestOtsuThreshold_SeparatesTwoLevels(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range g.Pix {
		if i < 30 {
			g.Pix[i] = 40
		} else {
			g.Pix[i] = 200
		}
	}
	th := OtsuThreshold(g)
	if th < 40 || th >= 200 {
		t.Errorf("OtsuThreshold() = %d, want in [40,200)", th)
	}
}

func TestCropper_ApplyWritesRegion(t *testing.T) {
	dir := t.TempDir()
	img := scanPage(200, 300, image.Rect(20, 30, 180, 270))
	out := filepath.Join(dir, "0000.png")

	c := NewCropper(0)
	rect := domain.Rect{Left: 20, Top: 30, Width: 160, Height: 240}
	if err := c.Apply(context.Background(), img, rect, out); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got, err := c.Open(out)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if b := got.Bounds(); b.Dx() != 160 || b.Dy() != 240 {
		t.Errorf("output is %dx%d, want 160x240", b.Dx(), b.Dy())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want 1", len(entries))
	}
}

func TestCropper_FormatsByExtension(t *testing.T) {
	dir := t.TempDir()
	img := scanPage(64, 48, image.Rect(8, 8, 56, 40))
	rect := domain.Rect{Left: 8, Top: 8, Width: 48, Height: 32}

	for _, name := range []string{"a.jpg", "b.JPEG", "c.tif", "d.bmp", "e.png"} {
		t.Run(name, func(t *testing.T) {
			out := filepath.Join(dir, name)
			if err := NewCropper(85).Apply(context.Background(), img, rect, out); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			got, err := Open(out)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if b := got.Bounds(); b.Dx() != 48 || b.Dy() != 32 {
				t.Errorf("output is %dx%d, want 48x32", b.Dx(), b.Dy())
			}
		})
	}
}

func TestCropper_FailuresLeaveNoFile(t *testing.T) {
	dir := t.TempDir()
	img := scanPage(64, 48, image.Rectangle{})
	c := NewCropper(0)

	if err := c.Apply(context.Background(), img, domain.Rect{Width: 10, Height: 10}, filepath.Join(dir, "x.gif")); err == nil {
		t.Error("Apply() to .gif succeeded, want unsupported format error")
	}
	if err := c.Apply(context.Background(), img, domain.Rect{Left: 60, Width: 10, Height: 10}, filepath.Join(dir, "y.png")); err == nil {
		t.Error("Apply() with out-of-bounds rect succeeded")
	}
	if err := c.Apply(context.Background(), img, domain.Rect{Width: 10, Height: 10}, filepath.Join(dir, "missing", "z.png")); err == nil {
		t.Error("Apply() into missing directory succeeded")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("directory holds %d entries after failures, want 0", len(entries))
	}
}

func TestOpen_RejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Open() on garbage succeeded")
	}
}

func TestIsPageFile(t *testing.T) {
	for name, want := range map[string]bool{
		"0001.jpg": true, "0002.JPG": true, "scan.tiff": true, "x.png": true,
		"notes.txt": false, "thumb.gif": false, "done": false,
	} {
		if got := IsPageFile(name); got != want {
			t.Errorf("IsPageFile(%q) = %v, want %v", name, got, want)
		}
	}
}

// writePNG is shared with other tests in this package.
func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.png")
	writePNG(t, path, scanPage(20, 10, image.Rect(2, 2, 8, 8)))
	img, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("width = %d, want 20", img.Bounds().Dx())
	}
}

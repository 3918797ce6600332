package images

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestIsSupported(t *testing.T) {
	if !IsSupported("chart.PNG") || !IsSupported("shot.jpeg") {
		t.Fatal("expected common image extensions to be supported")
	}
	if IsSupported("statement.pdf") || IsSupported("noext") {
		t.Fatal("non-image files must be rejected")
	}
}

func TestMimeByExt(t *testing.T) {
	if got := MimeByExt("a.jpg"); got != "image/jpeg" {
		t.Fatalf("got %q", got)
	}
	if got := MimeByExt("a.bin"); got != "" {
		t.Fatalf("expected empty mime for unknown ext, got %q", got)
	}
}

func TestThumbnail(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "thumb.png")

	img := imaging.New(1280, 720, color.NRGBA{40, 120, 80, 255})
	if err := imaging.Save(img, src); err != nil {
		t.Fatalf("save fixture: %v", err)
	}

	if err := Thumbnail(src, dst); err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	out, err := imaging.Open(dst)
	if err != nil {
		t.Fatalf("open thumbnail: %v", err)
	}
	if w := out.Bounds().Dx(); w != 320 {
		t.Fatalf("thumbnail width = %d, want 320", w)
	}
}

func TestThumbnailMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := Thumbnail(filepath.Join(dir, "nope.png"), filepath.Join(dir, "out.png")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

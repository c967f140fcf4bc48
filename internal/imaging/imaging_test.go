package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizePNG(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodePNG(t, 100, 50)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected JPEG output, got %q", photo.MIME)
	}

	img, err := jpeg.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("small photo should keep its size, got %v", img.Bounds())
	}
}

func TestNormalizeDownscales(t *testing.T) {
	photo, err := Normalize(bytes.NewReader(encodePNG(t, MaxEdge*2, MaxEdge)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if img.Bounds().Dx() != MaxEdge {
		t.Errorf("expected width scaled to %d, got %d", MaxEdge, img.Bounds().Dx())
	}
	if img.Bounds().Dy() != MaxEdge/2 {
		t.Errorf("expected aspect ratio preserved, got height %d", img.Bounds().Dy())
	}
}

func TestNormalizeRejectsNonImage(t *testing.T) {
	_, err := Normalize(strings.NewReader("<html>not an image</html>"))
	if err == nil {
		t.Error("expected error for non-image input")
	}
}

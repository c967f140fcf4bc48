// Package imaging normalizes uploaded item photos before they are
// stored: the format is checked by sniffing the actual bytes, oversized
// photos are scaled down, and everything is re-encoded as JPEG.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxEdge is the longest allowed side of a stored photo.
const MaxEdge = 1280

// Quality is the JPEG encoding quality for stored photos.
const Quality = 80

// Photo is a normalized, storage-ready image.
type Photo struct {
	Data []byte
	MIME string
}

// Normalize validates and re-encodes an uploaded photo. JPEG and PNG
// input is accepted; output is always JPEG.
func Normalize(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}

	// Sniff the real content type; client headers are not trusted.
	switch detected := http.DetectContentType(data); detected {
	case "image/jpeg", "image/png":
	default:
		return nil, fmt.Errorf("unsupported photo format %s (JPEG or PNG required)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding photo: %w", err)
	}

	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w > MaxEdge || h > MaxEdge {
		img = scaleToFit(img, MaxEdge)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encoding photo: %w", err)
	}

	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// scaleToFit shrinks img so its longest side equals maxEdge, preserving
// aspect ratio, with Catmull-Rom interpolation.
func scaleToFit(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var newW, newH int
	if w >= h {
		newW = maxEdge
		newH = max(h*maxEdge/w, 1)
	} else {
		newH = maxEdge
		newW = max(w*maxEdge/h, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

package reportbro

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

// minimal 1x1 lossy webp file
var webpImage = []byte{
	0x52, 0x49, 0x46, 0x46, 0x24, 0x00, 0x00, 0x00,
	0x57, 0x45, 0x42, 0x50, 0x56, 0x50, 0x38, 0x20,
	0x18, 0x00, 0x00, 0x00, 0x30, 0x01, 0x00, 0x9d,
	0x01, 0x2a, 0x01, 0x00, 0x01, 0x00, 0x02, 0x00,
	0x34, 0x25, 0xa4, 0x00, 0x03, 0x70, 0x00, 0xfe,
	0xfb, 0xfd, 0x50, 0x00,
}

// The pdf document cannot embed webp directly, the image is converted to png.
func TestPDFImageConvertsWebp(t *testing.T) {
	img := &imageData{data: webpImage, imageType: "webp"}
	data, imageType, err := img.pdfImage()
	if err != nil {
		t.Fatalf("pdf image: %v", err)
	}
	if imageType != "png" {
		t.Errorf("image type = %q, want %q", imageType, "png")
	}
	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode converted image: %v", err)
	}
	if format != "png" {
		t.Errorf("decoded format = %q, want %q", format, "png")
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 1 || bounds.Dy() != 1 {
		t.Errorf("converted size = %dx%d, want 1x1", bounds.Dx(), bounds.Dy())
	}
	// the converted data stays cached for further pages
	if img.imageType != "png" {
		t.Errorf("cached image type = %q, want %q", img.imageType, "png")
	}
}

func TestPDFImageKeepsPng(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	img := &imageData{data: buf.Bytes(), imageType: "png"}
	data, imageType, err := img.pdfImage()
	if err != nil {
		t.Fatalf("pdf image: %v", err)
	}
	if imageType != "png" || !bytes.Equal(data, buf.Bytes()) {
		t.Errorf("png image was modified")
	}
}

package reportbro

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/qr"
	"github.com/ruudk/golang-pdf417"
)

// generateBarcode encodes content into a png raster with the given pixel
// dimensions. The returned content may differ from the input when the
// encoding adds a checksum digit, e.g. for ean and code39.
func generateBarcode(format, content string, barWidth, width, height float64,
	errorCorrectionLevel string, rotate bool) (data []byte, barcodeWidth float64, outContent string, err error) {
	var bc barcode.Barcode
	outContent = content
	switch format {
	case "qrcode":
		level := qr.M
		switch errorCorrectionLevel {
		case "L":
			level = qr.L
		case "Q":
			level = qr.Q
		case "H":
			level = qr.H
		}
		bc, err = qr.Encode(content, level, qr.Auto)
	case "code128":
		var bcCS barcode.BarcodeIntCS
		bcCS, err = code128.Encode(content)
		bc = bcCS
	case "code39":
		var bcCS barcode.BarcodeIntCS
		bcCS, err = code39.Encode(strings.ToUpper(content), true, false)
		if err == nil {
			bc = bcCS
			outContent = bcCS.Content()
		}
	case "ean8", "ean13", "upc":
		code := content
		if format == "upc" {
			// upc-a is an ean-13 code with leading zero
			code = "0" + content
		}
		var bcCS barcode.BarcodeIntCS
		bcCS, err = ean.Encode(code)
		if err == nil {
			bc = bcCS
			outContent = bcCS.Content()
			if format == "upc" {
				outContent = strings.TrimPrefix(outContent, "0")
			}
		}
	case "pdf417":
		securityLevel := 2
		columns := int(width / (17 * barWidth))
		if columns < 1 {
			columns = 1
		} else if columns > 30 {
			columns = 30
		}
		bc = pdf417.Encode(content, columns, securityLevel)
	}
	if err != nil {
		return nil, 0, "", err
	}

	modules := bc.Bounds().Dx()
	if format == "qrcode" || format == "pdf417" {
		barcodeWidth = width
	} else {
		barcodeWidth = float64(modules) * barWidth
	}
	scaledWidth := int(barcodeWidth)
	if scaledWidth < modules {
		scaledWidth = modules
	}
	scaledHeight := int(height)
	if minHeight := bc.Bounds().Dy(); scaledHeight < minHeight {
		scaledHeight = minHeight
	}
	scaled, err := barcode.Scale(bc, scaledWidth, scaledHeight)
	if err != nil {
		return nil, 0, "", err
	}

	var img image.Image = scaled
	if rotate {
		img = rotateImage(scaled)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, 0, "", err
	}
	return buf.Bytes(), barcodeWidth, outContent, nil
}

// rotateImage rotates the image by 90 degrees clockwise.
func rotateImage(src image.Image) image.Image {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dy(), bounds.Dx()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(bounds.Max.Y-1-y, x-bounds.Min.X, src.At(x, y))
		}
	}
	return dst
}

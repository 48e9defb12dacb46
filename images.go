package reportbro

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// imageData holds a loaded image and its type, cached by image key so an
// image appearing in multiple table rows is fetched and decoded only once.
type imageData struct {
	data      []byte
	imageType string
}

func newImageData(ctx *Context, imageID int, source, imageFile string, report *Report) (*imageData, error) {
	img := &imageData{}
	var imageURI, imageURL, imagePath, imgDataB64 string
	if source != "" {
		if isParameterName(source) {
			ref := ctx.getParameter(stripParameterName(source))
			if ref == nil {
				return nil, newError(msgKeyMissingParameter, imageID, "source")
			}
			switch ref.parameter.Type {
			case ParameterTypeString:
				val, _ := ctx.getParameterData(ref)
				imageURI = toString(val)
			case ParameterTypeImage:
				val, _ := ctx.getParameterData(ref)
				switch v := val.(type) {
				case []byte:
					img.data = v
				case string:
					imgDataB64 = v
				}
			default:
				return nil, newError(msgKeyInvalidImageSourceParameter, imageID, "source")
			}
		} else {
			imageURI = source
		}
	}

	if imgDataB64 == "" && img.data == nil {
		if imageURI == "" && imageFile != "" {
			// static image base64 encoded within image element
			imgDataB64 = imageFile
		} else if imageFile != "" && imageFile == imageURI {
			imgDataB64 = imageFile
		}
	}

	if imgDataB64 != "" {
		if !strings.HasPrefix(imgDataB64, "data:image/") {
			return nil, newError(msgKeyInvalidImage, imageID, "source")
		}
		sep := strings.Index(imgDataB64, ";base64,")
		if sep == -1 {
			return nil, newError(msgKeyInvalidImage, imageID, "source")
		}
		img.imageType = strings.ToLower(imgDataB64[len("data:image/"):sep])
		decoded, err := base64.StdEncoding.DecodeString(imgDataB64[sep+len(";base64,"):])
		if err != nil {
			return nil, newError(msgKeyInvalidImage, imageID, "source")
		}
		img.data = decoded
	} else if imageURI != "" {
		if strings.HasPrefix(imageURI, "http://") || strings.HasPrefix(imageURI, "https://") {
			imageURL = imageURI
			parsed, err := url.Parse(imageURL)
			if err != nil {
				return nil, newError(msgKeyInvalidImageSource, imageID, "source")
			}
			img.imageType = extensionOf(parsed.Path)
		} else if !report.isTestData && strings.HasPrefix(imageURI, "file:") {
			// image path referencing a file on the server is only allowed
			// when data is passed directly and not from the designer
			imagePath = imageURI[len("file:"):]
			img.imageType = extensionOf(imageURI)
		} else {
			return nil, newError(msgKeyInvalidImageSource, imageID, "source")
		}
	}

	if img.imageType != "" || img.data != nil || imageURL != "" || imagePath != "" {
		if img.imageType == "jpg" {
			img.imageType = "jpeg"
		}
		if img.imageType != "png" && img.imageType != "jpeg" && img.imageType != "webp" {
			return nil, newError(msgKeyUnsupportedImageType, imageID, "source")
		}
	}

	if imageURL != "" {
		if !report.allowExternalImage {
			return nil, newError(msgKeyExternalImageNotAllowed, imageID, "source")
		}
		data, err := fetchImage(imageURL, report.requestHeaders)
		if err != nil {
			return nil, newErrorInfo(msgKeyLoadingImageFailed, imageID, "source", err.Error())
		}
		img.data = data
	} else if imagePath != "" {
		if !report.allowLocalImage {
			return nil, newError(msgKeyLocalImageNotAllowed, imageID, "source")
		}
		data, err := readLocalImage(imagePath)
		if err != nil {
			return nil, newErrorInfo(msgKeyLoadingImageFailed, imageID, "source", err.Error())
		}
		img.data = data
	}
	return img, nil
}

func extensionOf(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

func fetchImage(imageURL string, headers map[string]string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// readLocalImage restricts file access to the application directory.
func readLocalImage(imagePath string) ([]byte, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(imagePath)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(cwd, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return nil, fmt.Errorf("accessing file outside of application path not allowed")
	}
	return os.ReadFile(absPath)
}

// pdfImage returns the image data in a format the pdf document can embed,
// webp is converted to png on first access and the converted data is cached.
func (img *imageData) pdfImage() ([]byte, string, error) {
	if img.imageType == "webp" {
		decoded, _, err := image.Decode(bytes.NewReader(img.data))
		if err != nil {
			return nil, "", err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, decoded); err != nil {
			return nil, "", err
		}
		img.data = buf.Bytes()
		img.imageType = "png"
	}
	return img.data, img.imageType, nil
}

// spreadsheetImage decodes the image and scales it down when it is larger
// than the element, webp is converted to png because it is not supported in
// the spreadsheet format.
func (img *imageData) spreadsheetImage(width, height float64) ([]byte, string, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img.data))
	if err != nil {
		return nil, "", err
	}
	bounds := decoded.Bounds()
	imageWidth, imageHeight := float64(bounds.Dx()), float64(bounds.Dy())
	displayWidth, displayHeight := getImageDisplaySize(width, height, imageWidth, imageHeight)
	if displayWidth != imageWidth || displayHeight != imageHeight {
		scaled := image.NewRGBA(image.Rect(0, 0, int(displayWidth), int(displayHeight)))
		draw.BiLinear.Scale(scaled, scaled.Bounds(), decoded, bounds, draw.Over, nil)
		var buf bytes.Buffer
		if img.imageType == "jpeg" {
			err = jpeg.Encode(&buf, scaled, nil)
		} else {
			err = png.Encode(&buf, scaled)
		}
		if err != nil {
			return nil, "", err
		}
		imageType := img.imageType
		if imageType == "webp" {
			imageType = "png"
		}
		return buf.Bytes(), imageType, nil
	}
	if img.imageType == "webp" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, decoded); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "png", nil
	}
	return img.data, img.imageType, nil
}

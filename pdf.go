package reportbro

import (
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// canvas is the drawing surface the layout engine renders into. The engine
// only decides what to draw and where, all text measuring and primitive
// drawing is delegated to the backend. The production implementation wraps
// gofpdf, tests use a fake with fixed font metrics.
type canvas interface {
	AddPage()
	// SetFont activates a font for the following text operations. The style
	// string is a combination of "B", "I" and "U". An unknown font family
	// returns an error.
	SetFont(family, style string, size float64) error
	GetStringWidth(s string) float64
	// SplitText splits text into lines not exceeding the given width,
	// measured with the currently active font.
	SplitText(text string, width float64) []string
	Text(x, y float64, s string)
	Rect(x, y, width, height float64, style string)
	Line(x1, y1, x2, y2 float64)
	SetDrawColor(r, g, b int)
	SetFillColor(r, g, b int)
	SetTextColor(r, g, b int)
	SetLineWidth(width float64)
	// RegisterImage decodes and registers an image under the given key and
	// returns its intrinsic size in points. Registering the same key twice
	// is a no-op returning the cached size.
	RegisterImage(key, imageType string, r io.Reader) (width, height float64, err error)
	DrawImage(key string, x, y, width, height float64)
	LinkURL(x, y, width, height float64, url string)
	SetCreationDate(t time.Time)
	Output(w io.Writer) error
}

// AdditionalFont makes a TrueType font available for report texts besides
// the built-in core fonts. Bold/italic variants fall back to the regular
// font file when not set.
type AdditionalFont struct {
	Name               string
	Filename           string
	BoldFilename       string
	ItalicFilename     string
	BoldItalicFilename string
}

type registeredFont struct {
	standardFont bool
	files        map[string]string // style ("", "B", "I", "BI") to font file
	added        map[string]bool
}

// pdfCanvas implements canvas on top of gofpdf. The document uses point
// units and disables automatic page breaks since pagination is driven by the
// layout engine.
type pdfCanvas struct {
	fpdf           *gofpdf.Fpdf
	fonts          map[string]*registeredFont
	registeredKeys map[string][2]float64
}

func newPDFCanvas(props *DocumentProperties, additionalFonts []AdditionalFont) *pdfCanvas {
	orientation := "P"
	size := gofpdf.SizeType{Wd: props.pageWidth, Ht: props.pageHeight}
	if props.orientation == OrientationLandscape {
		orientation = "L"
		size = gofpdf.SizeType{Wd: props.pageHeight, Ht: props.pageWidth}
	}
	f := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           size,
	})
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(0, 0, 0)
	f.SetCellMargin(0)

	c := &pdfCanvas{
		fpdf: f,
		fonts: map[string]*registeredFont{
			"courier":   {standardFont: true},
			"helvetica": {standardFont: true},
			"times":     {standardFont: true},
		},
		registeredKeys: make(map[string][2]float64),
	}
	for _, font := range additionalFonts {
		files := map[string]string{"": font.Filename}
		files["B"] = font.BoldFilename
		if files["B"] == "" {
			files["B"] = font.Filename
		}
		files["I"] = font.ItalicFilename
		if files["I"] == "" {
			files["I"] = font.Filename
		}
		files["BI"] = font.BoldItalicFilename
		if files["BI"] == "" {
			files["BI"] = files["B"]
		}
		c.fonts[strings.ToLower(font.Name)] = &registeredFont{
			files: files,
			added: make(map[string]bool),
		}
	}
	return c
}

func (c *pdfCanvas) AddPage() { c.fpdf.AddPage() }

func (c *pdfCanvas) SetFont(family, style string, size float64) error {
	name := strings.ToLower(family)
	font, ok := c.fonts[name]
	if !ok {
		return newError(msgKeyFontNotAvailable, 0, "font")
	}
	if !font.standardFont {
		// lazily embed the font file for the requested style
		fileStyle := strings.ReplaceAll(style, "U", "")
		if !font.added[fileStyle] {
			c.fpdf.AddUTF8Font(name, fileStyle, font.files[fileStyle])
			font.added[fileStyle] = true
		}
	}
	c.fpdf.SetFont(name, style, size)
	return nil
}

func (c *pdfCanvas) GetStringWidth(s string) float64 {
	return c.fpdf.GetStringWidth(s)
}

func (c *pdfCanvas) SplitText(text string, width float64) []string {
	var lines []string
	// keep explicit line breaks, SplitText only wraps overlong lines
	for _, part := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if part == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, c.fpdf.SplitText(part, width)...)
	}
	return lines
}

func (c *pdfCanvas) Text(x, y float64, s string)               { c.fpdf.Text(x, y, s) }
func (c *pdfCanvas) Rect(x, y, w, h float64, style string)     { c.fpdf.Rect(x, y, w, h, style) }
func (c *pdfCanvas) Line(x1, y1, x2, y2 float64)               { c.fpdf.Line(x1, y1, x2, y2) }
func (c *pdfCanvas) SetDrawColor(r, g, b int)                  { c.fpdf.SetDrawColor(r, g, b) }
func (c *pdfCanvas) SetFillColor(r, g, b int)                  { c.fpdf.SetFillColor(r, g, b) }
func (c *pdfCanvas) SetTextColor(r, g, b int)                  { c.fpdf.SetTextColor(r, g, b) }
func (c *pdfCanvas) SetLineWidth(width float64)                { c.fpdf.SetLineWidth(width) }
func (c *pdfCanvas) LinkURL(x, y, w, h float64, url string)    { c.fpdf.LinkString(x, y, w, h, url) }
func (c *pdfCanvas) SetCreationDate(t time.Time)               { c.fpdf.SetCreationDate(t) }

func (c *pdfCanvas) RegisterImage(key, imageType string, r io.Reader) (float64, float64, error) {
	if size, ok := c.registeredKeys[key]; ok {
		return size[0], size[1], nil
	}
	info := c.fpdf.RegisterImageOptionsReader(key, gofpdf.ImageOptions{ImageType: imageType}, r)
	if err := c.fpdf.Error(); err != nil {
		return 0, 0, err
	}
	width, height := info.Extent()
	c.registeredKeys[key] = [2]float64{width, height}
	return width, height, nil
}

func (c *pdfCanvas) DrawImage(key string, x, y, width, height float64) {
	c.fpdf.ImageOptions(key, x, y, width, height, false, gofpdf.ImageOptions{}, 0, "")
}

func (c *pdfCanvas) Output(w io.Writer) error {
	return c.fpdf.Output(w)
}

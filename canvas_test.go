package reportbro

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// fakeCanvas implements canvas with fixed font metrics so layout results are
// deterministic: every character is half the font size wide.
type fakeCanvas struct {
	page     int
	fontSize float64
	texts    []fakeText
	images   []fakeImage
	rects    int
	lines    int
}

type fakeText struct {
	page int
	x, y float64
	text string
}

type fakeImage struct {
	page          int
	key           string
	x, y          float64
	width, height float64
}

func (f *fakeCanvas) AddPage() { f.page++ }

func (f *fakeCanvas) SetFont(family, style string, size float64) error {
	if family == "missing" {
		return errors.New("undefined font")
	}
	f.fontSize = size
	return nil
}

func (f *fakeCanvas) GetStringWidth(s string) float64 {
	return float64(len([]rune(s))) * f.fontSize / 2
}

// SplitText wraps on word boundaries, words longer than the width are kept
// as their own line.
func (f *fakeCanvas) SplitText(text string, width float64) []string {
	var result []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			result = append(result, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if f.GetStringWidth(line+" "+word) <= width {
				line += " " + word
			} else {
				result = append(result, line)
				line = word
			}
		}
		result = append(result, line)
	}
	return result
}

func (f *fakeCanvas) Text(x, y float64, s string) {
	f.texts = append(f.texts, fakeText{page: f.page, x: x, y: y, text: s})
}

func (f *fakeCanvas) Rect(x, y, width, height float64, style string) { f.rects++ }
func (f *fakeCanvas) Line(x1, y1, x2, y2 float64)                    { f.lines++ }
func (f *fakeCanvas) SetDrawColor(r, g, b int)                       {}
func (f *fakeCanvas) SetFillColor(r, g, b int)                       {}
func (f *fakeCanvas) SetTextColor(r, g, b int)                       {}
func (f *fakeCanvas) SetLineWidth(width float64)                     {}

func (f *fakeCanvas) RegisterImage(key, imageType string, r io.Reader) (float64, float64, error) {
	return 100, 50, nil
}

func (f *fakeCanvas) DrawImage(key string, x, y, width, height float64) {
	f.images = append(f.images, fakeImage{page: f.page, key: key, x: x, y: y, width: width, height: height})
}

func (f *fakeCanvas) LinkURL(x, y, width, height float64, url string) {}
func (f *fakeCanvas) SetCreationDate(t time.Time)                     {}

func (f *fakeCanvas) Output(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%%FAKE-%d", f.page)
	return err
}

// textsOnPage returns the rendered strings of the given page in order.
func (f *fakeCanvas) textsOnPage(page int) []string {
	var result []string
	for _, t := range f.texts {
		if t.page == page {
			result = append(result, t.text)
		}
	}
	return result
}

func (f *fakeCanvas) findText(text string) (fakeText, bool) {
	for _, t := range f.texts {
		if t.text == text {
			return t, true
		}
	}
	return fakeText{}, false
}

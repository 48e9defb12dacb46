package reportbro

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// formatNumber renders a float according to a "#,##0.00" style pattern.
// The pattern defines the number of decimal places (digits after "."),
// whether a grouping separator is used ("," present) and an optional literal
// currency symbol "$" which keeps its position relative to the number.
// Decimal and grouping separators follow the locale. A pattern without a
// digit placeholder or with more than one decimal point is an error.
func formatNumber(value float64, pattern, locale string) (string, error) {
	prefix, suffix := "", ""
	digitIdx := strings.IndexAny(pattern, "#0")
	if digitIdx == -1 {
		return "", errors.New("number pattern has no digit placeholder")
	}
	if idx := strings.Index(pattern, "$"); idx != -1 {
		if idx < digitIdx {
			// symbol before the number, keep its spacing
			prefix = pattern[:digitIdx]
			pattern = pattern[digitIdx:]
		} else {
			lastDigitIdx := strings.LastIndexAny(pattern, "#0")
			suffix = pattern[lastDigitIdx+1:]
			pattern = pattern[:lastDigitIdx+1]
		}
	}
	if strings.Count(pattern, ".") > 1 {
		return "", errors.New("number pattern has multiple decimal points")
	}

	decimals := 0
	minDecimals := 0
	if idx := strings.Index(pattern, "."); idx != -1 {
		frac := pattern[idx+1:]
		for _, ch := range frac {
			if ch == '0' || ch == '#' {
				decimals++
				if ch == '0' {
					minDecimals = decimals
				}
			}
		}
	}
	grouping := strings.Contains(pattern, ",")

	opts := []number.Option{
		number.MaxFractionDigits(decimals),
		number.MinFractionDigits(minDecimals),
	}
	if !grouping {
		opts = append(opts, number.NoSeparator())
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	formatted := message.NewPrinter(tag).Sprint(number.Decimal(value, opts...))
	return prefix + formatted + suffix, nil
}

// datePatternMapping translates the CLDR date pattern tokens supported in
// templates into Go reference time layouts. Longer tokens must come first so
// e.g. "MMMM" is not consumed as two "MM".
var datePatternMapping = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dd", "02"},
	{"d", "2"},
	{"EEEE", "Monday"},
	{"EEE", "Mon"},
	{"HH", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"ss", "05"},
	{"a", "PM"},
}

// formatDate renders a time according to a CLDR style date pattern like
// "dd.MM.yyyy" or "d. MMMM yyyy HH:mm". A letter which is not part of a
// supported pattern token is an error.
func formatDate(value time.Time, pattern string) (string, error) {
	var layout strings.Builder
	for len(pattern) > 0 {
		matched := false
		for _, m := range datePatternMapping {
			if strings.HasPrefix(pattern, m.token) {
				layout.WriteString(m.layout)
				pattern = pattern[len(m.token):]
				matched = true
				break
			}
		}
		if !matched {
			ch := pattern[0]
			if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
				return "", errors.New("unsupported date pattern token " + string(ch))
			}
			layout.WriteByte(ch)
			pattern = pattern[1:]
		}
	}
	return value.Format(layout.String()), nil
}

package reportbro

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Helpers to read values from decoded template JSON. Missing keys and
// mismatched types yield zero values, matching the tolerant reading of
// report definitions created by different designer versions.

func getIntValue(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return 0
}

func getFloatValue(data map[string]any, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(v), ",", ".", 1), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func getStrValue(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func getBoolValue(data map[string]any, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != "" && v != "false" && v != "0"
	}
	return false
}

// getImageDisplaySize fits an image into the configured width/height while
// keeping its aspect ratio. Images smaller than the box are not scaled up.
func getImageDisplaySize(width, height, imageWidth, imageHeight float64) (float64, float64) {
	if imageWidth <= width && imageHeight <= height {
		return imageWidth, imageHeight
	}
	sizeRatio := imageWidth / imageHeight
	if tmp := width / sizeRatio; tmp <= height {
		return width, tmp
	}
	return height * sizeRatio, height
}

// datetimeLayouts accepted when parsing date values from report data.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDatetimeString(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseNumberString parses a number allowing a comma decimal separator.
func parseNumberString(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}

func toString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%v", val)
}

// toFloat converts any numeric value from a data payload to float64.
func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := parseNumberString(v)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// toDataRows converts a data source value to a list of row maps.
func toDataRows(val any) ([]map[string]any, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return v, nil
	case []any:
		rows := make([]map[string]any, 0, len(v))
		for _, entry := range v {
			row, ok := entry.(map[string]any)
			if !ok {
				return nil, errors.New("data row must be a map")
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
	return nil, errors.New("data source value must be a list")
}

// equalValues compares two expression results, numbers are compared by
// value independent of their concrete type.
func equalValues(a, b any) bool {
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		return ok && sa == sb
	}
	fa, aOk := toFloat(a)
	fb, bOk := toFloat(b)
	if aOk && bOk {
		return fa == fb
	}
	return a == b
}

package askai

import (
	"fmt"
	"math"
	"strconv"

	"socialdash/internal/models"
)

const (
	// PostIDColumn is always rendered as text so browsers never round it.
	PostIDColumn = "post_id"

	// MaxSafeInteger is the largest integer a JavaScript number holds exactly.
	MaxSafeInteger = 1<<53 - 1
)

// Sanitize returns copies of rows with post identifiers and unsafe integers
// converted to decimal text, and non-finite floats spelled out. It is
// idempotent.
func Sanitize(rows []models.Row) []models.Row {
	out := make([]models.Row, len(rows))
	for i, row := range rows {
		clean := row.Clone()
		for j, col := range clean.Columns {
			if j >= len(clean.Values) {
				break
			}
			clean.Values[j] = sanitizeValue(col, clean.Values[j])
		}
		out[i] = clean
	}
	return out
}

func sanitizeValue(column string, v any) any {
	if v == nil {
		return nil
	}
	if column == PostIDColumn {
		return identifierText(v)
	}
	if text, ok := unsafeIntegerText(v); ok {
		return text
	}
	if text, ok := nonFiniteText(v); ok {
		return text
	}
	return v
}

// nonFiniteText spells NaN and infinities as text; JSON cannot encode them.
func nonFiniteText(v any) (string, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	default:
		return "", false
	}
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	}
	return "", false
}

func identifierText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int:
		return strconv.Itoa(x)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// unsafeIntegerText reports the decimal text of integers whose magnitude
// exceeds MaxSafeInteger. Narrow integer types can never qualify.
func unsafeIntegerText(v any) (string, bool) {
	switch x := v.(type) {
	case int64:
		if x > MaxSafeInteger || x < -MaxSafeInteger {
			return strconv.FormatInt(x, 10), true
		}
	case int:
		if int64(x) > MaxSafeInteger || int64(x) < -MaxSafeInteger {
			return strconv.Itoa(x), true
		}
	case uint64:
		if x > MaxSafeInteger {
			return strconv.FormatUint(x, 10), true
		}
	case uint:
		if uint64(x) > MaxSafeInteger {
			return strconv.FormatUint(uint64(x), 10), true
		}
	}
	return "", false
}

package statsprovider

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// parsePoints accepts numbers, numeric strings and null. Anything else is 0.
func parsePoints(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// dateString keeps the provider's date text untouched; normalization happens
// later in one place.
func dateString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func decode(raw []byte, target any) error {
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

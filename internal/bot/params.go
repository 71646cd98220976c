package bot

import (
	"fmt"
	"strconv"

	"github.com/mj1618/botvision/internal/config"
	"github.com/mj1618/botvision/internal/model"
)

// Parameter extraction helpers for step maps decoded from YAML or MCP arguments.

// StringParam returns params[key] as a string.
func StringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		// Handle numeric values that YAML may parse as int/float
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

// IntParam returns params[key] as an int.
func IntParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		case string:
			if i, err := strconv.Atoi(n); err == nil {
				return i
			}
		}
	}
	return defaultVal
}

// FloatParam returns params[key] as a float64.
func FloatParam(params map[string]interface{}, key string, defaultVal float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f
			}
		}
	}
	return defaultVal
}

// BoolParam returns params[key] as a bool.
func BoolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// RegionParam parses params[key] as "x,y,w,h". A missing key is a nil region.
func RegionParam(params map[string]interface{}, key string) (*model.Region, error) {
	s := StringParam(params, key, "")
	if s == "" {
		return nil, nil
	}
	r, err := model.ParseRegion(s)
	if err != nil {
		return nil, &config.Error{Field: key, Msg: err.Error()}
	}
	return r, nil
}

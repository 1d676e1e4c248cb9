package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/redreserve/redreserve-backend/pkg/errors"
)

const maxQueryValueLen = 64

// QueryString returns the trimmed query value for key, or "" when absent.
func QueryString(r *http.Request, key string) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if len(raw) > maxQueryValueLen {
		return "", queryError(key, fmt.Sprintf("%s is too long", key), map[string]any{"max_length": maxQueryValueLen})
	}
	return raw, nil
}

// ParseQueryInt reads an optional integer query value bounded by [min, max].
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw, err := QueryString(r, key)
	if err != nil || raw == "" {
		return defaultVal, err
	}
	value, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return 0, queryError(key, fmt.Sprintf("%s must be a whole number", key), nil)
	}
	if value < min || value > max {
		return 0, queryError(key, fmt.Sprintf("%s must be between %d and %d", key, min, max), map[string]any{"min": min, "max": max})
	}
	return value, nil
}

func queryError(key, msg string, extra map[string]any) error {
	details := map[string]any{"field": key}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}

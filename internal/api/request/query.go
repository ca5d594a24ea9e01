package request

import (
	"fmt"
	"net/http"
	"strconv"
)

// MaxLimit caps the page size a client may ask for
const MaxLimit = 100

// Limit reads the ?limit query parameter. Missing means def; values
// above MaxLimit are clamped.
func Limit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	return min(n, MaxLimit), nil
}

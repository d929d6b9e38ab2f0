package garden

import (
	"strconv"
	"strings"
)

// FilterPlants matches plants whose id equals the query exactly, or whose
// name or type contains it case-insensitively. A blank query matches nothing.
func FilterPlants(plants []Plant, query string) []Plant {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Plant
	for _, p := range plants {
		if strconv.FormatUint(uint64(p.ID), 10) == q ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(string(p.Type)), q) {
			out = append(out, p)
		}
	}
	return out
}

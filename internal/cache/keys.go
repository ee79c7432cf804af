package cache

import (
	"strconv"
	"strings"
)

const (
	KeySettings         = "settings:commission"
	KeyDashboardVersion = "dashboard:version"
)

// KeyDashboardSummary builds the cache key of a dashboard summary for one filter at one version.
// The seller is kept case-sensitive, matching the seller filter in the summary queries.
func KeyDashboardSummary(version int64, from, to, seller string) string {
	parts := []string{"dashboard", "summary", "v" + strconv.FormatInt(version, 10), from, to, strings.TrimSpace(seller)}
	return strings.Join(parts, ":")
}

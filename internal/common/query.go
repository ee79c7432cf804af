package common

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryInt reads q[key] as an integer, returning def when absent or malformed.
func QueryInt(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil {
		return def
	}
	return n
}

// QueryBool reads q[key] as a flag. "1", "true", "yes" and "on" are true,
// their negations false; anything else yields def.
func QueryBool(q url.Values, key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(q.Get(key))) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	}
	return def
}

package configure

import (
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\$\{(.+?)\}`)

// NodeContext holds the node-local facts available to ${name} placeholders
type NodeContext struct {
	ClusterID int
	Hostname  string
	IP        string
	MyID      *int
}

// Params returns the substitution map: clusterId, host, ip, user and, when
// set, myid. user is always root.
func (n NodeContext) Params() map[string]string {
	params := map[string]string{
		"clusterId": strconv.Itoa(n.ClusterID),
		"host":      n.Hostname,
		"ip":        n.IP,
		"user":      "root",
	}
	if n.MyID != nil {
		params["myid"] = strconv.Itoa(*n.MyID)
	}
	return params
}

// ReplacePlaceholders substitutes every ${name} in s found in params.
// Unknown placeholders are left as they are.
func ReplacePlaceholders(s string, params map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		if v, ok := params[match[2:len(match)-1]]; ok {
			return v
		}
		return match
	})
}

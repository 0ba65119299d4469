package configure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cuemby/rolecfg/pkg/types"
)

// ExpandCustom turns a custom entry, whose value is a list of key/value
// mappings, into one entry per key. Keys of a mapping are emitted in sorted
// order; blank keys and nil mappings are skipped.
func ExpandCustom(e types.ConfigEntry) ([]types.ConfigEntry, error) {
	var maps []map[string]any
	switch e.Value.Kind() {
	case types.KindMappings:
		maps, _ = e.Value.AsMappings()
	case types.KindNull:
		return nil, nil
	case types.KindList:
		// an empty YAML sequence decodes as a list
		if items, _ := e.Value.AsList(); len(items) == 0 {
			return nil, nil
		}
		fallthrough
	default:
		return nil, fmt.Errorf("%w: custom entry %s holds %s, want list of mappings", types.ErrTransform, e.Name, e.Value.Kind())
	}

	var out []types.ConfigEntry
	for _, m := range maps {
		keys := make([]string, 0, len(m))
		for k := range m {
			if strings.TrimSpace(k) != "" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		for _, k := range keys {
			v, err := types.ValueOf(m[k])
			if err != nil {
				return nil, fmt.Errorf("custom entry %s key %s: %w", e.Name, k, err)
			}
			out = append(out, types.ConfigEntry{
				Name:     k,
				Value:    v,
				Required: true,
			})
		}
	}
	return out, nil
}

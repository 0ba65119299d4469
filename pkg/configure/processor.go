package configure

import (
	"fmt"
	"strings"

	"github.com/cuemby/rolecfg/pkg/paths"
	"github.com/cuemby/rolecfg/pkg/types"
)

// DataDirEntry is the entry whose value locates the myid file
const DataDirEntry = "dataDir"

// groupState collects what the per-entry pass leaves behind for group scope
type groupState struct {
	dataDir string

	// extra holds custom expansions and synthetic entries, merged after
	// the retained entries once the pass is over
	extra []types.ConfigEntry
}

// processor applies the per-entry transforms of one output group
type processor struct {
	paths *paths.Manager
	rules *Rules
}

// process runs one left-to-right pass over env.Group.Entries. Dropped entries
// still run every step so their side effects happen; they are only left out
// of the returned slice.
func (p *processor) process(env *RuleEnv, params map[string]string) ([]types.ConfigEntry, error) {
	entries := env.Group.Entries
	kept := make([]types.ConfigEntry, 0, len(entries))

	for i := range entries {
		e := entries[i]
		keep, err := p.processEntry(env, &e, params)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.Name, err)
		}
		if keep {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

func (p *processor) processEntry(env *RuleEnv, e *types.ConfigEntry, params map[string]string) (bool, error) {
	if err := transform(e, params); err != nil {
		return false, err
	}

	runAs := env.Request.RunAs
	switch e.ConfigType {
	case types.ConfigTypePath:
		path, err := pathValue(e)
		if err != nil {
			return false, err
		}
		if err := p.paths.Create(path, e.Separator, runAs); err != nil {
			return false, err
		}
	case types.ConfigTypeMvPath:
		path, err := pathValue(e)
		if err != nil {
			return false, err
		}
		if _, err := p.paths.Move(e.DefaultValue, path, e.Separator, runAs); err != nil {
			return false, err
		}
	case types.ConfigTypeCustom:
		children, err := ExpandCustom(*e)
		if err != nil {
			return false, err
		}
		env.state.extra = append(env.state.extra, children...)
		// the custom entry itself is gone: no dataDir capture, no entry rules
		return false, nil
	}

	keep := e.Required

	if e.Value.Kind() == types.KindBool || e.Value.Kind() == types.KindInt {
		env.Logger.Debug().Str("entry", e.Name).Msg("convert boolean and integer to string")
		e.Value = e.Value.Coerce()
	}

	if e.Name == DataDirEntry {
		if dir, ok := e.Value.AsString(); ok {
			env.Logger.Info().Str("dataDir", dir).Msg("find dataDir")
			env.state.dataDir = dir
		}
	}

	p.rules.applyEntry(env, e)

	if keep && !e.Value.IsScalar() {
		return false, fmt.Errorf("%w: %s value is not render-ready", types.ErrTransform, e.Value.Kind())
	}
	return keep, nil
}

// transform applies the EntryType value transform
func transform(e *types.ConfigEntry, params map[string]string) error {
	switch e.Type {
	case types.EntryTypeInput:
		switch e.Value.Kind() {
		case types.KindString:
			s, _ := e.Value.AsString()
			e.Value = types.StringValue(ReplacePlaceholders(s, params))
		case types.KindNull, types.KindBool, types.KindInt:
			// nothing to substitute
		default:
			return fmt.Errorf("%w: input entry holds %s, want string", types.ErrTransform, e.Value.Kind())
		}
	case types.EntryTypeMultiple:
		if e.Separator == "" {
			return fmt.Errorf("%w: multiple entry has no separator", types.ErrTransform)
		}
		parts, err := e.Value.Strings()
		if err != nil {
			return err
		}
		e.Value = types.StringValue(strings.Join(parts, e.Separator))
	}
	// other types (switch, select, slider...) only matter to the UI
	return nil
}

func pathValue(e *types.ConfigEntry) (string, error) {
	s, ok := e.Value.AsString()
	if !ok {
		return "", fmt.Errorf("%w: %s entry holds %s, want string path", types.ErrTransform, e.ConfigType, e.Value.Kind())
	}
	return s, nil
}

/*
Package types defines the data model of a role configuration run.

A run takes a PipelineRequest, which groups the OutputGroups of one service
role, and produces a Result. Each OutputGroup names one rendered file and
carries the ordered ConfigEntry list it is built from.

# Core Types

Configuration:
  - ConfigEntry: one named value plus its transform (EntryType) and side
    effect (ConfigType) metadata
  - ConfigValue: closed union of string, bool, int, list, and list of
    mappings, decoded from YAML with UnmarshalYAML
  - OutputGroup: file name, output directory, template and format

Execution:
  - PipelineRequest: output groups plus node context (cluster id, myid,
    package directory, role name, RunAs)
  - ServiceRoleCommand: a configure-and-start request handled by a role
    strategy, with its start and status Runners
  - Result: success flag, captured output and error message

# Value Kinds

ConfigValue is matched exhaustively at every transform site:

	switch v.Kind() {
	case types.KindString:   // placeholder substitution
	case types.KindList:     // joined with the entry separator
	case types.KindMappings: // expanded into sibling entries
	case types.KindBool, types.KindInt:
		v = v.Coerce() // renderers only accept text
	}

# Errors

ErrTransform, ErrFilesystem, ErrProcess and ErrRender classify failures.
Packages wrap them so callers can use errors.Is to tell a malformed entry
from a failed mkdir or a failed script.
*/
package types

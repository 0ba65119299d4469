package configure

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cuemby/rolecfg/pkg/paths"
	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RuleEnv is what a rule can see and touch while it runs
type RuleEnv struct {
	Request     *types.PipelineRequest
	Group       *types.OutputGroup
	InstallRoot string
	Logger      zerolog.Logger

	state *groupState
}

// Append adds a synthetic entry to the group. It lands after every entry of
// the per-entry pass.
func (env *RuleEnv) Append(e types.ConfigEntry) {
	env.state.extra = append(env.state.extra, e)
}

// EntryRule runs against every retained or dropped entry after coercion
type EntryRule struct {
	Name  string
	Role  string   // empty matches any role
	Names []string // entry names the rule reacts to
	Apply func(env *RuleEnv, e *types.ConfigEntry)
}

func (r EntryRule) matches(role, name string) bool {
	if r.Role != "" && r.Role != role {
		return false
	}
	for _, n := range r.Names {
		if n == name {
			return true
		}
	}
	return false
}

// GroupRule synthesizes an entry once per output group
type GroupRule struct {
	Name    string
	Matches func(req *types.PipelineRequest, group *types.OutputGroup) bool
	Entry   func(req *types.PipelineRequest) types.ConfigEntry
}

// Rules is the ordered override table. Entry rules run in order, so a rule
// sees the name and value left by the rules before it.
type Rules struct {
	entry []EntryRule
	group []GroupRule
}

// NewRules builds a table from explicit rule lists
func NewRules(entry []EntryRule, group []GroupRule) *Rules {
	return &Rules{entry: entry, group: group}
}

// DefaultRules returns the built-in role overrides
func DefaultRules() *Rules {
	return NewRules(
		[]EntryRule{
			{
				Name:  "trino-coordinator",
				Role:  "TrinoCoordinator",
				Names: []string{"coordinator"},
				Apply: func(env *RuleEnv, e *types.ConfigEntry) {
					env.Logger.Info().Msg("start config trino coordinator")
					e.Value = types.StringValue("true")
					env.Append(types.ConfigEntry{
						Name:     "node-scheduler.include-coordinator",
						Value:    types.StringValue("false"),
						Required: true,
					})
				},
			},
			{
				Name:  "priority-networks",
				Names: []string{"fe_priority_networks", "be_priority_networks"},
				Apply: func(env *RuleEnv, e *types.ConfigEntry) {
					e.Name = "priority_networks"
				},
			},
			{
				Name:  "kyuubi-hive-site",
				Role:  "KyuubiServer",
				Names: []string{"sparkHome"},
				Apply: linkHiveSite,
			},
		},
		[]GroupRule{
			{
				Name: "node-id",
				Matches: func(_ *types.PipelineRequest, group *types.OutputGroup) bool {
					return group.Filename == "node.properties"
				},
				Entry: func(*types.PipelineRequest) types.ConfigEntry {
					return types.ConfigEntry{
						Name:     "node.id",
						Value:    types.StringValue(NewNodeID()),
						Required: true,
					}
				},
			},
			{
				Name: "grafana-cluster-id",
				Matches: func(req *types.PipelineRequest, _ *types.OutputGroup) bool {
					return req.ServiceRoleName == "Grafana"
				},
				Entry: func(req *types.PipelineRequest) types.ConfigEntry {
					return types.ConfigEntry{
						Name:       "clusterId",
						Value:      types.StringValue(strconv.Itoa(req.ClusterID)),
						ConfigType: types.ConfigTypeMap,
						Required:   true,
					}
				},
			},
		},
	)
}

// NewNodeID returns a fresh 32-character hex id
func NewNodeID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (r *Rules) applyEntry(env *RuleEnv, e *types.ConfigEntry) {
	for _, rule := range r.entry {
		if rule.matches(env.Request.ServiceRoleName, e.Name) {
			env.Logger.Debug().Str("rule", rule.Name).Str("entry", e.Name).Msg("apply role override")
			rule.Apply(env, e)
		}
	}
}

func (r *Rules) applyGroup(env *RuleEnv) {
	for _, rule := range r.group {
		if rule.Matches(env.Request, env.Group) {
			env.Append(rule.Entry(env.Request))
		}
	}
}

// linkHiveSite points <package>/conf/hive-site.xml at the Spark installation's
// copy. Failure is logged and never fails the run.
func linkHiveSite(env *RuleEnv, e *types.ConfigEntry) {
	target := filepath.Join(env.InstallRoot, env.Request.DecompressPackageName, "conf", "hive-site.xml")
	if paths.Exists(target) {
		return
	}

	source := filepath.Join(e.Value.String(), "conf", "hive-site.xml")
	env.Logger.Info().Str("source", source).Str("target", target).Msg("add hive-site.xml link")
	if err := os.Symlink(source, target); err != nil {
		env.Logger.Warn().Err(err).Msg("add hive-site.xml link failed")
	}
}

package types

import (
	"errors"
	"time"
)

// Error classes for a configuration run. Wrap them with fmt.Errorf("...: %w")
// and test with errors.Is.
var (
	ErrTransform  = errors.New("transform error")
	ErrFilesystem = errors.New("filesystem error")
	ErrProcess    = errors.New("process error")
	ErrRender     = errors.New("render error")
)

// EntryType drives the value transform applied to an entry
type EntryType string

const (
	EntryTypeNone     EntryType = ""
	EntryTypeInput    EntryType = "input"    // ${name} placeholder substitution
	EntryTypeMultiple EntryType = "multiple" // list joined with Separator
)

// ConfigType drives the side effect applied to an entry
type ConfigType string

const (
	ConfigTypeNone   ConfigType = ""
	ConfigTypePath   ConfigType = "path"   // create directories
	ConfigTypeMvPath ConfigType = "mvpath" // relocate DefaultValue to Value
	ConfigTypeCustom ConfigType = "custom" // expand into sibling entries
	ConfigTypeMap    ConfigType = "map"    // exposed to templates as a map entry
)

// ConfigEntry is one named configuration value of an output file
type ConfigEntry struct {
	Name         string      `yaml:"name"`
	Value        ConfigValue `yaml:"value"`
	Type         EntryType   `yaml:"type,omitempty"`
	ConfigType   ConfigType  `yaml:"configType,omitempty"`
	Separator    string      `yaml:"separator,omitempty"`
	Required     bool        `yaml:"required"`
	DefaultValue string      `yaml:"defaultValue,omitempty"` // source path for mvpath
}

// ConfigFormat selects how an output file is rendered
type ConfigFormat string

const (
	FormatProperties ConfigFormat = "properties"
	FormatYAML       ConfigFormat = "yaml"
	FormatTOML       ConfigFormat = "toml"
	FormatCustom     ConfigFormat = "custom" // Go template named by TemplateName
)

// OutputGroup is one rendered configuration file and the ordered entries
// it is built from.
type OutputGroup struct {
	Filename        string        `yaml:"filename"`
	OutputDirectory string        `yaml:"outputDirectory"`
	TemplateName    string        `yaml:"templateName,omitempty"`
	ConfigFormat    ConfigFormat  `yaml:"configFormat,omitempty"`
	Entries         []ConfigEntry `yaml:"entries"`
}

// RunAs is the ownership applied to filesystem objects created for a role.
// A nil *RunAs means "do not chown".
type RunAs struct {
	User  string `yaml:"user"`
	Group string `yaml:"group"`
}

// PipelineRequest is the input of one configuration run
type PipelineRequest struct {
	ServiceName           string         `yaml:"serviceName"`
	ServiceRoleName       string         `yaml:"serviceRoleName"`
	ClusterID             int            `yaml:"clusterId"`
	MyID                  *int           `yaml:"myid,omitempty"`
	DecompressPackageName string         `yaml:"decompressPackageName"`
	RunAs                 *RunAs         `yaml:"runAs,omitempty"`
	Groups                []*OutputGroup `yaml:"groups"`
}

// Result reports the outcome of a pipeline run or a role command
type Result struct {
	Success bool
	Output  string
	Error   string
}

// Failure builds a failed Result from an error
func Failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Runner is a script invocation resolved under the package directory
type Runner struct {
	Program string        `yaml:"program"`
	Args    []string      `yaml:"args,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServiceRoleCommand asks the agent to configure and start one service role
type ServiceRoleCommand struct {
	ServiceName           string           `yaml:"serviceName"`
	ServiceRoleName       string           `yaml:"serviceRoleName"`
	DecompressPackageName string           `yaml:"decompressPackageName"`
	EnableKerberos        bool             `yaml:"enableKerberos"`
	RunAs                 *RunAs           `yaml:"runAs,omitempty"`
	Configure             *PipelineRequest `yaml:"configure,omitempty"`
	StartRunner           Runner           `yaml:"startRunner"`
	StatusRunner          Runner           `yaml:"statusRunner"`
}

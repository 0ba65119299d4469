package configure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cuemby/rolecfg/pkg/cache"
	"github.com/cuemby/rolecfg/pkg/log"
	"github.com/cuemby/rolecfg/pkg/metrics"
	"github.com/cuemby/rolecfg/pkg/paths"
	"github.com/cuemby/rolecfg/pkg/render"
	"github.com/cuemby/rolecfg/pkg/shell"
	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// DefaultInstallRoot is where service packages are unpacked
	DefaultInstallRoot = "/opt/datasophon"

	// DefaultScriptTimeout bounds role setup scripts
	DefaultScriptTimeout = 300 * time.Second

	templatesDir = "templates"
	configured   = "configure success"
)

// Renderer materializes one output group
type Renderer interface {
	Generate(group *types.OutputGroup, entries []types.ConfigEntry, packageName, overrideTemplateDir string) error
}

// PostStep runs after every group of a role has been rendered. A returned
// error fails the run.
type PostStep func(ctx context.Context, req *types.PipelineRequest, logger zerolog.Logger) error

// Config holds pipeline dependencies
type Config struct {
	InstallRoot   string
	Renderer      Renderer
	Paths         *paths.Manager // nil = OS ownership
	Rules         *Rules         // nil = DefaultRules()
	Cache         cache.Cache    // HOSTNAME and IP; nil = read from the OS
	Shell         shell.Executor // runs role post steps; nil = local
	ScriptTimeout time.Duration
}

// Pipeline runs the configuration of one service role
type Pipeline struct {
	installRoot string
	renderer    Renderer
	processor   *processor
	rules       *Rules
	cache       cache.Cache
	postSteps   map[string]PostStep
}

// New creates a pipeline with the built-in role post steps registered
func New(cfg Config) *Pipeline {
	if cfg.InstallRoot == "" {
		cfg.InstallRoot = DefaultInstallRoot
	}
	if cfg.Paths == nil {
		cfg.Paths = paths.NewManager(log.WithComponent("paths"))
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules()
	}
	if cfg.Shell == nil {
		cfg.Shell = shell.NewLocalExecutor()
	}
	if cfg.ScriptTimeout == 0 {
		cfg.ScriptTimeout = DefaultScriptTimeout
	}

	p := &Pipeline{
		installRoot: cfg.InstallRoot,
		renderer:    cfg.Renderer,
		processor:   &processor{paths: cfg.Paths, rules: cfg.Rules},
		rules:       cfg.Rules,
		cache:       cfg.Cache,
		postSteps:   make(map[string]PostStep),
	}
	p.RegisterPostStep(RangerAdminRole, RangerAdminSetup(cfg.Shell, cfg.InstallRoot, cfg.ScriptTimeout))
	return p
}

// RegisterPostStep sets the post step of a role, replacing any previous one
func (p *Pipeline) RegisterPostStep(role string, step PostStep) {
	p.postSteps[role] = step
}

// Configure processes and renders every output group of req. Errors never
// escape: they are logged and reported in the returned Result.
func (p *Pipeline) Configure(ctx context.Context, req *types.PipelineRequest) (result types.Result) {
	logger := log.WithRole(req.ServiceName, req.ServiceRoleName)
	timer := metrics.NewTimer()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("configuration run panicked")
			result = types.Result{Success: false, Error: fmt.Sprintf("configuration panicked: %v", r)}
		}
		timer.ObserveDurationVec(metrics.PipelineDuration, req.ServiceRoleName)
		metrics.PipelineRunsTotal.WithLabelValues(req.ServiceRoleName, metrics.ResultLabel(result.Success)).Inc()
	}()

	logger.Info().Msg("start to configure service role")

	node, err := p.nodeContext(req)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve node context")
		return types.Failure(err)
	}
	params := node.Params()

	for _, group := range req.Groups {
		if err := p.configureGroup(req, group, params, logger); err != nil {
			logger.Error().Err(err).Str("file", group.Filename).Msg("load app config template error")
			return types.Failure(err)
		}
		logger.Info().Str("file", group.Filename).Msg(configured)
	}

	if step, ok := p.postSteps[req.ServiceRoleName]; ok {
		if err := step(ctx, req, logger); err != nil {
			return types.Result{Success: false, Output: configured, Error: err.Error()}
		}
	}

	return types.Result{Success: true, Output: configured}
}

func (p *Pipeline) configureGroup(req *types.PipelineRequest, group *types.OutputGroup, params map[string]string, logger zerolog.Logger) error {
	state := &groupState{}
	env := &RuleEnv{
		Request:     req,
		Group:       group,
		InstallRoot: p.installRoot,
		Logger:      logger.With().Str("file", group.Filename).Logger(),
		state:       state,
	}

	kept, err := p.processor.process(env, params)
	if err != nil {
		return err
	}

	if req.MyID != nil && state.dataDir != "" {
		if err := writeMyID(state.dataDir, *req.MyID); err != nil {
			return err
		}
	}

	p.rules.applyGroup(env)

	group.Entries = append(kept, state.extra...)

	if len(group.Entries) > 0 {
		if p.renderer == nil {
			return fmt.Errorf("%w: no renderer configured", types.ErrRender)
		}
		override := p.overrideTemplateDir(req.DecompressPackageName)
		if override != "" {
			env.Logger.Info().Str("path", override).Msg("add ext app template path")
		}
		if err := p.renderer.Generate(group, group.Entries, req.DecompressPackageName, override); err != nil {
			return err
		}
		metrics.EntriesRendered.WithLabelValues(req.ServiceRoleName).Add(float64(len(group.Entries)))
		return nil
	}

	if strings.HasSuffix(group.Filename, ".sh") {
		return nil
	}
	return writeEmpty(render.OutputPath(p.installRoot, req.DecompressPackageName, group))
}

// overrideTemplateDir returns <package>/templates when the package ships one
func (p *Pipeline) overrideTemplateDir(packageName string) string {
	dir := filepath.Join(p.installRoot, packageName, templatesDir)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return dir
	}
	return ""
}

func (p *Pipeline) nodeContext(req *types.PipelineRequest) (NodeContext, error) {
	node := NodeContext{ClusterID: req.ClusterID, MyID: req.MyID}
	if p.cache != nil {
		node.Hostname = p.cache.GetString(cache.KeyHostname)
		node.IP = p.cache.GetString(cache.KeyIP)
	}

	if node.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return node, fmt.Errorf("failed to read hostname: %w", err)
		}
		node.Hostname = hostname
	}
	if node.IP == "" {
		ip, err := cache.LocalIP()
		if err != nil {
			return node, err
		}
		node.IP = ip
	}
	return node, nil
}

func writeMyID(dataDir string, myid int) error {
	if err := os.MkdirAll(dataDir, paths.DirMode); err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", types.ErrFilesystem, dataDir, err)
	}
	path := filepath.Join(dataDir, "myid")
	if err := os.WriteFile(path, []byte(strconv.Itoa(myid)), 0644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", types.ErrFilesystem, path, err)
	}
	return nil
}

func writeEmpty(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", types.ErrFilesystem, filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", types.ErrFilesystem, path, err)
	}
	return nil
}

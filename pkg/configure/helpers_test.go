package configure

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuemby/rolecfg/pkg/cache"
	"github.com/cuemby/rolecfg/pkg/paths"
	"github.com/cuemby/rolecfg/pkg/shell"
	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type renderCall struct {
	group    *types.OutputGroup
	entries  []types.ConfigEntry
	pkg      string
	override string
}

type fakeRenderer struct {
	calls []renderCall
	err   error
}

func (f *fakeRenderer) Generate(group *types.OutputGroup, entries []types.ConfigEntry, packageName, overrideTemplateDir string) error {
	f.calls = append(f.calls, renderCall{group: group, entries: entries, pkg: packageName, override: overrideTemplateDir})
	return f.err
}

type execCall struct {
	workDir string
	argv    []string
	timeout time.Duration
}

type fakeExecutor struct {
	results map[string]shell.Result // keyed by script base name
	calls   []execCall
}

func (f *fakeExecutor) Exec(_ context.Context, command string) shell.Result {
	f.calls = append(f.calls, execCall{argv: []string{command}})
	return shell.Result{Success: true}
}

func (f *fakeExecutor) ExecWithStatus(_ context.Context, workDir string, argv []string, timeout time.Duration, _ *zerolog.Logger) shell.Result {
	f.calls = append(f.calls, execCall{workDir: workDir, argv: argv, timeout: timeout})
	if r, ok := f.results[filepath.Base(argv[0])]; ok {
		return r
	}
	return shell.Result{Success: true}
}

type nopOwner struct {
	calls int
}

func (o *nopOwner) Chown(string, *types.RunAs) error {
	o.calls++
	return nil
}

type testEnv struct {
	root     string
	pipeline *Pipeline
	renderer *fakeRenderer
	exec     *fakeExecutor
	owner    *nopOwner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	c := cache.NewMemoryCache()
	require.NoError(t, c.Set(cache.KeyHostname, "node1"))
	require.NoError(t, c.Set(cache.KeyIP, "10.0.0.1"))

	env := &testEnv{
		root:     t.TempDir(),
		renderer: &fakeRenderer{},
		exec:     &fakeExecutor{results: map[string]shell.Result{}},
		owner:    &nopOwner{},
	}
	env.pipeline = New(Config{
		InstallRoot: env.root,
		Renderer:    env.renderer,
		Paths:       paths.NewManager(zerolog.Nop()).WithOwner(env.owner),
		Cache:       c,
		Shell:       env.exec,
	})
	return env
}

func request(role string, groups ...*types.OutputGroup) *types.PipelineRequest {
	return &types.PipelineRequest{
		ServiceName:           "TEST",
		ServiceRoleName:       role,
		ClusterID:             4,
		DecompressPackageName: "pkg-1.0",
		Groups:                groups,
	}
}

func find(entries []types.ConfigEntry, name string) (types.ConfigEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return types.ConfigEntry{}, false
}

func names(entries []types.ConfigEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func intPtr(i int) *int { return &i }

package configure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/cuemby/rolecfg/pkg/shell"
	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_InputAndMultiple(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename:        "zoo.cfg",
		OutputDirectory: "conf",
		Entries: []types.ConfigEntry{
			{Name: "host.dir", Value: types.StringValue("${host}-data"), Type: types.EntryTypeInput, Required: true},
			{Name: "servers", Value: types.ListValue("a", "b", "c"), Type: types.EntryTypeMultiple, Separator: ",", Required: true},
			{Name: "cluster", Value: types.StringValue("c${clusterId}@${ip}"), Type: types.EntryTypeInput, Required: true},
		},
	}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	require.True(t, res.Success, res.Error)
	require.Len(t, env.renderer.calls, 1)

	got := env.renderer.calls[0].entries
	assert.Equal(t, "node1-data", got[0].Value.String())
	assert.Equal(t, "a,b,c", got[1].Value.String())
	assert.Equal(t, "c4@10.0.0.1", got[2].Value.String())
	assert.Equal(t, "pkg-1.0", env.renderer.calls[0].pkg)
	assert.Equal(t, "", env.renderer.calls[0].override)
}

func TestConfigure_CoercesScalars(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename: "app.properties",
		Entries: []types.ConfigEntry{
			{Name: "enabled", Value: types.BoolValue(true), Required: true},
			{Name: "port", Value: types.IntValue(2181), Required: true},
		},
	}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	require.True(t, res.Success, res.Error)

	for _, e := range env.renderer.calls[0].entries {
		assert.Equal(t, types.KindString, e.Value.Kind(), e.Name)
	}
	port, _ := find(env.renderer.calls[0].entries, "port")
	assert.Equal(t, "2181", port.Value.String())
}

func TestConfigure_Retention(t *testing.T) {
	env := newTestEnv(t)
	optionalDir := filepath.Join(env.root, "optional")
	group := &types.OutputGroup{
		Filename: "app.properties",
		Entries: []types.ConfigEntry{
			{Name: "kept", Value: types.StringValue("1"), Required: true},
			{Name: "scratch", Value: types.StringValue("2"), Required: false},
			{Name: "opt.dir", Value: types.StringValue(optionalDir), ConfigType: types.ConfigTypePath, Required: false},
			{Name: "last", Value: types.StringValue("3"), Required: true},
		},
	}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	require.True(t, res.Success, res.Error)

	assert.Equal(t, []string{"kept", "last"}, names(env.renderer.calls[0].entries))
	// side effects of dropped entries still happen
	assert.DirExists(t, optionalDir)
}

func TestConfigure_CustomExpansion(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename: "zoo.cfg",
		Entries: []types.ConfigEntry{
			{Name: "first", Value: types.StringValue("1"), Required: true},
			{
				Name:       "custom.zoo.cfg",
				ConfigType: types.ConfigTypeCustom,
				Value:      types.MappingsValue(map[string]any{"a": 1}, map[string]any{"b": 2}),
			},
			{Name: "second", Value: types.StringValue("2"), Required: true},
		},
	}
	before := len(group.Entries)

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	require.True(t, res.Success, res.Error)

	got := env.renderer.calls[0].entries
	assert.Equal(t, []string{"first", "second", "a", "b"}, names(got))
	assert.Len(t, got, before+2-1)
	assert.Equal(t, got, group.Entries)

	a, _ := find(got, "a")
	assert.Equal(t, "1", a.Value.String())
}

func TestConfigure_Paths(t *testing.T) {
	env := newTestEnv(t)
	d1 := filepath.Join(env.root, "data", "1")
	d2 := filepath.Join(env.root, "data", "2")
	oldDir := filepath.Join(env.root, "old-data")
	newDir := filepath.Join(env.root, "new-data")
	require.NoError(t, os.MkdirAll(oldDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(oldDir, "snapshot"), []byte("s"), 0644))

	newGroup := func() *types.OutputGroup {
		return &types.OutputGroup{
			Filename: "hdfs-site.xml",
			Entries: []types.ConfigEntry{
				{Name: "dfs.data.dir", Value: types.StringValue(d1 + ":" + d2), ConfigType: types.ConfigTypePath, Separator: ":", Required: true},
				{Name: "moved.dir", Value: types.StringValue(newDir), DefaultValue: oldDir, ConfigType: types.ConfigTypeMvPath, Required: true},
			},
		}
	}

	req := request("DataNode", newGroup())
	req.RunAs = &types.RunAs{User: "hdfs", Group: "hadoop"}

	res := env.pipeline.Configure(context.Background(), req)
	require.True(t, res.Success, res.Error)

	assert.DirExists(t, d1)
	assert.DirExists(t, d2)
	assert.FileExists(t, filepath.Join(newDir, "snapshot"))
	assert.NoDirExists(t, oldDir)
	assert.Equal(t, 3, env.owner.calls)

	// Re-running is a no-op
	req = request("DataNode", newGroup())
	req.RunAs = &types.RunAs{User: "hdfs", Group: "hadoop"}
	res = env.pipeline.Configure(context.Background(), req)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, 3, env.owner.calls)
}

func TestConfigure_MyID(t *testing.T) {
	env := newTestEnv(t)
	dataDir := filepath.Join(env.root, "zk-data")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "myid"), []byte("old-content"), 0644))

	group := &types.OutputGroup{
		Filename: "zoo.cfg",
		Entries: []types.ConfigEntry{
			{Name: "dataDir", Value: types.StringValue(dataDir), Required: true},
		},
	}
	req := request("ZkServer", group)
	req.MyID = intPtr(7)

	res := env.pipeline.Configure(context.Background(), req)
	require.True(t, res.Success, res.Error)

	data, err := os.ReadFile(filepath.Join(dataDir, "myid"))
	require.NoError(t, err)
	assert.Equal(t, "7", string(data))

	dataDirEntry, ok := find(group.Entries, "dataDir")
	require.True(t, ok)
	assert.Equal(t, dataDir, dataDirEntry.Value.String())
}

func TestConfigure_NoMyIDWithoutValue(t *testing.T) {
	env := newTestEnv(t)
	dataDir := filepath.Join(env.root, "zk-data")
	group := &types.OutputGroup{
		Filename: "zoo.cfg",
		Entries:  []types.ConfigEntry{{Name: "dataDir", Value: types.StringValue(dataDir), Required: true}},
	}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	require.True(t, res.Success, res.Error)
	assert.NoFileExists(t, filepath.Join(dataDir, "myid"))
}

func TestConfigure_TrinoCoordinator(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename: "config.properties",
		Entries: []types.ConfigEntry{
			{Name: "coordinator", Value: types.BoolValue(false), Required: true},
			{Name: "http-server.http.port", Value: types.IntValue(8086), Required: true},
		},
	}

	res := env.pipeline.Configure(context.Background(), request("TrinoCoordinator", group))
	require.True(t, res.Success, res.Error)

	got := env.renderer.calls[0].entries
	coordinator, ok := find(got, "coordinator")
	require.True(t, ok)
	assert.Equal(t, "true", coordinator.Value.String())

	include, ok := find(got, "node-scheduler.include-coordinator")
	require.True(t, ok)
	assert.Equal(t, "false", include.Value.String())
	assert.Equal(t, "node-scheduler.include-coordinator", got[len(got)-1].Name)
}

func TestConfigure_TrinoRuleOnlyForCoordinatorRole(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename: "config.properties",
		Entries:  []types.ConfigEntry{{Name: "coordinator", Value: types.BoolValue(false), Required: true}},
	}

	res := env.pipeline.Configure(context.Background(), request("TrinoWorker", group))
	require.True(t, res.Success, res.Error)

	got := env.renderer.calls[0].entries
	assert.Equal(t, []string{"coordinator"}, names(got))
	assert.Equal(t, "false", got[0].Value.String())
}

func TestConfigure_PriorityNetworks(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename: "fe.conf",
		Entries: []types.ConfigEntry{
			{Name: "fe_priority_networks", Value: types.StringValue("10.0.0.0/24"), Required: true},
		},
	}

	res := env.pipeline.Configure(context.Background(), request("DorisFE", group))
	require.True(t, res.Success, res.Error)

	got := env.renderer.calls[0].entries
	assert.Equal(t, []string{"priority_networks"}, names(got))
	assert.Equal(t, "10.0.0.0/24", got[0].Value.String())
}

func TestConfigure_KyuubiHiveSiteLink(t *testing.T) {
	env := newTestEnv(t)
	confDir := filepath.Join(env.root, "pkg-1.0", "conf")
	require.NoError(t, os.MkdirAll(confDir, 0755))

	group := &types.OutputGroup{
		Filename: "kyuubi-env.sh",
		Entries: []types.ConfigEntry{
			{Name: "sparkHome", Value: types.StringValue("/opt/spark"), Required: true},
		},
	}

	res := env.pipeline.Configure(context.Background(), request("KyuubiServer", group))
	require.True(t, res.Success, res.Error)

	link, err := os.Readlink(filepath.Join(confDir, "hive-site.xml"))
	require.NoError(t, err)
	assert.Equal(t, "/opt/spark/conf/hive-site.xml", link)
}

func TestConfigure_KyuubiLinkFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	// no conf directory, so the symlink cannot be created
	group := &types.OutputGroup{
		Filename: "kyuubi-env.sh",
		Entries:  []types.ConfigEntry{{Name: "sparkHome", Value: types.StringValue("/opt/spark"), Required: true}},
	}

	res := env.pipeline.Configure(context.Background(), request("KyuubiServer", group))
	assert.True(t, res.Success, res.Error)
}

func TestConfigure_NodeProperties(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename: "node.properties",
		Entries:  []types.ConfigEntry{{Name: "node.environment", Value: types.StringValue("production"), Required: true}},
	}

	res := env.pipeline.Configure(context.Background(), request("TrinoWorker", group))
	require.True(t, res.Success, res.Error)

	id, ok := find(env.renderer.calls[0].entries, "node.id")
	require.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), id.Value.String())
}

func TestConfigure_GrafanaClusterID(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{Filename: "grafana.ini", TemplateName: "grafana.ini"}

	res := env.pipeline.Configure(context.Background(), request("Grafana", group))
	require.True(t, res.Success, res.Error)

	require.Len(t, env.renderer.calls, 1)
	got := env.renderer.calls[0].entries
	require.Len(t, got, 1)
	assert.Equal(t, "clusterId", got[0].Name)
	assert.Equal(t, "4", got[0].Value.String())
	assert.Equal(t, types.ConfigTypeMap, got[0].ConfigType)
}

func TestConfigure_EmptyGroupWritesEmptyFile(t *testing.T) {
	env := newTestEnv(t)
	props := &types.OutputGroup{
		Filename:        "empty.properties",
		OutputDirectory: "conf",
		Entries:         []types.ConfigEntry{{Name: "scratch", Value: types.StringValue("x")}},
	}
	script := &types.OutputGroup{Filename: "env.sh", OutputDirectory: "bin"}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", props, script))
	require.True(t, res.Success, res.Error)

	assert.Empty(t, env.renderer.calls)

	data, err := os.ReadFile(filepath.Join(env.root, "pkg-1.0", "conf", "empty.properties"))
	require.NoError(t, err)
	assert.Empty(t, data)

	assert.NoFileExists(t, filepath.Join(env.root, "pkg-1.0", "bin", "env.sh"))
}

func TestConfigure_OverrideTemplateDir(t *testing.T) {
	env := newTestEnv(t)
	templates := filepath.Join(env.root, "pkg-1.0", "templates")
	require.NoError(t, os.MkdirAll(templates, 0755))

	group := &types.OutputGroup{
		Filename: "app.conf",
		Entries:  []types.ConfigEntry{{Name: "k", Value: types.StringValue("v"), Required: true}},
	}

	res := env.pipeline.Configure(context.Background(), request("Custom", group))
	require.True(t, res.Success, res.Error)
	assert.Equal(t, templates, env.renderer.calls[0].override)
}

func TestConfigure_TransformErrorFailsRun(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename: "app.conf",
		Entries: []types.ConfigEntry{
			{Name: "servers", Value: types.StringValue("not-a-list"), Type: types.EntryTypeMultiple, Separator: ",", Required: true},
		},
	}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "servers")
	assert.Contains(t, res.Error, types.ErrTransform.Error())
	assert.Empty(t, env.renderer.calls)
}

func TestConfigure_RetainedValuesMustBeScalar(t *testing.T) {
	tests := []struct {
		name     string
		required bool
		wantOK   bool
	}{
		{name: "retained list fails", required: true, wantOK: false},
		{name: "dropped list is ignored", required: false, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			group := &types.OutputGroup{
				Filename: "app.conf",
				Entries: []types.ConfigEntry{
					{Name: "k", Value: types.StringValue("v"), Required: true},
					{Name: "hosts", Value: types.ListValue("a", "b"), Required: tt.required},
				},
			}

			res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
			assert.Equal(t, tt.wantOK, res.Success, res.Error)
			if !tt.wantOK {
				assert.Contains(t, res.Error, "hosts")
				assert.Empty(t, env.renderer.calls)
			}
		})
	}
}

func TestConfigure_MultipleWithoutSeparator(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename: "app.conf",
		Entries:  []types.ConfigEntry{{Name: "servers", Value: types.ListValue("a"), Type: types.EntryTypeMultiple, Required: true}},
	}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	assert.False(t, res.Success)
}

func TestConfigure_RenderErrorFailsRun(t *testing.T) {
	env := newTestEnv(t)
	env.renderer.err = errors.New("template zoo.cfg not found")

	group := &types.OutputGroup{
		Filename: "zoo.cfg",
		Entries:  []types.ConfigEntry{{Name: "k", Value: types.StringValue("v"), Required: true}},
	}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	assert.False(t, res.Success)
	assert.Equal(t, "template zoo.cfg not found", res.Error)
}

func TestConfigure_RangerAdminSetup(t *testing.T) {
	tests := []struct {
		name    string
		setup   bool
		globals bool
		want    bool
	}{
		{name: "setup succeeds", setup: true, globals: true, want: true},
		{name: "globals failure ignored", setup: true, globals: false, want: true},
		{name: "setup failure fails run", setup: false, globals: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.exec.results["setup.sh"] = shell.Result{Success: tt.setup, ExitCode: 1}
			env.exec.results["set_globals.sh"] = shell.Result{Success: tt.globals, ExitCode: 1}

			group := &types.OutputGroup{
				Filename: "install.properties",
				Entries:  []types.ConfigEntry{{Name: "db_host", Value: types.StringValue("db"), Required: true}},
			}

			res := env.pipeline.Configure(context.Background(), request(RangerAdminRole, group))
			assert.Equal(t, tt.want, res.Success, res.Error)
			assert.Equal(t, configured, res.Output)

			require.Len(t, env.exec.calls, 2)
			pkgDir := filepath.Join(env.root, "pkg-1.0")
			assert.Equal(t, []string{filepath.Join(pkgDir, "setup.sh")}, env.exec.calls[0].argv)
			assert.Equal(t, []string{filepath.Join(pkgDir, "set_globals.sh")}, env.exec.calls[1].argv)
			for _, c := range env.exec.calls {
				assert.Equal(t, pkgDir, c.workDir)
				assert.Equal(t, DefaultScriptTimeout, c.timeout)
			}
		})
	}
}

func TestConfigure_PostStepOnlyForItsRole(t *testing.T) {
	env := newTestEnv(t)
	group := &types.OutputGroup{
		Filename: "zoo.cfg",
		Entries:  []types.ConfigEntry{{Name: "k", Value: types.StringValue("v"), Required: true}},
	}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	require.True(t, res.Success)
	assert.Empty(t, env.exec.calls)
}

func TestConfigure_PanicBecomesFailure(t *testing.T) {
	env := newTestEnv(t)
	env.pipeline.rules.entry = append(env.pipeline.rules.entry, EntryRule{
		Name:  "boom",
		Names: []string{"k"},
		Apply: func(*RuleEnv, *types.ConfigEntry) { panic("boom") },
	})
	group := &types.OutputGroup{
		Filename: "zoo.cfg",
		Entries:  []types.ConfigEntry{{Name: "k", Value: types.StringValue("v"), Required: true}},
	}

	res := env.pipeline.Configure(context.Background(), request("ZkServer", group))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "boom")
}

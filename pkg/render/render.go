package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/cuemby/rolecfg/pkg/types"
	"github.com/pelletier/go-toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Item is one rendered key/value pair
type Item struct {
	Name  string
	Value string
}

// Data is the value templates execute against
type Data struct {
	Items    []Item
	ItemsMap map[string]string

	// Maps holds entries whose configType is map
	Maps map[string]string
}

// Renderer materializes output groups under the install root
type Renderer struct {
	installRoot string
	templateDir string
	logger      zerolog.Logger
}

// NewRenderer creates a renderer that looks up custom templates in templateDir
func NewRenderer(installRoot, templateDir string, logger zerolog.Logger) *Renderer {
	return &Renderer{
		installRoot: installRoot,
		templateDir: templateDir,
		logger:      logger,
	}
}

// OutputPath returns <installRoot>/<packageName>/<outputDirectory>/<filename>
func OutputPath(installRoot, packageName string, group *types.OutputGroup) string {
	return filepath.Join(installRoot, packageName, group.OutputDirectory, group.Filename)
}

// Generate renders entries into the group's output file. overrideTemplateDir,
// when non-empty, is searched for templates before the default directory.
func (r *Renderer) Generate(group *types.OutputGroup, entries []types.ConfigEntry, packageName, overrideTemplateDir string) error {
	var (
		content []byte
		err     error
	)

	switch format(group) {
	case types.FormatProperties:
		content = renderProperties(entries)
	case types.FormatYAML:
		content, err = renderYAML(entries)
	case types.FormatTOML:
		content, err = renderTOML(entries)
	case types.FormatCustom:
		content, err = r.renderTemplate(group, entries, overrideTemplateDir)
	default:
		err = fmt.Errorf("unknown config format %q", group.ConfigFormat)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", types.ErrRender, group.Filename, err)
	}

	out := OutputPath(r.installRoot, packageName, group)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("%w: failed to create output directory: %v", types.ErrRender, err)
	}
	if err := os.WriteFile(out, content, 0644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", types.ErrRender, out, err)
	}

	r.logger.Info().
		Str("file", out).
		Int("entries", len(entries)).
		Msg("rendered config file")
	return nil
}

func format(group *types.OutputGroup) types.ConfigFormat {
	if group.ConfigFormat != "" {
		return group.ConfigFormat
	}
	if group.TemplateName != "" {
		return types.FormatCustom
	}
	return types.FormatProperties
}

// NewData builds template data from entries in order. Later entries with the
// same name win in ItemsMap.
func NewData(entries []types.ConfigEntry) Data {
	d := Data{
		Items:    make([]Item, 0, len(entries)),
		ItemsMap: make(map[string]string, len(entries)),
		Maps:     make(map[string]string),
	}
	for _, e := range entries {
		v := e.Value.String()
		d.Items = append(d.Items, Item{Name: e.Name, Value: v})
		d.ItemsMap[e.Name] = v
		if e.ConfigType == types.ConfigTypeMap {
			d.Maps[e.Name] = v
		}
	}
	return d
}

func renderProperties(entries []types.ConfigEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s=%s\n", e.Name, e.Value.String())
	}
	return buf.Bytes()
}

func renderYAML(entries []types.ConfigEntry) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		var value yaml.Node
		if err := value.Encode(e.Value.Interface()); err != nil {
			return nil, err
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: e.Name},
			&value,
		)
	}
	return yaml.Marshal(doc)
}

func renderTOML(entries []types.ConfigEntry) ([]byte, error) {
	m := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		if e.Value.Kind() == types.KindNull {
			m[e.Name] = ""
			continue
		}
		m[e.Name] = e.Value.Interface()
	}
	tree, err := toml.TreeFromMap(m)
	if err != nil {
		return nil, err
	}
	s, err := tree.ToTomlString()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (r *Renderer) renderTemplate(group *types.OutputGroup, entries []types.ConfigEntry, overrideTemplateDir string) ([]byte, error) {
	name := group.TemplateName
	if name == "" {
		return nil, fmt.Errorf("no template name for custom format")
	}

	path, err := r.lookupTemplate(name, overrideTemplateDir)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Option("missingkey=zero").ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, filepath.Base(path), NewData(entries)); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) lookupTemplate(name, overrideTemplateDir string) (string, error) {
	var dirs []string
	if overrideTemplateDir != "" {
		dirs = append(dirs, overrideTemplateDir)
	}
	dirs = append(dirs, r.templateDir)

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("template %s not found in %v", name, dirs)
}

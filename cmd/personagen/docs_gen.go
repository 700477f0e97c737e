package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	cobraDoc "github.com/spf13/cobra/doc"

	"github.com/dotsetgreg/personagen/pkg/config"
	"github.com/dotsetgreg/personagen/pkg/persona"
	"github.com/dotsetgreg/personagen/pkg/providers"
)

const cliDocsDir = "reference/cli"

func newDocsCommand(rootFactory func() *cobra.Command) *cobra.Command {
	var (
		outputDir string
		checkOnly bool
	)

	gen := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate the CLI, config, provider and sample persona references",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outputDir) == "" {
				return fmt.Errorf("--output must not be empty")
			}
			return generateDocumentation(rootFactory, outputDir, checkOnly)
		},
	}
	gen.Flags().StringVar(&outputDir, "output", "docs", "Docs directory root")
	gen.Flags().BoolVar(&checkOnly, "check", false, "Fail if the docs on disk differ from what would be generated")

	docs := &cobra.Command{
		Use:    "docs",
		Short:  "Maintain the generated reference docs",
		Hidden: true,
	}
	docs.AddCommand(gen)
	return docs
}

// generateDocumentation renders every reference page and writes it under
// outputDir, or with checkOnly reports the first page that is stale.
func generateDocumentation(rootFactory func() *cobra.Command, outputDir string, checkOnly bool) error {
	pages, err := renderReferencePages(rootFactory())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)

	if checkOnly {
		for _, name := range names {
			onDisk, err := os.ReadFile(filepath.Join(outputDir, filepath.FromSlash(name)))
			if err != nil {
				return fmt.Errorf("docs out of date: missing %s", name)
			}
			if !bytes.Equal(onDisk, pages[name]) {
				return fmt.Errorf("docs out of date: %s differs; run `personagen docs generate`", name)
			}
		}
		return checkNoStaleCLIPages(outputDir, pages)
	}

	// Removed commands must not leave pages behind.
	if err := os.RemoveAll(filepath.Join(outputDir, filepath.FromSlash(cliDocsDir))); err != nil {
		return fmt.Errorf("clear cli docs: %w", err)
	}
	for _, name := range names {
		path := filepath.Join(outputDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create dir for %s: %w", name, err)
		}
		if err := os.WriteFile(path, pages[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

func checkNoStaleCLIPages(outputDir string, pages map[string][]byte) error {
	entries, err := os.ReadDir(filepath.Join(outputDir, filepath.FromSlash(cliDocsDir)))
	if err != nil {
		return fmt.Errorf("docs out of date: %w", err)
	}
	for _, e := range entries {
		if _, ok := pages[cliDocsDir+"/"+e.Name()]; !ok {
			return fmt.Errorf("docs out of date: %s/%s has no command", cliDocsDir, e.Name())
		}
	}
	return nil
}

// renderReferencePages maps slash-separated paths under the docs root to
// their generated content.
func renderReferencePages(root *cobra.Command) (map[string][]byte, error) {
	pages := map[string][]byte{}
	if err := renderCLIPages(root, pages); err != nil {
		return nil, err
	}

	defaults, err := flattenConfigDefaults()
	if err != nil {
		return nil, err
	}
	pages["reference/config.md"] = []byte(buildConfigReferenceMarkdown(defaults))
	pages["reference/providers.md"] = []byte(buildProvidersReferenceMarkdown(defaults))

	personas, err := buildPersonasReferenceMarkdown()
	if err != nil {
		return nil, err
	}
	pages["reference/personas.md"] = []byte(personas)
	return pages, nil
}

func renderCLIPages(cmd *cobra.Command, pages map[string][]byte) error {
	if cmd.Name() == "docs" || (cmd.HasParent() && !cmd.IsAvailableCommand()) {
		return nil
	}
	cmd.DisableAutoGenTag = true
	for _, child := range cmd.Commands() {
		if err := renderCLIPages(child, pages); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", cmd.CommandPath())
	if err := cobraDoc.GenMarkdownCustom(cmd, &buf, func(name string) string { return name }); err != nil {
		return fmt.Errorf("render %s: %w", cmd.CommandPath(), err)
	}
	pages[cliDocsDir+"/"+strings.ReplaceAll(cmd.CommandPath(), " ", "_")+".md"] = buf.Bytes()
	return nil
}

type configFieldRow struct {
	Path    string
	Type    string
	Env     string
	Default string
}

func buildConfigReferenceMarkdown(defaults map[string]string) string {
	var b strings.Builder
	b.WriteString("# Config Reference\n\n")
	b.WriteString("Generated from `pkg/config/config.go` and `config.DefaultConfig()`. ")
	b.WriteString("Every key can also be set through its environment variable, which wins over the file.\n\n")
	writeConfigTable(&b, collectConfigRows(reflect.TypeOf(config.Config{}), "", defaults))
	return b.String()
}

func collectConfigRows(t reflect.Type, prefix string, defaults map[string]string) []configFieldRow {
	var rows []configFieldRow
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if !f.IsExported() || key == "" || key == "-" {
			continue
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if f.Type.Kind() == reflect.Struct {
			rows = append(rows, collectConfigRows(f.Type, path, defaults)...)
			continue
		}
		rows = append(rows, configFieldRow{
			Path:    path,
			Type:    friendlyType(f.Type),
			Env:     f.Tag.Get("env"),
			Default: defaults[path],
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Path < rows[j].Path })
	return rows
}

func writeConfigTable(b *strings.Builder, rows []configFieldRow) {
	b.WriteString("| Key | Type | Env Var | Default |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| `%s` | `%s` | `%s` | `%s` |\n",
			escapePipes(r.Path), escapePipes(r.Type), escapePipes(valueOr(r.Env, "-")), escapePipes(valueOr(r.Default, "-")))
	}
}

// flattenConfigDefaults keys the JSON form of the default config by dotted
// path. Empty strings are left out so the table shows "-".
func flattenConfigDefaults() (map[string]string, error) {
	data, err := json.Marshal(config.DefaultConfig())
	if err != nil {
		return nil, err
	}
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	out := map[string]string{}
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		if m, ok := v.(map[string]any); ok {
			for k, child := range m {
				if prefix != "" {
					k = prefix + "." + k
				}
				walk(k, child)
			}
			return
		}
		if s, ok := v.(string); ok && s == "" {
			return
		}
		encoded, _ := json.Marshal(v)
		out[prefix] = string(encoded)
	}
	walk("", root)
	return out, nil
}

func friendlyType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice:
		return "array<" + friendlyType(t.Elem()) + ">"
	case reflect.Map:
		return "map<" + friendlyType(t.Key()) + "," + friendlyType(t.Elem()) + ">"
	default:
		return t.Kind().String()
	}
}

// providerNotes describes each remote backend. The field tables come from
// config.ProvidersConfig so they cannot drift.
var providerNotes = []struct {
	key, summary, auth, base string
}{
	{"gemini", "Gemini through the genai SDK. Uploaded PDFs are attached as inline data.", "`api_key`", ""},
	{"openrouter", "OpenRouter chat completions. PDFs are sent as extracted text.", "`api_key`", "https://openrouter.ai/api/v1"},
	{"openai", "OpenAI chat completions. PDFs are sent as extracted text. The key also serves speech when `speech.api_key` is empty.", "`api_key` or `api_key_file`, not both", "https://api.openai.com/v1"},
}

func buildProvidersReferenceMarkdown(defaults map[string]string) string {
	fields := map[string]reflect.Type{}
	pt := reflect.TypeOf(config.ProvidersConfig{})
	for i := 0; i < pt.NumField(); i++ {
		key, _, _ := strings.Cut(pt.Field(i).Tag.Get("json"), ",")
		fields[key] = pt.Field(i).Type
	}

	supported := providers.SupportedProviders()
	sort.Strings(supported)

	var b strings.Builder
	b.WriteString("# Provider Reference\n\n")
	b.WriteString("Set `providers.active` to one of the names below. With `" + providers.ProviderNone +
		"` personas are built and answered by the local heuristics only.\n\n")
	for _, name := range supported {
		b.WriteString("- `" + name + "`\n")
	}
	b.WriteString("\n")

	for _, n := range providerNotes {
		t, ok := fields[n.key]
		if !ok {
			continue
		}
		prefix := "providers." + n.key
		fmt.Fprintf(&b, "## `%s`\n\n%s\n\n- Credentials: %s\n", n.key, n.summary, n.auth)
		if base := valueOr(defaults[prefix+".api_base"], n.base); base != "" {
			fmt.Fprintf(&b, "- Default API base: `%s`\n", base)
		}
		b.WriteString("\n")
		writeConfigTable(&b, collectConfigRows(t, prefix, defaults))
		b.WriteString("\n")
	}
	return b.String()
}

func buildPersonasReferenceMarkdown() (string, error) {
	var b strings.Builder
	b.WriteString("# Sample Persona Reference\n\n")
	b.WriteString("Use an ID with `personagen chat --sample` or `POST /load_sample`.\n\n")
	b.WriteString("| ID | Name | Title | Era | Nationality | Traits |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, id := range persona.SampleIDs() {
		p, err := persona.Sample(id)
		if err != nil {
			return "", fmt.Errorf("load sample %s: %w", id, err)
		}
		traits := make([]string, 0, len(p.Traits))
		for _, t := range p.Traits {
			traits = append(traits, fmt.Sprintf("%s (%d)", t.Name, t.Value))
		}
		cells := []string{"`" + id + "`", p.Name, p.Title, valueOr(p.Era, "-"), valueOr(p.Nationality, "-"), valueOr(strings.Join(traits, ", "), "-")}
		for i := range cells {
			cells[i] = escapePipes(cells[i])
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	b.WriteString("\n## Emptiness Rules\n\n")
	b.WriteString("A built persona is replaced by the text heuristics when, for each `persona.empty_check` value:\n\n")
	b.WriteString("- `strict`: its name is a placeholder and it has neither traits nor knowledge domains.\n")
	b.WriteString("- `legacy`: its name is a placeholder, or it has neither traits nor knowledge domains.\n\n")
	b.WriteString("Placeholder names are blank, shorter than three characters, or one of \"Unknown\", " +
		"\"Unknown Individual\", \"Unknown Persona\" and \"Unknown Person\".\n")
	return b.String(), nil
}

func escapePipes(v string) string {
	return strings.ReplaceAll(v, "|", "\\|")
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

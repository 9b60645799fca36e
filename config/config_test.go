package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/config"
	"github.com/fwojciec/prettify/diagram"
	"github.com/fwojciec/prettify/diff"
	"github.com/fwojciec/prettify/markdown"
	"github.com/fwojciec/prettify/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(nil)

	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.InDelta(t, 0.6, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, diagram.EngineAuto, cfg.Diagrams.Engine)
	assert.True(t, cfg.Diagrams.Cache)
}

func TestParse_OverlaysDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(`
confidence_threshold = 0.75

[renderers.markdown]
header_style = "underlined"
table_style = "rounded"

[renderers.diff]
style = "side_by_side"

[renderers.json]
max_depth_expanded = 5

[renderers.stack_trace]
app_packages = ["github.com/acme"]

[diagrams]
engine = "kroki"
kroki_server = "http://localhost:8000"

[diagrams.languages.nomnoml]
display_name = "Nomnoml"
kroki_type = "nomnoml"

[theme]
name = "latte"
`))

	require.NoError(t, err)
	assert.InDelta(t, 0.75, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, markdown.HeaderUnderlined, cfg.Renderers.Markdown.HeaderStyle)
	assert.Equal(t, table.StyleRounded, cfg.Renderers.Markdown.TableStyle)
	assert.Equal(t, markdown.DefaultOptions().LinkStyle, cfg.Renderers.Markdown.LinkStyle, "unset keys keep defaults")
	assert.Equal(t, diff.LayoutSideBySide, cfg.Renderers.Diff.Style)
	assert.True(t, cfg.Renderers.Diff.WordDiff)
	assert.Equal(t, 5, cfg.Renderers.JSON.MaxDepthExpanded)
	assert.Equal(t, 200, cfg.Renderers.JSON.MaxStringLength)
	assert.Equal(t, []string{"github.com/acme"}, cfg.Renderers.StackTrace.AppPackages)
	assert.Equal(t, diagram.EngineKroki, cfg.Diagrams.Engine)
	assert.Equal(t, "http://localhost:8000", cfg.Diagrams.KrokiServer)
	assert.True(t, cfg.Diagrams.Cache)
	assert.Equal(t, "nomnoml", cfg.Diagrams.Languages["nomnoml"].KrokiType)
	assert.Equal(t, "latte", cfg.Theme.Name)
}

func TestParse_Detectors(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(`
[detectors.json]
enabled = false

[detectors.log]
priority = 5

[[detectors.log.overrides]]
id = "log_timestamp_level"
weight = 0.9
scope = "first_lines:10"

[[detectors.log.overrides]]
id = "log_bare_level"
enabled = false

[[detectors.log.rules]]
id = "log_my_app"
pattern = '^\[myapp\]'
scope = "first_lines:3"
strength = "strong"
command_context = '^myapp\b'
description = "myapp prefix"

[[detectors.log.rules]]
id = "log_weightless"
pattern = "x"
`))
	require.NoError(t, err)

	assert.False(t, cfg.Detector("json").IsEnabled())
	assert.True(t, cfg.Detector("yaml").IsEnabled())
	assert.Equal(t, 5, cfg.Detector("log").PriorityOr(40))
	assert.Equal(t, 70, cfg.Detector("xml").PriorityOr(70))

	overrides, err := cfg.Detector("log").RuleOverrides()
	require.NoError(t, err)
	require.Len(t, overrides, 2)
	assert.Equal(t, "log_timestamp_level", overrides[0].ID)
	require.NotNil(t, overrides[0].Weight)
	assert.InDelta(t, 0.9, *overrides[0].Weight, 1e-9)
	require.NotNil(t, overrides[0].Scope)
	assert.Equal(t, prettify.FirstLines(10), *overrides[0].Scope)
	assert.Nil(t, overrides[0].Enabled)
	require.NotNil(t, overrides[1].Enabled)
	assert.False(t, *overrides[1].Enabled)
	assert.Nil(t, overrides[1].Scope)

	rules, err := cfg.Detector("log").UserRules()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	r := rules[0]
	assert.Equal(t, "log_my_app", r.ID)
	assert.True(t, r.Pattern.MatchString("[myapp] started"))
	assert.Equal(t, prettify.FirstLines(3), r.Scope)
	assert.Equal(t, prettify.Strong, r.Strength)
	assert.Equal(t, prettify.UserDefined, r.Source)
	assert.True(t, r.Enabled)
	assert.True(t, r.CommandContext.MatchString("myapp serve"))
	assert.False(t, r.CommandContext.MatchString("other"))
	assert.InDelta(t, config.DefaultUserRuleWeight, rules[1].Weight, 1e-9)
	assert.Equal(t, prettify.AnyLine(), rules[1].Scope)
	assert.Equal(t, prettify.Supporting, rules[1].Strength)
	assert.Nil(t, rules[1].CommandContext)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		toml string
		want string
	}{
		{"invalid toml", "confidence_threshold = ", "parse config"},
		{"unknown key", "colour = 1", "parse config"},
		{"threshold out of range", "confidence_threshold = 1.5", "out of range"},
		{"unknown engine", "[diagrams]\nengine = \"gpu\"", `unknown engine "gpu"`},
		{"invalid rule pattern", "[[detectors.log.rules]]\nid = \"bad\"\npattern = \"(\"", "rule bad: invalid pattern"},
		{"invalid rule scope", "[[detectors.log.rules]]\nid = \"bad\"\npattern = \"x\"\nscope = \"everywhere\"", "unknown rule scope"},
		{"invalid strength", "[[detectors.log.rules]]\nid = \"bad\"\npattern = \"x\"\nstrength = \"huge\"", "unknown rule strength"},
		{"missing rule id", "[[detectors.log.rules]]\npattern = \"x\"", "rule without id"},
		{"invalid override scope", "[[detectors.log.overrides]]\nid = \"a\"\nscope = \"first_lines\"", "requires a line count"},
		{"custom renderer without id", "[[custom_renderers]]\nrender_command = \"cat\"", "custom_renderers[0]: id is required"},
		{"custom renderer bad pattern", "[[custom_renderers]]\nid = \"x\"\ndetect_patterns = [\"(\"]", "custom_renderers[0]: detect_patterns[0]"},
		{"duplicate custom renderer", "[[custom_renderers]]\nid = \"x\"\n[[custom_renderers]]\nid = \"x\"", `custom_renderers[1]: duplicate id "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Parse([]byte(tt.toml))

			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParse_CustomRenderers(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(`
[renderers.csv]
stripe_rows = false

[renderers.sql_results]
table_style = "ascii"

[[custom_renderers]]
id = "hcl"
name = "HCL"
detect_patterns = ['^resource "', '^variable "']
render_command = "hclfmt"
render_args = ["-"]
priority = 15

[[custom_renderers]]
id = "plain"
render_command = "cat"
`))

	require.NoError(t, err)
	assert.False(t, cfg.Renderers.CSV.StripeRows)
	assert.True(t, cfg.Renderers.CSV.ShowCount, "unset keys keep defaults")
	assert.Equal(t, table.StyleASCII, cfg.Renderers.SQLResults.TableStyle)
	require.Len(t, cfg.CustomRenderers, 2)

	hcl := cfg.CustomRenderers[0]
	assert.Equal(t, []string{`^resource "`, `^variable "`}, hcl.DetectPatterns)
	assert.Equal(t, "hclfmt", hcl.RenderCommand)
	assert.Equal(t, []string{"-"}, hcl.RenderArgs)
	assert.Equal(t, 15, hcl.ResolvedPriority())
	assert.Equal(t, "HCL", hcl.DisplayName())

	plain := cfg.CustomRenderers[1]
	assert.Equal(t, config.DefaultCustomPriority, plain.ResolvedPriority())
	assert.Equal(t, "plain", plain.DisplayName())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[theme]\nname = \"latte\"\n"), 0o644))

		cfg, err := config.Load(path)

		require.NoError(t, err)
		assert.Equal(t, "latte", cfg.Theme.Name)
	})

	t.Run("missing explicit path", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))

		assert.ErrorContains(t, err, "read config")
	})

	t.Run("parse errors name the file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("confidence_threshold = 2.0"), 0o644))

		_, err := config.Load(path)

		assert.ErrorContains(t, err, path)
	})
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("prettify", "config.toml"), filepath.Join(filepath.Base(filepath.Dir(config.DefaultPath())), filepath.Base(config.DefaultPath())))
}

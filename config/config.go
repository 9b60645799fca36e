// Package config loads prettify settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/adrg/xdg"
	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/csv"
	"github.com/fwojciec/prettify/diagram"
	"github.com/fwojciec/prettify/diff"
	"github.com/fwojciec/prettify/jsontree"
	"github.com/fwojciec/prettify/logs"
	"github.com/fwojciec/prettify/markdown"
	"github.com/fwojciec/prettify/sqlresults"
	"github.com/fwojciec/prettify/stacktrace"
	"github.com/fwojciec/prettify/tomltree"
	"github.com/fwojciec/prettify/xmltree"
	"github.com/fwojciec/prettify/yamltree"
	"github.com/pelletier/go-toml/v2"
)

// DefaultUserRuleWeight is the weight of a user rule that sets none.
const DefaultUserRuleWeight = 0.3

// Config is the complete set of user settings.
type Config struct {
	ConfidenceThreshold float64                   `toml:"confidence_threshold"`
	Detectors           map[string]DetectorConfig `toml:"detectors"` // Keyed by format ID
	Renderers           Renderers                 `toml:"renderers"`
	Diagrams            diagram.Options           `toml:"diagrams"`
	Theme               Theme                     `toml:"theme"`
	CustomRenderers     []CustomRenderer          `toml:"custom_renderers"`
}

// Renderers holds per-format renderer options.
type Renderers struct {
	Markdown   markdown.Options   `toml:"markdown"`
	JSON       jsontree.Options   `toml:"json"`
	Diff       diff.Options       `toml:"diff"`
	Log        logs.Options       `toml:"log"`
	StackTrace stacktrace.Options `toml:"stack_trace"`
	TOML       tomltree.Options   `toml:"toml"`
	XML        xmltree.Options    `toml:"xml"`
	YAML       yamltree.Options   `toml:"yaml"`
	CSV        csv.Options        `toml:"csv"`
	SQLResults sqlresults.Options `toml:"sql_results"`
}

// Theme selects the color theme.
type Theme struct {
	Name string `toml:"name"`
}

// DetectorConfig adjusts one detector.
type DetectorConfig struct {
	Enabled   *bool            `toml:"enabled"`
	Priority  *int             `toml:"priority"`
	Overrides []OverrideConfig `toml:"overrides"`
	Rules     []RuleConfig     `toml:"rules"`
}

// OverrideConfig changes a built-in rule. Unset fields keep the built-in value.
type OverrideConfig struct {
	ID      string   `toml:"id"`
	Enabled *bool    `toml:"enabled"`
	Weight  *float64 `toml:"weight"`
	Scope   string   `toml:"scope"`
}

// RuleConfig is an additional user rule.
type RuleConfig struct {
	ID             string   `toml:"id"`
	Pattern        string   `toml:"pattern"`
	Weight         *float64 `toml:"weight"`
	Scope          string   `toml:"scope"`    // Defaults to any_line
	Strength       string   `toml:"strength"` // supporting or strong
	CommandContext string   `toml:"command_context"`
	Description    string   `toml:"description"`
	Enabled        *bool    `toml:"enabled"`
}

// DefaultCustomPriority is the priority of a custom renderer that sets none.
const DefaultCustomPriority = 50

// CustomRenderer is a user-defined format: detection patterns plus an
// external command that receives the block on stdin and prints the result.
type CustomRenderer struct {
	ID             string   `toml:"id"`
	Name           string   `toml:"name"`
	DetectPatterns []string `toml:"detect_patterns"`
	RenderCommand  string   `toml:"render_command"`
	RenderArgs     []string `toml:"render_args"`
	Priority       *int     `toml:"priority"`
}

// DisplayName returns Name, or ID when Name is empty.
func (c CustomRenderer) DisplayName() string {
	if c.Name == "" {
		return c.ID
	}
	return c.Name
}

// ResolvedPriority returns the configured priority or DefaultCustomPriority.
func (c CustomRenderer) ResolvedPriority() int {
	if c.Priority == nil {
		return DefaultCustomPriority
	}
	return *c.Priority
}

func (c CustomRenderer) validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	for i, p := range c.DetectPatterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("detect_patterns[%d]: %w", i, err)
		}
	}
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ConfidenceThreshold: 0.6,
		Renderers: Renderers{
			Markdown:   markdown.DefaultOptions(),
			JSON:       jsontree.DefaultOptions(),
			Diff:       diff.DefaultOptions(),
			Log:        logs.DefaultOptions(),
			StackTrace: stacktrace.DefaultOptions(),
			TOML:       tomltree.DefaultOptions(),
			XML:        xmltree.DefaultOptions(),
			YAML:       yamltree.DefaultOptions(),
			CSV:        csv.DefaultOptions(),
			SQLResults: sqlresults.DefaultOptions(),
		},
		Diagrams: diagram.DefaultOptions(),
		Theme:    Theme{Name: "mocha"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/prettify/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "prettify", "config.toml")
}

// Load reads the file at path over the defaults. An empty path reads
// DefaultPath and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are errors.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("parse config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and compiles every user rule and override.
func (c Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold %v out of range [0, 1]", c.ConfidenceThreshold)
	}
	switch c.Diagrams.Engine {
	case diagram.EngineAuto, diagram.EngineNative, diagram.EngineLocal, diagram.EngineKroki, diagram.EngineTextFallback:
	default:
		return fmt.Errorf("diagrams.engine: unknown engine %q", c.Diagrams.Engine)
	}
	var errs []error
	for format, d := range c.Detectors {
		if _, err := d.UserRules(); err != nil {
			errs = append(errs, fmt.Errorf("detectors.%s: %w", format, err))
		}
		if _, err := d.RuleOverrides(); err != nil {
			errs = append(errs, fmt.Errorf("detectors.%s: %w", format, err))
		}
	}
	seen := make(map[string]bool)
	for i, cr := range c.CustomRenderers {
		if err := cr.validate(); err != nil {
			errs = append(errs, fmt.Errorf("custom_renderers[%d]: %w", i, err))
			continue
		}
		if seen[cr.ID] {
			errs = append(errs, fmt.Errorf("custom_renderers[%d]: duplicate id %q", i, cr.ID))
		}
		seen[cr.ID] = true
	}
	return errors.Join(errs...)
}

// Detector returns the settings for formatID, zero when none are configured.
func (c Config) Detector(formatID string) DetectorConfig {
	return c.Detectors[formatID]
}

// IsEnabled reports whether the detector should be registered.
func (d DetectorConfig) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// PriorityOr returns the configured priority or def.
func (d DetectorConfig) PriorityOr(def int) int {
	if d.Priority == nil {
		return def
	}
	return *d.Priority
}

// UserRules compiles the additional rules.
func (d DetectorConfig) UserRules() ([]prettify.DetectionRule, error) {
	rules := make([]prettify.DetectionRule, 0, len(d.Rules))
	for _, rc := range d.Rules {
		r, err := rc.rule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (rc RuleConfig) rule() (prettify.DetectionRule, error) {
	if rc.ID == "" {
		return prettify.DetectionRule{}, errors.New("rule without id")
	}
	pattern, err := regexp.Compile(rc.Pattern)
	if err != nil {
		return prettify.DetectionRule{}, fmt.Errorf("rule %s: invalid pattern: %w", rc.ID, err)
	}
	scope := prettify.AnyLine()
	if rc.Scope != "" {
		if scope, err = prettify.ParseRuleScope(rc.Scope); err != nil {
			return prettify.DetectionRule{}, fmt.Errorf("rule %s: %w", rc.ID, err)
		}
	}
	strength, err := prettify.ParseRuleStrength(rc.Strength)
	if err != nil {
		return prettify.DetectionRule{}, fmt.Errorf("rule %s: %w", rc.ID, err)
	}
	r := prettify.DetectionRule{
		ID:          rc.ID,
		Pattern:     pattern,
		Weight:      DefaultUserRuleWeight,
		Scope:       scope,
		Strength:    strength,
		Source:      prettify.UserDefined,
		Description: rc.Description,
		Enabled:     rc.Enabled == nil || *rc.Enabled,
	}
	if rc.Weight != nil {
		r.Weight = *rc.Weight
	}
	if rc.CommandContext != "" {
		cc, err := regexp.Compile(rc.CommandContext)
		if err != nil {
			return prettify.DetectionRule{}, fmt.Errorf("rule %s: invalid command_context: %w", rc.ID, err)
		}
		r.CommandContext = cc
	}
	return r, nil
}

// RuleOverrides converts the overrides, parsing their scopes.
func (d DetectorConfig) RuleOverrides() ([]prettify.RuleOverride, error) {
	out := make([]prettify.RuleOverride, 0, len(d.Overrides))
	for _, oc := range d.Overrides {
		ov := prettify.RuleOverride{ID: oc.ID, Enabled: oc.Enabled, Weight: oc.Weight}
		if oc.Scope != "" {
			scope, err := prettify.ParseRuleScope(oc.Scope)
			if err != nil {
				return nil, fmt.Errorf("override %s: %w", oc.ID, err)
			}
			ov.Scope = &scope
		}
		out = append(out, ov)
	}
	return out, nil
}

package detect_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/fwojciec/prettify"
	"github.com/fwojciec/prettify/detect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(text, command string) prettify.ContentBlock {
	return prettify.NewContentBlock(text, command)
}

func ptr[T any](v T) *T { return &v }

func TestDetector_WeightedConfidence(t *testing.T) {
	t.Parallel()

	d := detect.New("demo", "Demo",
		detect.WithThreshold(0.5),
		detect.WithMinMatchingRules(2),
		detect.WithRules(
			prettify.DetectionRule{ID: "a", Pattern: regexp.MustCompile(`^a`), Weight: 0.3, Scope: prettify.AnyLine(), Strength: prettify.Strong, Enabled: true},
			prettify.DetectionRule{ID: "b", Pattern: regexp.MustCompile(`^b`), Weight: 0.4, Scope: prettify.AnyLine(), Enabled: true},
			prettify.DetectionRule{ID: "c", Pattern: regexp.MustCompile(`^c`), Weight: 0.9, Scope: prettify.AnyLine(), Enabled: true},
		),
	)

	t.Run("sums matched weights", func(t *testing.T) {
		t.Parallel()

		res, ok := d.Detect(block("a\nb", ""))

		require.True(t, ok)
		assert.InDelta(t, 0.7, res.Confidence, 1e-9)
		assert.Equal(t, []string{"a", "b"}, res.MatchedRules)
		assert.Equal(t, prettify.AutoDetected, res.Source)
	})

	t.Run("caps confidence at one", func(t *testing.T) {
		t.Parallel()

		res, ok := d.Detect(block("a\nb\nc", ""))

		require.True(t, ok)
		assert.InDelta(t, 1.0, res.Confidence, 1e-9)
	})

	t.Run("requires minimum rule count", func(t *testing.T) {
		t.Parallel()

		_, ok := d.Detect(block("c", ""))

		assert.False(t, ok)
	})

	t.Run("below threshold yields nothing", func(t *testing.T) {
		t.Parallel()

		low := detect.New("demo", "Demo",
			detect.WithThreshold(0.9),
			detect.WithRules(
				prettify.DetectionRule{ID: "a", Pattern: regexp.MustCompile(`^a`), Weight: 0.3, Scope: prettify.AnyLine(), Enabled: true},
			),
		)

		_, ok := low.Detect(block("a", ""))

		assert.False(t, ok)
	})
}

func TestDetector_ShortCircuit(t *testing.T) {
	t.Parallel()

	rules := detect.WithRules(
		prettify.DetectionRule{ID: "weak", Pattern: regexp.MustCompile(`x`), Weight: 0.1, Scope: prettify.AnyLine(), Enabled: true},
		prettify.DetectionRule{ID: "definitive", Pattern: regexp.MustCompile(`^!!`), Weight: 0.8, Scope: prettify.AnyLine(), Strength: prettify.Strong, Enabled: true},
		prettify.DetectionRule{ID: "later", Pattern: regexp.MustCompile(`x`), Weight: 0.5, Scope: prettify.AnyLine(), Enabled: true},
	)

	t.Run("definitive strong rule ends detection", func(t *testing.T) {
		t.Parallel()

		d := detect.New("demo", "Demo", detect.WithShortCircuit(true), detect.WithMinMatchingRules(3), rules)

		res, ok := d.Detect(block("x\n!!", ""))

		require.True(t, ok)
		assert.InDelta(t, 1.0, res.Confidence, 1e-9)
		assert.Equal(t, []string{"definitive"}, res.MatchedRules)
	})

	t.Run("disabled short circuit keeps accumulating", func(t *testing.T) {
		t.Parallel()

		d := detect.New("demo", "Demo", rules)

		res, ok := d.Detect(block("x\n!!", ""))

		require.True(t, ok)
		assert.Equal(t, []string{"weak", "definitive", "later"}, res.MatchedRules)
	})
}

func TestDetector_Scopes(t *testing.T) {
	t.Parallel()

	mk := func(scope prettify.RuleScope) *detect.Detector {
		return detect.New("demo", "Demo",
			detect.WithThreshold(0.1),
			detect.WithRules(prettify.DetectionRule{ID: "r", Pattern: regexp.MustCompile(`^hit$`), Weight: 1, Scope: scope, Enabled: true}),
		)
	}
	b := block("miss\nmiss\nhit", "hit")

	_, ok := mk(prettify.FirstLines(2)).Detect(b)
	assert.False(t, ok)
	_, ok = mk(prettify.LastLines(1)).Detect(b)
	assert.True(t, ok)
	_, ok = mk(prettify.AnyLine()).Detect(b)
	assert.True(t, ok)
	_, ok = mk(prettify.PrecedingCommand()).Detect(b)
	assert.True(t, ok)
	_, ok = mk(prettify.PrecedingCommand()).Detect(block("x", ""))
	assert.False(t, ok)
}

func TestDetector_CommandContext(t *testing.T) {
	t.Parallel()

	d := detect.New("demo", "Demo",
		detect.WithThreshold(0.1),
		detect.WithRules(prettify.DetectionRule{
			ID:             "r",
			Pattern:        regexp.MustCompile(`.`),
			Weight:         1,
			Scope:          prettify.AnyLine(),
			CommandContext: regexp.MustCompile(`^kubectl`),
			Enabled:        true,
		}),
	)

	_, ok := d.Detect(block("pods", "kubectl get pods"))
	assert.True(t, ok)
	_, ok = d.Detect(block("pods", "ls"))
	assert.False(t, ok)
	_, ok = d.Detect(block("pods", ""))
	assert.False(t, ok)
}

func TestDetector_QuickMatch(t *testing.T) {
	t.Parallel()

	d := detect.Diff()

	assert.True(t, d.QuickMatch([]string{"diff --git a/x b/x"}))
	assert.False(t, d.QuickMatch([]string{"+just an added line"}))

	lines := make([]string, 40)
	lines[35] = "@@ -1 +1 @@"
	assert.False(t, d.QuickMatch(lines), "lines past the quick-match window are ignored")
}

func TestDetector_OverridesAndUserRules(t *testing.T) {
	t.Parallel()

	t.Run("disable rule", func(t *testing.T) {
		t.Parallel()

		d := detect.Diff()
		d.ApplyOverrides([]prettify.RuleOverride{
			{ID: "diff_git_header", Enabled: ptr(false)},
			{ID: "diff_unified_header", Enabled: ptr(false)},
		})

		_, ok := d.Detect(block("diff --git a/x b/x\n--- a/x\n+++ b/x", ""))

		assert.False(t, ok)
	})

	t.Run("reweight rule", func(t *testing.T) {
		t.Parallel()

		d := detect.YAML()
		d.ApplyOverrides([]prettify.RuleOverride{{ID: "yaml_list", Weight: ptr(0.5)}})

		var found bool
		for _, r := range d.Rules() {
			if r.ID == "yaml_list" {
				found = true
				assert.InDelta(t, 0.5, r.Weight, 1e-9)
			}
		}
		assert.True(t, found)
	})

	t.Run("user rule is appended", func(t *testing.T) {
		t.Parallel()

		d := detect.Log()
		before := len(d.Rules())
		d.MergeUserRules([]prettify.DetectionRule{{
			ID: "custom_prefix", Pattern: regexp.MustCompile(`^>>`), Weight: 0.5,
			Scope: prettify.AnyLine(), Strength: prettify.Strong, Source: prettify.UserDefined, Enabled: true,
		}})

		assert.Len(t, d.Rules(), before+1)
		res, ok := d.Detect(block(">> started\nINFO ready", ""))
		require.True(t, ok)
		assert.Contains(t, res.MatchedRules, "custom_prefix")
	})

	t.Run("user rule replaces same id", func(t *testing.T) {
		t.Parallel()

		d := detect.Log()
		before := len(d.Rules())
		d.MergeUserRules([]prettify.DetectionRule{{
			ID: "log_syslog", Pattern: regexp.MustCompile(`^never$`), Weight: 0.1, Scope: prettify.AnyLine(), Enabled: true,
		}})

		assert.Len(t, d.Rules(), before)
	})
}

func TestBuiltinDetectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		det     *detect.Detector
		text    string
		command string
		want    bool
	}{
		{"json object", detect.JSON(), "{\n  \"name\": \"x\",\n  \"n\": 1\n}", "", true},
		{"compact json", detect.JSON(), `{"items":[1,2,3]}`, "", true},
		{"json rejects prose", detect.JSON(), "hello world", "", false},
		{"git diff", detect.Diff(), "diff --git a/a b/a\n--- a/a\n+++ b/a\n@@ -1 +1 @@\n-x\n+y", "", true},
		{"plain diff", detect.Diff(), "--- a.txt\n+++ b.txt\n@@ -1 +1 @@\n-x\n+y", "", true},
		{"log lines", detect.Log(), "2024-01-15T10:30:00Z INFO started\n2024-01-15T10:30:01Z ERROR failed", "", true},
		{"single level word is not a log", detect.Log(), "INFO", "", false},
		{"python traceback", detect.StackTrace(), "Traceback (most recent call last):\n  File \"a.py\", line 3, in <module>\nValueError: bad", "", true},
		{"go panic", detect.StackTrace(), "goroutine 1 [running]:\nmain.main()\n\t/app/main.go:5 +0x1d", "", true},
		{"yaml", detect.YAML(), "name: app\nservices:\n  web:\n    image: nginx", "", true},
		{"toml", detect.TOML(), "[server]\nhost = \"localhost\"\nport = 8080", "", true},
		{"xml", detect.XML(), "<?xml version=\"1.0\"?>\n<root/>", "", true},
		{"xml without declaration", detect.XML(), "<root>\n  <item>x</item>\n</root>", "", true},
		{"markdown fence", detect.Markdown(), "Some text\n```go\nfmt.Println()\n```", "", true},
		{"markdown header alone", detect.Markdown(), "# Title", "", false},
		{"markdown header and list", detect.Markdown(), "# Title\n- one\n- **two**", "", true},
		{"diagram fence", detect.Diagrams([]string{"mermaid", "dot"}), "```mermaid\ngraph TD\nA-->B\n```", "", true},
		{"csv", detect.CSV(), "name,age,city\nalice,30,Paris\nbob,4,Rome", "", true},
		{"tsv", detect.CSV(), "id\tname\n1\talice\n2\tbob", "", true},
		{"csv from file command", detect.CSV(), "a,b\n1,2", "cat data.csv", true},
		{"ragged csv", detect.CSV(), "a,b,c\n1,2\n3", "", false},
		{"prose with a comma", detect.CSV(), "Hello, world", "", false},
		{"mysql results", detect.SQLResults(), "+----+------+\n| id | name |\n+----+------+\n|  1 | a    |\n+----+------+\n1 row in set (0.00 sec)", "", true},
		{"psql results", detect.SQLResults(), " id | name\n----+------\n  1 | a\n(1 row)", "", true},
		{"psql from client", detect.SQLResults(), " count\n-------\n     5\n(1 row)", "psql -c 'select count(*) from t'", true},
		{"markdown table is not sql", detect.SQLResults(), "| a | b |\n|---|---|\n| 1 | 2 |", "", false},
		{"diagram fence must open block", detect.Diagrams([]string{"mermaid"}), "intro\n```mermaid\ngraph TD\n```", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := block(tt.text, tt.command)
			ok := tt.det.QuickMatch(b.FirstLines(detect.QuickMatchLines))
			if ok {
				_, ok = tt.det.Detect(b)
			}

			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestMatchers(t *testing.T) {
	t.Parallel()

	assert.True(t, detect.ValidJSON{}.MatchString(`[1, 2]`))
	assert.False(t, detect.ValidJSON{}.MatchString(`"just a string"`))
	assert.True(t, detect.ValidTOML{}.MatchString("a = 1\n[b]\nc = 'x'"))
	assert.False(t, detect.ValidTOML{}.MatchString("a = "))
	assert.True(t, detect.WellFormedXML{}.MatchString("<a><b/></a>"))
	assert.False(t, detect.WellFormedXML{}.MatchString(strings.Repeat("plain ", 3)))
}

func TestConsistentColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"comma rows", "a,b\n1,2", true},
		{"tab rows", "a\tb\n1\t2\n3\t4", true},
		{"quoted delimiter", "a,b\n\"x, y\",2", true},
		{"field count differs", "a,b\n1,2,3", false},
		{"single column", "a\n1", false},
		{"single record", "a,b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, detect.ConsistentColumns{}.MatchString(tt.text))
		})
	}
}

func TestCustom(t *testing.T) {
	t.Parallel()

	d, err := detect.Custom("ansible", "Ansible", []string{`^PLAY \[`, `^TASK \[`})
	require.NoError(t, err)

	rules := d.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "ansible_rule_0", rules[0].ID)
	assert.Equal(t, prettify.Strong, rules[0].Strength)
	assert.Equal(t, "ansible_rule_1", rules[1].ID)
	assert.Equal(t, prettify.Supporting, rules[1].Strength)
	for _, r := range rules {
		assert.Equal(t, prettify.UserDefined, r.Source)
		assert.InDelta(t, 0.8, r.Weight, 1e-9)
	}

	tests := []struct {
		name       string
		text       string
		quick      bool
		want       bool
		confidence float64
	}{
		{"strong pattern is definitive", "PLAY [all]\nok", true, true, 1},
		{"supporting pattern alone", "TASK [setup]", false, true, 0.8},
		{"no match", "hello", false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := block(tt.text, "")
			assert.Equal(t, tt.quick, d.QuickMatch(b.Lines))
			res, ok := d.Detect(b)
			assert.Equal(t, tt.want, ok)
			assert.InDelta(t, tt.confidence, res.Confidence, 1e-9)
		})
	}

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()

		_, err := detect.Custom("bad", "Bad", []string{`(`})

		assert.ErrorContains(t, err, `custom renderer "bad": pattern 0`)
	})
}

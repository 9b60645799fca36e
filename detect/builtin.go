package detect

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/prettify"
)

func rule(id string, pattern string, weight float64, scope prettify.RuleScope, strength prettify.RuleStrength, desc string) prettify.DetectionRule {
	return prettify.DetectionRule{
		ID:          id,
		Pattern:     regexp.MustCompile(pattern),
		Weight:      weight,
		Scope:       scope,
		Strength:    strength,
		Source:      prettify.BuiltIn,
		Description: desc,
		Enabled:     true,
	}
}

func matcherRule(id string, m prettify.Matcher, weight float64, desc string) prettify.DetectionRule {
	return prettify.DetectionRule{
		ID:          id,
		Pattern:     m,
		Weight:      weight,
		Scope:       prettify.FullBlock(),
		Strength:    prettify.Supporting,
		Source:      prettify.BuiltIn,
		Description: desc,
		Enabled:     true,
	}
}

// JSON detects JSON documents.
func JSON() *Detector {
	return New("json", "JSON",
		WithRules(
			rule("json_open_brace", `^\s*\{\s*$`, 0.4, prettify.FirstLines(3), prettify.Strong, "Line containing only an opening brace"),
			rule("json_open_bracket", `^\s*\[\s*$`, 0.35, prettify.FirstLines(3), prettify.Strong, "Line containing only an opening bracket"),
			rule("json_compact_object", `^\s*\{"`, 0.3, prettify.FirstLines(1), prettify.Strong, "Compact object on the first line"),
			rule("json_key_value", `^\s*"[^"]+"\s*:\s*`, 0.3, prettify.AnyLine(), prettify.Strong, `Key-value pair ("key": value)`),
			rule("json_close_brace", `^\s*\}\s*,?\s*$`, 0.2, prettify.LastLines(3), prettify.Supporting, "Line containing only a closing brace"),
			matcherRule("json_valid", ValidJSON{}, 0.4, "Whole block parses as JSON"),
			rule("json_curl_context", `^(curl|http|httpie|wget)\s+`, 0.3, prettify.PrecedingCommand(), prettify.Supporting, "Preceding command is an HTTP client"),
			rule("json_jq_context", `^(jq|gron|fx)\s+`, 0.3, prettify.PrecedingCommand(), prettify.Supporting, "Preceding command is a JSON tool"),
		),
	)
}

// Diff detects unified and git diffs.
func Diff() *Detector {
	return New("diff", "Diff",
		WithShortCircuit(true),
		WithRules(
			rule("diff_git_header", `^diff --git\s+`, 0.9, prettify.FirstLines(5), prettify.Strong, "diff --git header at start of output"),
			rule("diff_unified_header", `(?m)^---\s+\S+.*\n\+\+\+\s+\S+`, 0.9, prettify.FullBlock(), prettify.Strong, "--- / +++ file header pair"),
			rule("diff_hunk", `^@@\s+-\d+,?\d*\s+\+\d+,?\d*\s+@@`, 0.8, prettify.AnyLine(), prettify.Strong, "@@ hunk header with line ranges"),
			rule("diff_add_line", `^\+[^+]`, 0.1, prettify.AnyLine(), prettify.Supporting, "Added line"),
			rule("diff_remove_line", `^-[^-]`, 0.1, prettify.AnyLine(), prettify.Supporting, "Removed line"),
			rule("diff_git_context", `^git\s+(diff|log|show)`, 0.3, prettify.PrecedingCommand(), prettify.Supporting, "Preceding command is git diff/log/show"),
		),
	)
}

// Log detects application log output.
func Log() *Detector {
	return New("log", "Log Output",
		WithThreshold(0.5),
		WithMinMatchingRules(2),
		WithRules(
			rule("log_timestamp_level", `^\d{4}[-/]\d{2}[-/]\d{2}[T ]\d{2}:\d{2}:\d{2}.*?(TRACE|DEBUG|INFO|WARN|ERROR|FATAL)`, 0.7, prettify.AnyLine(), prettify.Strong, "Timestamp followed by a level keyword"),
			rule("log_level_prefix", `^\s*\[?(TRACE|DEBUG|INFO|WARN|ERROR|FATAL)\]?\s`, 0.5, prettify.AnyLine(), prettify.Strong, "Level keyword at start of line"),
			rule("log_iso_timestamp", `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`, 0.3, prettify.AnyLine(), prettify.Supporting, "ISO 8601 timestamp at start of line"),
			rule("log_syslog", `^(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d+\s+\d{2}:\d{2}:\d{2}`, 0.4, prettify.AnyLine(), prettify.Strong, "Syslog timestamp"),
			rule("log_json_line", `^\{"(timestamp|time|ts|level|msg|message)":`, 0.6, prettify.AnyLine(), prettify.Strong, "Structured JSON log line"),
		),
	)
}

// StackTrace detects stack traces from common runtimes.
func StackTrace() *Detector {
	return New("stack_trace", "Stack Trace",
		WithMinMatchingRules(2),
		WithShortCircuit(true),
		WithRules(
			rule("stacktrace_java", `^\s+at\s+[\w.$]+\([\w.]+:\d+\)`, 0.7, prettify.AnyLine(), prettify.Strong, "JVM frame: at pkg.Class(File.java:N)"),
			rule("stacktrace_python_header", `^Traceback \(most recent call last\):`, 0.9, prettify.AnyLine(), prettify.Strong, "Python traceback header"),
			rule("stacktrace_python_frame", `^\s+File ".*", line \d+`, 0.6, prettify.AnyLine(), prettify.Strong, `Python frame: File "...", line N`),
			rule("stacktrace_rust_panic", `^thread '.*' panicked at`, 0.9, prettify.AnyLine(), prettify.Strong, "Rust panic header"),
			rule("stacktrace_js", `^\s+at\s+\S+\s+\(.*:\d+:\d+\)`, 0.6, prettify.AnyLine(), prettify.Strong, "JavaScript frame: at fn (file:N:N)"),
			rule("stacktrace_generic_error", `^(\w+Error|Exception|Caused by):`, 0.4, prettify.AnyLine(), prettify.Strong, "Error or exception header"),
			rule("stacktrace_go_panic", `^goroutine \d+ \[`, 0.8, prettify.AnyLine(), prettify.Strong, "Go goroutine header"),
		),
	)
}

// YAML detects YAML documents.
func YAML() *Detector {
	return New("yaml", "YAML",
		WithMinMatchingRules(2),
		WithRules(
			rule("yaml_doc_start", `^---\s*$`, 0.5, prettify.FirstLines(3), prettify.Strong, "Document start marker"),
			rule("yaml_key_value", `^[a-zA-Z_][\w.\-]*:(\s|$)`, 0.4, prettify.AnyLine(), prettify.Strong, "Top-level key: value"),
			rule("yaml_nested", `^\s{2,}[a-zA-Z_][\w.\-]*:(\s|$)`, 0.25, prettify.AnyLine(), prettify.Supporting, "Indented key: value"),
			rule("yaml_list", `^\s*-\s+\S`, 0.2, prettify.AnyLine(), prettify.Supporting, "List item"),
		),
	)
}

// TOML detects TOML documents.
func TOML() *Detector {
	return New("toml", "TOML",
		WithMinMatchingRules(2),
		WithRules(
			rule("toml_section", `^\[[\w.\-]+\]\s*$`, 0.4, prettify.AnyLine(), prettify.Strong, "[section] header"),
			rule("toml_array_table", `^\[\[[\w.\-]+\]\]\s*$`, 0.5, prettify.AnyLine(), prettify.Strong, "[[array]] table header"),
			rule("toml_key_value", `^[\w.\-]+\s*=\s*\S`, 0.3, prettify.AnyLine(), prettify.Strong, "key = value"),
			matcherRule("toml_valid", ValidTOML{}, 0.3, "Whole block parses as TOML"),
			rule("toml_file_context", `\.toml\b`, 0.3, prettify.PrecedingCommand(), prettify.Supporting, "Preceding command names a .toml file"),
		),
	)
}

// XML detects XML documents.
func XML() *Detector {
	return New("xml", "XML",
		WithMinMatchingRules(2),
		WithShortCircuit(true),
		WithRules(
			rule("xml_declaration", `^<\?xml\s`, 0.9, prettify.FirstLines(3), prettify.Strong, "<?xml ...?> declaration"),
			rule("xml_open_tag", `^\s*<[a-zA-Z][\w:.\-]*(\s+[^>]*)?>`, 0.3, prettify.AnyLine(), prettify.Strong, "Opening tag at start of line"),
			rule("xml_close_tag", `^\s*</[a-zA-Z][\w:.\-]*>`, 0.2, prettify.AnyLine(), prettify.Supporting, "Closing tag at start of line"),
			matcherRule("xml_well_formed", WellFormedXML{}, 0.4, "Whole block parses as XML"),
		),
	)
}

// Markdown detects Markdown documents.
func Markdown() *Detector {
	return New("markdown", "Markdown",
		WithShortCircuit(true),
		WithRules(
			rule("md_fenced_code", "^```\\w*\\s*$", 0.8, prettify.AnyLine(), prettify.Strong, "Fenced code block delimiter"),
			rule("md_fenced_tilde", `^~~~\w*\s*$`, 0.8, prettify.AnyLine(), prettify.Strong, "Tilde fenced code block delimiter"),
			rule("md_atx_header", `^#{1,6}\s+\S`, 0.5, prettify.AnyLine(), prettify.Strong, "ATX header"),
			rule("md_table", `^\|.*\|.*\|`, 0.4, prettify.AnyLine(), prettify.Strong, "Pipe table row"),
			rule("md_table_separator", `^\|[\s\-:\|]+\|`, 0.3, prettify.AnyLine(), prettify.Supporting, "Table separator row"),
			rule("md_bold", `\*\*[^*]+\*\*`, 0.2, prettify.AnyLine(), prettify.Supporting, "Bold text"),
			rule("md_italic", `(?:^|[^*])\*[^*]+\*(?:[^*]|$)`, 0.15, prettify.AnyLine(), prettify.Supporting, "Italic text"),
			rule("md_link", `\[([^\]]+)\]\(([^)]+)\)`, 0.2, prettify.AnyLine(), prettify.Supporting, "Inline link"),
			rule("md_list_bullet", `^\s*[-*+]\s+\S`, 0.15, prettify.AnyLine(), prettify.Supporting, "Bullet list item"),
			rule("md_list_ordered", `^\s*\d+[.)]\s+\S`, 0.15, prettify.AnyLine(), prettify.Supporting, "Ordered list item"),
			rule("md_blockquote", `^>\s+`, 0.15, prettify.AnyLine(), prettify.Supporting, "Blockquote"),
			rule("md_inline_code", "`[^`]+`", 0.1, prettify.AnyLine(), prettify.Supporting, "Inline code span"),
			rule("md_horizontal_rule", `^[-*_]\s*[-*_]\s*[-*_][\s*_-]*$`, 0.15, prettify.AnyLine(), prettify.Supporting, "Horizontal rule"),
			rule("md_assistant_context", `\b(claude|claude-code)\b|(?:^|\s)cc(?:\s|$)`, 0.2, prettify.PrecedingCommand(), prettify.Supporting, "Preceding command is an AI assistant CLI"),
		),
	)
}

// Diagrams detects blocks that start with a fence tagged with one of tags.
func Diagrams(tags []string) *Detector {
	if len(tags) == 0 {
		return New("diagrams", "Diagrams", WithThreshold(0.8))
	}
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = regexp.QuoteMeta(t)
	}
	pattern := "^```(" + strings.Join(quoted, "|") + `)\s*$`
	return New("diagrams", "Diagrams",
		WithThreshold(0.8),
		WithShortCircuit(true),
		WithRules(
			rule("diagram_fenced_block", pattern, 1.0, prettify.FirstLines(1), prettify.Strong, "Block opens with a diagram fence"),
		),
	)
}

// SQLResults detects psql and mysql result sets.
func SQLResults() *Detector {
	return New("sql_results", "SQL Results",
		WithMinMatchingRules(2),
		WithRules(
			rule("sql_mysql_border", `^\+(-+\+)+$`, 0.5, prettify.AnyLine(), prettify.Strong, "mysql border: +----+----+"),
			rule("sql_psql_separator", `^\s*-+(\+-+)+\s*$`, 0.5, prettify.AnyLine(), prettify.Strong, "psql header separator: ----+----"),
			rule("sql_row_count", `^(\(\d+ rows?\)|\d+ rows? in set\b)`, 0.4, prettify.AnyLine(), prettify.Strong, "Row count footer"),
			rule("sql_pipe_row", `^\|.*\|$`, 0.2, prettify.AnyLine(), prettify.Supporting, "Pipe delimited row"),
			rule("sql_psql_header", `^\s*\w+(\s*\|\s*\w+)+\s*$`, 0.2, prettify.FirstLines(3), prettify.Supporting, "psql column header"),
			rule("sql_client_context", `^(psql|mysql|mariadb|sqlite3)\b`, 0.3, prettify.PrecedingCommand(), prettify.Supporting, "Preceding command is a SQL client"),
		),
	)
}

// CSV detects comma and tab separated data.
func CSV() *Detector {
	return New("csv", "CSV/TSV",
		WithMinMatchingRules(2),
		WithRules(
			rule("csv_header", `^"?[A-Za-z_][\w .\-]*"?(,\s*"?[A-Za-z_][\w .\-]*"?)+$`, 0.3, prettify.FirstLines(1), prettify.Strong, "Comma separated header row"),
			rule("tsv_header", `^[A-Za-z_][\w .\-]*(\t[A-Za-z_][\w .\-]*)+$`, 0.3, prettify.FirstLines(1), prettify.Strong, "Tab separated header row"),
			matcherRule("csv_consistent_columns", ConsistentColumns{}, 0.5, "Every row has the same number of fields"),
			rule("csv_file_context", `\.(csv|tsv)\b`, 0.3, prettify.PrecedingCommand(), prettify.Supporting, "Preceding command names a .csv or .tsv file"),
		),
	)
}

// Custom builds the detector for a user-configured format. Each pattern
// becomes a rule "<id>_rule_<n>"; the first is Strong and the rest Supporting.
// A pattern that does not compile is an error.
func Custom(id, name string, patterns []string) (*Detector, error) {
	rules := make([]prettify.DetectionRule, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("custom renderer %q: pattern %d: %w", id, i, err)
		}
		strength := prettify.Supporting
		if i == 0 {
			strength = prettify.Strong
		}
		rules = append(rules, prettify.DetectionRule{
			ID:          fmt.Sprintf("%s_rule_%d", id, i),
			Pattern:     re,
			Weight:      0.8,
			Scope:       prettify.AnyLine(),
			Strength:    strength,
			Source:      prettify.UserDefined,
			Description: "Custom pattern: " + p,
			Enabled:     true,
		})
	}
	return New(id, name, WithShortCircuit(true), WithRules(rules...)), nil
}

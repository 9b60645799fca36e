package prettify

import (
	"fmt"
	"strconv"
	"strings"
)

// Matcher tests a string. *regexp.Regexp satisfies it.
type Matcher interface {
	MatchString(s string) bool
}

// ScopeKind selects which text a rule is allowed to test.
type ScopeKind int

// Scope kinds.
const (
	ScopeAnyLine ScopeKind = iota
	ScopeFirstLines
	ScopeLastLines
	ScopeFullBlock
	ScopePrecedingCommand
)

// RuleScope is a ScopeKind plus its line count for the first/last line kinds.
type RuleScope struct {
	Kind ScopeKind
	N    int
}

// AnyLine lets a rule test every line.
func AnyLine() RuleScope { return RuleScope{Kind: ScopeAnyLine} }

// FirstLines lets a rule test the first n lines.
func FirstLines(n int) RuleScope { return RuleScope{Kind: ScopeFirstLines, N: n} }

// LastLines lets a rule test the last n lines.
func LastLines(n int) RuleScope { return RuleScope{Kind: ScopeLastLines, N: n} }

// FullBlock tests the block's lines joined with newlines.
func FullBlock() RuleScope { return RuleScope{Kind: ScopeFullBlock} }

// PrecedingCommand tests the command that produced the block.
func PrecedingCommand() RuleScope { return RuleScope{Kind: ScopePrecedingCommand} }

func (s RuleScope) String() string {
	switch s.Kind {
	case ScopeFirstLines:
		return fmt.Sprintf("first_lines:%d", s.N)
	case ScopeLastLines:
		return fmt.Sprintf("last_lines:%d", s.N)
	case ScopeFullBlock:
		return "full_block"
	case ScopePrecedingCommand:
		return "preceding_command"
	default:
		return "any_line"
	}
}

// ParseRuleScope parses the textual scope form used in configuration files,
// e.g. "any_line", "first_lines:3", "full_block".
func ParseRuleScope(s string) (RuleScope, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch name {
	case "any_line":
		return AnyLine(), nil
	case "full_block":
		return FullBlock(), nil
	case "preceding_command":
		return PrecedingCommand(), nil
	case "first_lines", "last_lines":
		if !hasArg {
			return RuleScope{}, fmt.Errorf("scope %q requires a line count", name)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return RuleScope{}, fmt.Errorf("scope %q: invalid line count %q", name, arg)
		}
		if name == "first_lines" {
			return FirstLines(n), nil
		}
		return LastLines(n), nil
	}
	return RuleScope{}, fmt.Errorf("unknown rule scope %q", s)
}

// RuleStrength says whether a rule can decide detection on its own.
type RuleStrength int

// Rule strengths.
const (
	Supporting RuleStrength = iota // Only adds weight
	Strong                         // Takes part in quick matching and may short-circuit
)

// ParseRuleStrength parses "strong" or "supporting".
func ParseRuleStrength(s string) (RuleStrength, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "supporting":
		return Supporting, nil
	case "strong":
		return Strong, nil
	}
	return Supporting, fmt.Errorf("unknown rule strength %q", s)
}

// RuleSource records where a rule came from.
type RuleSource int

// Rule sources.
const (
	BuiltIn RuleSource = iota
	UserDefined
)

// DetectionRule is one weighted signal for a format.
type DetectionRule struct {
	ID             string
	Pattern        Matcher
	Weight         float64
	Scope          RuleScope
	Strength       RuleStrength
	Source         RuleSource
	CommandContext Matcher // When set, the rule only runs if the preceding command matches
	Description    string
	Enabled        bool
}

// RuleOverride adjusts an existing rule. Nil fields are left untouched.
type RuleOverride struct {
	ID      string
	Enabled *bool
	Weight  *float64
	Scope   *RuleScope
}

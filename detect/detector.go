// Package detect implements prettify.Detector as a set of weighted rules.
package detect

import (
	"github.com/fwojciec/prettify"
)

var _ prettify.Detector = (*Detector)(nil)

// QuickMatchLines is how many leading lines QuickMatch inspects.
const QuickMatchLines = 30

// DefaultDefinitiveWeight is the weight a Strong rule needs to end detection
// on its own when short-circuiting is enabled.
const DefaultDefinitiveWeight = 0.8

// Detector scores a block against its rules. It is safe for concurrent use
// once configuration (MergeUserRules, ApplyOverrides) is done.
type Detector struct {
	formatID         string
	displayName      string
	rules            []prettify.DetectionRule
	threshold        float64
	minMatching      int
	shortCircuit     bool
	definitiveWeight float64
}

// Option configures a Detector.
type Option func(*Detector)

// WithThreshold sets the minimum confidence the detector reports.
func WithThreshold(v float64) Option {
	return func(d *Detector) { d.threshold = v }
}

// WithMinMatchingRules sets how many rules must match before any result.
func WithMinMatchingRules(n int) Option {
	return func(d *Detector) { d.minMatching = n }
}

// WithShortCircuit lets a definitive Strong rule decide detection alone.
func WithShortCircuit(enabled bool) Option {
	return func(d *Detector) { d.shortCircuit = enabled }
}

// WithDefinitiveWeight sets the weight bar for short-circuiting.
func WithDefinitiveWeight(v float64) Option {
	return func(d *Detector) { d.definitiveWeight = v }
}

// WithRules appends rules.
func WithRules(rules ...prettify.DetectionRule) Option {
	return func(d *Detector) { d.rules = append(d.rules, rules...) }
}

// New creates a detector with a 0.6 threshold, one required rule and no
// short-circuiting.
func New(formatID, displayName string, opts ...Option) *Detector {
	d := &Detector{
		formatID:         formatID,
		displayName:      displayName,
		threshold:        0.6,
		minMatching:      1,
		definitiveWeight: DefaultDefinitiveWeight,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FormatID implements prettify.Detector.
func (d *Detector) FormatID() string { return d.formatID }

// DisplayName implements prettify.Detector.
func (d *Detector) DisplayName() string { return d.displayName }

// Threshold returns the detector's own confidence threshold.
func (d *Detector) Threshold() float64 { return d.threshold }

// Rules returns a copy of the detector's rules.
func (d *Detector) Rules() []prettify.DetectionRule {
	return append([]prettify.DetectionRule(nil), d.rules...)
}

// QuickMatch reports whether any enabled Strong rule scoped to lines matches
// one of the first QuickMatchLines lines.
func (d *Detector) QuickMatch(firstLines []string) bool {
	if len(firstLines) > QuickMatchLines {
		firstLines = firstLines[:QuickMatchLines]
	}
	for _, r := range d.rules {
		if !r.Enabled || r.Strength != prettify.Strong {
			continue
		}
		if r.Scope.Kind != prettify.ScopeAnyLine && r.Scope.Kind != prettify.ScopeFirstLines {
			continue
		}
		if anyMatch(r.Pattern, firstLines) {
			return true
		}
	}
	return false
}

// Detect evaluates every enabled rule against block.
func (d *Detector) Detect(block prettify.ContentBlock) (prettify.DetectionResult, bool) {
	var (
		total   float64
		matched []string
	)
	fullText := block.FullText()
	for _, r := range d.rules {
		if !r.Enabled || r.Pattern == nil {
			continue
		}
		if r.CommandContext != nil {
			if block.PrecedingCommand == "" || !r.CommandContext.MatchString(block.PrecedingCommand) {
				continue
			}
		}
		if !ruleMatches(r, block, fullText) {
			continue
		}
		total += r.Weight
		matched = append(matched, r.ID)
		if d.shortCircuit && r.Strength == prettify.Strong && r.Weight >= d.definitiveWeight {
			return prettify.DetectionResult{
				FormatID:     d.formatID,
				Confidence:   1,
				MatchedRules: []string{r.ID},
			}, true
		}
	}
	if len(matched) == 0 || len(matched) < d.minMatching {
		return prettify.DetectionResult{}, false
	}
	confidence := min(total, 1)
	if confidence < d.threshold {
		return prettify.DetectionResult{}, false
	}
	return prettify.DetectionResult{
		FormatID:     d.formatID,
		Confidence:   confidence,
		MatchedRules: matched,
	}, true
}

func ruleMatches(r prettify.DetectionRule, block prettify.ContentBlock, fullText string) bool {
	switch r.Scope.Kind {
	case prettify.ScopeFullBlock:
		return r.Pattern.MatchString(fullText)
	case prettify.ScopePrecedingCommand:
		return block.PrecedingCommand != "" && r.Pattern.MatchString(block.PrecedingCommand)
	case prettify.ScopeFirstLines:
		return anyMatch(r.Pattern, block.FirstLines(r.Scope.N))
	case prettify.ScopeLastLines:
		return anyMatch(r.Pattern, block.LastLines(r.Scope.N))
	default:
		return anyMatch(r.Pattern, block.Lines)
	}
}

func anyMatch(m prettify.Matcher, lines []string) bool {
	for _, line := range lines {
		if m.MatchString(line) {
			return true
		}
	}
	return false
}

// MergeUserRules replaces rules that share an ID and appends the rest.
func (d *Detector) MergeUserRules(rules []prettify.DetectionRule) {
	for _, ur := range rules {
		replaced := false
		for i := range d.rules {
			if d.rules[i].ID == ur.ID {
				d.rules[i] = ur
				replaced = true
				break
			}
		}
		if !replaced {
			d.rules = append(d.rules, ur)
		}
	}
}

// ApplyOverrides adjusts existing rules. Overrides for unknown IDs are ignored.
func (d *Detector) ApplyOverrides(overrides []prettify.RuleOverride) {
	for _, ov := range overrides {
		for i := range d.rules {
			r := &d.rules[i]
			if r.ID != ov.ID {
				continue
			}
			if ov.Enabled != nil {
				r.Enabled = *ov.Enabled
			}
			if ov.Weight != nil {
				r.Weight = *ov.Weight
			}
			if ov.Scope != nil {
				r.Scope = *ov.Scope
			}
		}
	}
}

package detect

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/pelletier/go-toml/v2"
)

// ValidJSON matches text that is a single JSON object or array.
type ValidJSON struct{}

// MatchString implements prettify.Matcher.
func (ValidJSON) MatchString(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return false
	}
	return json.Valid([]byte(s))
}

// ValidTOML matches text that parses as a non-empty TOML document.
type ValidTOML struct{}

// MatchString implements prettify.Matcher.
func (ValidTOML) MatchString(s string) bool {
	var doc map[string]any
	if err := toml.Unmarshal([]byte(s), &doc); err != nil {
		return false
	}
	return len(doc) > 0
}

// WellFormedXML matches text that parses as an XML document with a root element.
type WellFormedXML struct{}

// MatchString implements prettify.Matcher.
func (WellFormedXML) MatchString(s string) bool {
	if !strings.Contains(s, "<") {
		return false
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return false
	}
	return doc.Root() != nil
}

// ConsistentColumns matches text of at least two records that all split into
// the same number of fields, two or more, on comma or tab.
type ConsistentColumns struct{}

// MatchString implements prettify.Matcher.
func (ConsistentColumns) MatchString(s string) bool {
	comma := ','
	if strings.Count(s, "\t") > strings.Count(s, ",") {
		comma = '\t'
	}
	rd := csv.NewReader(strings.NewReader(s))
	rd.Comma = comma
	rd.LazyQuotes = true
	records := 0
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return records >= 2
		}
		// The reader rejects records whose field count differs from the first.
		if err != nil || len(rec) < 2 {
			return false
		}
		records++
	}
}

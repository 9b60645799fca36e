package diagram

import (
	"maps"
	"slices"
)

// Argument placeholders substituted with the temporary input and output
// paths when a local command runs.
const (
	InputPlaceholder  = "/dev/stdin"
	OutputPlaceholder = "/dev/stdout"
)

// nativeType is the Kroki type of the one language the native tier lays out.
const nativeType = "graphviz"

// Language describes how one fence tag can be rendered.
type Language struct {
	DisplayName string   `toml:"display_name"`
	KrokiType   string   `toml:"kroki_type"` // Empty when Kroki cannot render it
	Command     string   `toml:"command"`    // Empty when there is no local tool
	Args        []string `toml:"args"`
	Extension   string   `toml:"extension"` // Scratch input file extension, derived when empty
}

// extensions maps Kroki types to the file extensions their tools expect.
var extensions = map[string]string{
	"mermaid":    "mmd",
	"plantuml":   "puml",
	"graphviz":   "dot",
	"d2":         "d2",
	"ditaa":      "ditaa",
	"svgbob":     "bob",
	"erd":        "er",
	"vegalite":   "vl.json",
	"wavedrom":   "json",
	"excalidraw": "excalidraw",
}

// InputExtension returns the extension of the scratch file a local command
// reads: Extension when set, else the one for KrokiType, else "txt".
func (l Language) InputExtension() string {
	if l.Extension != "" {
		return l.Extension
	}
	if ext, ok := extensions[l.KrokiType]; ok {
		return ext
	}
	return "txt"
}

// DefaultLanguages returns the built-in languages keyed by fence tag.
func DefaultLanguages() map[string]Language {
	dot := Language{
		DisplayName: "GraphViz",
		KrokiType:   "graphviz",
		Command:     "dot",
		Args:        []string{"-Tpng", "-o", OutputPlaceholder, InputPlaceholder},
	}
	return map[string]Language{
		"mermaid": {
			DisplayName: "Mermaid",
			KrokiType:   "mermaid",
			Command:     "mmdc",
			Args:        []string{"-i", InputPlaceholder, "-o", OutputPlaceholder, "-e", "png"},
		},
		"plantuml": {DisplayName: "PlantUML", KrokiType: "plantuml"},
		"graphviz": dot,
		"dot":      dot,
		"d2": {
			DisplayName: "D2",
			KrokiType:   "d2",
			Command:     "d2",
			Args:        []string{InputPlaceholder, OutputPlaceholder},
		},
		"ditaa":      {DisplayName: "Ditaa", KrokiType: "ditaa"},
		"svgbob":     {DisplayName: "SvgBob", KrokiType: "svgbob"},
		"erd":        {DisplayName: "Erd", KrokiType: "erd", Command: "erd", Args: []string{"-i", InputPlaceholder, "-o", OutputPlaceholder, "-f", "png"}},
		"vegalite":   {DisplayName: "Vega-Lite", KrokiType: "vegalite"},
		"wavedrom":   {DisplayName: "WaveDrom", KrokiType: "wavedrom"},
		"excalidraw": {DisplayName: "Excalidraw", KrokiType: "excalidraw"},
	}
}

// Tags returns the built-in fence tags.
func Tags() []string {
	return slices.Sorted(maps.Keys(DefaultLanguages()))
}

// syntax drives the text fallback coloring for one diagram type.
type syntax struct {
	comments []string // Line prefixes that start a comment
	keywords []string // Line prefixes that start a directive
}

var syntaxes = map[string]syntax{
	"mermaid": {
		comments: []string{"%%"},
		keywords: []string{"graph ", "flowchart ", "sequenceDiagram", "classDiagram", "stateDiagram", "erDiagram", "gantt", "pie", "journey", "gitGraph", "mindmap", "subgraph ", "end", "participant ", "actor ", "section ", "title "},
	},
	"plantuml": {
		comments: []string{"'", "/'"},
		keywords: []string{"@start", "@end", "participant ", "actor ", "class ", "interface ", "package ", "note ", "skinparam ", "title "},
	},
	"graphviz": {
		comments: []string{"//", "#", "/*"},
		keywords: []string{"digraph", "graph ", "graph{", "strict ", "subgraph", "node ", "node[", "edge ", "edge[", "rankdir"},
	},
	"d2": {
		comments: []string{"#"},
		keywords: []string{"direction:", "vars:", "classes:", "style.", "shape:", "label:"},
	},
}

var defaultSyntax = syntax{
	comments: []string{"%%", "//", "#"},
	keywords: []string{"@", "graph ", "digraph ", "subgraph "},
}

func syntaxFor(lang Language) syntax {
	if s, ok := syntaxes[lang.KrokiType]; ok {
		return s
	}
	return defaultSyntax
}

func mergeLanguages(overrides map[string]Language) map[string]Language {
	langs := DefaultLanguages()
	for tag, o := range overrides {
		base, ok := langs[tag]
		if !ok {
			langs[tag] = o
			continue
		}
		if o.DisplayName != "" {
			base.DisplayName = o.DisplayName
		}
		if o.KrokiType != "" {
			base.KrokiType = o.KrokiType
		}
		if o.Command != "" {
			base.Command = o.Command
			base.Args = o.Args
		}
		if o.Extension != "" {
			base.Extension = o.Extension
		}
		langs[tag] = base
	}
	return langs
}

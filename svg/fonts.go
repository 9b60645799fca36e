package svg

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// FontIndex maps font family names to TrueType fonts. The system font list
// is enumerated on first use and shared by every rasterization after that.
// It is safe for concurrent use.
type FontIndex struct {
	list func() []string

	once  sync.Once
	paths map[string]string // normalized file base name to path

	mu    sync.Mutex
	fonts map[string]*truetype.Font // parsed fonts by path
}

// NewFontIndex creates an index over the font files returned by list.
func NewFontIndex(list func() []string) *FontIndex {
	return &FontIndex{list: list, fonts: map[string]*truetype.Font{}}
}

var defaultFonts = NewFontIndex(findfont.List)

// DefaultFontIndex returns the process-wide index of system fonts.
func DefaultFontIndex() *FontIndex {
	return defaultFonts
}

func (x *FontIndex) load() {
	x.once.Do(func() {
		x.paths = map[string]string{}
		for _, p := range x.list() {
			if !strings.EqualFold(filepath.Ext(p), ".ttf") {
				continue
			}
			name := normalize(strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)))
			if _, ok := x.paths[name]; !ok {
				x.paths[name] = p
			}
		}
	})
}

// Len returns the number of indexed font files.
func (x *FontIndex) Len() int {
	x.load()
	return len(x.paths)
}

// Font returns the first family in a CSS font-family list that resolves to
// an installed font, falling back to the Go fonts.
func (x *FontIndex) Font(families string, bold bool) *truetype.Font {
	x.load()
	for _, family := range strings.Split(families, ",") {
		name := normalize(strings.Trim(strings.TrimSpace(family), `'"`))
		switch name {
		case "", "sansserif", "serif", "cursive", "fantasy":
			continue
		case "monospace":
			return goMono()
		}
		candidates := []string{name, name + "regular"}
		if bold {
			candidates = []string{name + "bold", name + "bd", name}
		}
		for _, c := range candidates {
			if p, ok := x.paths[c]; ok {
				if f := x.parse(p); f != nil {
					return f
				}
			}
		}
	}
	if bold {
		return goBold()
	}
	return goRegular()
}

// Face returns a new face for families at size points. Faces are not safe
// for concurrent use, so every caller gets its own.
func (x *FontIndex) Face(families string, bold bool, size float64) font.Face {
	return truetype.NewFace(x.Font(families, bold), &truetype.Options{Size: size, Hinting: font.HintingFull})
}

func (x *FontIndex) parse(path string) *truetype.Font {
	x.mu.Lock()
	defer x.mu.Unlock()
	if f, ok := x.fonts[path]; ok {
		return f
	}
	data, err := os.ReadFile(path)
	if err != nil {
		x.fonts[path] = nil
		return nil
	}
	f, err := truetype.Parse(data)
	if err != nil {
		f = nil
	}
	x.fonts[path] = f
	return f
}

var (
	goRegular = sync.OnceValue(func() *truetype.Font { return mustParse(goregular.TTF) })
	goBold    = sync.OnceValue(func() *truetype.Font { return mustParse(gobold.TTF) })
	goMono    = sync.OnceValue(func() *truetype.Font { return mustParse(gomono.TTF) })
)

func mustParse(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic(err)
	}
	return f
}

func normalize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(name))
}

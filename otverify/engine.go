package otverify

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// ShapedGlyph is one glyph of a shaping result, with advances and offsets
// in font units.
type ShapedGlyph struct {
	GID      uint32
	XAdvance int32
	YAdvance int32
	XOffset  int32
	YOffset  int32
	Cluster  int
}

// Feature activates or deactivates an OpenType feature for a shaping call.
type Feature struct {
	Tag   string
	Value uint32
}

// Input is one shaping request: a text run plus script/language context and
// feature activations.
type Input struct {
	Text     []rune
	Language string // BCP-47, e.g. "ja", "zh-Hans"; empty for default
	Vertical bool
	Features []Feature
}

// Engine is the shaping collaborator. Implementations must be stateless per
// call: the same font data and input always yield the same result, and one
// engine instance is used sequentially by one verifier. Engines never
// modify the font.
type Engine interface {
	Shape(fontData []byte, input Input) ([]ShapedGlyph, error)
}

// HarfBuzzEngine shapes through the HarfBuzz port of go-text/typesetting.
// It caches the parsed font, so that shaping many probes against the same
// binary parses it once. Safe for concurrent use.
type HarfBuzzEngine struct {
	shaperPool sync.Pool

	mu        sync.Mutex
	cacheData []byte
	cacheFont *font.Font
}

// NewEngine creates a shaping engine backed by go-text/typesetting.
func NewEngine() *HarfBuzzEngine {
	return &HarfBuzzEngine{
		shaperPool: sync.Pool{
			New: func() interface{} {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape implements the Engine interface. Advances and offsets are returned
// in font units.
func (e *HarfBuzzEngine) Shape(fontData []byte, in Input) ([]ShapedGlyph, error) {
	f, err := e.fontFor(fontData)
	if err != nil {
		return nil, err
	}
	// font.Face is not safe for concurrent use; font.Font is
	face := font.NewFace(f)
	upem := int(f.Upem())
	dir := di.DirectionLTR
	if in.Vertical {
		dir = di.DirectionTTB
	}
	lang := language.DefaultLanguage()
	if in.Language != "" {
		lang = language.NewLanguage(in.Language)
	}
	input := shaping.Input{
		Text:      in.Text,
		RunStart:  0,
		RunEnd:    len(in.Text),
		Direction: dir,
		Face:      face,
		// shaping at the em size keeps advances in font units
		Size:     fixed.I(upem),
		Script:   scriptOf(in.Text),
		Language: lang,
	}
	for _, ft := range in.Features {
		input.FontFeatures = append(input.FontFeatures, shaping.FontFeature{
			Tag:   opentype.MustNewTag(ft.Tag),
			Value: ft.Value,
		})
	}
	shaper := e.shaperPool.Get().(*shaping.HarfbuzzShaper)
	out := shaper.Shape(input)
	e.shaperPool.Put(shaper)

	glyphs := make([]ShapedGlyph, len(out.Glyphs))
	for i, g := range out.Glyphs {
		glyphs[i] = ShapedGlyph{
			GID:      uint32(g.GlyphID),
			XAdvance: int32(g.XAdvance.Round()),
			YAdvance: int32(g.YAdvance.Round()),
			XOffset:  int32(g.XOffset.Round()),
			YOffset:  int32(g.YOffset.Round()),
			Cluster:  g.ClusterIndex,
		}
	}
	return glyphs, nil
}

func (e *HarfBuzzEngine) fontFor(fontData []byte) (*font.Font, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cacheFont != nil && bytes.Equal(e.cacheData, fontData) {
		return e.cacheFont, nil
	}
	// ParseTTF returns a *Face; only the embedded *Font is safe to cache
	// across goroutines
	face, err := font.ParseTTF(bytes.NewReader(fontData))
	if err != nil {
		return nil, err
	}
	e.cacheData = fontData
	e.cacheFont = face.Font
	return face.Font, nil
}

// scriptOf picks the script of the first rune with a distinct one. Probe
// strings are short and single-script apart from the Latin tail glyph.
func scriptOf(text []rune) language.Script {
	for _, r := range text {
		s := language.LookupScript(r)
		if s != language.Latin {
			return s
		}
	}
	return language.Latin
}

package fontload

import (
	"fmt"
	"os"

	"golang.org/x/image/font/sfnt"

	"github.com/npillmayer/chws/ot"
)

// FontFile is a font binary read from storage, with the metadata the
// pipeline reports on: the font's full name and the member count for
// collections. The sfnt sanity parse catches grossly broken files before
// the patcher touches them.
type FontFile struct {
	Path     string
	Fontname string
	Binary   []byte
	NumFonts int
	IsColl   bool
}

// Load reads and sanity-parses a font or font collection file.
func Load(path string) (*FontFile, error) {
	bytez, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := FromBytes(bytez)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// FromBytes sanity-parses a font or font collection from memory.
func FromBytes(data []byte) (*FontFile, error) {
	f := &FontFile{Binary: data, NumFonts: 1}
	if ot.IsCollection(data) {
		f.IsColl = true
		coll, err := sfnt.ParseCollection(data)
		if err != nil {
			return nil, err
		}
		f.NumFonts = coll.NumFonts()
		if f.NumFonts > 0 {
			if member, err := coll.Font(0); err == nil {
				f.Fontname, _ = member.Name(nil, sfnt.NameIDFull)
			}
		}
		return f, nil
	}
	parsed, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	f.Fontname, _ = parsed.Name(nil, sfnt.NameIDFull)
	return f, nil
}

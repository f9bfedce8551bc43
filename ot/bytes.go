package ot

import (
	"errors"
)

// Reading bytes from a font's binary representation.

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data.
// We use it throughout this module to navigate the font's binary data.
// All reads are bounds-checked; the unchecked U16/U32 variants return 0 for
// out-of-bounds access, which is safe for font data where 0 means
// "missing"/".notdef" in nearly every context.
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

func (b binarySegm) Bytes() []byte {
	return b
}

func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

func (b binarySegm) u16(i int) (uint16, error) {
	if i < 0 || i+2 > len(b) {
		return 0, errBufferBounds
	}
	return u16(b[i : i+2]), nil
}

func (b binarySegm) u32(i int) (uint32, error) {
	if i < 0 || i+4 > len(b) {
		return 0, errBufferBounds
	}
	return u32(b[i : i+4]), nil
}

// view returns n bytes at the given offset, or an error if the segment is
// too short.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// glyphs reads a run of n big-endian uint16 glyph IDs at offset.
func (b binarySegm) glyphs(offset, n int) ([]GlyphIndex, error) {
	seg, err := b.view(offset, n*2)
	if err != nil {
		return nil, err
	}
	glyphs := make([]GlyphIndex, n)
	for i := 0; i < n; i++ {
		glyphs[i] = GlyphIndex(u16(seg[i*2 : i*2+2]))
	}
	return glyphs, nil
}

// u16Slice reads a run of n big-endian uint16 values at offset.
func (b binarySegm) u16Slice(offset, n int) ([]uint16, error) {
	seg, err := b.view(offset, n*2)
	if err != nil {
		return nil, err
	}
	r := make([]uint16, n)
	for i := 0; i < n; i++ {
		r[i] = u16(seg[i*2 : i*2+2])
	}
	return r, nil
}

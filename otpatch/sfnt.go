package otpatch

import (
	"sort"

	"github.com/npillmayer/chws/ot"
)

const checkSumAdjustmentMagic = 0xB1B0AFBA

// RebuildFont serializes a complete font binary from a parsed font, with
// the given tables replaced (or added). All other tables are copied
// verbatim; table checksums and the head checksum adjustment are
// recomputed.
func RebuildFont(otf *ot.Font, replaced map[ot.Tag][]byte) ([]byte, error) {
	w := &binWriter{}
	dirStart := writeMember(w, otf, collectTables(otf, replaced), nil)
	adjustHead(w.b, dirStart)
	return w.bytes(), nil
}

// RebuildCollection serializes a font collection binary. replaced holds the
// per-member table replacements, parallel to fonts. Tables that members
// shared in the input (same file offset) stay shared in the output, so a
// collection with one common GPOS keeps sharing the patched one.
func RebuildCollection(fonts []*ot.Font, replaced []map[ot.Tag][]byte) ([]byte, error) {
	w := &binWriter{}
	w.u32(0x74746366) // 'ttcf'
	w.u32(0x00010000)
	w.u32(uint32(len(fonts)))
	dirMarks := make([]int, len(fonts))
	for i := range fonts {
		dirMarks[i] = w.mark32()
	}
	shared := make(map[sharedKey]uint32)
	dirStarts := make([]int, len(fonts))
	for i, otf := range fonts {
		w.pad4()
		w.setU32(dirMarks[i], uint32(w.len()))
		dirStarts[i] = writeMember(w, otf, collectTables(otf, replaced[i]), shared)
	}
	for _, dirStart := range dirStarts {
		adjustHead(w.b, dirStart)
	}
	return w.bytes(), nil
}

type tableEntry struct {
	tag  ot.Tag
	data []byte
}

// sharedKey identifies a table shared between collection members by its
// offset in the input file.
type sharedKey struct {
	origOffset uint32
	tag        ot.Tag
}

// collectTables assembles the output tables of one font, sorted by tag,
// with the head checksum adjustment zeroed.
func collectTables(otf *ot.Font, replaced map[ot.Tag][]byte) []tableEntry {
	seen := make(map[ot.Tag]bool)
	var entries []tableEntry
	for _, tag := range otf.TableTags() {
		data := otf.Table(tag)
		if r, ok := replaced[tag]; ok {
			data = r
		}
		entries = append(entries, tableEntry{tag: tag, data: data})
		seen[tag] = true
	}
	for tag, data := range replaced {
		if !seen[tag] {
			entries = append(entries, tableEntry{tag: tag, data: data})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })
	for i, e := range entries {
		if e.tag == ot.T("head") && len(e.data) >= 12 {
			head := append([]byte(nil), e.data...)
			head[8], head[9], head[10], head[11] = 0, 0, 0, 0
			entries[i].data = head
		}
	}
	return entries
}

// writeMember writes one font's table directory and data. Offsets are
// relative to the whole output, as required for collection members. When
// shared is non-nil, tables already written for an earlier member are
// referenced instead of duplicated. Returns the directory start offset.
func writeMember(w *binWriter, otf *ot.Font, tables []tableEntry, shared map[sharedKey]uint32) int {
	dirStart := w.len()
	searchRange, entrySelector, rangeShift := calcSearchParams(len(tables))
	w.u32(otf.Header.FontType)
	w.u16(uint16(len(tables)))
	w.u16(searchRange)
	w.u16(entrySelector)
	w.u16(rangeShift)
	recPos := make([]int, len(tables))
	for i, e := range tables {
		w.u32(uint32(e.tag))
		w.u32(calcChecksum(e.data))
		recPos[i] = w.len()
		w.u32(0) // offset, patched below
		w.u32(uint32(len(e.data)))
	}
	for i, e := range tables {
		origOffset, _ := otf.TableOffset(e.tag)
		key := sharedKey{origOffset: origOffset, tag: e.tag}
		if shared != nil && key.origOffset != 0 {
			if off, ok := shared[key]; ok {
				w.setU32(recPos[i], off)
				continue
			}
		}
		w.pad4()
		off := uint32(w.len())
		w.raw(e.data)
		w.setU32(recPos[i], off)
		if shared != nil && key.origOffset != 0 {
			shared[key] = off
		}
	}
	w.pad4()
	return dirStart
}

// adjustHead writes the checksum adjustment into a member's head table. The
// per-member sum is the directory region plus the member's table checksums,
// which keeps the value independent of table sharing and member order.
func adjustHead(out []byte, dirStart int) {
	numTables := int(out[dirStart+4])<<8 | int(out[dirStart+5])
	dirEnd := dirStart + 12 + numTables*16
	if dirEnd > len(out) {
		return
	}
	sum := calcChecksum(out[dirStart:dirEnd])
	headOff := -1
	for i := 0; i < numTables; i++ {
		rec := dirStart + 12 + i*16
		sum += be32(out[rec+4:]) // table checksum
		if ot.Tag(be32(out[rec:])) == ot.T("head") {
			headOff = int(be32(out[rec+8:]))
		}
	}
	if headOff < 0 || headOff+12 > len(out) {
		return
	}
	adj := checkSumAdjustmentMagic - sum
	out[headOff+8] = byte(adj >> 24)
	out[headOff+9] = byte(adj >> 16)
	out[headOff+10] = byte(adj >> 8)
	out[headOff+11] = byte(adj)
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// calcChecksum sums a table as big-endian uint32 values, zero-padded to a
// multiple of four.
func calcChecksum(data []byte) uint32 {
	var sum uint32
	n := len(data) / 4 * 4
	for i := 0; i < n; i += 4 {
		sum += be32(data[i:])
	}
	if rest := len(data) - n; rest > 0 {
		var last [4]byte
		copy(last[:], data[n:])
		sum += be32(last[:])
	}
	return sum
}

func calcSearchParams(numTables int) (searchRange, entrySelector, rangeShift uint16) {
	pow := 1
	for pow*2 <= numTables {
		pow *= 2
		entrySelector++
	}
	searchRange = uint16(pow * 16)
	rangeShift = uint16(numTables*16) - searchRange
	return searchRange, entrySelector, rangeShift
}

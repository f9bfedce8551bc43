package otpatch

import (
	"github.com/npillmayer/chws/ot"
)

/*
Rebuilding a layout table without renumbering anything:

The original table is embedded verbatim as a trailing blob, so every
pre-existing lookup keeps its exact bytes, and all of its internal offsets
stay valid. The rebuilt script, feature and lookup lists come first; lookup
list entries for pre-existing lookups point into the blob. Since lookup
offsets are 16 bit relative to the lookup list, the lists must stay small
and sit directly in front of the blob. New lookups are extension lookups:
their shells are small enough to live between the offset array and the blob,
while their 32-bit extension offsets reach the real subtables placed behind
the blob.

    header
    script list   (re-serialized, feature indices appended)
    feature list  (re-serialized, merged/appended records)
    lookup list   count, offsets, new lookup shells
    blob          original table, byte-identical
    new subtables
*/

type featureModel struct {
	tag       ot.Tag
	paramsAbs uint32 // into the original table, 0 = none
	lookups   []uint16
}

type langSysModel struct {
	required uint16
	features []uint16
}

type scriptModel struct {
	tag       ot.Tag
	defaultLS *langSysModel
	records   []struct {
		tag ot.Tag
		ls  langSysModel
	}
}

// spliceLayout rebuilds a layout table with the given lookups appended and
// the feature additions bound into every script's language systems. orig may
// be nil, in which case a fresh table with a DFLT script is created.
// extensionType is the table's extension lookup type (9 for GPOS, 7 for
// GSUB).
func spliceLayout(tableTag ot.Tag, orig *ot.LayoutTable,
	newLookups []lookupData, adds []featureAdd, extensionType uint16) ([]byte, error) {

	if orig != nil && (orig.Major != 1 || orig.Minor > 1) {
		return nil, ot.FmtIncompatible(tableTag,
			"cannot patch layout table version %d.%d", orig.Major, orig.Minor)
	}
	feats, scripts := layoutModels(orig)
	mergeFeatures(&feats, scripts, adds)

	origLookupCount := 0
	if orig != nil {
		origLookupCount = orig.LookupList.Len()
	}
	totalLookups := origLookupCount + len(newLookups)
	if totalLookups > ot.MaxLookupCount {
		return nil, ot.FmtIncompatible(tableTag, "lookup list overflow")
	}

	minor := uint16(0)
	var blob []byte
	if orig != nil {
		minor = orig.Minor
		blob = orig.Binary()
	}
	hdrSize := 10
	if minor >= 1 {
		hdrSize = 14
	}
	scriptBytes := writeScriptList(scripts)
	featListSize := featureListSize(feats)
	shellSizes := make([]int, len(newLookups))
	llSize := 2 + 2*totalLookups
	for i, lk := range newLookups {
		shellSizes[i] = 6 + 10*len(lk.subtables) // header + offsets + ext subtables
		llSize += shellSizes[i]
	}
	scriptListStart := hdrSize
	featListStart := scriptListStart + len(scriptBytes)
	lookupListStart := featListStart + featListSize
	blobStart := lookupListStart + llSize
	if blobStart%2 != 0 {
		// all offsets are even-sized, this cannot happen
		return nil, ot.FmtIncompatible(tableTag, "internal alignment error")
	}
	subtableStart := blobStart + len(blob)
	for subtableStart%4 != 0 {
		subtableStart++
	}

	w := &binWriter{}
	w.u16(1)
	w.u16(minor)
	w.u16(uint16(scriptListStart))
	w.u16(uint16(featListStart))
	w.u16(uint16(lookupListStart))
	if minor >= 1 {
		fv := uint32(0)
		if orig != nil && orig.FeatureVariationsOffset != 0 {
			fv = uint32(blobStart) + orig.FeatureVariationsOffset
		}
		w.u32(fv)
	}
	w.raw(scriptBytes)
	if err := writeFeatureList(w, feats, featListStart, blobStart, tableTag); err != nil {
		return nil, err
	}

	// lookup list
	w.u16(uint16(totalLookups))
	shellPos := 2 + 2*totalLookups // first shell, relative to lookup list
	for i := 0; i < origLookupCount; i++ {
		rel := (blobStart - lookupListStart) + int(orig.LookupListOffset()) + int(orig.LookupList.Offsets[i])
		if rel > 0xFFFF {
			return nil, ot.FmtIncompatible(tableTag,
				"existing lookup %d out of 16-bit offset reach", i)
		}
		w.u16(uint16(rel))
	}
	for i := range newLookups {
		w.u16(uint16(shellPos))
		shellPos += shellSizes[i]
	}
	// shells, with 32-bit extension offsets into the subtable area
	subPos := subtableStart
	var subtables [][]byte
	for _, lk := range newLookups {
		w.u16(extensionType)
		w.u16(0) // lookupFlag
		w.u16(uint16(len(lk.subtables)))
		for j := range lk.subtables {
			w.u16(uint16(6 + 2*len(lk.subtables) + 8*j))
		}
		for _, sub := range lk.subtables {
			extAbs := w.len()
			w.u16(1) // extension format
			w.u16(lk.lookupType)
			w.u32(uint32(subPos - extAbs))
			subtables = append(subtables, sub)
			subPos += len(sub)
		}
	}
	if w.len() != blobStart {
		return nil, ot.FmtIncompatible(tableTag, "internal layout size mismatch")
	}
	w.raw(blob)
	w.pad4()
	for _, sub := range subtables {
		w.raw(sub)
	}
	tracer().Infof("spliced %s: %d lookups (%d new), %d features, %d bytes",
		tableTag, totalLookups, len(newLookups), len(feats), w.len())
	return w.bytes(), nil
}

// layoutModels converts a parsed layout table into the mutable working
// model, or fabricates a minimal DFLT script when there is no table yet.
func layoutModels(orig *ot.LayoutTable) ([]featureModel, []*scriptModel) {
	if orig == nil {
		return nil, []*scriptModel{{
			tag:       ot.DFLT,
			defaultLS: &langSysModel{required: ot.NoRequiredFeature},
		}}
	}
	feats := make([]featureModel, len(orig.FeatureList))
	for i, fr := range orig.FeatureList {
		feats[i] = featureModel{
			tag:       fr.Tag,
			paramsAbs: fr.FeatureParamsAbs,
			lookups:   append([]uint16(nil), fr.LookupIndices...),
		}
	}
	scripts := make([]*scriptModel, len(orig.ScriptList))
	for i, sr := range orig.ScriptList {
		sm := &scriptModel{tag: sr.Tag}
		if sr.DefaultLangSys != nil {
			sm.defaultLS = &langSysModel{
				required: sr.DefaultLangSys.RequiredFeatureIndex,
				features: append([]uint16(nil), sr.DefaultLangSys.FeatureIndices...),
			}
		}
		for _, lsr := range sr.LangSysRecords {
			sm.records = append(sm.records, struct {
				tag ot.Tag
				ls  langSysModel
			}{
				tag: lsr.Tag,
				ls: langSysModel{
					required: lsr.LangSys.RequiredFeatureIndex,
					features: append([]uint16(nil), lsr.LangSys.FeatureIndices...),
				},
			})
		}
		scripts[i] = sm
	}
	return feats, scripts
}

// mergeFeatures binds the feature additions into every language system of
// every script. A feature record with the same tag that is already
// referenced somewhere is merged into instead of duplicated; language
// systems already carrying the tag are left alone.
func mergeFeatures(feats *[]featureModel, scripts []*scriptModel, adds []featureAdd) {
	for _, add := range adds {
		var existing []int
		for i, f := range *feats {
			if f.tag == add.tag {
				existing = append(existing, i)
			}
		}
		var target uint16
		if len(existing) > 0 {
			for _, i := range existing {
				(*feats)[i].lookups = appendUnique((*feats)[i].lookups, add.lookups)
			}
			target = uint16(existing[0])
		} else {
			*feats = append(*feats, featureModel{tag: add.tag, lookups: add.lookups})
			target = uint16(len(*feats) - 1)
		}
		hasTag := func(ls *langSysModel) bool {
			if ls.required != ot.NoRequiredFeature &&
				int(ls.required) < len(*feats) && (*feats)[ls.required].tag == add.tag {
				return true
			}
			for _, fi := range ls.features {
				if int(fi) < len(*feats) && (*feats)[fi].tag == add.tag {
					return true
				}
			}
			return false
		}
		for _, sm := range scripts {
			if sm.defaultLS != nil && !hasTag(sm.defaultLS) {
				sm.defaultLS.features = append(sm.defaultLS.features, target)
			}
			for i := range sm.records {
				if !hasTag(&sm.records[i].ls) {
					sm.records[i].ls.features = append(sm.records[i].ls.features, target)
				}
			}
		}
	}
}

func appendUnique(indices []uint16, add []uint16) []uint16 {
	for _, a := range add {
		found := false
		for _, i := range indices {
			if i == a {
				found = true
				break
			}
		}
		if !found {
			indices = append(indices, a)
		}
	}
	return indices
}

func writeLangSys(w *binWriter, ls *langSysModel) {
	w.u16(0) // lookupOrderOffset, reserved
	w.u16(ls.required)
	w.u16(uint16(len(ls.features)))
	for _, fi := range ls.features {
		w.u16(fi)
	}
}

func langSysSize(ls *langSysModel) int {
	return 6 + 2*len(ls.features)
}

func writeScriptList(scripts []*scriptModel) []byte {
	w := &binWriter{}
	w.u16(uint16(len(scripts)))
	recMarks := make([]int, len(scripts))
	for i, sm := range scripts {
		w.u32(uint32(sm.tag))
		recMarks[i] = w.mark()
	}
	for i, sm := range scripts {
		w.setU16(recMarks[i], uint16(w.len()))
		scriptBase := w.len()
		// script table: defaultLangSysOffset, langSysCount, langSysRecords
		defMark := w.mark()
		w.u16(uint16(len(sm.records)))
		lsMarks := make([]int, len(sm.records))
		for j, rec := range sm.records {
			w.u32(uint32(rec.tag))
			lsMarks[j] = w.mark()
		}
		if sm.defaultLS != nil {
			w.setU16(defMark, uint16(w.len()-scriptBase))
			writeLangSys(w, sm.defaultLS)
		}
		for j := range sm.records {
			w.setU16(lsMarks[j], uint16(w.len()-scriptBase))
			writeLangSys(w, &sm.records[j].ls)
		}
	}
	return w.bytes()
}

func featureListSize(feats []featureModel) int {
	size := 2 + 6*len(feats)
	for _, f := range feats {
		size += 4 + 2*len(f.lookups)
	}
	return size
}

// writeFeatureList serializes the feature list at its known absolute
// position. Feature params of pre-existing features keep pointing at their
// original bytes inside the blob; that distance must fit the 16-bit offset.
func writeFeatureList(w *binWriter, feats []featureModel, listStart, blobStart int, tableTag ot.Tag) error {
	w.u16(uint16(len(feats)))
	recMarks := make([]int, len(feats))
	for i, f := range feats {
		w.u32(uint32(f.tag))
		recMarks[i] = w.mark()
	}
	for i, f := range feats {
		featAbs := w.len()
		w.setU16(recMarks[i], uint16(featAbs-listStart))
		params := 0
		if f.paramsAbs != 0 {
			params = blobStart + int(f.paramsAbs) - featAbs
			if params <= 0 || params > 0xFFFF {
				return ot.FmtIncompatible(tableTag,
					"feature params of '%s' out of 16-bit offset reach", f.tag)
			}
		}
		w.u16(uint16(params))
		w.u16(uint16(len(f.lookups)))
		for _, li := range f.lookups {
			w.u16(li)
		}
	}
	return nil
}

package otbuild_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/chws/internal/testfont"
	"github.com/npillmayer/chws/ot"
	"github.com/npillmayer/chws/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

func TestProcessFilesWritesOutput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otbuild")
	defer teardown()
	//
	dir := t.TempDir()
	in := filepath.Join(dir, "mincho.ttf")
	bin := testfont.Build(1000, pipelineGlyphs)
	require.NoError(t, os.WriteFile(in, bin, 0o644))

	outDir := t.TempDir()
	outPath := func(p string) string { return filepath.Join(outDir, filepath.Base(p)) }
	p := newTestPipeline(nil)
	report := p.ProcessFiles([]string{in}, outPath)
	require.Len(t, report.Outcomes, 1)
	require.True(t, report.AllAccepted(), "outcome: %s", report.Outcomes[0].Summary())

	patched, err := os.ReadFile(outPath(in))
	require.NoError(t, err)
	otf, err := ot.Parse(patched)
	require.NoError(t, err)
	require.True(t, otf.Layout.GPos.HasFeature(ot.T("chws")))

	// the input file must stay untouched
	orig, err := os.ReadFile(in)
	require.NoError(t, err)
	require.Equal(t, bin, orig)
}

func TestProcessFilesReportsIOFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "chws.otbuild")
	defer teardown()
	//
	dir := t.TempDir()
	missing := filepath.Join(dir, "no-such-font.ttf")
	p := newTestPipeline(nil)
	report := p.ProcessFiles([]string{missing}, func(p string) string { return p + ".out" })
	require.Len(t, report.Outcomes, 1)
	require.Equal(t, otbuild.Rejected, report.Outcomes[0].State)
	require.True(t, errors.Is(report.Outcomes[0].Err, otbuild.ErrIOFailure))
	require.False(t, report.AllAccepted())
}

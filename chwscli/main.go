/*
chwscli patches OpenType/TrueType fonts with East Asian contextual spacing
features (chws/vchw, optionally halt/vhal).

Usage:

	chwscli [options] font.ttf ... | fontdir ... | -

Each argument is a font file, a directory (expanded to the font files in
it), or '-' to read a path list from standard input. Patched fonts go to
the output directory (-o) or next to the input with a suffix (-suffix),
or replace the input (-in-place). Exit code 0 means every font was
accepted or skipped; per-font diagnostics go to standard error.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	xlanguage "golang.org/x/text/language"

	"github.com/npillmayer/chws"
	"github.com/npillmayer/chws/otbuild"
	"github.com/npillmayer/chws/otcover"
)

// tracer traces with key 'chws.cli'.
func tracer() tracing.Trace {
	return tracing.Select("chws.cli")
}

func main() {
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	outDir := flag.String("o", "", "Output directory for patched fonts")
	suffix := flag.String("suffix", "", "Output filename suffix, e.g. '-chws'")
	inPlace := flag.Bool("in-place", false, "Overwrite the input files")
	noVchw := flag.Bool("no-vchw", false, "Do not build vertical spacing (vchw)")
	halfWidth := flag.Bool("halt", false, "Additionally build halt/vhal features")
	langFlag := flag.String("language", "", "Language for ambiguous punctuation placement (e.g. ja, zh-Hans, zh-Hant, ko)")
	glyphOut := flag.String("glyph-out", "", "Write resolved glyph classes to this file")
	workers := flag.Int("jobs", 0, "Number of fonts to process concurrently (0: one per CPU)")
	flag.Parse()

	setupTracing(*tlevel)
	paths, err := expandArgs(flag.Args())
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	if len(paths) == 0 {
		pterm.Error.Println("no font files given")
		flag.Usage()
		os.Exit(2)
	}
	if *inPlace && (*outDir != "" || *suffix != "") {
		pterm.Error.Println("-in-place excludes -o and -suffix")
		os.Exit(2)
	}

	lang, err := spacingLanguage(*langFlag)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	opts := chws.Options{
		Workers: *workers,
	}
	opts.Cover.Language = lang
	opts.Patch.VerticalSpacing = !*noVchw
	opts.Patch.HalfWidthFeatures = *halfWidth
	if *glyphOut != "" {
		f, err := os.Create(*glyphOut)
		if err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(2)
		}
		defer f.Close()
		opts.DumpGlyphs = f
	}

	report := chws.PatchFiles(paths, outPathFunc(*outDir, *suffix, *inPlace), opts)
	printReport(report)
	if !report.AllAccepted() {
		os.Exit(1)
	}
}

func setupTracing(tlevel string) {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"trace.chws":      tlevel,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Fprintln(os.Stderr, "error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	level := tracing.LevelInfo
	switch tlevel {
	case "Debug":
		level = tracing.LevelDebug
	case "Error":
		level = tracing.LevelError
	}
	for _, key := range []string{"chws.cli", "chws.ot", "chws.otcover", "chws.otpatch", "chws.otverify", "chws.otbuild"} {
		tracing.Select(key).SetTraceLevel(level)
	}
}

// expandArgs expands directories to the font files inside them and '-' to
// a path list read from stdin.
func expandArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg == "-" {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if line := strings.TrimSpace(scanner.Text()); line != "" {
					paths = append(paths, line)
				}
			}
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".ttf", ".otf", ".ttc", ".otc":
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

func outPathFunc(outDir, suffix string, inPlace bool) func(string) string {
	return func(in string) string {
		if inPlace {
			return in
		}
		dir, base := filepath.Split(in)
		if outDir != "" {
			dir = outDir
		}
		if suffix != "" {
			ext := filepath.Ext(base)
			base = strings.TrimSuffix(base, ext) + suffix + ext
		}
		return filepath.Join(dir, base)
	}
}

// spacingLanguage canonicalizes a BCP-47 language flag into the punctuation
// convention the resolver needs.
func spacingLanguage(flagValue string) (otcover.Language, error) {
	if flagValue == "" {
		return otcover.LangDefault, nil
	}
	tag, err := xlanguage.Parse(flagValue)
	if err != nil {
		return otcover.LangDefault, fmt.Errorf("cannot parse language %q: %v", flagValue, err)
	}
	base, _ := tag.Base()
	script, _ := tag.Script()
	region, _ := tag.Region()
	switch base.String() {
	case "ja":
		return otcover.LangJapanese, nil
	case "ko":
		return otcover.LangKorean, nil
	case "zh":
		if region.String() == "HK" {
			return otcover.LangHongKongChinese, nil
		}
		if script.String() == "Hant" || region.String() == "TW" {
			return otcover.LangTraditionalChinese, nil
		}
		return otcover.LangSimplifiedChinese, nil
	}
	return otcover.LangDefault, fmt.Errorf("unsupported language %q", flagValue)
}

func printReport(report *otbuild.Report) {
	for _, o := range report.Outcomes {
		switch o.State {
		case otbuild.Accepted:
			pterm.Success.Println(o.Summary())
		case otbuild.Skipped:
			pterm.Info.Println(o.Summary())
		default:
			pterm.Error.Println(o.Summary())
		}
	}
}

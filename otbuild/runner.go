package otbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/npillmayer/chws/internal/fontload"
)

// ProcessFiles runs the pipeline over a batch of font files, concurrently.
// outPath maps an input path to its output path; fonts without any change
// (skipped or rejected) produce no output file. Errors of one file never
// abort the others. There is no cancellation mid-font: a font runs to a
// terminal state.
func (p *Pipeline) ProcessFiles(paths []string, outPath func(string) string) *Report {
	workers := p.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	jobs := make(chan string)
	var mu sync.Mutex
	report := &Report{}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				outcomes := p.processFile(path, outPath)
				mu.Lock()
				report.Outcomes = append(report.Outcomes, outcomes...)
				mu.Unlock()
			}
		}()
	}
	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
	return report
}

func (p *Pipeline) processFile(path string, outPath func(string) string) []Outcome {
	ff, err := fontload.Load(path)
	if err != nil {
		return []Outcome{{
			Path:  path,
			Index: -1,
			State: Rejected,
			Err:   fmt.Errorf("%w: %v", ErrIOFailure, err),
		}}
	}
	out, outcomes := p.PatchBinary(path, ff.Binary)
	for i := range outcomes {
		outcomes[i].Fontname = ff.Fontname
	}
	if out == nil {
		return outcomes
	}
	if err := writeAtomically(outPath(path), out); err != nil {
		for i := range outcomes {
			outcomes[i].State = Rejected
			outcomes[i].Err = fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	return outcomes
}

// writeAtomically writes to a temp file in the target directory and renames
// it into place, so a failed write never leaves a partial font behind.
func writeAtomically(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Chmod(path, 0o644)
}

// Package runner wires discover, the object model, the analyzer, the
// fingerprint cache, and report generation into the single pipeline
// cmd/vbalint drives - the Go equivalent of original_source/src/main.py's
// top-level orchestration, generalized across the project's directory
// of files instead of a single path.
package runner

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kestrelcode/vbalint/internal/analyzer"
	"github.com/kestrelcode/vbalint/internal/cache"
	"github.com/kestrelcode/vbalint/internal/diagnostic"
	"github.com/kestrelcode/vbalint/internal/discover"
	"github.com/kestrelcode/vbalint/internal/fingerprint"
	"github.com/kestrelcode/vbalint/internal/logging"
	"github.com/kestrelcode/vbalint/internal/objectmodel"
	"github.com/kestrelcode/vbalint/internal/preprocessor"
)

// Options configures one Run.
type Options struct {
	Root       string
	ModelPaths []string
	Defines    map[string]preprocessor.Value
	CachePath  string
}

// Run scans Root, analyzes every discovered module, and returns the
// merged diagnostics plus the count of files scanned.
func Run(ctx context.Context, opts Options) (items []diagnostic.Diagnostic, filesScanned int, err error) {
	log := logging.Logger()

	model := objectmodel.New()
	for _, p := range opts.ModelPaths {
		if err := model.LoadFile(p); err != nil {
			return nil, 0, errors.Wrap(err, "runner: load model")
		}
	}

	var fileCache *cache.Cache
	if opts.CachePath != "" {
		fileCache, err = cache.Open(opts.CachePath)
		if err != nil {
			return nil, 0, errors.Wrap(err, "runner: open cache")
		}
		defer fileCache.Close()
	}

	results, scanErr := discover.Scan(ctx, opts.Root, discover.Options{Defines: opts.Defines})
	if scanErr != nil {
		log.Warn().Err(scanErr).Msg("some files failed to read or parse")
	}

	buf := &diagnostic.Buffer{}

	var toAnalyze []*discover.Result
	for i := range results {
		r := &results[i]
		filesScanned++

		if fileCache == nil || r.Module == nil {
			toAnalyze = append(toAnalyze, r)
			continue
		}

		fp, fpErr := fingerprint.Of(r.Content)
		if fpErr != nil {
			toAnalyze = append(toAnalyze, r)
			continue
		}
		if cached, ok := fileCache.Lookup(r.Path, fp); ok {
			for _, d := range cached {
				buf.Merge(bufOf(d))
			}
			continue
		}
		toAnalyze = append(toAnalyze, r)
	}

	a := analyzer.New(model)
	for _, r := range toAnalyze {
		if r.Module != nil {
			a.AddModule(r.Module)
		}
	}
	analysisBuf := a.Analyze()
	buf.Merge(analysisBuf)

	if fileCache != nil {
		perFile := map[string][]diagnostic.Diagnostic{}
		for _, d := range analysisBuf.Items() {
			perFile[d.File] = append(perFile[d.File], d)
		}
		for _, r := range toAnalyze {
			if r.Module == nil {
				continue
			}
			fp, fpErr := fingerprint.Of(r.Content)
			if fpErr != nil {
				continue
			}
			if err := fileCache.Store(r.Path, fp, perFile[r.Module.FileName]); err != nil {
				log.Warn().Err(err).Str("path", r.Path).Msg("failed to store cache entry")
			}
		}
	}

	return buf.Items(), filesScanned, scanErr
}

func bufOf(d diagnostic.Diagnostic) *diagnostic.Buffer {
	b := &diagnostic.Buffer{}
	if d.Severity == diagnostic.SeverityWarning {
		b.AddWarning(d.File, d.Line, "%s", d.Message)
	} else {
		b.Add(d.File, d.Line, "%s", d.Message)
	}
	return b
}

// Package discover walks a project directory for VBA source (.bas
// modules, .cls classes, .frm forms), decodes and parses each one, and
// aggregates the results - structurally grounded on
// analyzer.AnalyzeDir/analyzePackages's afs.Service.Walk pattern,
// generalized from Go packages to a flat set of VBA source files.
package discover

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"golang.org/x/text/encoding/charmap"

	"github.com/kestrelcode/vbalint/internal/ast"
	"github.com/kestrelcode/vbalint/internal/lexer"
	"github.com/kestrelcode/vbalint/internal/parser"
	"github.com/kestrelcode/vbalint/internal/preprocessor"
)

// Result is one source file's decoded content and, if parsing
// succeeded, the resulting Module.
type Result struct {
	Path    string
	Content []byte
	Module  *ast.Module
}

// Options configures a Scan.
type Options struct {
	// Defines seeds the preprocessor's #Const environment for every
	// file scanned (populated from --define KEY=VALUE,... at the CLI).
	Defines map[string]preprocessor.Value
}

var extModuleType = map[string]string{
	".bas": "Module",
	".cls": "Class",
	".frm": "Form",
}

// IsSourceFile reports whether name has a recognized VBA source
// extension.
func IsSourceFile(name string) bool {
	_, ok := extModuleType[strings.ToLower(path.Ext(name))]
	return ok
}

// Scan walks root for .bas/.cls/.frm files, decodes each from its
// Latin-1 (ISO 8859-1) encoding, strips a .frm's GUI header
// before parsing its code section, and returns one Result per file
// that parsed along with a multierror of any per-file read/parse
// failures - failures never abort the scan, matching the original's
// print-and-continue tolerance for a malformed file in an otherwise
// scannable project.
func Scan(ctx context.Context, root string, opts Options) ([]Result, error) {
	fs := afs.New()

	var paths []string
	visitor := func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		if !IsSourceFile(info.Name()) {
			return true, nil
		}
		paths = append(paths, url.Join(baseURL, path.Join(parent, info.Name())))
		return true, nil
	}
	var walkVisitor storage.OnVisit = visitor
	if err := fs.Walk(ctx, root, walkVisitor); err != nil {
		return nil, err
	}

	var results []Result
	var errs *multierror.Error

	for _, filePath := range paths {
		raw, err := fs.DownloadWithURL(ctx, filePath)
		if err != nil {
			errs = multierror.Append(errs, errorf(filePath, "read: %v", err))
			continue
		}

		content, err := decodeANSI(raw)
		if err != nil {
			errs = multierror.Append(errs, errorf(filePath, "decode: %v", err))
			continue
		}

		ext := strings.ToLower(path.Ext(filePath))
		moduleType := extModuleType[ext]
		var controls []*ast.Variable
		if moduleType == "Form" {
			controls = parser.ParseFormControls(content)
			content = lexer.StripFormHeader(content)
		}

		toks := lexer.New(content).Tokenize()
		toks = preprocessor.New(toks, opts.Defines).Process()

		p := parser.New(toks, filePath)
		module := p.ParseModule(moduleType)
		for _, syntaxErr := range p.Errors {
			errs = multierror.Append(errs, errorf(filePath, "%s", syntaxErr))
		}
		if module != nil {
			module.Variables = append(module.Variables, controls...)
		}

		results = append(results, Result{Path: filePath, Content: raw, Module: module})
	}

	if errs != nil {
		return results, errs.ErrorOrNil()
	}
	return results, nil
}

func decodeANSI(raw []byte) (string, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func errorf(filePath, format string, args ...interface{}) error {
	return &fileError{path: filePath, msg: fmt.Sprintf(format, args...)}
}

type fileError struct {
	path string
	msg  string
}

func (e *fileError) Error() string {
	return e.path + ": " + e.msg
}

// Package runtime embeds a Risor VM for scripted checks. A script runs once
// per file with host functions that navigate the file's tree and report
// violations.
package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
)

// ScriptExtension is the extension of script and library files.
const ScriptExtension = ".risor"

// Runtime evaluates check scripts. It holds no per-file state and is safe
// for concurrent use.
type Runtime struct {
	libDir string
	fsys   fs.FS
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithFS loads scripts and resolves imports from fsys instead of disk.
func WithFS(fsys fs.FS) Option {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLibDir sets the directory that relative script paths and import
// statements resolve against.
func WithLibDir(dir string) Option {
	return func(r *Runtime) {
		r.libDir = dir
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes source against the file described by h. label names the
// script in errors.
func (r *Runtime) Run(ctx context.Context, source, label string, h *Host) error {
	return r.eval(ctx, source, label, h.globals())
}

// RunSource executes source with only the extra globals. Useful for
// testing library code without a file.
func (r *Runtime) RunSource(ctx context.Context, source string, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, globals map[string]any) error {
	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Imported modules see the same globals as the script.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// builtinNames are the globals Risor defines for every evaluation (len,
// print, the standard modules). Imported modules are compiled separately
// and must be told about them as well as about the host globals.
var builtinNames = sync.OnceValue(func() []string {
	return risor.NewConfig().GlobalNames()
})

// buildImporter returns nil if neither an fs.FS nor a library directory is
// configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := slices.Clone(builtinNames())
	for name := range globals {
		globalNames = append(globalNames, name)
	}
	slices.Sort(globalNames)
	globalNames = slices.Compact(globalNames)

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{ScriptExtension},
		})
	}
	if r.libDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.libDir,
			Extensions:  []string{ScriptExtension},
		})
	}
	return nil
}

// LoadScript reads a script. With an fs.FS configured the path is taken
// relative to its root; otherwise relative paths resolve against the
// library directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) && r.libDir != "" {
		fullPath = filepath.Join(r.libDir, path)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}

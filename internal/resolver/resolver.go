// # internal/resolver/resolver.go
package resolver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"importlens/internal/pattern"
)

type AssetType int

const (
	AssetEcmaScript AssetType = iota
	AssetJSON
	AssetRaw
)

// Asset is a file a request can resolve to.
type Asset struct {
	Path string
	Type AssetType
}

// Placeable reports whether the asset can be placed into the module graph
// and therefore receive a module id.
func (a *Asset) Placeable() bool {
	return a.Type == AssetEcmaScript || a.Type == AssetJSON
}

func AssetFromPath(path string) *Asset {
	switch filepath.Ext(path) {
	case ".js", ".mjs", ".cjs", ".ts", ".tsx", ".jsx":
		return &Asset{Path: path, Type: AssetEcmaScript}
	case ".json":
		return &Asset{Path: path, Type: AssetJSON}
	default:
		return &Asset{Path: path, Type: AssetRaw}
	}
}

type ResultKind int

const (
	// ResolvedAlternatives carries zero, one or several candidate assets.
	ResolvedAlternatives ResultKind = iota
	ResolvedSingle
	// ResolvedExternal marks a target deliberately left unresolved; the
	// original call-site expression survives codegen verbatim.
	ResolvedExternal
	// ResolvedTypeExternal is external with a rewritten request string.
	ResolvedTypeExternal
	// ResolvedCustom covers non-trivial shapes the mapping step diagnoses.
	ResolvedCustom
)

type Result struct {
	Kind    ResultKind
	Assets  []*Asset
	Request string // set for ResolvedTypeExternal
}

func Alternatives(assets []*Asset) *Result {
	return &Result{Kind: ResolvedAlternatives, Assets: assets}
}

func Single(asset *Asset) *Result {
	return &Result{Kind: ResolvedSingle, Assets: []*Asset{asset}}
}

func ExternalResult() *Result { return &Result{Kind: ResolvedExternal} }

func TypeExternal(request string) *Result {
	return &Result{Kind: ResolvedTypeExternal, Request: request}
}

func Custom() *Result { return &Result{Kind: ResolvedCustom} }

// External is a configured external: requests matching the glob stay
// unresolved, optionally rewritten to a fixed request string.
type External struct {
	Request string
	Rewrite string
}

type Options struct {
	Extensions []string // probe order, e.g. [".js", ".json"]
	Externals  []External
}

func DefaultOptions() Options {
	return Options{Extensions: []string{".js", ".mjs", ".cjs", ".ts", ".tsx", ".json"}}
}

type Resolver struct {
	opts      Options
	externals []compiledExternal
}

type compiledExternal struct {
	matcher glob.Glob
	rewrite string
}

func NewResolver(opts Options) (*Resolver, error) {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultOptions().Extensions
	}
	r := &Resolver{opts: opts}
	for _, ext := range opts.Externals {
		g, err := glob.Compile(ext.Request)
		if err != nil {
			return nil, fmt.Errorf("invalid external pattern %q: %w", ext.Request, err)
		}
		r.externals = append(r.externals, compiledExternal{matcher: g, rewrite: ext.Rewrite})
	}
	return r, nil
}

// Resolve turns a request pattern into a resolution result, relative to the
// importing file's directory. It never fails: unresolvable requests come
// back as empty alternatives or a custom shape for the mapping step to
// classify.
func (r *Resolver) Resolve(p pattern.Pattern, fromDir string) *Result {
	if request, ok := p.Constant(); ok {
		return r.resolveConstant(request, fromDir)
	}
	if p.FullyDynamic() || !(p.HasPrefix("./") || p.HasPrefix("../")) {
		// A request with no usable static anchor is a non-trivial shape.
		return Custom()
	}
	return r.resolveDynamic(p, fromDir)
}

func (r *Resolver) resolveConstant(request, fromDir string) *Result {
	if request == "" {
		return Alternatives(nil)
	}
	if strings.HasPrefix(request, "node:") || nodeBuiltins[request] {
		return ExternalResult()
	}
	for _, ext := range r.externals {
		if ext.matcher.Match(request) {
			if ext.rewrite != "" {
				return TypeExternal(ext.rewrite)
			}
			return ExternalResult()
		}
	}
	if strings.HasPrefix(request, "./") || strings.HasPrefix(request, "../") {
		return r.probe(filepath.Join(fromDir, filepath.FromSlash(request)))
	}
	if filepath.IsAbs(request) {
		return r.probe(request)
	}
	// Bare specifiers are externals by default: package resolution belongs
	// to the host bundler, not the analyzer.
	return ExternalResult()
}

func (r *Resolver) probe(base string) *Result {
	if isFile(base) {
		return Single(AssetFromPath(base))
	}

	var assets []*Asset
	for _, ext := range r.opts.Extensions {
		if isFile(base + ext) {
			assets = append(assets, AssetFromPath(base+ext))
		}
	}
	if len(assets) == 0 && isDir(base) {
		for _, ext := range r.opts.Extensions {
			index := filepath.Join(base, "index"+ext)
			if isFile(index) {
				assets = append(assets, AssetFromPath(index))
			}
		}
	}

	if len(assets) == 1 {
		return Single(assets[0])
	}
	return Alternatives(assets)
}

// resolveDynamic enumerates the files an interpolated request can reach,
// e.g. every candidate of require("./locale/" + lang + ".json").
func (r *Resolver) resolveDynamic(p pattern.Pattern, fromDir string) *Result {
	prefix := p.Segments[0].Literal
	dirEnd := strings.LastIndex(prefix, "/")
	if dirEnd < 0 {
		return Custom()
	}

	root := filepath.Join(fromDir, filepath.FromSlash(prefix[:dirEnd+1]))
	rest := pattern.Pattern{Segments: append(
		[]pattern.Segment{{Literal: prefix[dirEnd+1:]}},
		p.Segments[1:]...,
	)}
	matcher, err := rest.Compile()
	if err != nil {
		return Custom()
	}

	var assets []*Asset
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if matcher.Match(filepath.ToSlash(rel)) {
			assets = append(assets, AssetFromPath(path))
		}
		return nil
	})

	sort.Slice(assets, func(i, j int) bool { return assets[i].Path < assets[j].Path })
	return Alternatives(assets)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

var nodeBuiltins = map[string]bool{
	"assert": true, "buffer": true, "child_process": true, "cluster": true,
	"crypto": true, "dgram": true, "dns": true, "events": true, "fs": true,
	"http": true, "http2": true, "https": true, "module": true, "net": true,
	"os": true, "path": true, "perf_hooks": true, "process": true,
	"querystring": true, "readline": true, "stream": true,
	"string_decoder": true, "timers": true, "tls": true, "tty": true,
	"url": true, "util": true, "v8": true, "vm": true, "worker_threads": true,
	"zlib": true,
}

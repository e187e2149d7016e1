// # internal/mapping/mapping.go
package mapping

import (
	"fmt"

	"importlens/internal/chunk"
	"importlens/internal/codegen"
	"importlens/internal/issue"
	"importlens/internal/resolver"
)

type Kind int

const (
	// KindInvalid marks a request that resolved to nothing usable. Its
	// generated expression throws when evaluated.
	KindInvalid Kind = iota
	// KindSingle replaces the request with one concrete module id.
	KindSingle
	// KindMap selects a module id by the runtime request string.
	KindMap
	// KindOriginalReferenceExternal keeps the original request expression.
	KindOriginalReferenceExternal
	// KindOriginalReferenceTypeExternal replaces the request with a fixed
	// external request string.
	KindOriginalReferenceTypeExternal
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindMap:
		return "map"
	case KindOriginalReferenceExternal:
		return "external"
	case KindOriginalReferenceTypeExternal:
		return "type-external"
	default:
		return "invalid"
	}
}

// ResolveType distinguishes how the import site loads its target:
// synchronously (require) or asynchronously (dynamic import), which loads
// through a manifest chunk loader.
type ResolveType int

const (
	ResolveCjs ResolveType = iota
	ResolveEsmAsync
)

// PatternMapping describes how one import site's request argument gets
// rewritten. The sink and path travel with the mapping so code generation
// can report its own unimplemented branches.
type PatternMapping struct {
	Kind    Kind
	ID      chunk.ModuleID
	Map     map[string]chunk.ModuleID
	Request string

	sink issue.Sink
	path string
}

// IsInternalImport reports whether the mapping references assets placed in
// the module graph, as opposed to passing the request through to the host.
func (m *PatternMapping) IsInternalImport() bool {
	switch m.Kind {
	case KindOriginalReferenceExternal, KindOriginalReferenceTypeExternal:
		return false
	}
	return true
}

// ResolveRequest classifies a resolution result into a pattern mapping.
// Failures degrade: the worst outcome is an invalid mapping, never an
// aborted analysis.
func ResolveRequest(rt ResolveType, path string, ctx chunk.Context, res *resolver.Result, sink issue.Sink) *PatternMapping {
	m := &PatternMapping{sink: sink, path: path}

	switch res.Kind {
	case resolver.ResolvedSingle:
		return m.fromAsset(rt, ctx, res.Assets[0])
	case resolver.ResolvedAlternatives:
		if len(res.Assets) == 0 {
			// Nothing matched. This is ordinary (optional requires,
			// feature probes), so no diagnostic.
			m.Kind = KindInvalid
			return m
		}
		return m.fromAsset(rt, ctx, res.Assets[0])
	case resolver.ResolvedExternal:
		m.Kind = KindOriginalReferenceExternal
		return m
	case resolver.ResolvedTypeExternal:
		m.Kind = KindOriginalReferenceTypeExternal
		m.Request = res.Request
		return m
	default:
		m.emitBug(
			"pattern mapping is not implemented for this result",
			fmt.Sprintf("resolution result kind %d has no mapping", res.Kind),
		)
		m.Kind = KindInvalid
		return m
	}
}

func (m *PatternMapping) fromAsset(rt ResolveType, ctx chunk.Context, asset *resolver.Asset) *PatternMapping {
	if !asset.Placeable() {
		m.emitBug(
			"non-placeable asset in pattern mapping",
			fmt.Sprintf("asset %s cannot be placed in the module graph", asset.Path),
		)
		m.Kind = KindInvalid
		return m
	}

	var (
		id  chunk.ModuleID
		err error
	)
	switch rt {
	case ResolveEsmAsync:
		id, err = ctx.ManifestLoaderID(asset)
	default:
		id, err = ctx.ID(asset)
	}
	if err != nil {
		m.emitBug("module id lookup failed", err.Error())
		m.Kind = KindInvalid
		return m
	}

	m.Kind = KindSingle
	m.ID = id
	return m
}

// Create renders the replacement for the whole request argument.
func (m *PatternMapping) Create() codegen.Expr {
	switch m.Kind {
	case KindSingle:
		return codegen.ModuleIDLit{ID: m.ID}
	case KindOriginalReferenceTypeExternal:
		return codegen.StringLit(m.Request)
	case KindMap:
		m.emitBug(
			"pattern mapping is not implemented for maps",
			"a request selecting between several modules cannot be generated yet",
		)
		return codegen.ThrowStub("dynamic request mapping is not supported")
	case KindOriginalReferenceExternal:
		m.emitBug(
			"external reference requires the original request expression",
			"an external reference cannot be created without the call-site argument",
		)
		return codegen.ThrowStub("external reference lost its request expression")
	default:
		return codegen.ThrowStub("could not resolve module request")
	}
}

// Apply renders the replacement given the original request expression.
// Externals pass the expression through untouched; everything else ignores
// it and generates from the mapping alone.
func (m *PatternMapping) Apply(request codegen.Expr) codegen.Expr {
	if m.Kind == KindOriginalReferenceExternal {
		return request
	}
	return m.Create()
}

func (m *PatternMapping) emitBug(title, message string) {
	if m.sink == nil {
		return
	}
	m.sink.Emit(issue.Issue{
		Severity: issue.SeverityBug,
		Title:    title,
		Message:  message,
		Path:     m.path,
	})
}

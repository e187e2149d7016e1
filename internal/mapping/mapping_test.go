// # internal/mapping/mapping_test.go
package mapping

import (
	"testing"

	"importlens/internal/chunk"
	"importlens/internal/codegen"
	"importlens/internal/issue"
	"importlens/internal/resolver"
)

func registryWith(t *testing.T, assets ...*resolver.Asset) *chunk.Registry {
	t.Helper()
	r := chunk.NewRegistry()
	r.RegisterAll(assets)
	return r
}

func TestEmptyResolutionIsInvalidWithoutDiagnostic(t *testing.T) {
	sink := issue.NewCollector()
	m := ResolveRequest(ResolveCjs, "src/a.js", chunk.NewRegistry(), resolver.Alternatives(nil), sink)

	if m.Kind != KindInvalid {
		t.Fatalf("kind = %v, want KindInvalid", m.Kind)
	}
	if sink.Len() != 0 {
		t.Fatalf("empty resolution emitted %d diagnostics, want 0", sink.Len())
	}
	if got := m.Create().JS(); got != `(() => { throw new Error("could not resolve module request"); })()` {
		t.Errorf("invalid mapping rendered %s", got)
	}
}

func TestSingleSyncUsesPlacementID(t *testing.T) {
	asset := &resolver.Asset{Path: "src/b.js", Type: resolver.AssetEcmaScript}
	reg := registryWith(t, asset)
	sink := issue.NewCollector()

	m := ResolveRequest(ResolveCjs, "src/a.js", reg, resolver.Single(asset), sink)
	if m.Kind != KindSingle {
		t.Fatalf("kind = %v, want KindSingle", m.Kind)
	}
	if !m.IsInternalImport() {
		t.Error("single mapping must be an internal import")
	}
	if got := m.Create().JS(); got != "0" {
		t.Errorf("rendered %s, want 0", got)
	}
	if sink.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", sink.Issues())
	}
}

func TestAsyncUsesManifestLoaderID(t *testing.T) {
	asset := &resolver.Asset{Path: "src/b.js", Type: resolver.AssetEcmaScript}
	reg := registryWith(t, asset)

	m := ResolveRequest(ResolveEsmAsync, "src/a.js", reg, resolver.Single(asset), issue.NewCollector())
	if m.Kind != KindSingle {
		t.Fatalf("kind = %v, want KindSingle", m.Kind)
	}
	if got := m.Create().JS(); got != `"src/b.js#manifest"` {
		t.Errorf("rendered %s, want manifest loader id", got)
	}
}

func TestAlternativesUseFirstAsset(t *testing.T) {
	a := &resolver.Asset{Path: "src/a.js", Type: resolver.AssetEcmaScript}
	b := &resolver.Asset{Path: "src/b.js", Type: resolver.AssetEcmaScript}
	reg := registryWith(t, a, b)

	m := ResolveRequest(ResolveCjs, "src/main.js", reg, resolver.Alternatives([]*resolver.Asset{a, b}), issue.NewCollector())
	if m.Kind != KindSingle {
		t.Fatalf("kind = %v, want KindSingle", m.Kind)
	}
	if got := m.Create().JS(); got != "0" {
		t.Errorf("rendered %s, want first asset's id", got)
	}
}

func TestExternalPassesRequestThrough(t *testing.T) {
	m := ResolveRequest(ResolveCjs, "src/a.js", chunk.NewRegistry(), resolver.ExternalResult(), issue.NewCollector())
	if m.Kind != KindOriginalReferenceExternal {
		t.Fatalf("kind = %v, want KindOriginalReferenceExternal", m.Kind)
	}
	if m.IsInternalImport() {
		t.Error("external mapping must not be an internal import")
	}
	if got := m.Apply(codegen.Raw(`"fs"`)).JS(); got != `"fs"` {
		t.Errorf("apply rendered %s, want original expression", got)
	}
}

func TestTypeExternalRendersRewrittenRequest(t *testing.T) {
	m := ResolveRequest(ResolveCjs, "src/a.js", chunk.NewRegistry(), resolver.TypeExternal("lodash-es"), issue.NewCollector())
	if m.Kind != KindOriginalReferenceTypeExternal {
		t.Fatalf("kind = %v, want KindOriginalReferenceTypeExternal", m.Kind)
	}
	if got := m.Apply(codegen.Raw("ignored")).JS(); got != `"lodash-es"` {
		t.Errorf("rendered %s, want rewritten request literal", got)
	}
}

func TestCustomResolutionDiagnosesBug(t *testing.T) {
	sink := issue.NewCollector()
	m := ResolveRequest(ResolveCjs, "src/a.js", chunk.NewRegistry(), resolver.Custom(), sink)

	if m.Kind != KindInvalid {
		t.Fatalf("kind = %v, want KindInvalid", m.Kind)
	}
	issues := sink.Issues()
	if len(issues) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(issues))
	}
	if issues[0].Severity != issue.SeverityBug {
		t.Errorf("severity = %v, want bug", issues[0].Severity)
	}
	if issues[0].Title != "pattern mapping is not implemented for this result" {
		t.Errorf("title = %q", issues[0].Title)
	}
	if issues[0].Path != "src/a.js" {
		t.Errorf("path = %q", issues[0].Path)
	}
}

func TestNonPlaceableAssetDiagnosesBug(t *testing.T) {
	asset := &resolver.Asset{Path: "logo.png", Type: resolver.AssetRaw}
	sink := issue.NewCollector()

	m := ResolveRequest(ResolveCjs, "src/a.js", chunk.NewRegistry(), resolver.Single(asset), sink)
	if m.Kind != KindInvalid {
		t.Fatalf("kind = %v, want KindInvalid", m.Kind)
	}
	if sink.Len() != 1 {
		t.Fatalf("got %d diagnostics, want 1", sink.Len())
	}
}

func TestMapCreateDiagnosesAndThrows(t *testing.T) {
	sink := issue.NewCollector()
	m := &PatternMapping{
		Kind: KindMap,
		Map:  map[string]chunk.ModuleID{"./a": chunk.NumberID(1)},
		sink: sink,
		path: "src/a.js",
	}

	got := m.Create().JS()
	if got != `(() => { throw new Error("dynamic request mapping is not supported"); })()` {
		t.Errorf("rendered %s", got)
	}
	if sink.Len() != 1 {
		t.Fatalf("got %d diagnostics, want 1", sink.Len())
	}
	if sink.Issues()[0].Severity != issue.SeverityBug {
		t.Errorf("severity = %v, want bug", sink.Issues()[0].Severity)
	}
}

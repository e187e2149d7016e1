// # internal/resolver/resolver_test.go
package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"importlens/internal/pattern"
	"importlens/internal/value"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("export default 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func constantPattern(request string) pattern.Pattern {
	patterns := pattern.FromValue(value.NewStr(request))
	return patterns[0]
}

func TestResolveExactFile(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "lib/util.js")

	r, err := NewResolver(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	res := r.Resolve(constantPattern("./lib/util.js"), dir)
	if res.Kind != ResolvedSingle {
		t.Fatalf("kind = %v, want ResolvedSingle", res.Kind)
	}
	if res.Assets[0].Path != target {
		t.Errorf("path = %s, want %s", res.Assets[0].Path, target)
	}
	if res.Assets[0].Type != AssetEcmaScript {
		t.Errorf("type = %v, want AssetEcmaScript", res.Assets[0].Type)
	}
}

func TestResolveExtensionProbing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib/util.ts")

	r, _ := NewResolver(DefaultOptions())
	res := r.Resolve(constantPattern("./lib/util"), dir)
	if res.Kind != ResolvedSingle {
		t.Fatalf("kind = %v, want ResolvedSingle", res.Kind)
	}
}

func TestResolveIndexFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib/index.js")

	r, _ := NewResolver(DefaultOptions())
	res := r.Resolve(constantPattern("./lib"), dir)
	if res.Kind != ResolvedSingle {
		t.Fatalf("kind = %v, want ResolvedSingle", res.Kind)
	}
	if filepath.Base(res.Assets[0].Path) != "index.js" {
		t.Errorf("resolved %s, want index.js", res.Assets[0].Path)
	}
}

func TestResolveMissingFileIsEmptyAlternatives(t *testing.T) {
	r, _ := NewResolver(DefaultOptions())
	res := r.Resolve(constantPattern("./missing"), t.TempDir())
	if res.Kind != ResolvedAlternatives || len(res.Assets) != 0 {
		t.Fatalf("got kind=%v assets=%d, want empty alternatives", res.Kind, len(res.Assets))
	}
}

func TestResolveNodeBuiltinIsExternal(t *testing.T) {
	r, _ := NewResolver(DefaultOptions())
	for _, request := range []string{"fs", "node:path", "child_process"} {
		res := r.Resolve(constantPattern(request), t.TempDir())
		if res.Kind != ResolvedExternal {
			t.Errorf("Resolve(%q) kind = %v, want ResolvedExternal", request, res.Kind)
		}
	}
}

func TestResolveBareSpecifierIsExternal(t *testing.T) {
	r, _ := NewResolver(DefaultOptions())
	res := r.Resolve(constantPattern("react"), t.TempDir())
	if res.Kind != ResolvedExternal {
		t.Fatalf("kind = %v, want ResolvedExternal", res.Kind)
	}
}

func TestResolveConfiguredExternalRewrite(t *testing.T) {
	opts := DefaultOptions()
	opts.Externals = []External{
		{Request: "lodash/*", Rewrite: "lodash-es"},
		{Request: "./vendor/*"},
	}
	dir := t.TempDir()
	writeFile(t, dir, "vendor/blob.js")

	r, err := NewResolver(opts)
	if err != nil {
		t.Fatal(err)
	}

	res := r.Resolve(constantPattern("lodash/merge"), dir)
	if res.Kind != ResolvedTypeExternal || res.Request != "lodash-es" {
		t.Fatalf("got kind=%v request=%q, want rewritten external", res.Kind, res.Request)
	}

	// A matching external without a rewrite stays plain external even when
	// the file exists on disk.
	res = r.Resolve(constantPattern("./vendor/blob.js"), dir)
	if res.Kind != ResolvedExternal {
		t.Fatalf("kind = %v, want ResolvedExternal", res.Kind)
	}
}

func TestResolveDynamicEnumeratesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "locale/de.json")
	writeFile(t, dir, "locale/en.json")
	writeFile(t, dir, "locale/readme.txt")

	r, _ := NewResolver(DefaultOptions())

	patterns := pattern.FromValue(&value.Concat{Parts: []value.Value{
		value.NewStr("./locale/"),
		&value.Unknown{Reason: "unknown variable"},
		value.NewStr(".json"),
	}})
	if len(patterns) != 1 {
		t.Fatalf("expected one pattern, got %d", len(patterns))
	}

	res := r.Resolve(patterns[0], dir)
	if res.Kind != ResolvedAlternatives {
		t.Fatalf("kind = %v, want ResolvedAlternatives", res.Kind)
	}
	if len(res.Assets) != 2 {
		t.Fatalf("matched %d assets, want 2", len(res.Assets))
	}
	if filepath.Base(res.Assets[0].Path) != "de.json" || filepath.Base(res.Assets[1].Path) != "en.json" {
		t.Errorf("unexpected match order: %s, %s", res.Assets[0].Path, res.Assets[1].Path)
	}
}

func TestResolveFullyDynamicIsCustom(t *testing.T) {
	r, _ := NewResolver(DefaultOptions())
	patterns := pattern.FromValue(&value.Unknown{Reason: "unknown variable"})
	res := r.Resolve(patterns[0], t.TempDir())
	if res.Kind != ResolvedCustom {
		t.Fatalf("kind = %v, want ResolvedCustom", res.Kind)
	}
}

func TestPlaceable(t *testing.T) {
	if !(&Asset{Path: "a.js", Type: AssetEcmaScript}).Placeable() {
		t.Error("ecmascript assets must be placeable")
	}
	if !(&Asset{Path: "a.json", Type: AssetJSON}).Placeable() {
		t.Error("json assets must be placeable")
	}
	if (&Asset{Path: "a.png", Type: AssetRaw}).Placeable() {
		t.Error("raw assets must not be placeable")
	}
}

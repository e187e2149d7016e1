// # internal/chunk/chunk_test.go
package chunk

import (
	"testing"

	"importlens/internal/resolver"
)

func TestRegisterAllAssignsSortedConsecutiveIDs(t *testing.T) {
	r := NewRegistry()
	b := resolver.AssetFromPath("src/b.js")
	a := resolver.AssetFromPath("src/a.js")
	r.RegisterAll([]*resolver.Asset{b, a, b})

	idA, err := r.ID(a)
	if err != nil {
		t.Fatal(err)
	}
	idB, err := r.ID(b)
	if err != nil {
		t.Fatal(err)
	}

	if idA.String() != "0" || idB.String() != "1" {
		t.Errorf("expected sorted ids 0/1, got %s/%s", idA, idB)
	}
}

func TestRegisterAllIsReproducible(t *testing.T) {
	assets := []*resolver.Asset{
		resolver.AssetFromPath("src/c.js"),
		resolver.AssetFromPath("src/a.js"),
		resolver.AssetFromPath("src/b.js"),
	}

	first := NewRegistry()
	first.RegisterAll(assets)
	second := NewRegistry()
	second.RegisterAll([]*resolver.Asset{assets[1], assets[2], assets[0]})

	for _, a := range assets {
		id1, err := first.ID(a)
		if err != nil {
			t.Fatal(err)
		}
		id2, err := second.ID(a)
		if err != nil {
			t.Fatal(err)
		}
		if id1 != id2 {
			t.Errorf("id for %s differs between runs: %s vs %s", a.Path, id1, id2)
		}
	}
}

func TestIDRejectsNonPlaceableAsset(t *testing.T) {
	r := NewRegistry()
	css := resolver.AssetFromPath("styles/main.css")
	r.RegisterAll([]*resolver.Asset{css})

	if _, err := r.ID(css); err == nil {
		t.Fatal("expected error for non-placeable asset")
	}
}

func TestIDRejectsUnregisteredAsset(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ID(resolver.AssetFromPath("src/missing.js")); err == nil {
		t.Fatal("expected error for unregistered asset")
	}
}

func TestManifestLoaderID(t *testing.T) {
	r := NewRegistry()
	a := resolver.AssetFromPath("src/page.js")
	r.RegisterAll([]*resolver.Asset{a})

	id, err := r.ManifestLoaderID(a)
	if err != nil {
		t.Fatal(err)
	}
	if id.String() != "src/page.js#manifest" {
		t.Errorf("unexpected manifest loader id: %s", id)
	}
	if id.IsNum {
		t.Error("manifest loader ids must be string ids")
	}
}

// # internal/chunk/chunk.go
package chunk

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"importlens/internal/resolver"
)

// ModuleID is the replacement token understood by the runtime module loader.
// Ids are either numeric (direct placement) or strings (manifest loaders).
type ModuleID struct {
	Str   string
	Num   uint32
	IsNum bool
}

func NumberID(n uint32) ModuleID { return ModuleID{Num: n, IsNum: true} }
func StringID(s string) ModuleID { return ModuleID{Str: s} }

func (id ModuleID) String() string {
	if id.IsNum {
		return strconv.FormatUint(uint64(id.Num), 10)
	}
	return id.Str
}

// Context answers the two id queries the pattern-mapping step needs: the
// direct placement id of an asset, and the manifest-loader id used when the
// import site loads asynchronously.
type Context interface {
	ID(asset *resolver.Asset) (ModuleID, error)
	ManifestLoaderID(asset *resolver.Asset) (ModuleID, error)
}

// Registry assigns deterministic module ids: assets registered in sorted
// path order receive consecutive numeric ids, so a rebuild over the same
// inputs reproduces the same ids.
type Registry struct {
	mu  sync.RWMutex
	ids map[string]ModuleID
}

func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]ModuleID)}
}

// RegisterAll registers every placeable asset, ordered by path.
func (r *Registry) RegisterAll(assets []*resolver.Asset) {
	paths := make([]string, 0, len(assets))
	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		if a == nil || !a.Placeable() || seen[a.Path] {
			continue
		}
		seen[a.Path] = true
		paths = append(paths, a.Path)
	}
	sort.Strings(paths)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range paths {
		if _, ok := r.ids[p]; !ok {
			r.ids[p] = NumberID(uint32(len(r.ids)))
		}
	}
}

func (r *Registry) ID(asset *resolver.Asset) (ModuleID, error) {
	if asset == nil || !asset.Placeable() {
		return ModuleID{}, fmt.Errorf("asset %s is not placeable in chunks", assetPath(asset))
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[asset.Path]
	if !ok {
		return ModuleID{}, fmt.Errorf("asset %s has no assigned module id", asset.Path)
	}
	return id, nil
}

// ManifestLoaderID returns the id of the manifest chunk loader that wraps an
// asynchronously imported asset.
func (r *Registry) ManifestLoaderID(asset *resolver.Asset) (ModuleID, error) {
	if _, err := r.ID(asset); err != nil {
		return ModuleID{}, err
	}
	return StringID(asset.Path + "#manifest"), nil
}

func assetPath(asset *resolver.Asset) string {
	if asset == nil {
		return "<nil>"
	}
	return asset.Path
}

// # internal/analyzer/settle.go
package analyzer

import "importlens/internal/value"

// Settle drives the local rewrite rules to a fixed point: each pass rewrites
// the tree bottom-up once, and passes repeat until nothing changes or the
// budget runs out. Returns the settled value, the number of passes used, and
// whether a fixed point was reached.
func Settle(v value.Value, maxPasses int) (value.Value, int, bool) {
	if maxPasses < 1 {
		maxPasses = 1
	}
	for pass := 1; pass <= maxPasses; pass++ {
		next, changed := settlePass(v)
		v = next
		if !changed {
			return v, pass, true
		}
	}
	return v, maxPasses, false
}

func settlePass(v value.Value) (value.Value, bool) {
	changed := false
	value.TransformChildren(v, func(c value.Value) value.Value {
		nc, ok := settlePass(c)
		changed = changed || ok
		return nc
	})
	if nv, ok := value.ReplaceBuiltin(v); ok {
		return nv, true
	}
	return v, changed
}

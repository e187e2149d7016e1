// # internal/value/visit.go
package value

// TransformChildren applies f to every immediate child slot of v, replacing
// the slot with f's result. It never recurses and never enters an Unknown's
// justification, which is shared and immutable.
func TransformChildren(v Value, f func(Value) Value) {
	switch v := v.(type) {
	case *Array:
		for i, item := range v.Items {
			v.Items[i] = f(item)
		}
	case *Object:
		for _, p := range v.Parts {
			switch p := p.(type) {
			case *KeyValue:
				p.Key = f(p.Key)
				p.Value = f(p.Value)
			case *Spread:
				p.Value = f(p.Value)
			}
		}
	case *Concat:
		for i, part := range v.Parts {
			v.Parts[i] = f(part)
		}
	case *Add:
		for i, part := range v.Parts {
			v.Parts[i] = f(part)
		}
	case *URL:
		v.Inner = f(v.Inner)
	case *Function:
		v.Return = f(v.Return)
	case *Call:
		v.Callee = f(v.Callee)
		for i, arg := range v.Args {
			v.Args[i] = f(arg)
		}
	case *MemberCall:
		v.Obj = f(v.Obj)
		v.Prop = f(v.Prop)
		for i, arg := range v.Args {
			v.Args[i] = f(arg)
		}
	case *Member:
		v.Obj = f(v.Obj)
		v.Prop = f(v.Prop)
	case *Alternatives:
		for i, alt := range v.Values {
			v.Values[i] = f(alt)
		}
	}
}

// ReplaceConditional walks v pre-order. At each node, replace may swap the
// node out; replaced nodes are not descended into. descend controls whether
// the walk enters a node's children, which is how beta-reduction stops at
// nested Function boundaries so inner closures keep their own Arguments.
func ReplaceConditional(v Value, descend func(Value) bool, replace func(Value) (Value, bool)) (Value, bool) {
	if nv, ok := replace(v); ok {
		return nv, true
	}
	changed := false
	if descend(v) {
		TransformChildren(v, func(c Value) Value {
			nc, ok := ReplaceConditional(c, descend, replace)
			changed = changed || ok
			return nc
		})
	}
	return v, changed
}

// # internal/value/builtin.go
package value

// ReplaceBuiltin attempts one local simplification of v using builtin
// object/array/function semantics. It returns the (possibly new) node and
// whether anything changed. Rules only look at v and its immediate children;
// composition happens through repeated driver passes, which is why several
// rules return unchanged to defer until a later pass has resolved a
// placeholder. Rules never fail: when a value cannot be decided it degrades
// to Unknown with a human-readable reason.
func ReplaceBuiltin(v Value) (Value, bool) {
	switch v := v.(type) {
	case *Member:
		return replaceMember(v)
	case *MemberCall:
		return replaceMemberCall(v)
	case *Call:
		return replaceCall(v)
	case *Object:
		return flattenSpreads(v)
	}
	return v, false
}

func makeUnknown(v Value, reason string) Value {
	return &Unknown{Original: v, Reason: reason}
}

func replaceMember(m *Member) (Value, bool) {
	switch obj := m.Obj.(type) {
	case *Constant:
		return makeUnknown(m, "property on constant"), true
	case *URL:
		return makeUnknown(m, "property on url"), true
	case *Concat:
		return makeUnknown(m, "property on string"), true
	case *Add:
		return makeUnknown(m, "property on number or string"), true
	case *Unknown:
		return makeUnknown(m, "property on unknown"), true
	case *Function:
		return makeUnknown(m, "property on function"), true
	case *Alternatives:
		// Join distributes over member access.
		alts := make([]Value, len(obj.Values))
		for i, alt := range obj.Values {
			alts[i] = &Member{Obj: alt, Prop: Clone(m.Prop)}
		}
		return &Alternatives{Values: alts}, true
	case *Array:
		return replaceArrayMember(m, obj)
	case *Object:
		return replaceObjectMember(m, obj)
	}
	// The object is placeholder-bearing and may become concrete in a later
	// pass; keep the member intact.
	return m, false
}

// arrayItemsToAlternatives joins every element of the array plus a catch-all
// for prototype methods, length and the like.
func arrayItemsToAlternatives(arr *Array, prop Value) Value {
	alts := append(arr.Items, &Unknown{
		Original: &Member{Obj: &Array{}, Prop: prop},
		Reason:   "unknown array prototype methods or values",
	})
	arr.Items = nil
	return &Alternatives{Values: alts}
}

func replaceArrayMember(m *Member, arr *Array) (Value, bool) {
	switch prop := m.Prop.(type) {
	case *Unknown:
		return arrayItemsToAlternatives(arr, m.Prop), true
	case *Constant:
		if prop.Kind != NumConstant {
			return makeUnknown(m, "non-num constant property on array"), true
		}
		index := int(prop.Num)
		if float64(index) != prop.Num || index < 0 || index >= len(arr.Items) {
			return &Unknown{Original: m, Reason: "invalid index"}, true
		}
		// Order-disturbing extraction: take ownership of the element and
		// discard the remainder. Safe because the array node is replaced
		// immediately and nothing observes the leftover order.
		item := arr.Items[index]
		arr.Items[index] = arr.Items[len(arr.Items)-1]
		arr.Items = arr.Items[:len(arr.Items)-1]
		return item, true
	case *Array:
		return makeUnknown(m, "array property on array"), true
	case *Object:
		return makeUnknown(m, "object property on array"), true
	case *URL:
		return makeUnknown(m, "url property on array"), true
	case *Function:
		return makeUnknown(m, "function property on array"), true
	case *Alternatives:
		alts := make([]Value, len(prop.Values))
		for i, alt := range prop.Values {
			alts[i] = &Member{Obj: Clone(m.Obj), Prop: alt}
		}
		return &Alternatives{Values: alts}, true
	case *Concat, *Add:
		if HasPlaceholder(m.Prop) {
			// The key might still resolve to a concrete string.
			return m, false
		}
		// Fully reduced but non-constant key: could be any element.
		return arrayItemsToAlternatives(arr, m.Prop), true
	}
	return m, false
}

// objectPartsToAlternatives joins every literal value among the parts. Spread
// contents are not individually addressable, so a spread part contributes an
// opaque alternative instead. A catch-all covers prototype members.
func objectPartsToAlternatives(obj *Object, prop Value) Value {
	alts := make([]Value, 0, len(obj.Parts)+1)
	for _, part := range obj.Parts {
		switch part := part.(type) {
		case *KeyValue:
			alts = append(alts, part.Value)
		case *Spread:
			alts = append(alts, &Unknown{
				Original: &Member{Obj: &Object{Parts: []ObjectPart{part}}, Prop: Clone(prop)},
				Reason:   "spreaded object",
			})
		}
	}
	alts = append(alts, &Unknown{
		Original: &Member{Obj: &Object{}, Prop: prop},
		Reason:   "unknown object prototype methods or values",
	})
	obj.Parts = nil
	return &Alternatives{Values: alts}
}

func replaceObjectMember(m *Member, obj *Object) (Value, bool) {
	switch prop := m.Prop.(type) {
	case *Unknown:
		return objectPartsToAlternatives(obj, m.Prop), true
	case *Constant:
		// Reverse scan: the last literal write of a key wins. A spread hit
		// before any match may have introduced the key, so the lookup
		// collapses conservatively.
		for i := len(obj.Parts) - 1; i >= 0; i-- {
			switch part := obj.Parts[i].(type) {
			case *KeyValue:
				if Equal(part.Key, m.Prop) {
					return part.Value, true
				}
			case *Spread:
				return makeUnknown(m, "spreaded object"), true
			}
		}
		return Undefined(), true
	case *Array:
		return makeUnknown(m, "array property on object"), true
	case *Object:
		return makeUnknown(m, "object property on object"), true
	case *URL:
		return makeUnknown(m, "url property on object"), true
	case *Function:
		return makeUnknown(m, "function property on object"), true
	case *Alternatives:
		alts := make([]Value, len(prop.Values))
		for i, alt := range prop.Values {
			alts[i] = &Member{Obj: Clone(m.Obj), Prop: alt}
		}
		return &Alternatives{Values: alts}, true
	case *Concat, *Add:
		if HasPlaceholder(m.Prop) {
			return m, false
		}
		return objectPartsToAlternatives(obj, m.Prop), true
	}
	return m, false
}

// concatSafe lists the shapes that can be spliced into an array without
// hidden side effects.
func concatSafe(v Value) bool {
	switch v.(type) {
	case *Array, *Constant, *URL, *Concat, *Add, *WellKnownObject, *WellKnownFunction, *Function:
		return true
	}
	return false
}

func replaceMemberCall(mc *MemberCall) (Value, bool) {
	switch obj := mc.Obj.(type) {
	case *Alternatives:
		alts := make([]Value, len(obj.Values))
		for i, alt := range obj.Values {
			alts[i] = &MemberCall{Obj: alt, Prop: Clone(mc.Prop), Args: cloneSlice(mc.Args)}
		}
		return &Alternatives{Values: alts}, true
	case *Array:
		if prop, ok := mc.Prop.(*Constant); ok && prop.Kind == StrConstant && prop.Str == "concat" {
			safe := true
			for _, arg := range mc.Args {
				if !concatSafe(arg) {
					safe = false
					break
				}
			}
			if safe {
				// The call's whole effect is captured statically: splice
				// array arguments, push everything else.
				for _, arg := range mc.Args {
					if inner, ok := arg.(*Array); ok {
						obj.Items = append(obj.Items, inner.Items...)
						inner.Items = nil
					} else {
						obj.Items = append(obj.Items, arg)
					}
				}
				return obj, true
			}
		}
	}
	// No specialized rule: fall back to the generic form so the Member and
	// Call rules give every unmodeled method conservative treatment.
	return &Call{
		Callee: &Member{Obj: mc.Obj, Prop: mc.Prop},
		Args:   mc.Args,
	}, true
}

func replaceCall(c *Call) (Value, bool) {
	switch callee := c.Callee.(type) {
	case *Unknown:
		return makeUnknown(c, "call of unknown function"), true
	case *Array:
		return makeUnknown(c, "call of array"), true
	case *Object:
		return makeUnknown(c, "call of object"), true
	case *Constant:
		return makeUnknown(c, "call of constant"), true
	case *URL:
		return makeUnknown(c, "call of url"), true
	case *Concat:
		return makeUnknown(c, "call of string"), true
	case *Add:
		return makeUnknown(c, "call of number or string"), true
	case *Function:
		// Beta-reduction: substitute Argument placeholders in the body with
		// the call arguments. The walk stops at nested Function nodes so an
		// inner, uncalled closure keeps its own arguments symbolic.
		body := callee.Return
		callee.Return = nil
		body, _ = ReplaceConditional(body,
			func(v Value) bool {
				_, isFn := v.(*Function)
				return !isFn
			},
			func(v Value) (Value, bool) {
				arg, ok := v.(*Argument)
				if !ok {
					return nil, false
				}
				if arg.Index < len(c.Args) {
					return Clone(c.Args[arg.Index]), true
				}
				return Undefined(), true
			})
		return body, true
	case *Alternatives:
		alts := make([]Value, len(callee.Values))
		for i, alt := range callee.Values {
			alts[i] = &Call{Callee: alt, Args: cloneSlice(c.Args)}
		}
		return &Alternatives{Values: alts}, true
	}
	// Placeholder-bearing callee; keep the call for a later pass.
	return c, false
}

// flattenSpreads splices literal-object spreads into the surrounding parts
// list. One application per pass is enough: further nested spreads only
// surface after other rules introduce new literal objects.
func flattenSpreads(o *Object) (Value, bool) {
	needed := false
	for _, part := range o.Parts {
		if sp, ok := part.(*Spread); ok {
			if _, ok := sp.Value.(*Object); ok {
				needed = true
				break
			}
		}
	}
	if !needed {
		return o, false
	}

	parts := make([]ObjectPart, 0, len(o.Parts))
	for _, part := range o.Parts {
		if sp, ok := part.(*Spread); ok {
			if inner, ok := sp.Value.(*Object); ok {
				parts = append(parts, inner.Parts...)
				continue
			}
		}
		parts = append(parts, part)
	}
	o.Parts = parts
	return o, true
}

// # internal/value/value.go
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a statically-known-or-partially-known JavaScript value. The set of
// implementations is closed; every variant owns its children outright except
// Unknown, whose justification is an immutable shared sub-expression.
type Value interface {
	value()
	String() string
}

type ConstantKind int

const (
	StrConstant ConstantKind = iota
	NumConstant
	BoolConstant
)

type Constant struct {
	Kind ConstantKind
	Str  string
	Num  float64
	Bool bool
}

func NewStr(s string) *Constant  { return &Constant{Kind: StrConstant, Str: s} }
func NewNum(n float64) *Constant { return &Constant{Kind: NumConstant, Num: n} }
func NewBool(b bool) *Constant   { return &Constant{Kind: BoolConstant, Bool: b} }

// Array is an ordered, index-addressable sequence.
type Array struct {
	Items []Value
}

// ObjectPart is either a literal key/value pair or a spread. Insertion order
// matters: lookups scan in reverse so the last literal write wins.
type ObjectPart interface {
	objectPart()
}

type KeyValue struct {
	Key   Value
	Value Value
}

type Spread struct {
	Value Value
}

func (*KeyValue) objectPart() {}
func (*Spread) objectPart()   {}

type Object struct {
	Parts []ObjectPart
}

// Concat is an unresolved string concatenation, kept symbolic until a later
// constant-folding pass reduces it.
type Concat struct {
	Parts []Value
}

// Add is an unresolved numeric-or-string addition.
type Add struct {
	Parts []Value
}

// URL wraps an opaque resource locator, e.g. `new URL(x, import.meta.url)`.
type URL struct {
	Inner Value
}

// Function is a captured return expression. Free references to the formal
// parameters appear as Argument placeholders; there is no closure environment
// beyond the body itself.
type Function struct {
	Return Value
}

type Call struct {
	Callee Value
	Args   []Value
}

type MemberCall struct {
	Obj  Value
	Prop Value
	Args []Value
}

type Member struct {
	Obj  Value
	Prop Value
}

// Alternatives is a non-deterministic join: the value is one of these, and
// static analysis could not narrow which.
type Alternatives struct {
	Values []Value
}

// Unknown is the engine's imprecision floor. Original, when present, is the
// expression that degraded; it is shared and must never be mutated.
type Unknown struct {
	Original Value
	Reason   string
}

type FreeVarKind int

const (
	FreeVarRequire FreeVarKind = iota
	FreeVarDirname
	FreeVarFilename
	FreeVarOther
)

type FreeVar struct {
	Kind FreeVarKind
	Name string // only set for FreeVarOther
}

// Undefined is the free-variable sentinel used for missing object keys and
// missing call arguments.
func Undefined() *FreeVar { return &FreeVar{Kind: FreeVarOther, Name: "undefined"} }

type Variable struct {
	ID string
}

type WellKnownObjectKind int

const (
	ProcessObject WellKnownObjectKind = iota
	ImportMetaObject
	PathModuleObject
)

type WellKnownObject struct {
	Kind WellKnownObjectKind
}

type WellKnownFunctionKind int

const (
	RequireFunction WellKnownFunctionKind = iota
	ImportFunction
	PathJoinFunction
)

type WellKnownFunction struct {
	Kind WellKnownFunctionKind
}

// Argument is a placeholder for a function's formal parameter by index.
type Argument struct {
	Index int
}

// ModuleRef is a reference to an already-resolved module.
type ModuleRef struct {
	Name string
}

func (*Constant) value()          {}
func (*Array) value()             {}
func (*Object) value()            {}
func (*Concat) value()            {}
func (*Add) value()               {}
func (*URL) value()               {}
func (*Function) value()          {}
func (*Call) value()              {}
func (*MemberCall) value()        {}
func (*Member) value()            {}
func (*Alternatives) value()      {}
func (*Unknown) value()           {}
func (*FreeVar) value()           {}
func (*Variable) value()          {}
func (*WellKnownObject) value()   {}
func (*WellKnownFunction) value() {}
func (*Argument) value()          {}
func (*ModuleRef) value()         {}

// Clone deep-copies v. The one deliberate exception is Unknown's
// justification, which stays shared: it is immutable by contract.
func Clone(v Value) Value {
	switch v := v.(type) {
	case *Constant:
		c := *v
		return &c
	case *Array:
		return &Array{Items: cloneSlice(v.Items)}
	case *Object:
		parts := make([]ObjectPart, len(v.Parts))
		for i, p := range v.Parts {
			switch p := p.(type) {
			case *KeyValue:
				parts[i] = &KeyValue{Key: Clone(p.Key), Value: Clone(p.Value)}
			case *Spread:
				parts[i] = &Spread{Value: Clone(p.Value)}
			}
		}
		return &Object{Parts: parts}
	case *Concat:
		return &Concat{Parts: cloneSlice(v.Parts)}
	case *Add:
		return &Add{Parts: cloneSlice(v.Parts)}
	case *URL:
		return &URL{Inner: Clone(v.Inner)}
	case *Function:
		return &Function{Return: Clone(v.Return)}
	case *Call:
		return &Call{Callee: Clone(v.Callee), Args: cloneSlice(v.Args)}
	case *MemberCall:
		return &MemberCall{Obj: Clone(v.Obj), Prop: Clone(v.Prop), Args: cloneSlice(v.Args)}
	case *Member:
		return &Member{Obj: Clone(v.Obj), Prop: Clone(v.Prop)}
	case *Alternatives:
		return &Alternatives{Values: cloneSlice(v.Values)}
	case *Unknown:
		return &Unknown{Original: v.Original, Reason: v.Reason}
	case *FreeVar:
		c := *v
		return &c
	case *Variable:
		c := *v
		return &c
	case *WellKnownObject:
		c := *v
		return &c
	case *WellKnownFunction:
		c := *v
		return &c
	case *Argument:
		c := *v
		return &c
	case *ModuleRef:
		c := *v
		return &c
	}
	return v
}

func cloneSlice(vs []Value) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Clone(v)
	}
	return out
}

// Equal reports structural equality. Shared Unknown justifications compare by
// identity first, then structurally.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch a := a.(type) {
	case *Constant:
		b, ok := b.(*Constant)
		return ok && *a == *b
	case *Array:
		b, ok := b.(*Array)
		return ok && equalSlices(a.Items, b.Items)
	case *Object:
		b, ok := b.(*Object)
		if !ok || len(a.Parts) != len(b.Parts) {
			return false
		}
		for i := range a.Parts {
			if !equalParts(a.Parts[i], b.Parts[i]) {
				return false
			}
		}
		return true
	case *Concat:
		b, ok := b.(*Concat)
		return ok && equalSlices(a.Parts, b.Parts)
	case *Add:
		b, ok := b.(*Add)
		return ok && equalSlices(a.Parts, b.Parts)
	case *URL:
		b, ok := b.(*URL)
		return ok && Equal(a.Inner, b.Inner)
	case *Function:
		b, ok := b.(*Function)
		return ok && Equal(a.Return, b.Return)
	case *Call:
		b, ok := b.(*Call)
		return ok && Equal(a.Callee, b.Callee) && equalSlices(a.Args, b.Args)
	case *MemberCall:
		b, ok := b.(*MemberCall)
		return ok && Equal(a.Obj, b.Obj) && Equal(a.Prop, b.Prop) && equalSlices(a.Args, b.Args)
	case *Member:
		b, ok := b.(*Member)
		return ok && Equal(a.Obj, b.Obj) && Equal(a.Prop, b.Prop)
	case *Alternatives:
		b, ok := b.(*Alternatives)
		return ok && equalSlices(a.Values, b.Values)
	case *Unknown:
		b, ok := b.(*Unknown)
		if !ok || a.Reason != b.Reason {
			return false
		}
		if a.Original == b.Original {
			return true
		}
		return Equal(a.Original, b.Original)
	case *FreeVar:
		b, ok := b.(*FreeVar)
		return ok && *a == *b
	case *Variable:
		b, ok := b.(*Variable)
		return ok && *a == *b
	case *WellKnownObject:
		b, ok := b.(*WellKnownObject)
		return ok && *a == *b
	case *WellKnownFunction:
		b, ok := b.(*WellKnownFunction)
		return ok && *a == *b
	case *Argument:
		b, ok := b.(*Argument)
		return ok && *a == *b
	case *ModuleRef:
		b, ok := b.(*ModuleRef)
		return ok && *a == *b
	}
	return false
}

func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalParts(a, b ObjectPart) bool {
	switch a := a.(type) {
	case *KeyValue:
		b, ok := b.(*KeyValue)
		return ok && Equal(a.Key, b.Key) && Equal(a.Value, b.Value)
	case *Spread:
		b, ok := b.(*Spread)
		return ok && Equal(a.Value, b.Value)
	}
	return false
}

// HasPlaceholder reports whether v contains any not-yet-resolved construct
// anywhere in its subtree. Rules that need a fully concrete value must defer
// on placeholder-bearing input.
func HasPlaceholder(v Value) bool {
	switch v := v.(type) {
	case *Unknown, *Argument, *FreeVar, *Variable, *Call, *MemberCall, *Member,
		*WellKnownObject, *WellKnownFunction, *ModuleRef:
		return true
	case *Constant:
		return false
	case *Array:
		return anyPlaceholder(v.Items)
	case *Object:
		for _, p := range v.Parts {
			switch p := p.(type) {
			case *KeyValue:
				if HasPlaceholder(p.Key) || HasPlaceholder(p.Value) {
					return true
				}
			case *Spread:
				if HasPlaceholder(p.Value) {
					return true
				}
			}
		}
		return false
	case *Concat:
		return anyPlaceholder(v.Parts)
	case *Add:
		return anyPlaceholder(v.Parts)
	case *URL:
		return HasPlaceholder(v.Inner)
	case *Function:
		return HasPlaceholder(v.Return)
	case *Alternatives:
		return anyPlaceholder(v.Values)
	}
	return false
}

func anyPlaceholder(vs []Value) bool {
	for _, v := range vs {
		if HasPlaceholder(v) {
			return true
		}
	}
	return false
}

func (c *Constant) String() string {
	switch c.Kind {
	case StrConstant:
		return strconv.Quote(c.Str)
	case NumConstant:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	default:
		return strconv.FormatBool(c.Bool)
	}
}

func (a *Array) String() string  { return "[" + joinValues(a.Items, ", ") + "]" }
func (c *Concat) String() string { return "`" + joinValues(c.Parts, "") + "`" }
func (a *Add) String() string    { return "(" + joinValues(a.Parts, " + ") + ")" }
func (u *URL) String() string    { return "url(" + u.Inner.String() + ")" }

func (o *Object) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, p := range o.Parts {
		if i > 0 {
			b.WriteString(", ")
		}
		switch p := p.(type) {
		case *KeyValue:
			b.WriteString(p.Key.String())
			b.WriteString(": ")
			b.WriteString(p.Value.String())
		case *Spread:
			b.WriteString("...")
			b.WriteString(p.Value.String())
		}
	}
	b.WriteString("}")
	return b.String()
}

func (f *Function) String() string { return "(...) => " + f.Return.String() }

func (c *Call) String() string {
	return c.Callee.String() + "(" + joinValues(c.Args, ", ") + ")"
}

func (m *MemberCall) String() string {
	return m.Obj.String() + "[" + m.Prop.String() + "](" + joinValues(m.Args, ", ") + ")"
}

func (m *Member) String() string { return m.Obj.String() + "[" + m.Prop.String() + "]" }

func (a *Alternatives) String() string { return "(" + joinValues(a.Values, " | ") + ")" }

func (u *Unknown) String() string { return "???(" + u.Reason + ")" }

func (f *FreeVar) String() string {
	switch f.Kind {
	case FreeVarRequire:
		return "require"
	case FreeVarDirname:
		return "__dirname"
	case FreeVarFilename:
		return "__filename"
	default:
		return f.Name
	}
}

func (v *Variable) String() string { return "var(" + v.ID + ")" }

func (w *WellKnownObject) String() string {
	switch w.Kind {
	case ProcessObject:
		return "process"
	case ImportMetaObject:
		return "import.meta"
	default:
		return "path"
	}
}

func (w *WellKnownFunction) String() string {
	switch w.Kind {
	case RequireFunction:
		return "require"
	case ImportFunction:
		return "import"
	default:
		return "path.join"
	}
}

func (a *Argument) String() string  { return fmt.Sprintf("arguments[%d]", a.Index) }
func (m *ModuleRef) String() string { return "module(" + m.Name + ")" }

func joinValues(vs []Value, sep string) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, sep)
}

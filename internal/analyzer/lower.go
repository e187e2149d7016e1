// # internal/analyzer/lower.go
package analyzer

import (
	"strconv"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"importlens/internal/value"
)

// lowerer translates syntax nodes into symbolic values. It is deliberately
// partial: any construct outside the modelled subset becomes an Unknown
// carrying the offending node kind, and the rewrite engine degrades from
// there.
type lowerer struct {
	source   []byte
	bindings map[string]*sitter.Node
	params   map[string]int
	inlining map[string]bool
}

func newLowerer(source []byte, bindings map[string]*sitter.Node) *lowerer {
	return &lowerer{
		source:   source,
		bindings: bindings,
		inlining: make(map[string]bool),
	}
}

func (l *lowerer) text(n *sitter.Node) string {
	return string(l.source[n.StartByte():n.EndByte()])
}

func (l *lowerer) lower(n *sitter.Node) value.Value {
	if n == nil {
		return &value.Unknown{Reason: "missing expression"}
	}
	if l.text(n) == "import.meta" {
		return &value.WellKnownObject{Kind: value.ImportMetaObject}
	}

	switch n.Kind() {
	case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
		return l.lower(n.NamedChild(0))
	case "string":
		return value.NewStr(l.stringText(n))
	case "template_string":
		return l.templateString(n)
	case "number":
		num, err := strconv.ParseFloat(strings.ReplaceAll(l.text(n), "_", ""), 64)
		if err != nil {
			return &value.Unknown{Reason: "unparseable number literal"}
		}
		return value.NewNum(num)
	case "true":
		return value.NewBool(true)
	case "false":
		return value.NewBool(false)
	case "undefined":
		return value.Undefined()
	case "identifier":
		return l.identifier(l.text(n))
	case "binary_expression":
		return l.binary(n)
	case "ternary_expression":
		return &value.Alternatives{Values: []value.Value{
			l.lower(n.ChildByFieldName("consequence")),
			l.lower(n.ChildByFieldName("alternative")),
		}}
	case "array":
		return l.array(n)
	case "object":
		return l.object(n)
	case "member_expression":
		return l.member(n)
	case "subscript_expression":
		return &value.Member{
			Obj:  l.lower(n.ChildByFieldName("object")),
			Prop: l.lower(n.ChildByFieldName("index")),
		}
	case "call_expression":
		return l.call(n)
	case "new_expression":
		return l.newExpression(n)
	case "arrow_function", "function_expression", "function_declaration", "function":
		return l.function(n)
	}
	return &value.Unknown{Reason: "unsupported syntax: " + n.Kind()}
}

func (l *lowerer) identifier(name string) value.Value {
	if idx, ok := l.params[name]; ok {
		return &value.Argument{Index: idx}
	}

	switch name {
	case "require":
		return &value.FreeVar{Kind: value.FreeVarRequire}
	case "__dirname":
		return &value.FreeVar{Kind: value.FreeVarDirname}
	case "__filename":
		return &value.FreeVar{Kind: value.FreeVarFilename}
	case "undefined":
		return value.Undefined()
	case "process":
		return &value.WellKnownObject{Kind: value.ProcessObject}
	}

	if init, ok := l.bindings[name]; ok && !l.inlining[name] {
		// Inline file-scope const bindings, guarding against cycles.
		l.inlining[name] = true
		v := l.lower(init)
		delete(l.inlining, name)
		return v
	}
	return &value.FreeVar{Kind: value.FreeVarOther, Name: name}
}

func (l *lowerer) binary(n *sitter.Node) value.Value {
	op := n.ChildByFieldName("operator")
	if op == nil || l.text(op) != "+" {
		return &value.Unknown{Reason: "unsupported binary operator"}
	}

	var parts []value.Value
	for _, side := range []*sitter.Node{n.ChildByFieldName("left"), n.ChildByFieldName("right")} {
		v := l.lower(side)
		if add, ok := v.(*value.Add); ok {
			parts = append(parts, add.Parts...)
			continue
		}
		parts = append(parts, v)
	}
	return &value.Add{Parts: parts}
}

func (l *lowerer) array(n *sitter.Node) value.Value {
	arr := &value.Array{}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		if child.Kind() == "spread_element" {
			arr.Items = append(arr.Items, &value.Unknown{Reason: "spread in array literal"})
			continue
		}
		arr.Items = append(arr.Items, l.lower(child))
	}
	return arr
}

func (l *lowerer) object(n *sitter.Node) value.Value {
	obj := &value.Object{}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "pair":
			obj.Parts = append(obj.Parts, &value.KeyValue{
				Key:   l.propertyKey(child.ChildByFieldName("key")),
				Value: l.lower(child.ChildByFieldName("value")),
			})
		case "spread_element":
			obj.Parts = append(obj.Parts, &value.Spread{Value: l.lower(child.NamedChild(0))})
		case "shorthand_property_identifier":
			name := l.text(child)
			obj.Parts = append(obj.Parts, &value.KeyValue{
				Key:   value.NewStr(name),
				Value: l.identifier(name),
			})
		case "comment":
		default:
			obj.Parts = append(obj.Parts, &value.Spread{
				Value: &value.Unknown{Reason: "unsupported object member: " + child.Kind()},
			})
		}
	}
	return obj
}

func (l *lowerer) propertyKey(n *sitter.Node) value.Value {
	if n == nil {
		return &value.Unknown{Reason: "missing property key"}
	}
	switch n.Kind() {
	case "property_identifier":
		return value.NewStr(l.text(n))
	case "string":
		return value.NewStr(l.stringText(n))
	case "number":
		return l.lower(n)
	case "computed_property_name":
		return l.lower(n.NamedChild(0))
	}
	return &value.Unknown{Reason: "unsupported property key: " + n.Kind()}
}

func (l *lowerer) member(n *sitter.Node) value.Value {
	obj := l.lower(n.ChildByFieldName("object"))
	prop := n.ChildByFieldName("property")
	if prop == nil {
		return &value.Unknown{Reason: "missing member property"}
	}
	return &value.Member{Obj: obj, Prop: value.NewStr(l.text(prop))}
}

func (l *lowerer) call(n *sitter.Node) value.Value {
	callee := n.ChildByFieldName("function")
	args := l.arguments(n.ChildByFieldName("arguments"))

	if callee != nil && callee.Kind() == "member_expression" {
		prop := callee.ChildByFieldName("property")
		if prop != nil {
			return &value.MemberCall{
				Obj:  l.lower(callee.ChildByFieldName("object")),
				Prop: value.NewStr(l.text(prop)),
				Args: args,
			}
		}
	}
	if callee != nil && callee.Kind() == "import" {
		return &value.Call{
			Callee: &value.WellKnownFunction{Kind: value.ImportFunction},
			Args:   args,
		}
	}
	return &value.Call{Callee: l.lower(callee), Args: args}
}

func (l *lowerer) newExpression(n *sitter.Node) value.Value {
	ctor := n.ChildByFieldName("constructor")
	if ctor != nil && l.text(ctor) == "URL" {
		args := l.arguments(n.ChildByFieldName("arguments"))
		if len(args) >= 1 {
			return &value.URL{Inner: args[0]}
		}
	}
	return &value.Unknown{Reason: "unsupported new expression"}
}

func (l *lowerer) arguments(n *sitter.Node) []value.Value {
	if n == nil {
		return nil
	}
	var args []value.Value
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		args = append(args, l.lower(child))
	}
	return args
}

// function lowers an arrow or function expression to a symbolic function
// whose body references its own parameters positionally. Parameter names of
// enclosing functions are shadowed for the body.
func (l *lowerer) function(n *sitter.Node) value.Value {
	params := make(map[string]int)
	if p := n.ChildByFieldName("parameter"); p != nil && p.Kind() == "identifier" {
		params[l.text(p)] = 0
	} else if ps := n.ChildByFieldName("parameters"); ps != nil {
		idx := 0
		for i := uint(0); i < ps.NamedChildCount(); i++ {
			child := ps.NamedChild(i)
			switch child.Kind() {
			case "identifier":
				params[l.text(child)] = idx
			case "required_parameter", "optional_parameter":
				if name := child.ChildByFieldName("pattern"); name != nil && name.Kind() == "identifier" {
					params[l.text(name)] = idx
				}
			}
			idx++
		}
	}

	saved := l.params
	l.params = params
	body := l.lowerFunctionBody(n.ChildByFieldName("body"))
	l.params = saved

	return &value.Function{Return: body}
}

func (l *lowerer) lowerFunctionBody(body *sitter.Node) value.Value {
	if body == nil {
		return value.Undefined()
	}
	if body.Kind() != "statement_block" {
		return l.lower(body)
	}

	// Only a single top-level return is modelled; anything with control
	// flow degrades.
	var ret *sitter.Node
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		if child.Kind() == "return_statement" && ret == nil {
			ret = child
			continue
		}
		return &value.Unknown{Reason: "complex function body"}
	}
	if ret == nil {
		return value.Undefined()
	}
	if ret.NamedChildCount() == 0 {
		return value.Undefined()
	}
	return l.lower(ret.NamedChild(0))
}

func (l *lowerer) templateString(n *sitter.Node) value.Value {
	var parts []value.Value
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "string_fragment":
			parts = append(parts, value.NewStr(l.text(child)))
		case "template_substitution":
			parts = append(parts, l.lower(child.NamedChild(0)))
		case "escape_sequence":
			parts = append(parts, value.NewStr(unescape(l.text(child))))
		}
	}
	if len(parts) == 0 {
		return value.NewStr("")
	}
	if len(parts) == 1 {
		if c, ok := parts[0].(*value.Constant); ok {
			return c
		}
	}
	return &value.Concat{Parts: parts}
}

func (l *lowerer) stringText(n *sitter.Node) string {
	var b strings.Builder
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "string_fragment":
			b.WriteString(l.text(child))
		case "escape_sequence":
			b.WriteString(unescape(l.text(child)))
		}
	}
	return b.String()
}

func unescape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	switch seq[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\':
		return "\\"
	case '\'':
		return "'"
	case '"':
		return "\""
	case '`':
		return "`"
	case '0':
		return "\x00"
	}
	return seq[1:]
}

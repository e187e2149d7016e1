// # internal/codegen/codegen.go
package codegen

import (
	"strconv"
	"strings"

	"importlens/internal/chunk"
)

// Expr is a rendered JavaScript expression fragment.
type Expr interface {
	JS() string
}

// Raw is a verbatim expression, used to preserve an original call-site
// argument that resolution left untouched.
type Raw string

func (r Raw) JS() string { return string(r) }

// StringLit renders as a double-quoted JavaScript string literal.
type StringLit string

func (s StringLit) JS() string { return quote(string(s)) }

// ModuleIDLit renders a module id: numeric ids inline as numbers, string
// ids as string literals.
type ModuleIDLit struct {
	ID chunk.ModuleID
}

func (m ModuleIDLit) JS() string {
	if m.ID.IsNum {
		return strconv.FormatUint(uint64(m.ID.Num), 10)
	}
	return quote(m.ID.Str)
}

// ThrowStub is an immediately-invoked expression that throws when reached.
// It stands in for rewrites that could not be generated, so the bundle
// still loads and only the broken import site fails at runtime.
type ThrowStub string

func (t ThrowStub) JS() string {
	return "(() => { throw new Error(" + quote(string(t)) + "); })()"
}

// CallExpr renders callee(arg0, arg1, ...).
type CallExpr struct {
	Callee Expr
	Args   []Expr
}

func (c CallExpr) JS() string {
	var b strings.Builder
	b.WriteString(c.Callee.JS())
	b.WriteString("(")
	for i, arg := range c.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.JS())
	}
	b.WriteString(")")
	return b.String()
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

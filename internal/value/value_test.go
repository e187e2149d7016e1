// # internal/value/value_test.go
package value

import (
	"testing"
)

func TestCloneIsDeep(t *testing.T) {
	arr := &Array{Items: []Value{NewStr("a"), &Object{Parts: []ObjectPart{
		&KeyValue{Key: NewStr("k"), Value: NewNum(1)},
	}}}}

	c := Clone(arr).(*Array)
	c.Items[0] = NewStr("changed")
	c.Items[1].(*Object).Parts[0].(*KeyValue).Value = NewNum(2)

	if !Equal(arr.Items[0], NewStr("a")) {
		t.Error("clone shares item storage with original")
	}
	if !Equal(arr.Items[1].(*Object).Parts[0].(*KeyValue).Value, NewNum(1)) {
		t.Error("clone shares nested object storage with original")
	}
}

func TestCloneSharesUnknownJustification(t *testing.T) {
	original := NewStr("why")
	u := &Unknown{Original: original, Reason: "r"}

	c := Clone(u).(*Unknown)
	if c.Original != Value(original) {
		t.Error("Unknown justification must stay shared across clones")
	}
}

func TestHasPlaceholder(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NewStr("a"), false},
		{&Array{Items: []Value{NewStr("a"), NewNum(1)}}, false},
		{&Array{Items: []Value{NewStr("a"), &Variable{ID: "x"}}}, true},
		{&Concat{Parts: []Value{NewStr("a"), &Unknown{Reason: "r"}}}, true},
		{&Object{Parts: []ObjectPart{&Spread{Value: &Member{Obj: NewStr("a"), Prop: NewStr("b")}}}}, true},
		{&Function{Return: &Argument{Index: 0}}, true},
		{&URL{Inner: NewStr("u")}, false},
		{&WellKnownFunction{Kind: RequireFunction}, true},
		{&ModuleRef{Name: "m"}, true},
	}

	for _, tc := range cases {
		if got := HasPlaceholder(tc.v); got != tc.want {
			t.Errorf("HasPlaceholder(%s) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestEqualConstants(t *testing.T) {
	if !Equal(NewStr("a"), NewStr("a")) {
		t.Error("equal strings must compare equal")
	}
	if Equal(NewStr("1"), NewNum(1)) {
		t.Error("string and number constants must differ")
	}
	if !Equal(
		&Alternatives{Values: []Value{NewStr("a"), NewNum(2)}},
		&Alternatives{Values: []Value{NewStr("a"), NewNum(2)}},
	) {
		t.Error("structural equality over alternatives failed")
	}
}

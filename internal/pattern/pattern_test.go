// # internal/pattern/pattern_test.go
package pattern

import (
	"testing"

	"importlens/internal/value"
)

func TestFromValueConstant(t *testing.T) {
	patterns := FromValue(value.NewStr("./lib/util.js"))
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}

	req, ok := patterns[0].Constant()
	if !ok {
		t.Fatal("expected constant pattern")
	}
	if req != "./lib/util.js" {
		t.Errorf("expected ./lib/util.js, got %s", req)
	}
}

func TestFromValueConcatMergesLiterals(t *testing.T) {
	v := &value.Concat{Parts: []value.Value{
		value.NewStr("./locale/"),
		value.NewStr("prefix-"),
		&value.FreeVar{Kind: value.FreeVarOther, Name: "lang"},
		value.NewStr(".json"),
	}}

	patterns := FromValue(v)
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}

	p := patterns[0]
	if len(p.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %v", len(p.Segments), p.Segments)
	}
	if p.Segments[0].Literal != "./locale/prefix-" {
		t.Errorf("expected merged leading literal, got %q", p.Segments[0].Literal)
	}
	if !p.Segments[1].Dynamic {
		t.Error("expected middle segment to be dynamic")
	}
	if p.String() != "./locale/prefix-<dynamic>.json" {
		t.Errorf("unexpected string form: %s", p.String())
	}
}

func TestFromValueCollapsesAdjacentHoles(t *testing.T) {
	v := &value.Add{Parts: []value.Value{
		value.NewStr("./"),
		&value.FreeVar{Kind: value.FreeVarOther, Name: "a"},
		&value.FreeVar{Kind: value.FreeVarOther, Name: "b"},
		value.NewStr(".js"),
	}}

	p := FromValue(v)[0]
	if len(p.Segments) != 3 {
		t.Fatalf("expected adjacent holes collapsed into one, got %v", p.Segments)
	}
}

func TestFromValueAlternativesExpand(t *testing.T) {
	v := &value.Alternatives{Values: []value.Value{
		value.NewStr("./a.js"),
		value.NewStr("./b.js"),
	}}

	patterns := FromValue(v)
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(patterns))
	}
	for i, want := range []string{"./a.js", "./b.js"} {
		if got, _ := patterns[i].Constant(); got != want {
			t.Errorf("pattern %d: expected %s, got %s", i, want, got)
		}
	}
}

func TestFromValueURLUnwraps(t *testing.T) {
	v := &value.URL{Inner: value.NewStr("./worker.js")}
	patterns := FromValue(v)
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	if got, _ := patterns[0].Constant(); got != "./worker.js" {
		t.Errorf("expected ./worker.js, got %s", got)
	}
}

func TestFullyDynamic(t *testing.T) {
	dynamic := FromValue(&value.FreeVar{Kind: value.FreeVarOther, Name: "x"})[0]
	if !dynamic.FullyDynamic() {
		t.Error("expected bare free variable to be fully dynamic")
	}

	anchored := FromValue(&value.Concat{Parts: []value.Value{
		value.NewStr("./pages/"),
		&value.FreeVar{Kind: value.FreeVarOther, Name: "x"},
	}})[0]
	if anchored.FullyDynamic() {
		t.Error("expected anchored pattern not to be fully dynamic")
	}
	if !anchored.HasPrefix("./pages/") {
		t.Error("expected HasPrefix ./pages/ to hold")
	}
}

func TestCompileMatchesWithinOneLevel(t *testing.T) {
	p := FromValue(&value.Concat{Parts: []value.Value{
		value.NewStr("./locale/"),
		&value.FreeVar{Kind: value.FreeVarOther, Name: "lang"},
		value.NewStr(".json"),
	}})[0]

	g, err := p.Compile()
	if err != nil {
		t.Fatal(err)
	}

	if !g.Match("./locale/en.json") {
		t.Error("expected en.json to match")
	}
	if g.Match("./locale/nested/en.json") {
		t.Error("expected hole not to cross path separators")
	}
	if g.Match("./locale/en.js") {
		t.Error("expected suffix mismatch to fail")
	}
}

func TestGlobStringEscapesMetaCharacters(t *testing.T) {
	p := Pattern{Segments: []Segment{
		{Literal: "./[special]/"},
		{Dynamic: true},
		{Literal: ".js"},
	}}

	g, err := p.Compile()
	if err != nil {
		t.Fatal(err)
	}
	if !g.Match("./[special]/a.js") {
		t.Error("expected literal brackets to match themselves")
	}
	if g.Match("./s/a.js") {
		t.Error("expected brackets not to act as a character class")
	}
}

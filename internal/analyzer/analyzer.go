// # internal/analyzer/analyzer.go
package analyzer

import (
	"errors"
	"fmt"
	"log/slog"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"importlens/internal/mapping"
	"importlens/internal/value"
)

type SiteKind int

const (
	SiteRequire SiteKind = iota
	SiteDynamicImport
	SiteEsmImport
	SiteNewURL
)

func (k SiteKind) String() string {
	switch k {
	case SiteRequire:
		return "require"
	case SiteDynamicImport:
		return "dynamic-import"
	case SiteEsmImport:
		return "esm-import"
	default:
		return "new-url"
	}
}

// ResolveType maps a site kind onto the loading mode the rewrite uses:
// dynamic imports load through a manifest loader, everything else resolves
// synchronously.
func (k SiteKind) ResolveType() mapping.ResolveType {
	if k == SiteDynamicImport {
		return mapping.ResolveEsmAsync
	}
	return mapping.ResolveCjs
}

// ImportSite is one discovered request: the raw argument text, its byte
// span, and the settled symbolic value of the argument.
type ImportSite struct {
	Path      string
	Kind      SiteKind
	Raw       string
	StartByte uint
	EndByte   uint
	Line      int
	Value     value.Value
	Passes    int
	Settled   bool
}

type Analyzer struct {
	loader    *GrammarLoader
	maxPasses int
}

func New(loader *GrammarLoader, maxPasses int) *Analyzer {
	if maxPasses < 1 {
		maxPasses = 50
	}
	return &Analyzer{loader: loader, maxPasses: maxPasses}
}

// AnalyzeFile parses one source file and returns its import sites with
// settled request values.
func (a *Analyzer) AnalyzeFile(path string, content []byte) ([]ImportSite, error) {
	lang := DetectLanguage(path)
	if lang == "" {
		return nil, errors.New("unsupported language")
	}
	grammar, err := a.loader.Language(lang)
	if err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(grammar); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New("parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	bindings := collectConstBindings(root, content)
	low := newLowerer(content, bindings)

	var sites []ImportSite
	a.collectSites(root, content, path, low, &sites)
	return sites, nil
}

func (a *Analyzer) collectSites(node *sitter.Node, source []byte, path string, low *lowerer, sites *[]ImportSite) {
	switch node.Kind() {
	case "import_statement":
		if src := node.ChildByFieldName("source"); src != nil {
			*sites = append(*sites, a.site(path, SiteEsmImport, src, source, low.lower(src)))
		}
	case "call_expression":
		fn := node.ChildByFieldName("function")
		args := node.ChildByFieldName("arguments")
		if fn != nil && args != nil && args.NamedChildCount() > 0 {
			arg := args.NamedChild(0)
			switch {
			case fn.Kind() == "identifier" && string(source[fn.StartByte():fn.EndByte()]) == "require":
				*sites = append(*sites, a.site(path, SiteRequire, arg, source, low.lower(arg)))
			case fn.Kind() == "import":
				*sites = append(*sites, a.site(path, SiteDynamicImport, arg, source, low.lower(arg)))
			}
		}
	case "new_expression":
		ctor := node.ChildByFieldName("constructor")
		args := node.ChildByFieldName("arguments")
		if ctor != nil && args != nil &&
			string(source[ctor.StartByte():ctor.EndByte()]) == "URL" &&
			args.NamedChildCount() >= 2 &&
			isImportMetaURL(args.NamedChild(1), source) {
			arg := args.NamedChild(0)
			*sites = append(*sites, a.site(path, SiteNewURL, arg, source, &value.URL{Inner: low.lower(arg)}))
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		a.collectSites(node.Child(i), source, path, low, sites)
	}
}

func (a *Analyzer) site(path string, kind SiteKind, arg *sitter.Node, source []byte, v value.Value) ImportSite {
	settled, passes, done := Settle(v, a.maxPasses)
	if !done {
		slog.Debug("request value did not settle within budget",
			"path", path,
			"kind", kind.String(),
			"passes", passes,
		)
	}
	return ImportSite{
		Path:      path,
		Kind:      kind,
		Raw:       string(source[arg.StartByte():arg.EndByte()]),
		StartByte: arg.StartByte(),
		EndByte:   arg.EndByte(),
		Line:      int(arg.StartPosition().Row) + 1,
		Value:     settled,
		Passes:    passes,
		Settled:   done,
	}
}

func isImportMetaURL(n *sitter.Node, source []byte) bool {
	return string(source[n.StartByte():n.EndByte()]) == "import.meta.url"
}

// collectConstBindings gathers file-scope const initializers so the lowerer
// can inline them at their use sites.
func collectConstBindings(root *sitter.Node, source []byte) map[string]*sitter.Node {
	bindings := make(map[string]*sitter.Node)
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node.Kind() == "lexical_declaration" {
			if kw := node.Child(0); kw != nil && string(source[kw.StartByte():kw.EndByte()]) == "const" {
				for i := uint(0); i < node.NamedChildCount(); i++ {
					decl := node.NamedChild(i)
					if decl.Kind() != "variable_declarator" {
						continue
					}
					name := decl.ChildByFieldName("name")
					val := decl.ChildByFieldName("value")
					if name != nil && val != nil && name.Kind() == "identifier" {
						bindings[string(source[name.StartByte():name.EndByte()])] = val
					}
				}
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return bindings
}

// # internal/analyzer/analyzer_test.go
package analyzer

import (
	"testing"

	"importlens/internal/pattern"
	"importlens/internal/value"
)

func analyzeSource(t *testing.T, path, source string) []ImportSite {
	t.Helper()
	a := New(NewGrammarLoader(), 50)
	sites, err := a.AnalyzeFile(path, []byte(source))
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	return sites
}

func TestAnalyzeFileFindsSites(t *testing.T) {
	sites := analyzeSource(t, "src/app.js", `
const fs = require("fs");
import config from "./config.js";
import("./pages/home.js");
const w = new URL("./worker.js", import.meta.url);
`)

	if len(sites) != 4 {
		t.Fatalf("found %d sites, want 4", len(sites))
	}

	kinds := map[SiteKind]int{}
	for _, s := range sites {
		kinds[s.Kind]++
	}
	for _, k := range []SiteKind{SiteRequire, SiteEsmImport, SiteDynamicImport, SiteNewURL} {
		if kinds[k] != 1 {
			t.Errorf("kind %s found %d times, want 1", k, kinds[k])
		}
	}
}

func TestConstantRequestSettles(t *testing.T) {
	sites := analyzeSource(t, "src/app.js", `const m = require("./lib/util.js");`)
	if len(sites) != 1 {
		t.Fatalf("found %d sites, want 1", len(sites))
	}
	site := sites[0]
	if !site.Settled {
		t.Error("constant request must settle")
	}
	if site.Raw != `"./lib/util.js"` {
		t.Errorf("raw = %q", site.Raw)
	}
	patterns := pattern.FromValue(site.Value)
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns", len(patterns))
	}
	if request, ok := patterns[0].Constant(); !ok || request != "./lib/util.js" {
		t.Errorf("pattern = %s, want constant ./lib/util.js", patterns[0])
	}
}

func TestConstBindingInlinesIntoRequest(t *testing.T) {
	sites := analyzeSource(t, "src/app.js", `
const dir = "./components/";
const m = require(dir + "button.js");
`)
	if len(sites) != 1 {
		t.Fatalf("found %d sites, want 1", len(sites))
	}
	patterns := pattern.FromValue(sites[0].Value)
	if request, ok := patterns[0].Constant(); !ok || request != "./components/button.js" {
		t.Errorf("pattern = %s, want constant ./components/button.js", patterns[0])
	}
}

func TestHelperFunctionInlinesIntoRequest(t *testing.T) {
	sites := analyzeSource(t, "src/app.js", `
const page = (name) => "./pages/" + name + ".js";
const m = require(page("home"));
`)
	var requireSite *ImportSite
	for i := range sites {
		if sites[i].Kind == SiteRequire {
			requireSite = &sites[i]
		}
	}
	if requireSite == nil {
		t.Fatal("no require site found")
	}
	patterns := pattern.FromValue(requireSite.Value)
	if request, ok := patterns[0].Constant(); !ok || request != "./pages/home.js" {
		t.Errorf("pattern = %s, want constant ./pages/home.js", patterns[0])
	}
}

func TestInterpolatedRequestKeepsDynamicHole(t *testing.T) {
	sites := analyzeSource(t, "src/app.js", "const m = require(`./locale/${lang}.json`);")
	if len(sites) != 1 {
		t.Fatalf("found %d sites, want 1", len(sites))
	}
	patterns := pattern.FromValue(sites[0].Value)
	p := patterns[0]
	if p.IsConstant() || p.FullyDynamic() {
		t.Fatalf("pattern = %s, want a partially dynamic pattern", p)
	}
	if !p.HasPrefix("./locale/") {
		t.Errorf("pattern %s lost its literal prefix", p)
	}
}

func TestTernaryRequestYieldsAlternatives(t *testing.T) {
	sites := analyzeSource(t, "src/app.js", `const m = require(dev ? "./impl.dev.js" : "./impl.js");`)
	if len(sites) != 1 {
		t.Fatalf("found %d sites, want 1", len(sites))
	}
	patterns := pattern.FromValue(sites[0].Value)
	if len(patterns) != 2 {
		t.Fatalf("got %d patterns, want 2", len(patterns))
	}
	first, _ := patterns[0].Constant()
	second, _ := patterns[1].Constant()
	if first != "./impl.dev.js" || second != "./impl.js" {
		t.Errorf("patterns = %s, %s", patterns[0], patterns[1])
	}
}

func TestNewURLWrapsRequest(t *testing.T) {
	sites := analyzeSource(t, "src/app.js", `const w = new URL("./worker.js", import.meta.url);`)
	if len(sites) != 1 {
		t.Fatalf("found %d sites, want 1", len(sites))
	}
	url, ok := sites[0].Value.(*value.URL)
	if !ok {
		t.Fatalf("value = %s, want a url", sites[0].Value)
	}
	patterns := pattern.FromValue(url)
	if request, ok := patterns[0].Constant(); !ok || request != "./worker.js" {
		t.Errorf("pattern = %s, want constant ./worker.js", patterns[0])
	}
}

func TestTypeScriptSource(t *testing.T) {
	sites := analyzeSource(t, "src/app.ts", `
import type { Config } from "./types";
const m = require("./lib/util" as string);
`)
	var found bool
	for _, s := range sites {
		if s.Kind == SiteRequire && s.Settled {
			found = true
		}
	}
	if !found {
		t.Error("require site not found in typescript source")
	}
}

func TestUnsupportedLanguage(t *testing.T) {
	a := New(NewGrammarLoader(), 50)
	if _, err := a.AnalyzeFile("style.css", []byte("body {}")); err == nil {
		t.Fatal("expected an error for unsupported files")
	}
}

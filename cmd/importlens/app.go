// # cmd/importlens/app.go
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"

	"importlens/internal/analyzer"
	"importlens/internal/chunk"
	"importlens/internal/codegen"
	"importlens/internal/config"
	"importlens/internal/graph"
	"importlens/internal/history"
	"importlens/internal/issue"
	"importlens/internal/mapping"
	"importlens/internal/observability"
	"importlens/internal/output"
	"importlens/internal/pattern"
	"importlens/internal/resolver"
	"importlens/internal/util"
	"importlens/internal/watcher"
)

type App struct {
	Config   *config.Config
	Analyzer *analyzer.Analyzer
	Resolver *resolver.Resolver
	Graph    *graph.Graph

	historyStore *history.Store
	limiter      *util.Limiter
	teaProgram   *tea.Program

	mu          sync.Mutex
	sitesByFile map[string][]analyzer.ImportSite
	runCount    int
	lastError   string
}

func NewApp(cfg *config.Config) (*App, error) {
	externals := make([]resolver.External, 0, len(cfg.Resolve.Externals))
	for _, e := range cfg.Resolve.Externals {
		externals = append(externals, resolver.External{Request: e.Request, Rewrite: e.Rewrite})
	}
	res, err := resolver.NewResolver(resolver.Options{
		Extensions: cfg.Resolve.Extensions,
		Externals:  externals,
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:      cfg,
		Analyzer:    analyzer.New(analyzer.NewGrammarLoader(), cfg.Analysis.MaxPasses),
		Resolver:    res,
		Graph:       graph.NewGraph(),
		limiter:     util.NewLimiter(2, 4),
		sitesByFile: make(map[string][]analyzer.ImportSite),
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		app.historyStore = store
	}

	return app, nil
}

func (a *App) Close() {
	if a.historyStore != nil {
		_ = a.historyStore.Close()
	}
}

func (a *App) Health(ctx context.Context) observability.Health {
	a.mu.Lock()
	defer a.mu.Unlock()
	status := "up"
	if a.lastError != "" {
		status = "degraded"
	}
	return observability.Health{Status: status, RunCount: a.runCount, LastError: a.lastError}
}

func (a *App) InitialScan(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "app.InitialScan")
	defer span.End()
	start := time.Now()

	files, err := a.ScanDirectories(a.Config.Roots, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return err
	}

	for _, filePath := range files {
		if err := a.AnalyzeFile(filePath); err != nil {
			slog.Warn("failed to analyze file", "path", filePath, "error", err)
		}
	}

	a.Rebuild(ctx, time.Since(start))
	return nil
}

func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string

	dirGlobs := make([]glob.Glob, 0, len(excludeDirs))
	for _, p := range excludeDirs {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude dir pattern %q: %w", p, err)
		}
		dirGlobs = append(dirGlobs, g)
	}

	fileGlobs := make([]glob.Glob, 0, len(excludeFiles))
	for _, p := range excludeFiles {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude file pattern %q: %w", p, err)
		}
		fileGlobs = append(fileGlobs, g)
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)

			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if analyzer.DetectLanguage(path) == "" {
				return nil
			}

			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func (a *App) AnalyzeFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	lang := analyzer.DetectLanguage(path)
	start := time.Now()
	sites, err := a.Analyzer.AnalyzeFile(path, content)
	if err != nil {
		return err
	}
	observability.AnalysisDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())

	for _, site := range sites {
		observability.ImportSitesTotal.WithLabelValues(site.Kind.String()).Inc()
		observability.RewritePasses.Observe(float64(site.Passes))
		if !site.Settled {
			observability.UnsettledValuesTotal.Inc()
		}
	}

	a.mu.Lock()
	a.sitesByFile[path] = sites
	a.mu.Unlock()
	return nil
}

type siteResolution struct {
	site     analyzer.ImportSite
	patterns []pattern.Pattern
	result   *resolver.Result
}

// Rebuild recomputes resolutions, module ids, rewrites, the module graph
// and all outputs from the currently analyzed sites. Id assignment is two
// phase: every placeable asset is registered before any mapping asks for
// an id, so ids only depend on the sorted asset set.
func (a *App) Rebuild(ctx context.Context, duration time.Duration) {
	_, span := observability.Tracer.Start(ctx, "app.Rebuild")
	defer span.End()

	a.mu.Lock()
	defer a.mu.Unlock()

	collector := issue.NewCollector()
	sink := &issue.LogSink{Next: collector}
	registry := chunk.NewRegistry()

	paths := make([]string, 0, len(a.sitesByFile))
	for p := range a.sitesByFile {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	// Phase one: resolve every request and collect placeable assets.
	var resolutions []siteResolution
	var allAssets []*resolver.Asset
	for _, p := range paths {
		for _, site := range a.sitesByFile[p] {
			if !site.Settled {
				sink.Emit(issue.Issue{
					Severity: issue.SeverityWarning,
					Title:    "request value did not settle",
					Message:  fmt.Sprintf("rewrite pass budget exhausted after %d passes", site.Passes),
					Path:     site.Path,
				})
			}

			patterns := pattern.FromValue(site.Value)
			results := make([]*resolver.Result, 0, len(patterns))
			for _, pat := range patterns {
				results = append(results, a.Resolver.Resolve(pat, filepath.Dir(site.Path)))
			}
			combined := combineResults(results)
			allAssets = append(allAssets, combined.Assets...)
			resolutions = append(resolutions, siteResolution{site: site, patterns: patterns, result: combined})
		}
	}
	registry.RegisterAll(allAssets)

	// Phase two: classify, generate and wire the graph.
	g := graph.NewGraph()
	var records []output.Record
	snapshot := history.Snapshot{FileCount: len(paths)}

	for _, r := range resolutions {
		site := r.site
		m := mapping.ResolveRequest(site.Kind.ResolveType(), site.Path, registry, r.result, sink)
		expr := m.Apply(codegen.Raw(site.Raw))
		observability.MappingsTotal.WithLabelValues(m.Kind.String()).Inc()

		dynamic := false
		for _, pat := range r.patterns {
			if !pat.IsConstant() {
				dynamic = true
			}
		}

		g.AddNode(site.Path, false)
		switch {
		case len(r.result.Assets) > 0:
			for _, asset := range r.result.Assets {
				g.AddEdge(graph.Edge{
					From:    site.Path,
					To:      asset.Path,
					Kind:    site.Kind.String(),
					Line:    site.Line,
					Dynamic: dynamic,
				})
			}
		case m.Kind == mapping.KindOriginalReferenceExternal, m.Kind == mapping.KindOriginalReferenceTypeExternal:
			g.AddEdge(graph.Edge{
				From:    site.Path,
				To:      patternLabel(r.patterns),
				Kind:    site.Kind.String(),
				Line:    site.Line,
				Dynamic: dynamic,
			})
		}

		records = append(records, output.Record{
			From:        site.Path,
			Line:        site.Line,
			Kind:        site.Kind.String(),
			Request:     site.Raw,
			Pattern:     patternLabel(r.patterns),
			Mapping:     m.Kind.String(),
			Replacement: expr.JS(),
		})

		snapshot.SiteCount++
		snapshot.Passes += site.Passes
		if dynamic {
			snapshot.DynamicCount++
		}
		switch m.Kind {
		case mapping.KindSingle, mapping.KindMap:
			snapshot.ResolvedCount++
		case mapping.KindOriginalReferenceExternal, mapping.KindOriginalReferenceTypeExternal:
			snapshot.ExternalCount++
		default:
			snapshot.InvalidCount++
		}
	}

	a.Graph = g
	cycles := g.Cycles()
	issues := collector.Issues()

	seen := make(map[string]bool)
	for _, asset := range allAssets {
		seen[asset.Path] = true
	}
	snapshot.AssetCount = len(seen)
	snapshot.CycleCount = len(cycles)
	snapshot.IssueCount = len(issues)

	observability.GraphNodes.Set(float64(g.NodeCount()))
	observability.GraphEdges.Set(float64(len(g.Edges())))
	for _, i := range issues {
		observability.IssuesTotal.WithLabelValues(i.Severity.String()).Inc()
	}

	if err := a.GenerateOutputs(records, cycles, issues); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}

	if a.historyStore != nil {
		if _, err := a.historyStore.SaveSnapshot(snapshot); err != nil {
			slog.Error("failed to save history snapshot", "error", err)
			a.lastError = err.Error()
		}
	}

	a.runCount++
	a.printSummary(snapshot, duration, cycles, issues)

	if a.teaProgram != nil {
		a.teaProgram.Send(updateMsg{
			cycles:    cycles,
			issues:    issues,
			records:   invalidRecords(records),
			fileCount: snapshot.FileCount,
			siteCount: snapshot.SiteCount,
		})
	}

	if a.Config.Alerts.Beep && (len(cycles) > 0 || snapshot.InvalidCount > 0) {
		fmt.Print("\a")
	}
}

func (a *App) GenerateOutputs(records []output.Record, cycles [][]string, issues []issue.Issue) error {
	if a.Config.Output.DOT != "" {
		dot, err := output.NewDOTGenerator(a.Graph).Generate(cycles)
		if err != nil {
			return err
		}
		if err := os.WriteFile(a.Config.Output.DOT, []byte(dot), 0644); err != nil {
			return err
		}
	}

	if a.Config.Output.TSV != "" {
		tsv, err := output.NewTSVGenerator(records).Generate()
		if err != nil {
			return err
		}
		if err := os.WriteFile(a.Config.Output.TSV, []byte(tsv), 0644); err != nil {
			return err
		}
	}

	if a.Config.Output.SARIF != "" {
		root, err := os.Getwd()
		if err != nil {
			root = ""
		}
		sarif, err := output.GenerateSARIF(root, issues, cycles)
		if err != nil {
			return err
		}
		if err := os.WriteFile(a.Config.Output.SARIF, sarif, 0644); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) HandleChanges(paths []string) {
	observability.WatcherEventsTotal.Add(float64(len(paths)))

	ctx := context.Background()
	if err := a.limiter.Wait(ctx, 1); err != nil {
		return
	}

	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	a.Graph.MarkDirty(paths)
	for _, path := range a.Graph.GetDirty() {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.mu.Lock()
			delete(a.sitesByFile, path)
			a.mu.Unlock()
			a.Graph.RemoveNode(path)
			continue
		}

		// Asset changes (e.g. .json) have no sites to re-analyze but
		// still invalidate resolutions, hence the rebuild below.
		if analyzer.DetectLanguage(path) == "" {
			continue
		}

		if err := a.AnalyzeFile(path); err != nil {
			slog.Warn("failed to re-analyze file", "path", path, "error", err)
		}
	}

	a.Rebuild(ctx, time.Since(start))
}

func (a *App) StartWatcher() error {
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	// Note: We don't close here, it should run forever
	return w.Watch(a.Config.Roots)
}

func (a *App) RunUI() error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.teaProgram = p

	_, err := p.Run()
	return err
}

func (a *App) printSummary(snapshot history.Snapshot, duration time.Duration, cycles [][]string, issues []issue.Issue) {
	if !a.Config.Alerts.Terminal {
		return
	}

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Update: %d files, %d sites, %d assets in %v\n",
		snapshot.FileCount, snapshot.SiteCount, snapshot.AssetCount, duration)
	fmt.Printf("Mappings: %d resolved, %d external, %d invalid (%d dynamic requests)\n",
		snapshot.ResolvedCount, snapshot.ExternalCount, snapshot.InvalidCount, snapshot.DynamicCount)

	if len(cycles) > 0 {
		fmt.Printf("⚠️  FOUND %d IMPORT CYCLES:\n", len(cycles))
		for _, c := range cycles {
			fmt.Printf("   %s\n", strings.Join(c, " -> "))
		}
	} else {
		fmt.Println("✅ No import cycles found.")
	}

	if len(issues) > 0 {
		fmt.Printf("❓ %d DIAGNOSTICS:\n", len(issues))
		for _, i := range issues {
			fmt.Printf("   [%s] %s (%s)\n", i.Severity, i.Title, i.Path)
		}
	} else {
		fmt.Println("✅ No diagnostics emitted.")
	}
	fmt.Println(strings.Repeat("-", 40))
}

// combineResults folds the per-pattern resolutions of one site into a
// single result. Assets win over externals, externals over custom shapes.
func combineResults(results []*resolver.Result) *resolver.Result {
	var assets []*resolver.Asset
	seen := make(map[string]bool)
	var external, typeExternal, custom bool
	var request string

	for _, r := range results {
		switch r.Kind {
		case resolver.ResolvedSingle, resolver.ResolvedAlternatives:
			for _, a := range r.Assets {
				if !seen[a.Path] {
					seen[a.Path] = true
					assets = append(assets, a)
				}
			}
		case resolver.ResolvedExternal:
			external = true
		case resolver.ResolvedTypeExternal:
			if !typeExternal {
				typeExternal = true
				request = r.Request
			}
		case resolver.ResolvedCustom:
			custom = true
		}
	}

	switch {
	case len(assets) == 1:
		return resolver.Single(assets[0])
	case len(assets) > 1:
		return resolver.Alternatives(assets)
	case typeExternal:
		return resolver.TypeExternal(request)
	case external:
		return resolver.ExternalResult()
	case custom:
		return resolver.Custom()
	default:
		return resolver.Alternatives(nil)
	}
}

func patternLabel(patterns []pattern.Pattern) string {
	labels := make([]string, 0, len(patterns))
	for _, p := range patterns {
		labels = append(labels, p.String())
	}
	return strings.Join(labels, " | ")
}

func invalidRecords(records []output.Record) []output.Record {
	var out []output.Record
	for _, r := range records {
		if r.Mapping == "invalid" {
			out = append(out, r)
		}
	}
	return out
}

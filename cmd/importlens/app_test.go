// # cmd/importlens/app_test.go
package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"importlens/internal/config"
)

func writeProject(t *testing.T, tmpDir string) {
	t.Helper()

	files := map[string]string{
		"src/a.js": `const util = require("./b.js");
import("./c.js").then(() => {});
`,
		"src/b.js": `const a = require("./a.js");
module.exports = { a };
`,
		"src/c.js": `export default 1;
`,
	}

	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func testConfig(tmpDir string) *config.Config {
	cfg := config.Default()
	cfg.Roots = []string{tmpDir}
	cfg.Output.DOT = filepath.Join(tmpDir, "graph.dot")
	cfg.Output.TSV = filepath.Join(tmpDir, "rewrites.tsv")
	cfg.Output.SARIF = filepath.Join(tmpDir, "report.sarif")
	cfg.Alerts.Terminal = false
	return cfg
}

func TestApp(t *testing.T) {
	tmpDir := t.TempDir()
	writeProject(t, tmpDir)

	cfg := testConfig(tmpDir)
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if err := app.InitialScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	if app.Graph.NodeCount() < 3 {
		t.Errorf("expected at least 3 graph nodes, got %d", app.Graph.NodeCount())
	}

	cycles := app.Graph.Cycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 import cycle, got %d", len(cycles))
	}
	joined := strings.Join(cycles[0], " ")
	if !strings.Contains(joined, "a.js") || !strings.Contains(joined, "b.js") {
		t.Errorf("expected cycle between a.js and b.js, got %v", cycles[0])
	}

	for _, out := range []string{cfg.Output.DOT, cfg.Output.TSV, cfg.Output.SARIF} {
		if _, err := os.Stat(out); os.IsNotExist(err) {
			t.Errorf("output file %s was not generated", out)
		}
	}

	tsv, err := os.ReadFile(cfg.Output.TSV)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(tsv), "require") {
		t.Errorf("expected require rows in TSV output, got: %s", tsv)
	}
	if !strings.Contains(string(tsv), "dynamic-import") {
		t.Errorf("expected dynamic-import rows in TSV output, got: %s", tsv)
	}
}

func TestApp_HandleChangesBreaksCycle(t *testing.T) {
	tmpDir := t.TempDir()
	writeProject(t, tmpDir)

	cfg := testConfig(tmpDir)
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if err := app.InitialScan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(app.Graph.Cycles()) != 1 {
		t.Fatalf("expected initial cycle, got %d", len(app.Graph.Cycles()))
	}

	bPath := filepath.Join(tmpDir, "src", "b.js")
	if err := os.WriteFile(bPath, []byte("module.exports = {};\n"), 0644); err != nil {
		t.Fatal(err)
	}

	app.HandleChanges([]string{bPath})

	if got := len(app.Graph.Cycles()); got != 0 {
		t.Errorf("expected cycle to disappear after change, got %d", got)
	}
}

func TestFullPipelineIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	writeProject(t, tmpDir)

	cfg := testConfig(tmpDir)
	cfg.History.Path = filepath.Join(tmpDir, "history.db")

	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.InitialScan(context.Background()))

	health := app.Health(context.Background())
	assert.Equal(t, "up", health.Status)
	assert.Equal(t, 1, health.RunCount)

	snapshots, err := app.historyStore.LoadSnapshots("default", time.Time{})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, 3, snapshots[0].FileCount)
	assert.Equal(t, 3, snapshots[0].SiteCount)
	assert.Equal(t, 3, snapshots[0].ResolvedCount)
	assert.Equal(t, 0, snapshots[0].InvalidCount)
	assert.Equal(t, 1, snapshots[0].CycleCount)
}

// # internal/output/sarif.go
package output

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"importlens/internal/issue"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDDiagnostic = "ILNS001"
	ruleIDBug        = "ILNS002"
	ruleIDCycle      = "ILNS003"

	toolName    = "importlens"
	toolVersion = "0.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

// GenerateSARIF builds a SARIF v2.1.0 document from emitted diagnostics and
// detected import cycles. File URIs are made relative to projectRoot so
// reports contain no absolute paths.
func GenerateSARIF(projectRoot string, issues []issue.Issue, cycles [][]string) ([]byte, error) {
	var results []sarifResult

	for _, i := range issues {
		results = append(results, sarifResult{
			RuleID:    ruleIDForIssue(i),
			Level:     sarifLevel(i.Severity),
			Message:   sarifMessage{Text: i.Title + ": " + i.Message},
			Locations: locationFor(projectRoot, i.Path),
		})
	}

	for _, cycle := range cycles {
		results = append(results, sarifResult{
			RuleID:    ruleIDCycle,
			Level:     "warning",
			Message:   sarifMessage{Text: fmt.Sprintf("import cycle: %s", strings.Join(cycle, " -> "))},
			Locations: locationFor(projectRoot, cycle[0]),
		})
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    toolName,
				Version: toolVersion,
				Rules:   buildRules(),
			}},
			Results: results,
		}},
	}

	return json.MarshalIndent(report, "", "  ")
}

func buildRules() []sarifRule {
	return []sarifRule{
		{
			ID:               ruleIDDiagnostic,
			Name:             "RequestDiagnostic",
			ShortDescription: sarifMessage{Text: "A module request could not be fully handled"},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		},
		{
			ID:               ruleIDBug,
			Name:             "UnimplementedRewrite",
			ShortDescription: sarifMessage{Text: "A rewrite path is not implemented and was stubbed out"},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
		},
		{
			ID:               ruleIDCycle,
			Name:             "ImportCycle",
			ShortDescription: sarifMessage{Text: "Modules import each other in a cycle"},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		},
	}
}

func ruleIDForIssue(i issue.Issue) string {
	if i.Severity == issue.SeverityBug {
		return ruleIDBug
	}
	return ruleIDDiagnostic
}

func sarifLevel(s issue.Severity) string {
	switch s {
	case issue.SeverityBug, issue.SeverityError:
		return "error"
	case issue.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

func locationFor(projectRoot, path string) []sarifLocation {
	if path == "" {
		return nil
	}
	uri := path
	if projectRoot != "" {
		if rel, err := filepath.Rel(projectRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
			uri = rel
		}
	}
	return []sarifLocation{{
		PhysicalLocation: sarifPhysicalLocation{
			ArtifactLocation: sarifArtifactLocation{
				URI:       filepath.ToSlash(uri),
				URIBaseID: "PROJECTROOT",
			},
		},
	}}
}

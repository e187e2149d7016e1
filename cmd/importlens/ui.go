// # cmd/importlens/ui.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"importlens/internal/issue"
	"importlens/internal/output"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	invalidStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	isCycle     bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	cycles     [][]string
	issues     []issue.Issue
	records    []output.Record
	lastUpdate time.Time
	fileCount  int
	siteCount  int
}

type updateMsg struct {
	cycles    [][]string
	issues    []issue.Issue
	records   []output.Record
	fileCount int
	siteCount int
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.cycles = msg.cycles
		m.issues = msg.issues
		m.records = msg.records
		m.fileCount = msg.fileCount
		m.siteCount = msg.siteCount
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, c := range m.cycles {
			items = append(items, item{
				title:   "Import Cycle",
				desc:    strings.Join(c, " -> "),
				isCycle: true,
			})
		}
		for _, r := range m.records {
			items = append(items, item{
				title: "Unresolved Request",
				desc:  fmt.Sprintf("%s in %s:%d", r.Pattern, r.From, r.Line),
			})
		}
		for _, i := range m.issues {
			items = append(items, item{
				title: fmt.Sprintf("Diagnostic [%s]", i.Severity),
				desc:  fmt.Sprintf("%s (%s)", i.Title, i.Path),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | %d import sites",
		m.lastUpdate.Format("15:04:05"), m.fileCount, m.siteCount))

	var summary string
	if len(m.cycles) == 0 && len(m.records) == 0 {
		summary = successStyle.Render("✅ All Requests Mapped")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			cycleStyle.Render(fmt.Sprintf("%d Cycles", len(m.cycles))),
			invalidStyle.Render(fmt.Sprintf("%d Unresolved", len(m.records))))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Import Rewrite Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Detected Issues"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}

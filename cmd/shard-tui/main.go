// Command shard-tui is a read-only terminal browser over one shard's data
// directory: it opens the same backing files cmd/shard would, but never
// writes to them, and lets an operator page through nodes, edges, and
// bounded-hop neighbourhoods without going through the HTTP surface.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clusograph/shard/pkg/graphengine"
	"github.com/clusograph/shard/pkg/storage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	dashboardView view = iota
	nodesView
	edgesView
	neighboursView
	metricsViewCount // sentinel: number of tabs
)

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "execute")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Tab, k.ShiftTab, k.Enter}, {k.Quit}}
}

type model struct {
	engine      *graphengine.Engine
	currentView view

	lookupInput  textinput.Model
	hopsInput    textinput.Model
	nodeTable    table.Model
	edgeTable    table.Model
	neighbourTab table.Model

	help      help.Model
	keys      keyMap
	width     int
	startTime time.Time
	message   string
	messageErr bool
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func newNodeTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 10},
			{Title: "Properties", Width: 50},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	applyTableStyles(&t)
	return t
}

func newEdgeTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "From", Width: 8},
			{Title: "To", Width: 8},
			{Title: "Properties", Width: 36},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	applyTableStyles(&t)
	return t
}

func applyTableStyles(t *table.Model) {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)
}

func initialModel(engine *graphengine.Engine) model {
	lookup := textinput.New()
	lookup.Placeholder = "node id"
	lookup.CharLimit = 10
	lookup.Width = 16

	hops := textinput.New()
	hops.Placeholder = "hops (default 1)"
	hops.CharLimit = 3
	hops.Width = 16

	m := model{
		engine:       engine,
		currentView:  dashboardView,
		lookupInput:  lookup,
		hopsInput:    hops,
		nodeTable:    newNodeTable(),
		edgeTable:    newEdgeTable(),
		neighbourTab: newNodeTable(),
		help:         help.New(),
		keys:         keys,
		startTime:    time.Now(),
	}
	m.refreshNodes()
	m.refreshEdges()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % metricsViewCount
			m.focusCurrentInputs()
		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = metricsViewCount - 1
			} else {
				m.currentView--
			}
			m.focusCurrentInputs()
		case key.Matches(msg, m.keys.Enter):
			if m.currentView == neighboursView {
				m.runNeighbourLookup()
			}
		}
	}

	switch m.currentView {
	case nodesView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
		cmds = append(cmds, cmd)
	case edgesView:
		m.edgeTable, cmd = m.edgeTable.Update(msg)
		cmds = append(cmds, cmd)
	case neighboursView:
		m.lookupInput, cmd = m.lookupInput.Update(msg)
		cmds = append(cmds, cmd)
		m.hopsInput, cmd = m.hopsInput.Update(msg)
		cmds = append(cmds, cmd)
		m.neighbourTab, cmd = m.neighbourTab.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) focusCurrentInputs() {
	if m.currentView == neighboursView {
		m.lookupInput.Focus()
	} else {
		m.lookupInput.Blur()
	}
}

func (m *model) refreshNodes() {
	nodes, err := m.engine.FindNodes(nil)
	if err != nil {
		m.message = fmt.Sprintf("list nodes: %v", err)
		m.messageErr = true
		return
	}
	rows := make([]table.Row, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, table.Row{fmt.Sprintf("%d", n.ID), formatProps(n.Props)})
	}
	m.nodeTable.SetRows(rows)
}

func (m *model) refreshEdges() {
	edges, err := m.engine.FindEdges(nil)
	if err != nil {
		m.message = fmt.Sprintf("list edges: %v", err)
		m.messageErr = true
		return
	}
	rows := make([]table.Row, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", e.ID),
			fmt.Sprintf("%d", e.From),
			fmt.Sprintf("%d", e.To),
			formatProps(e.Props),
		})
	}
	m.edgeTable.SetRows(rows)
}

func (m *model) runNeighbourLookup() {
	idStr := strings.TrimSpace(m.lookupInput.Value())
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		m.message = fmt.Sprintf("invalid node id %q", idStr)
		m.messageErr = true
		return
	}

	hops := 1
	if hopsStr := strings.TrimSpace(m.hopsInput.Value()); hopsStr != "" {
		h, err := strconv.Atoi(hopsStr)
		if err != nil {
			m.message = fmt.Sprintf("invalid hop count %q", hopsStr)
			m.messageErr = true
			return
		}
		hops = h
	}

	// The browser never resumes a cross-shard continuation, so each lookup
	// gets its own disposable query id and releases it immediately.
	queryID := fmt.Sprintf("tui-%d-%d", id, time.Now().UnixNano())
	local, remote, err := m.engine.FindNeighbours(uint32(id), hops, queryID, nil, nil)
	m.engine.ClearVisited(queryID)
	if err != nil {
		m.message = fmt.Sprintf("findNeighbours: %v", err)
		m.messageErr = true
		return
	}

	rows := make([]table.Row, 0, len(local))
	for _, n := range local {
		rows = append(rows, table.Row{fmt.Sprintf("%d", n.ID), formatProps(n.Props)})
	}
	m.neighbourTab.SetRows(rows)

	m.message = fmt.Sprintf("found %d local match(es), %d remote continuation(s)", len(local), len(remote))
	m.messageErr = false
}

func formatProps(props map[string]storage.Value) string {
	parts := make([]string, 0, len(props))
	for k, v := range props {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v.String()))
	}
	if len(parts) > 4 {
		parts = parts[:4]
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("shard browser"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case dashboardView:
		s.WriteString(m.renderDashboard())
	case nodesView:
		s.WriteString(m.renderNodes())
	case edgesView:
		s.WriteString(m.renderEdges())
	case neighboursView:
		s.WriteString(m.renderNeighbours())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("x " + m.message))
		} else {
			s.WriteString(successStyle.Render("ok " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Dashboard", "Nodes", "Edges", "Neighbours"}
	rendered := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderDashboard() string {
	stats := m.engine.Statistics()
	uptime := time.Since(m.startTime).Round(time.Second)

	content := fmt.Sprintf(`Statistics
----------
Nodes created:  %d
Nodes deleted:  %d
Edges created:  %d
Edges removed:  %d
Bytes appended: %d
Uptime:         %s`,
		stats.NodesCreated, stats.NodesDeleted,
		stats.EdgesCreated, stats.EdgesRemoved,
		stats.BytesAppended, uptime,
	)

	return contentStyle.Render(statsBoxStyle.Render(content))
}

func (m model) renderNodes() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Nodes"))
	s.WriteString("\n\n")
	s.WriteString(m.nodeTable.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Navigate with up/down"))
	return contentStyle.Render(s.String())
}

func (m model) renderEdges() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Edges"))
	s.WriteString("\n\n")
	s.WriteString(m.edgeTable.View())
	return contentStyle.Render(s.String())
}

func (m model) renderNeighbours() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Neighbourhood lookup"))
	s.WriteString("\n\n")
	s.WriteString("Node id: ")
	s.WriteString(m.lookupInput.View())
	s.WriteString("   Hops: ")
	s.WriteString(m.hopsInput.View())
	s.WriteString("\n\n")
	s.WriteString(m.neighbourTab.View())
	return contentStyle.Render(s.String())
}

func main() {
	dataDir := "./data"
	shardName := "shard"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}
	if len(os.Args) > 2 {
		shardName = os.Args[2]
	}

	store, err := storage.Open(dataDir, shardName)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer store.Close()

	engine := graphengine.New(store, 4096)

	p := tea.NewProgram(initialModel(engine), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("error running program: %v", err)
	}
}

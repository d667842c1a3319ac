// Package tui is the terminal shell around the client core. It exists to
// exercise the store, orchestrator, pipeline, and fallback policy end to
// end; layout is deliberately minimal.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/analysis"
	"github.com/spec-kit/ticketflow/internal/bulkimport"
	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/fallback"
	"github.com/spec-kit/ticketflow/internal/session"
	"github.com/spec-kit/ticketflow/internal/store"
	"github.com/spec-kit/ticketflow/internal/transport"
)

type tab int

const (
	tabTickets tab = iota
	tabCompose
	tabImport
)

// Deps bundles the core components the shell drives.
type Deps struct {
	Store        *store.Store
	Orchestrator *analysis.Orchestrator
	Pipeline     *bulkimport.Pipeline
	Client       *transport.Client
	Policy       *fallback.Policy
	Session      *session.Session
	Logger       *zap.Logger
}

// Model is the root bubbletea model.
type Model struct {
	deps Deps

	tab      tab
	compose  composeModel
	importer importerModel

	state    store.State
	degraded bool
	status   string
}

// NewModel builds the root model.
func NewModel(deps Deps) Model {
	return Model{
		deps:     deps,
		compose:  newComposeModel(),
		importer: newImporterModel(),
		state:    deps.Store.State(),
	}
}

type dashboardMsg struct {
	metrics  *domain.DashboardMetrics
	degraded bool
}

// Init fetches dashboard metrics through the fallback policy.
func (m Model) Init() tea.Cmd {
	policy := m.deps.Policy
	client := m.deps.Client
	return func() tea.Msg {
		metrics, degraded := fallback.Fetch(context.Background(), policy, "/analytics/dashboard",
			func(ctx context.Context) (*domain.DashboardMetrics, error) {
				return client.Dashboard(ctx, 30)
			},
			fallback.DashboardMetrics())
		return dashboardMsg{metrics: metrics, degraded: degraded}
	}
}

// Update routes messages to the active tab.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+n":
			m.tab = (m.tab + 1) % 3
			return m, nil
		case "tab":
			if !m.editing() {
				m.tab = (m.tab + 1) % 3
				return m, nil
			}
		}

	case dashboardMsg:
		m.deps.Store.Dispatch(store.SetDashboardMetrics{Metrics: msg.metrics})
		m.state = m.deps.Store.State()
		m.degraded = msg.degraded
		if msg.degraded {
			m.status = "using fallback data, API unavailable"
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.tab {
	case tabCompose:
		m.compose, cmd = m.compose.update(msg, m.deps)
	case tabImport:
		m.importer, cmd = m.importer.update(msg, m.deps)
	}
	m.state = m.deps.Store.State()
	return m, cmd
}

func (m Model) editing() bool {
	return (m.tab == tabCompose && m.compose.focused()) ||
		(m.tab == tabImport && m.importer.focused())
}

// View renders the active tab under a shared header.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ticketflow") + "  ")
	for i, name := range []string{"tickets", "compose", "import"} {
		style := tabStyle
		if tab(i) == m.tab {
			style = activeTabStyle
		}
		b.WriteString(style.Render(name))
	}
	b.WriteString("\n\n")

	switch m.tab {
	case tabTickets:
		b.WriteString(m.ticketsView())
	case tabCompose:
		b.WriteString(m.compose.view())
	case tabImport:
		b.WriteString(m.importer.view())
	}

	if m.status != "" {
		b.WriteString("\n" + warnStyle.Render(m.status))
	}
	b.WriteString("\n" + hintStyle.Render("ctrl+n: switch view · ctrl+c: quit"))
	return b.String()
}

func (m Model) ticketsView() string {
	var b strings.Builder
	stats := m.state.Stats
	b.WriteString(statsStyle.Render(fmt.Sprintf(
		"total %d · open %d · high priority %d · resolution rate %d%%",
		stats.TotalTickets, stats.OpenTickets, stats.HighPriority, stats.ResolutionRate)))
	if stats.Remote != nil {
		b.WriteString(statsStyle.Render(fmt.Sprintf(
			"  |  analyzed %d · kb size %d", stats.Remote.TotalTicketsAnalyzed, stats.Remote.KnowledgeBaseSize)))
	}
	b.WriteString("\n\n")

	if len(m.state.Tickets) == 0 {
		b.WriteString(hintStyle.Render("no tickets yet, compose one"))
		return b.String()
	}
	for _, t := range m.state.Tickets {
		b.WriteString(fmt.Sprintf("%s  %s  [%s] %s (%d%%)\n",
			priorityColor(string(t.Priority)).Render(string(t.Priority)),
			t.Title, t.Status, t.Category, t.Progress))
	}
	return b.String()
}

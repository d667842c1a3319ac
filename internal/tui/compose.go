package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spec-kit/ticketflow/internal/analysis"
	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/store"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldCategory
	fieldCount
)

type composeModel struct {
	inputs  [fieldCount]textinput.Model
	focus   int
	result  *domain.AnalysisResult
	pending bool
	errMsg  string
	info    string
}

type analysisDoneMsg struct {
	result *domain.AnalysisResult
	err    error
}

type submitDoneMsg struct {
	analysis *domain.TicketAnalysis
	draft    domain.TicketDraft
	err      error
}

func newComposeModel() composeModel {
	var m composeModel
	labels := [fieldCount]string{"title", "description", "category"}
	for i := range m.inputs {
		input := textinput.New()
		input.Placeholder = labels[i]
		input.CharLimit = 500
		m.inputs[i] = input
	}
	m.inputs[0].Focus()
	return m
}

func (m composeModel) focused() bool { return true }

func (m composeModel) draft() domain.TicketDraft {
	return domain.TicketDraft{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.inputs[fieldDescription].Value(),
		Category:    m.inputs[fieldCategory].Value(),
	}
}

func (m composeModel) update(msg tea.Msg, deps Deps) (composeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "down", "enter":
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + 1) % fieldCount
			m.inputs[m.focus].Focus()
			return m, nil
		case "up":
			m.inputs[m.focus].Blur()
			m.focus = (m.focus + fieldCount - 1) % fieldCount
			m.inputs[m.focus].Focus()
			return m, nil
		case "ctrl+a":
			return m.startAnalysis(deps)
		case "ctrl+s":
			return m.startSubmit(deps)
		}

	case analysisDoneMsg:
		m.pending = false
		if msg.err != nil {
			// advisory pass: no suggestions, no user-facing error
			m.result = nil
			return m, nil
		}
		m.result = msg.result
		draft := m.draft()
		deps.Orchestrator.ApplySuggestions(&draft, msg.result)
		m.setDraft(draft)
		return m, nil

	case submitDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		draft := msg.draft
		deps.Store.Dispatch(store.AddTicket{Draft: draft})
		ledger := deps.Store.State().Tickets
		if len(ledger) > 0 && msg.analysis != nil {
			ticketID := msg.analysis.TicketID
			deps.Store.Dispatch(store.UpdateTicket{
				ID:    ledger[0].ID,
				Patch: store.TicketPatch{TicketID: &ticketID},
			})
		}
		m.info = fmt.Sprintf("submitted as %s", msg.analysis.TicketID)
		m.reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m composeModel) startAnalysis(deps Deps) (composeModel, tea.Cmd) {
	draft := m.draft()
	if len(strings.TrimSpace(draft.Description)) < analysis.MinDescriptionLength {
		m.errMsg = "description too short to analyze"
		return m, nil
	}
	m.pending = true
	m.errMsg = ""
	orchestrator := deps.Orchestrator
	return m, func() tea.Msg {
		result, err := orchestrator.Analyze(context.Background(), draft)
		if errors.Is(err, analysis.ErrSuperseded) {
			// discard stale results silently
			return analysisDoneMsg{err: err}
		}
		return analysisDoneMsg{result: result, err: err}
	}
}

func (m composeModel) startSubmit(deps Deps) (composeModel, tea.Cmd) {
	draft := m.draft()
	m.pending = true
	m.errMsg = ""
	orchestrator := deps.Orchestrator
	sess := deps.Session
	return m, func() tea.Msg {
		analysisResult, err := orchestrator.Submit(context.Background(), draft, sess)
		return submitDoneMsg{analysis: analysisResult, draft: draft, err: err}
	}
}

func (m *composeModel) setDraft(draft domain.TicketDraft) {
	m.inputs[fieldTitle].SetValue(draft.Title)
	m.inputs[fieldDescription].SetValue(draft.Description)
	m.inputs[fieldCategory].SetValue(draft.Category)
}

func (m *composeModel) reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.result = nil
}

func (m composeModel) view() string {
	var b strings.Builder
	for i := range m.inputs {
		b.WriteString(m.inputs[i].View() + "\n")
	}
	if m.pending {
		b.WriteString(hintStyle.Render("analyzing...") + "\n")
	}
	if m.result != nil {
		b.WriteString(suggestionStyle.Render(fmt.Sprintf(
			"suggested: %s / %s (%.0f%% confident), priority %s",
			m.result.Classification.Category,
			m.result.Classification.Subcategory,
			m.result.Classification.Confidence*100,
			m.result.Priority.Priority)) + "\n")
		for _, s := range m.result.Solutions {
			b.WriteString(suggestionStyle.Render(fmt.Sprintf("  · %s (%d%% match)", s.Title, s.Similarity)) + "\n")
		}
	}
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n")
	}
	if m.info != "" {
		b.WriteString(statsStyle.Render(m.info) + "\n")
	}
	b.WriteString(hintStyle.Render("ctrl+a: analyze · ctrl+s: submit · enter/up/down: move"))
	return b.String()
}

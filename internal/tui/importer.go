package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spec-kit/ticketflow/internal/bulkimport"
	"github.com/spec-kit/ticketflow/internal/domain"
)

const previewRows = 5

type importerModel struct {
	path    textinput.Model
	preview table.Model
	pending bool
	errMsg  string
	info    string

	// display mirrors of pipeline state, refreshed on each transition
	stage      bulkimport.Stage
	validation *domain.BulkValidationResult
	canProcess bool
}

type validationDoneMsg struct {
	result *domain.BulkValidationResult
	err    error
}

type processDoneMsg struct {
	result *domain.ProcessingResult
	err    error
}

type templateDoneMsg struct {
	path string
	err  error
}

func newImporterModel() importerModel {
	path := textinput.New()
	path.Placeholder = "path to .csv file"
	path.Focus()

	preview := table.New(table.WithColumns([]table.Column{
		{Title: "Title", Width: 36},
		{Title: "Requester", Width: 22},
		{Title: "Email", Width: 26},
	}), table.WithHeight(previewRows+1))

	return importerModel{path: path, preview: preview}
}

func (m importerModel) focused() bool { return m.path.Focused() }

func (m importerModel) update(msg tea.Msg, deps Deps) (importerModel, tea.Cmd) {
	pipeline := deps.Pipeline

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if pipeline.Stage() == bulkimport.StageUpload && m.path.Focused() {
				return m.startValidation(deps)
			}
		case "ctrl+p":
			if pipeline.Stage() == bulkimport.StageReview {
				return m.startProcessing(deps)
			}
		case "ctrl+t":
			return m.startTemplateDownload(deps)
		case "ctrl+r":
			pipeline.Reset()
			m.path.SetValue("")
			m.path.Focus()
			m.preview.SetRows(nil)
			m.stage = pipeline.Stage()
			m.validation = nil
			m.canProcess = false
			m.errMsg = ""
			m.info = ""
			return m, nil
		}

	case validationDoneMsg:
		m.pending = false
		m.stage = pipeline.Stage()
		m.validation = pipeline.Validation()
		m.canProcess = pipeline.CanProcess()
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		rows := make([]table.Row, 0, previewRows)
		for _, t := range pipeline.Preview(previewRows) {
			requester := ""
			email := ""
			if t.RequesterInfo != nil {
				requester = t.RequesterInfo.Name
				email = t.RequesterInfo.Email
			}
			rows = append(rows, table.Row{t.Title, requester, email})
		}
		m.preview.SetRows(rows)
		m.path.Blur()
		return m, nil

	case processDoneMsg:
		m.pending = false
		m.stage = pipeline.Stage()
		m.canProcess = pipeline.CanProcess()
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.info = fmt.Sprintf("%s: %s", msg.result.TaskID, msg.result.Message)
		return m, nil

	case templateDoneMsg:
		// side channel: never touches pipeline state
		if msg.err != nil {
			m.errMsg = "template download failed: " + msg.err.Error()
			return m, nil
		}
		m.info = "template saved to " + msg.path
		return m, nil
	}

	var cmd tea.Cmd
	if m.path.Focused() {
		m.path, cmd = m.path.Update(msg)
	} else {
		m.preview, cmd = m.preview.Update(msg)
	}
	return m, cmd
}

func (m importerModel) startValidation(deps Deps) (importerModel, tea.Cmd) {
	path := strings.TrimSpace(m.path.Value())
	if err := deps.Pipeline.LoadFile(path); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.pending = true
	m.errMsg = ""
	pipeline := deps.Pipeline
	return m, func() tea.Msg {
		result, err := pipeline.Validate(context.Background())
		return validationDoneMsg{result: result, err: err}
	}
}

func (m importerModel) startProcessing(deps Deps) (importerModel, tea.Cmd) {
	m.pending = true
	m.errMsg = ""
	pipeline := deps.Pipeline
	return m, func() tea.Msg {
		result, err := pipeline.Process(context.Background(), domain.DefaultProcessingOptions())
		return processDoneMsg{result: result, err: err}
	}
}

func (m importerModel) startTemplateDownload(deps Deps) (importerModel, tea.Cmd) {
	pipeline := deps.Pipeline
	return m, func() tea.Msg {
		dir, err := os.Getwd()
		if err != nil {
			return templateDoneMsg{err: err}
		}
		path, err := pipeline.DownloadTemplate(context.Background(), dir)
		return templateDoneMsg{path: path, err: err}
	}
}

func (m importerModel) view() string {
	var b strings.Builder
	b.WriteString(statsStyle.Render("stage: "+m.stage.String()) + "\n\n")

	switch m.stage {
	case bulkimport.StageUpload:
		b.WriteString(m.path.View() + "\n")
		if m.pending {
			b.WriteString(hintStyle.Render("validating...") + "\n")
		}
	case bulkimport.StageReview:
		if v := m.validation; v != nil {
			b.WriteString(fmt.Sprintf("rows: %d total, %d valid, %d invalid\n",
				v.TotalRows, v.ValidRows, v.InvalidRows))
			for _, rowErr := range v.Errors {
				b.WriteString(errStyle.Render(fmt.Sprintf("  row %d: %s",
					rowErr.RowIndex, strings.Join(rowErr.Errors, "; "))) + "\n")
			}
			b.WriteString(m.preview.View() + "\n")
			if !m.canProcess {
				b.WriteString(warnStyle.Render("batch blocked: fix invalid rows or start over") + "\n")
			}
		}
	case bulkimport.StageDone:
		b.WriteString(statsStyle.Render("batch submitted") + "\n")
	}

	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n")
	}
	if m.info != "" {
		b.WriteString(statsStyle.Render(m.info) + "\n")
	}
	b.WriteString(hintStyle.Render("enter: validate · ctrl+p: process · ctrl+t: template · ctrl+r: start over"))
	return b.String()
}

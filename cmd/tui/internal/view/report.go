package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/report"
)

const reportTimeout = 2 * time.Minute

type reportState int

const (
	reportStateLoading reportState = iota
	reportStateForm
	reportStateTimeframe
	reportStateGenerating
	reportStateResult
)

// reportOptions is bound to the form fields, so it lives behind a pointer.
type reportOptions struct {
	kind     report.Kind
	format   report.Format
	project  string
	category string
	dir      string
}

type ReportModel struct {
	CommonModel
	reportService  *report.Service
	projectService *project.Service

	state           reportState
	projects        []*project.Project
	opts            *reportOptions
	form            *huh.Form
	timeframePicker TimeframePicker
	spinner         spinner.Model

	path string
	err  error
}

func NewReportModel(reportSvc *report.Service, projectSvc *project.Service) ReportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ReportModel{
		reportService:   reportSvc,
		projectService:  projectSvc,
		state:           reportStateLoading,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
		spinner:         s,
		opts: &reportOptions{
			kind:   report.KindFinancial,
			format: report.FormatPDF,
			dir:    "./relatorios",
		},
	}
}

func (m ReportModel) Title() string { return "Generate Report" }

func (m ReportModel) ShortHelp() string {
	switch m.state {
	case reportStateResult:
		return "Esc: back to menu"
	case reportStateGenerating:
		return "Generating..."
	}

	return "Esc: back | Enter: confirm"
}

func (m ReportModel) Init() tea.Cmd {
	return m.loadProjectsCmd()
}

func (m ReportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case reportProjectsMsg:
		if msg.err != nil {
			m.state = reportStateResult
			m.err = msg.err

			return m, nil
		}

		m.projects = msg.projects
		m.form = m.buildForm()
		m.state = reportStateForm

		return m, m.form.Init()

	case TimeframeSelectedMsg:
		m.state = reportStateGenerating
		m.err = nil

		return m, tea.Batch(m.spinner.Tick, m.generateCmd(msg.Start, msg.End))

	case reportResultMsg:
		m.state = reportStateResult
		m.err = msg.err
		m.path = msg.path

		return m, nil
	}

	switch m.state {
	case reportStateForm:
		return m.updateForm(msg)
	case reportStateTimeframe:
		return m.updateTimeframe(msg)
	case reportStateGenerating:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	case reportStateLoading, reportStateResult:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ReportModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = reportStateTimeframe
	m.timeframePicker.Reset()

	return m, nil
}

func (m ReportModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			m.form = m.buildForm()
			m.state = reportStateForm

			return m, m.form.Init()
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m ReportModel) buildForm() *huh.Form {
	kinds := make([]huh.Option[report.Kind], 0, len(report.Kinds))
	for _, k := range report.Kinds {
		kinds = append(kinds, huh.NewOption(k.Title(), k))
	}

	formats := []huh.Option[report.Format]{
		huh.NewOption("PDF", report.FormatPDF),
		huh.NewOption("Excel (.xlsx)", report.FormatExcel),
		huh.NewOption("CSV", report.FormatCSV),
	}

	projects := []huh.Option[string]{huh.NewOption("Todas as obras", "")}
	for _, p := range m.projects {
		projects = append(projects, huh.NewOption(p.Name, p.ID.String()))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[report.Kind]().
				Title("Report").
				Options(kinds...).
				Value(&m.opts.kind),

			huh.NewSelect[report.Format]().
				Title("Format").
				Options(formats...).
				Value(&m.opts.format),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Project").
				Options(projects...).
				Value(&m.opts.project),

			huh.NewInput().
				Title("Category").
				Description("Leave empty for every category").
				Value(&m.opts.category),

			huh.NewInput().
				Title("Output Directory").
				Description("Directory will be created if it doesn't exist").
				Placeholder("./relatorios").
				Value(&m.opts.dir).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("directory cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ReportModel) View() string {
	style := lipgloss.NewStyle().Padding(1)

	switch m.state {
	case reportStateLoading:
		return style.Render("Loading projects...")

	case reportStateForm:
		return style.Render(m.form.View())

	case reportStateTimeframe:
		return style.Render(m.timeframePicker.View())

	case reportStateGenerating:
		return style.Render(fmt.Sprintf("%s Generating %s...", m.spinner.View(), m.opts.kind.Title()))

	case reportStateResult:
		if m.err != nil {
			return style.Render(errorStyle(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
		}

		return style.Render(successStyle("Report saved to "+m.path) + "\n\n(Esc to go back)")
	}

	return ""
}

// Messages

type reportProjectsMsg struct {
	projects []*project.Project
	err      error
}

type reportResultMsg struct {
	path string
	err  error
}

func (m ReportModel) loadProjectsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		projects, err := m.projectService.List(ctx, project.ListFilter{})

		return reportProjectsMsg{projects: projects, err: err}
	}
}

func (m ReportModel) generateCmd(start, end *time.Time) tea.Cmd {
	opts := *m.opts

	return func() tea.Msg {
		req := report.Request{
			Kind:     opts.kind,
			Format:   opts.format,
			Start:    start,
			End:      end,
			Category: strings.TrimSpace(opts.category),
		}

		if opts.project != "" {
			id, err := uuid.Parse(opts.project)
			if err != nil {
				return reportResultMsg{err: err}
			}

			req.ProjectID = &id
		}

		ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()

		out, err := m.reportService.Generate(ctx, req)
		if err != nil {
			return reportResultMsg{err: err}
		}

		path, err := writeReport(opts.dir, out)

		return reportResultMsg{path: path, err: err}
	}
}

func writeReport(dir string, out *report.Output) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, out.FileName)
	if err := os.WriteFile(path, out.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

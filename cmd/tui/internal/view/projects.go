package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
)

type projectsState int

const (
	projectsStateBrowse projectsState = iota
	projectsStateEdit
)

// progressForm is bound to the edit form fields.
type progressForm struct {
	status   project.Status
	progress string
}

type ProjectsModel struct {
	CommonModel
	projectService *project.Service

	state    projectsState
	table    table.Model
	projects []*project.Project
	form     *huh.Form
	values   *progressForm

	statusFilterIdx int

	loading bool
	err     error
	status  string
}

func NewProjectsModel(svc *project.Service) ProjectsModel {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Status", Width: 14},
		{Title: "Progress", Width: 9},
		{Title: "Budget", Width: 16},
		{Title: "Address", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ProjectsModel{
		projectService: svc,
		table:          t,
		values:         &progressForm{},
		loading:        true,
	}
}

func (m ProjectsModel) Title() string { return "Projects" }

func (m ProjectsModel) ShortHelp() string {
	if m.state == projectsStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: update progress | s: status filter | r: refresh"
}

func (m ProjectsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ProjectsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadProjectsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.projects = msg.projects
		m.refreshTable()

		return m, nil

	case projectSaveMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = projectsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == projectsStateEdit {
		return m.updateEdit(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % (len(project.Statuses) + 1)
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ProjectsModel) enterEditMode() (tea.Model, tea.Cmd) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.projects) {
		return m, nil
	}

	p := m.projects[idx]
	m.values = &progressForm{status: p.Status, progress: strconv.Itoa(p.Progress)}

	statuses := make([]huh.Option[project.Status], 0, len(project.Statuses))
	for _, s := range project.Statuses {
		statuses = append(statuses, huh.NewOption(s.Label(), s))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[project.Status]().
				Title("Status").
				Options(statuses...).
				Value(&m.values.status),

			huh.NewInput().
				Title("Progress (%)").
				Value(&m.values.progress).
				Validate(func(s string) error {
					_, err := parseProgress(s)
					return err
				}),
		),
	).WithWidth(40).WithShowHelp(false)

	m.state = projectsStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ProjectsModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = projectsStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func parseProgress(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")))
	if err != nil || n < 0 || n > 100 {
		return 0, fmt.Errorf("progress must be a number between 0 and 100")
	}

	return n, nil
}

func (m ProjectsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading projects...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	label := "All"
	if s := m.statusFilter(); s != nil {
		label = s.Label()
	}

	header := fmt.Sprintf("Filter: [s] Status: %s", activeStyle(label))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == projectsStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(44).
			Render("Update Project\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ProjectsModel) statusFilter() *project.Status {
	if m.statusFilterIdx == 0 {
		return nil
	}

	return new(project.Statuses[m.statusFilterIdx-1])
}

func (m *ProjectsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.projects))
	for _, p := range m.projects {
		rows = append(rows, table.Row{
			p.Name,
			p.Status.Label(),
			fmt.Sprintf("%d%%", p.Progress),
			FormatMoney(p.Budget),
			p.Address,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadProjectsMsg struct {
	projects []*project.Project
	err      error
}

type projectSaveMsg struct {
	err error
}

func (m ProjectsModel) loadCmd() tea.Cmd {
	filter := project.ListFilter{Status: m.statusFilter()}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		projects, err := m.projectService.List(ctx, filter)

		return loadProjectsMsg{projects: projects, err: err}
	}
}

func (m ProjectsModel) saveCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.projects) {
		return nil
	}

	updated := *m.projects[idx]
	values := *m.values

	return func() tea.Msg {
		progress, err := parseProgress(values.progress)
		if err != nil {
			return projectSaveMsg{err: err}
		}

		updated.Status = values.status
		updated.Progress = progress

		ctx, cancel := DbCtx()
		defer cancel()

		return projectSaveMsg{err: m.projectService.Update(ctx, &updated)}
	}
}

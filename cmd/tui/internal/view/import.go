package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/importer"
	"github.com/MrJamesThe3rd/gestobra/internal/matching"
	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

const importTimeout = 2 * time.Minute

type importStep int

const (
	importStepProject importStep = iota
	importStepFile
	importStepPreview
	importStepSaving
	importStepDuplicates
	importStepDone
)

// statementPreview summarises a parsed statement before anything is written.
type statementPreview struct {
	file       string
	lines      []transaction.CreateParams
	classified int
	income     decimal.Decimal
	expense    decimal.Decimal
	first      time.Time
	last       time.Time
}

func newStatementPreview(file string, lines []transaction.CreateParams, classified int) statementPreview {
	p := statementPreview{file: file, lines: lines, classified: classified}

	for i, l := range lines {
		switch l.Type {
		case transaction.TypeIncome:
			p.income = p.income.Add(l.Value)
		case transaction.TypeExpense:
			p.expense = p.expense.Add(l.Value)
		}

		if i == 0 || l.Date.Before(p.first) {
			p.first = l.Date
		}

		if i == 0 || l.Date.After(p.last) {
			p.last = l.Date
		}
	}

	return p
}

func (p statementPreview) uncategorised() int {
	n := 0
	for _, l := range p.lines {
		if l.Category == "" {
			n++
		}
	}

	return n
}

type ImportModel struct {
	CommonModel
	txService       *transaction.Service
	importService   *importer.Service
	matchingService *matching.Service
	projectService  *project.Service

	step       importStep
	filePicker filepicker.Model
	projects   []*project.Project
	cursor     int

	preview statementPreview

	pending    []transaction.CreateParams
	duplicates []transaction.Conflict
	dupList    list.Model
	keep       map[int]bool

	message string
	err     error
}

func NewImportModel(
	txSvc *transaction.Service,
	impSvc *importer.Service,
	matchSvc *matching.Service,
	projectSvc *project.Service,
) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		txService:       txSvc,
		importService:   impSvc,
		matchingService: matchSvc,
		projectService:  projectSvc,
		filePicker:      fp,
		keep:            make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	switch m.step {
	case importStepPreview:
		return "Enter: import | Esc: choose another file"
	case importStepDuplicates:
		return "Space: keep/skip | a: keep all | n: skip all | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadProjectsCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.stepBack()
		}

		switch m.step {
		case importStepProject:
			return m.updateProjectStep(msg)
		case importStepPreview:
			if msg.Type == tea.KeyEnter {
				m.step = importStepSaving
				m.message = fmt.Sprintf("Saving %d lines...", len(m.preview.lines))

				return m, m.saveCmd(m.preview.lines)
			}

			return m, nil
		case importStepDuplicates:
			return m.updateDuplicates(msg)
		}

	case importProjectsMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.projects = msg.projects

		return m, nil

	case statementParsedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.preview = msg.preview
		m.step = importStepPreview

		return m, nil

	case statementSavedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		if len(msg.result.Conflicts) == 0 {
			m.step = importStepDone
			m.message = fmt.Sprintf("Imported %d transactions.", len(msg.result.Imported))

			return m, nil
		}

		m.showDuplicates(msg.result)

		return m, nil

	case duplicatesResolvedMsg:
		if msg.err != nil {
			return m.fail(msg.err), nil
		}

		m.step = importStepDone
		m.message = fmt.Sprintf("Imported %d transactions.", msg.count)

		return m, nil
	}

	if m.step != importStepFile {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if ok, path := m.filePicker.DidSelectFile(msg); ok {
		m.step = importStepSaving
		m.message = fmt.Sprintf("Reading %s...", filepath.Base(path))

		return m, m.parseCmd(path, m.target())
	}

	return m, cmd
}

func (m ImportModel) fail(err error) ImportModel {
	m.step = importStepDone
	m.err = err
	m.message = fmt.Sprintf("Error: %v", err)

	return m
}

func (m ImportModel) stepBack() (tea.Model, tea.Cmd) {
	switch m.step {
	case importStepProject:
		return m, Back
	case importStepFile:
		m.step = importStepProject
		return m, nil
	case importStepPreview:
		m.step = importStepFile
		m.preview = statementPreview{}

		return m, m.filePicker.Init()
	case importStepDone, importStepDuplicates:
		m.step = importStepProject
		m.err = nil
		m.message = ""
		m.pending = nil
		m.duplicates = nil
		m.keep = make(map[int]bool)

		return m, m.loadProjectsCmd()
	}

	return m, nil
}

// target returns nil while the "no project" entry at the top of the list is selected.
func (m ImportModel) target() *project.Project {
	if m.cursor == 0 || m.cursor > len(m.projects) {
		return nil
	}

	return m.projects[m.cursor-1]
}

func (m ImportModel) updateProjectStep(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.projects) {
			m.cursor++
		}
	case "enter":
		m.step = importStepFile
		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m *ImportModel) showDuplicates(result *transaction.ImportResult) {
	m.pending = result.New
	m.duplicates = result.Conflicts
	m.keep = make(map[int]bool)
	m.step = importStepDuplicates

	items := make([]list.Item, len(m.duplicates))
	for i, c := range m.duplicates {
		items[i] = duplicateItem{conflict: c, index: i}
	}

	m.dupList = list.New(items, duplicateDelegate{keep: m.keep}, 90, 20)
	m.dupList.Title = fmt.Sprintf("%d lines already exist. Keep which?", len(m.duplicates))
	m.dupList.SetShowStatusBar(false)
	m.dupList.SetFilteringEnabled(false)
	m.dupList.SetShowHelp(false)
}

func (m ImportModel) updateDuplicates(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		i := m.dupList.Index()
		m.keep[i] = !m.keep[i]

		return m, nil
	case "a", "n":
		for i := range m.duplicates {
			m.keep[i] = msg.String() == "a"
		}

		return m, nil
	case "enter":
		return m, m.resolveDuplicatesCmd()
	}

	var cmd tea.Cmd
	m.dupList, cmd = m.dupList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	pad := lipgloss.NewStyle().Padding(1, 2)

	switch m.step {
	case importStepProject:
		return pad.Render(m.viewProjects())
	case importStepFile:
		target := "no project"
		if p := m.target(); p != nil {
			target = p.Name
		}

		return pad.Render(fmt.Sprintf("Statement for %s:\n\n%s", activeStyle(target), m.filePicker.View()))
	case importStepPreview:
		return pad.Render(m.viewPreview())
	case importStepSaving:
		return pad.Render(m.message)
	case importStepDuplicates:
		return pad.Render(m.dupList.View())
	case importStepDone:
		if m.err != nil {
			return pad.Render(errorStyle(m.message) + "\n\n(Esc to go back)")
		}

		return pad.Render(successStyle(m.message) + "\n\n(Esc to go back)")
	}

	return ""
}

func (m ImportModel) viewProjects() string {
	s := "Attach imported lines to:\n\n"

	for i := 0; i <= len(m.projects); i++ {
		name := "No project"
		if i > 0 {
			p := m.projects[i-1]
			name = fmt.Sprintf("%s (%s)", p.Name, p.Status.Label())
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		s += cursor + name + "\n"
	}

	return s
}

func (m ImportModel) viewPreview() string {
	p := m.preview
	if len(p.lines) == 0 {
		return fmt.Sprintf("%s has no transactions.\n\n(Esc to choose another file)", filepath.Base(p.file))
	}

	return fmt.Sprintf(
		"%s\n\nLines:          %d (%s to %s)\nReceitas:       %s\nDespesas:       %s\n"+
			"Categorised:    %d by rule, %d still empty\n\n(Enter to import, Esc to choose another file)",
		lipgloss.NewStyle().Bold(true).Render(filepath.Base(p.file)),
		len(p.lines), FormatDate(p.first), FormatDate(p.last),
		FormatMoney(p.income),
		FormatMoney(p.expense),
		p.classified, p.uncategorised(),
	)
}

// Messages

type importProjectsMsg struct {
	projects []*project.Project
	err      error
}

type statementParsedMsg struct {
	preview statementPreview
	err     error
}

type statementSavedMsg struct {
	result *transaction.ImportResult
	err    error
}

type duplicatesResolvedMsg struct {
	count int
	err   error
}

func (m ImportModel) loadProjectsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		projects, err := m.projectService.List(ctx, project.ListFilter{})

		return importProjectsMsg{projects: projects, err: err}
	}
}

func (m ImportModel) parseCmd(path string, target *project.Project) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return statementParsedMsg{err: err}
		}
		defer f.Close()

		var projectID *uuid.UUID
		if target != nil {
			projectID = &target.ID
		}

		lines, err := m.importService.Import(importer.LayoutStatement, f, projectID)
		if err != nil {
			return statementParsedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		classified := m.matchingService.Classify(ctx, lines)

		return statementParsedMsg{preview: newStatementPreview(path, lines, classified)}
	}
}

func (m ImportModel) saveCmd(lines []transaction.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.txService.ImportBatch(ctx, lines)

		return statementSavedMsg{result: result, err: err}
	}
}

func (m ImportModel) resolveDuplicatesCmd() tea.Cmd {
	lines := append([]transaction.CreateParams(nil), m.pending...)
	for i, c := range m.duplicates {
		if m.keep[i] {
			lines = append(lines, c.Incoming)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		txs, err := m.txService.CreateBatch(ctx, lines)

		return duplicatesResolvedMsg{count: len(txs), err: err}
	}
}

type duplicateItem struct {
	conflict transaction.Conflict
	index    int
}

func (i duplicateItem) FilterValue() string { return i.conflict.Incoming.Description }

type duplicateDelegate struct {
	keep map[int]bool
}

func (d duplicateDelegate) Height() int                             { return 2 }
func (d duplicateDelegate) Spacing() int                            { return 1 }
func (d duplicateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d duplicateDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(duplicateItem)
	if !ok {
		return
	}

	mark := "skip"
	if d.keep[item.index] {
		mark = activeStyle("keep")
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	in, ex := item.conflict.Incoming, item.conflict.Existing

	fmt.Fprintf(w, "%s[%s] %s %s %s  %s\n", cursor, mark,
		FormatDate(in.Date), in.Type.Label(), FormatMoney(in.Value), in.Description)
	fmt.Fprintf(w, "         already saved on %s as %q (%s)",
		FormatDate(ex.Date), ex.Description, ex.PaymentStatus.Label())
}

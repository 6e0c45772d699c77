package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/project"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

// listForm is bound to the edit form fields.
type listForm struct {
	description   string
	category      string
	paymentStatus transaction.PaymentStatus
}

type ListModel struct {
	CommonModel
	txService      *transaction.Service
	projectService *project.Service

	state    listState
	table    table.Model
	txs      []*transaction.Transaction
	projects map[uuid.UUID]*project.Project
	form     *huh.Form
	values   *listForm

	paymentFilterIdx int
	typeFilterIdx    int
	dateFilterIdx    int

	filter  transaction.ListFilter
	loading bool
	err     error
	status  string
}

func NewListModel(txSvc *transaction.Service, projectSvc *project.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Project", Width: 20},
		{Title: "Type", Width: 8},
		{Title: "Value", Width: 14},
		{Title: "Category", Width: 16},
		{Title: "Payment", Width: 9},
		{Title: "Description", Width: 36},
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

	return ListModel{
		txService:      txSvc,
		projectService: projectSvc,
		table:          t,
		values:         &listForm{},
		loading:        true,
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | p: toggle paid | s: payment filter | t: type filter | d: date filter | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.txs = msg.txs
		m.projects = msg.projects
		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterEditMode()
		case "p":
			return m, m.togglePaidCmd()
		case "s":
			m.paymentFilterIdx = (m.paymentFilterIdx + 1) % 3
			m.applyFilter(time.Now())

			return m, m.loadTxsCmd()
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % 3
			m.applyFilter(time.Now())

			return m, m.loadTxsCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 4
			m.applyFilter(time.Now())

			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	tx := m.current()
	if tx == nil {
		return m, nil
	}

	m.values = &listForm{
		description:   tx.Description,
		category:      tx.Category,
		paymentStatus: tx.PaymentStatus,
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.values.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("category").
				Title("Category").
				Value(&m.values.category),

			huh.NewSelect[transaction.PaymentStatus]().
				Key("payment_status").
				Title("Payment").
				Options(
					huh.NewOption(transaction.PaymentPending.Label(), transaction.PaymentPending),
					huh.NewOption(transaction.PaymentPaid.Label(), transaction.PaymentPaid),
				).
				Value(&m.values.paymentStatus),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
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

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	paymentLabels := []string{"All", "Pendente", "Pago"}
	typeLabels := []string{"All", "Despesa", "Receita"}
	dateLabels := []string{"All Time", "This Month", "Last Month", "This Year"}

	header := fmt.Sprintf(
		"Filter: [s] Payment: %s | [t] Type: %s | [d] Date: %s",
		activeStyle(paymentLabels[m.paymentFilterIdx]),
		activeStyle(typeLabels[m.typeFilterIdx]),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	totals := m.totals()

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		lipgloss.NewStyle().PaddingTop(1).Faint(true).Render(totals),
	)

	if m.state == listStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Edit Transaction\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ListModel) current() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ListModel) totals() string {
	income, expense := sumByType(m.txs)

	return fmt.Sprintf("Receitas: %s | Despesas: %s | Saldo: %s",
		FormatMoney(income), FormatMoney(expense), FormatMoney(income.Sub(expense)))
}

func sumByType(txs []*transaction.Transaction) (income, expense decimal.Decimal) {
	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			income = income.Add(tx.Value)
		case transaction.TypeExpense:
			expense = expense.Add(tx.Value)
		}
	}

	return income, expense
}

func (m *ListModel) applyFilter(now time.Time) {
	switch m.paymentFilterIdx {
	case 1:
		m.filter.PaymentStatus = new(transaction.PaymentPending)
	case 2:
		m.filter.PaymentStatus = new(transaction.PaymentPaid)
	default:
		m.filter.PaymentStatus = nil
	}

	switch m.typeFilterIdx {
	case 1:
		m.filter.Type = new(transaction.TypeExpense)
	case 2:
		m.filter.Type = new(transaction.TypeIncome)
	default:
		m.filter.Type = nil
	}

	var tf Timeframe

	switch m.dateFilterIdx {
	case 1:
		tf = TimeframeThisMonth
	case 2:
		tf = TimeframeLastMonth
	case 3:
		tf = TimeframeThisYear
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil

		return
	}

	start, end := dateRange(tf, now)
	m.filter.StartDate = &start
	m.filter.EndDate = &end
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		projectName := "-"
		if tx.ProjectID != nil {
			if p, ok := m.projects[*tx.ProjectID]; ok {
				projectName = p.Name
			}
		}

		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			projectName,
			tx.Type.Label(),
			FormatMoney(tx.Value),
			tx.Category,
			tx.PaymentStatus.Label(),
			tx.Description,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadListMsg struct {
	txs      []*transaction.Transaction
	projects map[uuid.UUID]*project.Project
	err      error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)
		if err != nil {
			return loadListMsg{err: err}
		}

		projects, err := m.projectService.Lookup(ctx)
		if err != nil {
			return loadListMsg{err: err}
		}

		return loadListMsg{txs: txs, projects: projects}
	}
}

type listSaveMsg struct {
	err error
}

func (m ListModel) saveCmd() tea.Cmd {
	tx := m.current()
	if tx == nil {
		return nil
	}

	values := *m.values

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated := *tx
		updated.Description = strings.TrimSpace(values.description)
		updated.Category = strings.TrimSpace(values.category)
		updated.PaymentStatus = values.paymentStatus

		return listSaveMsg{err: m.txService.Update(ctx, &updated)}
	}
}

func (m ListModel) togglePaidCmd() tea.Cmd {
	tx := m.current()
	if tx == nil {
		return nil
	}

	next := transaction.PaymentPaid
	if tx.PaymentStatus == transaction.PaymentPaid {
		next = transaction.PaymentPending
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return listSaveMsg{err: m.txService.UpdatePaymentStatus(ctx, tx.ID, next)}
	}
}

package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/gestobra/internal/matching"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

type reviewState int

const (
	reviewStateTimeframe reviewState = iota
	reviewStateReviewing
)

// ReviewModel walks through uncategorised transactions, pre-filling each with the category the
// learned rules suggest. Saving teaches the rule back.
type ReviewModel struct {
	CommonModel
	txService       *transaction.Service
	matchingService *matching.Service

	state           reviewState
	timeframePicker TimeframePicker

	queue     []*transaction.Transaction
	currentTx *transaction.Transaction

	categoryInput textinput.Model

	status     string
	loading    bool
	totalCount int
}

func NewReviewModel(txSvc *transaction.Service, matchSvc *matching.Service) ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Category"
	ti.Width = 40

	return ReviewModel{
		txService:       txSvc,
		matchingService: matchSvc,
		categoryInput:   ti,
		state:           reviewStateTimeframe,
		timeframePicker: NewTimeframePicker(TimeframeThisMonth),
	}
}

func (m ReviewModel) Title() string { return "Categorise Transactions" }

func (m ReviewModel) ShortHelp() string {
	if m.state == reviewStateReviewing {
		return "Enter: save & next | Tab: skip | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.state = reviewStateReviewing
		m.loading = true

		return m, m.loadUncategorisedCmd(msg.Start, msg.End)

	case loadUncategorisedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading transactions: %v", msg.err)
			return m, nil
		}

		m.queue = msg.txs
		m.totalCount = len(m.queue)

		if len(m.queue) == 0 {
			m.status = "No uncategorised transactions found."
			return m, nil
		}

		cmd := m.nextTx()

		return m, cmd

	case suggestionMsg:
		if m.currentTx != nil && m.currentTx.ID == msg.id && msg.category != "" {
			m.categoryInput.SetValue(msg.category)
			m.categoryInput.CursorEnd()
		}

		return m, nil

	case saveResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		cmd := m.nextTx()

		return m, cmd
	}

	if m.state == reviewStateTimeframe {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.loading {
			return m, nil
		}

		switch keyMsg.Type {
		case tea.KeyEsc:
			return m, Back
		case tea.KeyTab:
			if m.currentTx != nil {
				cmd := m.nextTx()
				return m, cmd
			}
		case tea.KeyEnter:
			if m.currentTx != nil {
				category := strings.TrimSpace(m.categoryInput.Value())
				if category == "" {
					m.status = "Category cannot be empty (Tab skips)"
					return m, nil
				}

				return m, m.saveCmd(m.currentTx, category)
			}
		}
	}

	var cmd tea.Cmd
	m.categoryInput, cmd = m.categoryInput.Update(msg)

	return m, cmd
}

func (m ReviewModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.state == reviewStateTimeframe {
		return style.Render(m.timeframePicker.View())
	}

	if m.loading {
		return style.Render("Loading transactions...")
	}

	if m.currentTx == nil {
		return style.Render(m.status + "\n\n(Esc to back)")
	}

	info := fmt.Sprintf(
		"Date:        %s\nType:        %s\nValue:       %s\nDescription: %s\n",
		FormatDate(m.currentTx.Date),
		m.currentTx.Type.Label(),
		FormatMoney(m.currentTx.Value),
		m.currentTx.Description,
	)

	return style.Render(fmt.Sprintf(
		"%s\n\n%s\nCategory:\n%s\n\n(Enter to save & next, Tab to skip, Esc to quit)",
		m.status, info, m.categoryInput.View(),
	))
}

// nextTx pops the queue and asks the rules for a suggestion.
func (m *ReviewModel) nextTx() tea.Cmd {
	if len(m.queue) == 0 {
		m.currentTx = nil
		m.status = "All done! No more uncategorised transactions."
		m.categoryInput.Blur()

		return nil
	}

	tx := m.queue[0]
	m.queue = m.queue[1:]
	m.currentTx = tx

	reviewed := m.totalCount - len(m.queue)
	m.status = fmt.Sprintf("Reviewing %d/%d", reviewed, m.totalCount)
	m.categoryInput.SetValue("")

	return tea.Batch(m.categoryInput.Focus(), m.suggestCmd(tx))
}

// Messages

type loadUncategorisedMsg struct {
	txs []*transaction.Transaction
	err error
}

type suggestionMsg struct {
	id       uuid.UUID
	category string
}

type saveResultMsg struct {
	err error
}

func (m ReviewModel) loadUncategorisedCmd(start, end *time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, transaction.ListFilter{StartDate: start, EndDate: end})
		if err != nil {
			return loadUncategorisedMsg{err: err}
		}

		return loadUncategorisedMsg{txs: uncategorised(txs)}
	}
}

func uncategorised(txs []*transaction.Transaction) []*transaction.Transaction {
	var out []*transaction.Transaction

	for _, tx := range txs {
		if strings.TrimSpace(tx.Category) == "" {
			out = append(out, tx)
		}
	}

	return out
}

func (m ReviewModel) suggestCmd(tx *transaction.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		category, _ := m.matchingService.Suggest(ctx, tx.Description)

		return suggestionMsg{id: tx.ID, category: category}
	}
}

func (m ReviewModel) saveCmd(tx *transaction.Transaction, category string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.matchingService.Learn(ctx, tx.Description, category); err != nil {
			return saveResultMsg{err: err}
		}

		tx.Category = category

		return saveResultMsg{err: m.txService.Update(ctx, tx)}
	}
}

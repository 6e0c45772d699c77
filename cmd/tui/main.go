package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/gestobra/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/gestobra/internal/config"
	"github.com/MrJamesThe3rd/gestobra/internal/database"
	"github.com/MrJamesThe3rd/gestobra/internal/importer"
	"github.com/MrJamesThe3rd/gestobra/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/gestobra/internal/matching/store"
	"github.com/MrJamesThe3rd/gestobra/internal/material"
	materialStore "github.com/MrJamesThe3rd/gestobra/internal/material/store"
	"github.com/MrJamesThe3rd/gestobra/internal/project"
	projectStore "github.com/MrJamesThe3rd/gestobra/internal/project/store"
	"github.com/MrJamesThe3rd/gestobra/internal/report"
	"github.com/MrJamesThe3rd/gestobra/internal/report/render"
	"github.com/MrJamesThe3rd/gestobra/internal/schema"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
	txStore "github.com/MrJamesThe3rd/gestobra/internal/transaction/store"
)

type model struct {
	txService       *transaction.Service
	projectService  *project.Service
	matchingService *matching.Service
	importService   *importer.Service
	reportService   *report.Service

	currentView View

	projectsView view.ProjectsModel
	listView     view.ListModel
	importView   view.ImportModel
	reviewView   view.ReviewModel
	reportView   view.ReportModel
}

type View int

const (
	ViewMenu     View = 0
	ViewProjects View = 1
	ViewList     View = 2
	ViewImport   View = 3
	ViewReview   View = 4
	ViewReport   View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	movementTable := schema.NewResolver(schema.NewProber(db, nil), schema.MovementTables...)

	projectSvc := project.NewService(projectStore.New(db))
	txSvc := transaction.NewService(txStore.New(db))
	materialSvc := material.NewService(materialStore.New(db, movementTable))
	matchSvc := matching.NewService(matchingStore.New(db))
	impSvc := importer.NewService()
	reportSvc := report.NewService(report.Sources{
		Projects:     projectSvc,
		Transactions: txSvc,
		Materials:    materialSvc,
	}, render.Registry(), nil, cfg.Location())

	return model{
		txService:       txSvc,
		projectService:  projectSvc,
		matchingService: matchSvc,
		importService:   impSvc,
		reportService:   reportSvc,
		currentView:     ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewProjects
				m.projectsView = view.NewProjectsModel(m.projectService)

				return m, m.projectsView.Init()
			case "2":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.txService, m.projectService)

				return m, m.listView.Init()
			case "3":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.txService, m.importService, m.matchingService, m.projectService)

				return m, m.importView.Init()
			case "4":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.txService, m.matchingService)

				return m, m.reviewView.Init()
			case "5":
				m.currentView = ViewReport
				m.reportView = view.NewReportModel(m.reportService, m.projectService)

				return m, m.reportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewProjects:
		var newModel tea.Model
		newModel, cmd = m.projectsView.Update(msg)
		m.projectsView = newModel.(view.ProjectsModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.reportView.Update(msg)
		m.reportView = newModel.(view.ReportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"GestObra TUI\n\n" +
				"1. Projects\n" +
				"2. Transactions\n" +
				"3. Import Statement\n" +
				"4. Categorise Transactions\n" +
				"5. Generate Report\n\n" +
				"q. Quit",
		)
	case ViewProjects:
		return m.projectsView.View()
	case ViewList:
		return m.listView.View()
	case ViewImport:
		return m.importView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewReport:
		return m.reportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

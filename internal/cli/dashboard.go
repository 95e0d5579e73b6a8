package cli

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/swarm/internal/core"
	"github.com/valter-silva-au/swarm/pkg/models"
)

// Dashboard tab indices.
const (
	tabInbox = iota
	tabSynergy
	tabConflicts
	tabDuplicates
	tabOverview
	tabCount
)

var tabTitles = [tabCount]string{"Inbox", "Synergy", "Conflicts", "Duplicates", "Overview"}

// minScoreStep is the increment of the min-score control.
const minScoreStep = 5

type dashboardModel struct {
	activeTab int
	width     int
	height    int

	// Filter state. When nil the first load uses the defaults.
	criteria *core.Criteria
	loaded   bool

	// Data.
	found    int
	inbox    []models.Card
	filtered []models.Card
	stats    core.OverviewStats

	// Selection.
	cursor    int
	expanded  bool
	actionIdx int

	// State.
	loading   bool
	err       error
	status    string
	statusBad bool
}

// dataLoadedMsg carries the view model back to the dashboard.
type dataLoadedMsg struct {
	criteria core.Criteria
	filtered []models.Card
	inbox    []models.Card
	stats    core.OverviewStats
	err      error
}

// actionSubmittedMsg reports the outcome of a submitted decision.
type actionSubmittedMsg struct {
	rec models.ActionRecord
	err error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("238"))

	typeSynergy   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	typeConflict  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	typeDuplicate = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	statusOK  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusBad = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activeTab: tabInbox,
		loading:   true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadDashboard(m.criteria)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		c := msg.criteria
		m.criteria = &c
		m.loaded = true
		m.filtered = msg.filtered
		m.found = len(msg.filtered)
		m.inbox = msg.inbox
		m.stats = msg.stats
		m.err = nil
		m.clampCursor()
		return m, nil

	case actionSubmittedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Could not record action: %v", msg.err)
			m.statusBad = true
			return m, nil
		}
		m.status = fmt.Sprintf("Recorded %s on %s.", msg.rec.Action, msg.rec.MatchID)
		m.statusBad = false
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.activeTab = (m.activeTab + 1) % tabCount
		m.cursor, m.expanded = 0, false
		return m, nil
	case "shift+tab":
		m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		m.cursor, m.expanded = 0, false
		return m, nil
	case "r":
		m.loading = true
		return m, loadDashboard(m.criteria)
	}

	if m.loading || !m.loaded {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visibleCards())-1 {
			m.cursor++
		}
	case "enter":
		if m.activeTab == tabInbox && len(m.visibleCards()) > 0 {
			m.expanded = !m.expanded
		}
	case "a":
		m.actionIdx = (m.actionIdx + 1) % len(models.Actions)
	case "x":
		card, ok := m.selectedCard()
		if !ok || m.activeTab != tabInbox {
			return m, nil
		}
		return m, submitAction(core.SubmitCommand{
			MatchID: card.MatchID,
			Action:  string(models.Actions[m.actionIdx]),
		})
	case "c":
		c := *m.criteria
		c.CrossProductOnly = !c.CrossProductOnly
		m.loading = true
		return m, loadDashboard(&c)
	case "+", "=":
		c := *m.criteria
		c.MinScore = min(c.MinScore+minScoreStep, 100)
		m.loading = true
		return m, loadDashboard(&c)
	case "-":
		c := *m.criteria
		c.MinScore = max(c.MinScore-minScoreStep, 0)
		m.loading = true
		return m, loadDashboard(&c)
	}
	return m, nil
}

// visibleCards returns the card list of the active tab.
func (m dashboardModel) visibleCards() []models.Card {
	switch m.activeTab {
	case tabInbox:
		return m.inbox
	case tabSynergy:
		return core.ByType(m.filtered, models.CardSynergy)
	case tabConflicts:
		return core.ByType(m.filtered, models.CardConflict)
	case tabDuplicates:
		return core.ByType(m.filtered, models.CardDuplicate)
	default:
		return nil
	}
}

func (m dashboardModel) selectedCard() (models.Card, bool) {
	cards := m.visibleCards()
	if m.cursor < 0 || m.cursor >= len(cards) {
		return models.Card{}, false
	}
	return cards[m.cursor], true
}

func (m *dashboardModel) clampCursor() {
	n := len(m.visibleCards())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if n == 0 {
		m.expanded = false
	}
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" swarm ")
	help := helpStyle.Render("tab: switch | j/k: move | enter: details | a: choose action | x: submit | c: cross-only | +/-: min score | r: refresh | q: quit")

	if !m.loaded && m.err == nil {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}
	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	var body string
	switch m.activeTab {
	case tabInbox:
		body = m.renderInbox()
	case tabOverview:
		body = m.renderOverview()
	default:
		body = m.renderTypeTab()
	}

	width := max(m.width-4, 20)
	var b strings.Builder
	b.WriteString(title + "  " + m.renderTabs() + "\n")
	b.WriteString(helpStyle.Render(m.renderFilterSummary()) + "\n\n")
	b.WriteString(panelStyle.Width(width).Render(body))
	if m.status != "" {
		style := statusOK
		if m.statusBad {
			style = statusBad
		}
		b.WriteString("\n" + style.Render(m.status))
	}
	b.WriteString("\n" + help)
	return b.String()
}

func (m dashboardModel) renderTabs() string {
	parts := make([]string, tabCount)
	for i, t := range tabTitles {
		if i == m.activeTab {
			parts[i] = activeTabStyle.Render(t)
		} else {
			parts[i] = tabStyle.Render(t)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m dashboardModel) renderFilterSummary() string {
	if !m.loaded {
		return ""
	}
	c := m.criteria
	return fmt.Sprintf("types: %d | products: %d | capabilities: %d | cross-only: %s | min score: %d",
		len(c.Types), len(c.Products), len(c.Capabilities), yesNo(c.CrossProductOnly), c.MinScore)
}

func (m dashboardModel) renderInbox() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Cards (filters applied) (found: %d)", m.found)))
	b.WriteString("\n")

	if len(m.inbox) == 0 {
		b.WriteString("  No cards match the filters.")
		return b.String()
	}

	taskLine := dashboardTaskLine
	for i, c := range m.inbox {
		line := styleForType(c.Type).Render(fmt.Sprintf("[%s]", strings.ToUpper(string(c.Type)))) +
			" " + strings.TrimPrefix(cardHeader(c, taskLine), fmt.Sprintf("[%s] ", strings.ToUpper(string(c.Type))))
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
		if i == m.cursor && m.expanded {
			b.WriteString(m.renderCardDetail(c))
		}
	}
	return b.String()
}

func (m dashboardModel) renderCardDetail(c models.Card) string {
	var b strings.Builder
	side := func(label, id string) string {
		var s strings.Builder
		s.WriteString(fmt.Sprintf("%s: %s\n", label, dashboardTaskLine(id)))
		if ViewModel == nil {
			return s.String()
		}
		task, err := ViewModel.Task(id)
		if err != nil {
			s.WriteString("  (task not in table)\n")
			return s.String()
		}
		fields := []struct{ k, v string }{
			{"product", task.Product}, {"team", task.Team}, {"capability", task.Capability},
			{"surface", task.Surface}, {"entity", task.Entity}, {"contract", task.Contract},
			{"kpi_family", task.KPIFamily}, {"lever", task.Lever}, {"goal", task.Goal},
			{"timeline_start", task.TimelineStart}, {"timeline_end", task.TimelineEnd},
		}
		for _, f := range fields {
			s.WriteString(fmt.Sprintf("  %-15s %s\n", f.k+":", f.v))
		}
		return s.String()
	}

	colWidth := max((m.width-12)/2, 30)
	left := lipgloss.NewStyle().Width(colWidth).Render(side("A", c.AID))
	right := lipgloss.NewStyle().Width(colWidth).Render(side("B", c.BID))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("    Signals: %s\n", c.Signals))

	var actions []string
	for i, a := range models.Actions {
		label := a.Label()
		if i == m.actionIdx {
			label = cursorStyle.Render("(•) " + label)
		} else {
			label = "( ) " + label
		}
		actions = append(actions, label)
	}
	b.WriteString("    Action: " + strings.Join(actions, "  ") + "\n\n")
	return b.String()
}

func (m dashboardModel) renderTypeTab() string {
	var b strings.Builder
	cards := m.visibleCards()
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (after filters): %d", tabTitles[m.activeTab], len(cards))))
	b.WriteString("\n")
	if len(cards) == 0 {
		b.WriteString("  None.")
		return b.String()
	}
	withScore := m.activeTab != tabConflicts
	for i, c := range cards {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%-10s %s (%s/%s) ⟷ %s (%s/%s)", c.MatchID, c.AID, c.AProd, c.ACap, c.BID, c.BProd, c.BCap)
		if withScore {
			line += fmt.Sprintf("  score: %s", c.Score)
		}
		line += fmt.Sprintf("  signals: %s", c.Signals)
		b.WriteString(prefix + line + "\n")
	}
	return b.String()
}

func (m dashboardModel) renderOverview() string {
	var b strings.Builder
	s := m.stats
	b.WriteString(headerStyle.Render(fmt.Sprintf("Portfolio overview: cards: %d, tasks: %d", s.TotalCards, s.TotalTasks)))
	b.WriteString("\n")

	b.WriteString("Cards by product (A side):\n")
	b.WriteString(fmt.Sprintf("  %-16s", "a_prod"))
	for _, t := range s.Types {
		b.WriteString(fmt.Sprintf(" %10s", t))
	}
	b.WriteString("\n")
	for i, p := range s.Products {
		b.WriteString(fmt.Sprintf("  %-16s", p))
		for _, n := range s.Grid[i] {
			b.WriteString(fmt.Sprintf(" %10d", n))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\nCards by capability (top %d):\n", len(s.TopCapabilities)))
	for _, cc := range s.TopCapabilities {
		b.WriteString(fmt.Sprintf("  %-24s %d\n", cc.Capability, cc.Count))
	}
	return b.String()
}

func styleForType(t models.CardType) lipgloss.Style {
	switch t {
	case models.CardSynergy:
		return typeSynergy
	case models.CardConflict:
		return typeConflict
	case models.CardDuplicate:
		return typeDuplicate
	default:
		return lipgloss.NewStyle()
	}
}

func dashboardTaskLine(id string) string {
	if ViewModel == nil {
		return id
	}
	return ViewModel.TaskLine(id)
}

// loadDashboard builds the view model for the given criteria, or for the
// default criteria when c is nil.
func loadDashboard(c *core.Criteria) tea.Cmd {
	return func() tea.Msg {
		if ViewModel == nil {
			return dataLoadedMsg{err: errors.New("view model not initialized")}
		}
		var criteria core.Criteria
		if c != nil {
			criteria = *c
		} else {
			var err error
			if criteria, err = ViewModel.DefaultCriteria(); err != nil {
				return dataLoadedMsg{err: fmt.Errorf("loading data: %w", err)}
			}
		}

		filtered, err := ViewModel.Cards(criteria)
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("filtering cards: %w", err)}
		}
		inbox, err := ViewModel.Inbox(criteria)
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("ranking cards: %w", err)}
		}
		stats, err := ViewModel.Overview(criteria)
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("building overview: %w", err)}
		}
		return dataLoadedMsg{criteria: criteria, filtered: filtered, inbox: inbox, stats: stats}
	}
}

func submitAction(cmd core.SubmitCommand) tea.Cmd {
	return func() tea.Msg {
		if Actions == nil {
			return actionSubmittedMsg{err: errors.New("action service not initialized")}
		}
		rec, err := Actions.Submit(cmd)
		return actionSubmittedMsg{rec: rec, err: err}
	}
}

var dashboardFilters filterFlags

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard over cards and tasks",
	Long: `Launch an interactive terminal dashboard with Inbox, Synergy, Conflicts,
Duplicates and Overview tabs.

In the Inbox, expand a card with enter to see both tasks, pick an action
with a and record it with x.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ViewModel == nil {
			return fmt.Errorf("view model not initialized")
		}
		c, err := dashboardFilters.criteria(cmd)
		if err != nil {
			return err
		}
		m := newDashboardModel()
		m.criteria = &c
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	dashboardFilters.register(dashboardCmd)
	rootCmd.AddCommand(dashboardCmd)
}

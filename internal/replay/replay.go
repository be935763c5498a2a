// Package replay is an interactive viewer that steps through one analyzed
// hand action by action, with the table state and the analysis record for
// the current action alongside the log.
package replay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handlens/handlens/analyzer"
	"github.com/handlens/handlens/ev"
	"github.com/handlens/handlens/history"
	"github.com/handlens/handlens/poker"
)

// playerView is one seat's display state at a point in the timeline.
type playerView struct {
	id        string
	stack     float64
	committed float64
	folded    bool
	hero      bool
}

// step is one applied action together with the table state after it.
type step struct {
	action  history.Action
	marker  string // street banner shown before this action, empty if none
	line    string
	street  history.Street
	pot     float64
	players []playerView
	rec     *analyzer.ActionAnalysis
}

// Model is the Bubble Tea model for stepping through one hand.
type Model struct {
	hand    history.Hand
	steps   []step
	initial []playerView

	// cursor counts applied actions, 0 through len(steps)
	cursor int
	follow bool

	logViewport viewport.Model

	width       int
	height      int
	initialized bool
	quitting    bool
}

// New builds a replay model from a hand and its analysis records. Records
// attach to actions by action id.
func New(hand history.Hand, records []analyzer.ActionAnalysis) *Model {
	hand.EnsureActionIDs()

	byID := make(map[string]*analyzer.ActionAnalysis, len(records))
	for i := range records {
		byID[records[i].ActionID] = &records[i]
	}

	m := &Model{
		hand:        hand,
		logViewport: viewport.New(10, 5),
	}
	m.initial = snapshotPlayers(&hand, analyzer.NewPotState(&hand))
	m.buildTimeline(byID)
	return m
}

func (m *Model) buildTimeline(byID map[string]*analyzer.ActionAnalysis) {
	h := &m.hand
	ps := analyzer.NewPotState(h)
	street := history.Preflop

	for i := range h.Actions {
		a := h.Actions[i]
		if a.Street < street {
			break // malformed ordering, truncate the timeline here
		}

		var marker string
		if i == 0 {
			marker = streetBanner(h, history.Preflop)
		} else if a.Street > street {
			marker = streetBanner(h, a.Street)
		}
		street = a.Street
		ps.Observe(a)

		m.steps = append(m.steps, step{
			action:  a,
			marker:  marker,
			line:    actionLine(a),
			street:  a.Street,
			pot:     ps.Pot(),
			players: snapshotPlayers(h, ps),
			rec:     byID[a.ID],
		})
	}
}

func snapshotPlayers(h *history.Hand, ps *analyzer.PotState) []playerView {
	out := make([]playerView, 0, len(h.Players))
	for _, p := range h.Players {
		out = append(out, playerView{
			id:        p.ID,
			stack:     ps.Stack(p.ID),
			committed: ps.Committed(p.ID),
			folded:    !ps.Live(p.ID),
			hero:      p.ID == h.HeroID,
		})
	}
	return out
}

func streetBanner(h *history.Hand, st history.Street) string {
	name := strings.ToUpper(st.String())
	cards := boardCards(h.Board, st)
	if len(cards) == 0 {
		return fmt.Sprintf("*** %s ***", name)
	}
	plain := make([]string, len(cards))
	for i, c := range cards {
		plain[i] = c.String()
	}
	return fmt.Sprintf("*** %s *** [%s]", name, strings.Join(plain, " "))
}

func actionLine(a history.Action) string {
	var line string
	switch a.Kind {
	case history.Post:
		line = fmt.Sprintf("%s posts %.1fbb", a.PlayerID, a.AmountBB)
	case history.Fold:
		line = fmt.Sprintf("%s folds", a.PlayerID)
	case history.Check:
		line = fmt.Sprintf("%s checks", a.PlayerID)
	case history.Call:
		line = fmt.Sprintf("%s calls to %.1fbb", a.PlayerID, a.AmountBB)
	case history.Bet:
		line = fmt.Sprintf("%s bets %.1fbb", a.PlayerID, a.AmountBB)
	case history.Raise:
		line = fmt.Sprintf("%s raises to %.1fbb", a.PlayerID, a.AmountBB)
	default:
		line = fmt.Sprintf("%s %s", a.PlayerID, a.Kind)
	}
	if a.AllIn {
		line += " all-in"
	}
	return line
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "right", "l", "n", " ", "enter":
			if m.cursor < len(m.steps) {
				m.cursor++
				m.follow = true
			}
		case "left", "h", "p":
			if m.cursor > 0 {
				m.cursor--
				m.follow = true
			}
		case "home", "g":
			m.cursor = 0
			m.follow = true
		case "end", "G":
			m.cursor = len(m.steps)
			m.follow = true
		case "up", "k":
			m.logViewport.ScrollUp(1)
		case "down", "j":
			m.logViewport.ScrollDown(1)
		case "pgup", "b":
			m.logViewport.HalfPageUp()
		case "pgdown", "f":
			m.logViewport.HalfPageDown()
		}
	}

	return m, nil
}

// View renders the replay screen.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Analysis pane (bottom, full width)
	analysisContent := m.renderAnalysisPane()
	analysisHeight := lipgloss.Height(analysisContent)
	calculatedAnalysisWidth := m.width - 2
	calculatedAnalysisHeight := analysisHeight

	if calculatedAnalysisWidth < 1 {
		calculatedAnalysisWidth = 1
	}
	if calculatedAnalysisHeight < 1 {
		calculatedAnalysisHeight = 1
	}

	analysisStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(calculatedAnalysisWidth).
		Height(calculatedAnalysisHeight)
	analysisPane := analysisStyle.Render(analysisContent)

	// Table pane (right side of the log, same height as the log)
	tableContent := m.renderTablePane()
	tableWidth := lipgloss.Width(tableContent)

	calculatedTableWidth := 30
	if tableWidth > calculatedTableWidth {
		calculatedTableWidth = tableWidth
	}
	calculatedTableHeight := m.height - analysisHeight - 4

	if calculatedTableWidth < 1 {
		calculatedTableWidth = 1
	}
	if calculatedTableHeight < 1 {
		calculatedTableHeight = 1
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedTableWidth).
		Height(calculatedTableHeight)
	tablePane := tableStyle.Render(tableContent)

	// Log pane (left, fills the remaining width)
	calculatedLogWidth := m.width - calculatedTableWidth - 4
	calculatedLogHeight := m.height - analysisHeight - 4

	if calculatedLogWidth < 1 {
		calculatedLogWidth = 1
	}
	if calculatedLogHeight < 1 {
		calculatedLogHeight = 1
	}

	m.logViewport.Width = calculatedLogWidth
	m.logViewport.Height = calculatedLogHeight
	m.logViewport.SetContent(m.renderLogContent())

	// On first proper sizing, start at the top
	if !m.initialized && calculatedLogWidth > 1 && calculatedLogHeight > 1 {
		m.logViewport.GotoTop()
		m.initialized = true
	}
	if m.follow {
		m.logViewport.GotoBottom()
		m.follow = false
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(calculatedLogWidth).
		Height(calculatedLogHeight)
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, tablePane)

	return lipgloss.JoinVertical(lipgloss.Top, topRow, analysisPane)
}

// renderLogContent renders the action log up to the cursor.
func (m *Model) renderLogContent() string {
	header := HeaderStyle.Render(fmt.Sprintf(" Hand %s ", m.hand.ID))
	if m.cursor == 0 {
		return header + "\n" + InfoStyle.Render("Press right to step through the hand")
	}

	lines := []string{header}
	for i := 0; i < m.cursor; i++ {
		stp := m.steps[i]
		if stp.marker != "" {
			lines = append(lines, StreetStyle.Render(stp.marker))
		}
		line := stp.line
		if stp.rec != nil {
			line += "  " + verdictStyle(stp.rec.Verdict).Render("["+stp.rec.Verdict.String()+"]")
		}
		if i == m.cursor-1 {
			line = CurrentStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderTablePane renders the board, pot and seats for the current step.
func (m *Model) renderTablePane() string {
	street, pot, players := m.frame()

	var content strings.Builder

	board := boardCards(m.hand.Board, street)
	if len(board) == 0 {
		content.WriteString(InfoStyle.Render("Board: --"))
	} else {
		content.WriteString("Board: " + formatCards(board))
	}
	content.WriteString("\n")
	content.WriteString(PotStyle.Render(fmt.Sprintf("Pot: %.1fbb", pot)))
	content.WriteString("  ")
	content.WriteString(InfoStyle.Render(street.String()))
	content.WriteString("\n\n")

	for _, p := range players {
		name := p.id
		if p.hero {
			name = HeroStyle.Render(name + " (hero)")
		}
		line := fmt.Sprintf("%s  %.1fbb", name, p.stack)
		if p.committed > 0 {
			line += fmt.Sprintf("  in %.1f", p.committed)
		}
		if shown, ok := m.hand.Shown[p.id]; ok && shown != 0 {
			line += "  " + formatCards(shown.Cards())
		}
		if p.folded {
			line = FoldedStyle.Render(fmt.Sprintf("%s  folded", p.id))
		}
		content.WriteString(line)
		content.WriteString("\n")
	}

	return content.String()
}

// renderAnalysisPane renders the record for the current action, if any.
func (m *Model) renderAnalysisPane() string {
	var content strings.Builder

	if rec := m.currentRecord(); rec != nil {
		content.WriteString(verdictStyle(rec.Verdict).Render(
			fmt.Sprintf("%s: %s", strings.ToUpper(rec.HeroAction), rec.Verdict)))
		content.WriteString(fmt.Sprintf("  delta %.2fbb  total EV %+.2fbb  confidence %.2f\n",
			rec.Delta, rec.TotalEV, rec.Confidence))
		content.WriteString(fmt.Sprintf("Pot %.1fbb  to call %.1fbb  equity %.2f  vs %s\n",
			rec.PotBefore, rec.ToCall, rec.HeroEquity, rec.VillainLabel))
		content.WriteString(fmt.Sprintf("Villain response: fold %.2f / call %.2f / raise %.2f\n",
			rec.Frequencies.Fold, rec.Frequencies.Call, rec.Frequencies.Raise))
		content.WriteString(fmt.Sprintf("Branch EV: fold %+.2f / call %+.2f / raise %+.2f  best line: %s\n",
			rec.Branches.Fold, rec.Branches.Call, rec.Branches.Raise, rec.BestLabel))
	} else {
		content.WriteString(InfoStyle.Render("No analysis for this step"))
		content.WriteString("\n")
	}

	content.WriteString(InfoStyle.Render(fmt.Sprintf(
		"Step %d/%d • ←/→ step • g/G start/end • ↑↓ scroll • q quit",
		m.cursor, len(m.steps))))
	return content.String()
}

// frame returns the display state at the cursor.
func (m *Model) frame() (history.Street, float64, []playerView) {
	if m.cursor == 0 {
		return history.Preflop, 0, m.initial
	}
	stp := m.steps[m.cursor-1]
	return stp.street, stp.pot, stp.players
}

func (m *Model) currentRecord() *analyzer.ActionAnalysis {
	if m.cursor == 0 {
		return nil
	}
	return m.steps[m.cursor-1].rec
}

func boardCards(b history.Board, st history.Street) []poker.Card {
	var cards []poker.Card
	if st >= history.Flop {
		cards = append(cards, b.Flop...)
	}
	if st >= history.Turn && b.Turn != 0 {
		cards = append(cards, b.Turn)
	}
	if st >= history.River && b.River != 0 {
		cards = append(cards, b.River)
	}
	return cards
}

// formatCards formats cards with suit colors.
func formatCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return ""
	}

	var formatted []string
	for _, c := range cards {
		if suit := c.Suit(); suit == poker.Hearts || suit == poker.Diamonds {
			formatted = append(formatted, RedCardStyle.Render(c.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(c.String()))
		}
	}

	return "[" + strings.Join(formatted, " ") + "]"
}

func verdictStyle(v ev.Verdict) lipgloss.Style {
	switch v {
	case ev.VerdictPositive:
		return PositiveStyle
	case ev.VerdictNegative:
		return NegativeStyle
	default:
		return NeutralStyle
	}
}

// Run opens the replay in an alternate screen and blocks until quit.
func Run(hand history.Hand, records []analyzer.ActionAnalysis) error {
	model := New(hand, records)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/liarsbar/internal/client"
	"github.com/lox/liarsbar/internal/deck"
)

// TUIModel represents the Bubble Tea model for a seat at the liar's bar
type TUIModel struct {
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog      []string
	actionResult chan ActionResult
	quitSignal   chan bool
	quitting     bool
	focusedPane  int // 0 = log, 1 = input

	// Latest view of the table, replaced wholesale on every update
	table client.TableSnapshot

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// ActionResult represents the result of a user action
type ActionResult struct {
	Action   string
	Args     []string
	Continue bool
	Error    error
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// TableUpdateMsg carries log lines and the table view they produced
type TableUpdateMsg struct {
	Lines    []string
	Snapshot client.TableSnapshot
}

// LogMsg appends a single styled line to the log
type LogMsg struct {
	Line string
}

// NewTUIModel creates a new TUI model
func NewTUIModel(logger *log.Logger) *TUIModel {
	return NewTUIModelWithOptions(logger, false)
}

// NewTUIModelWithOptions creates a new TUI model with test mode option
func NewTUIModelWithOptions(logger *log.Logger, testMode bool) *TUIModel {
	// Properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "name <name>"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		actionInput:  ti,
		gameLog:      []string{},
		actionResult: make(chan ActionResult, 1),
		quitSignal:   make(chan bool, 1),
		focusedPane:  1,
		testMode:     testMode,
		capturedLog:  []string{},
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForQuit())
}

func (m *TUIModel) listenForQuit() tea.Cmd {
	return func() tea.Msg {
		<-m.quitSignal
		return QuitMsg{}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case TableUpdateMsg:
		m.SetTable(msg.Snapshot)
		for _, line := range msg.Lines {
			m.AddLogEntry(line)
		}
		return m, nil

	case LogMsg:
		m.AddLogEntry(msg.Line)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.submit(ActionResult{Action: "quit", Continue: false})
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				m.processAction(strings.TrimSpace(m.actionInput.Value()))
				m.actionInput.SetValue("")
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight-2, 1))
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right of the log, same height)
	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	// Log pane (top left)
	m.logViewport.SetContent(m.renderLogPane())
	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight

	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.logViewport.Width).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane shows the claimed rank and every seat
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder
	t := m.table

	if !t.Started {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Waiting: %d/4 connected", t.Connected)))
	} else {
		content.WriteString(WarningStyle.Render(fmt.Sprintf("Claimed rank: %s", t.ClaimedRank)))
		if t.RevealActive {
			content.WriteString("\n")
			content.WriteString(ErrorStyle.Render("Revealing: "))
			content.WriteString(m.formatCards(t.LastPlayedCards))
		}
	}
	content.WriteString("\n\n")

	if len(t.Seats) == 0 {
		return content.String()
	}

	content.WriteString(InfoStyle.Render("Seats:"))
	content.WriteString("\n")
	for _, seat := range t.Seats {
		content.WriteString(m.renderSeat(seat))
		content.WriteString("\n")
	}

	if len(t.LastPlayedCards) > 0 {
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render(fmt.Sprintf("Last play: %d by %s",
			len(t.LastPlayedCards), t.NameOf(t.LastPlayerID))))
	}

	return content.String()
}

func (m *TUIModel) renderSeat(seat client.Seat) string {
	name := seat.Name
	if name == "" {
		name = seat.ID
	}
	if seat.ID == m.table.PlayerID {
		name += " (you)"
	}

	marker := "  "
	if seat.ID == m.table.CurrentTurn {
		marker = "▶ "
	}

	line := fmt.Sprintf("%s%d. %s  %d cards  %d strikes", marker, seat.Seat, name, seat.Remaining, seat.Strikes)
	switch {
	case seat.Eliminated:
		return EliminatedStyle.Render(line + " OUT")
	case seat.ID == m.table.CurrentTurn:
		return CurrentTurnStyle.Render(line)
	case !m.table.Started && seat.Ready:
		return PlayerInfoStyle.Render(line + " ready")
	}
	return PlayerInfoStyle.Render(line)
}

// renderActionPane renders the hand and the input
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder
	t := m.table

	if len(t.Hand) > 0 {
		content.WriteString(HandInfoStyle.Render("Hand: "))
		content.WriteString(m.formatHand(t.Hand))
		content.WriteString("\n")
	}

	winner, won := t.Winner()
	switch {
	case won && winner == t.PlayerID:
		content.WriteString(SuccessStyle.Render("You are the last one standing. You win!"))
		m.actionInput.Placeholder = "quit"
	case won:
		content.WriteString(ErrorStyle.Render(fmt.Sprintf("%s wins. You lose.", t.NameOf(winner))))
		m.actionInput.Placeholder = "quit"
	case t.PlayerID == "":
		content.WriteString(HandInfoStyle.Render("Connecting..."))
		m.actionInput.Placeholder = "quit"
	case !t.Started:
		content.WriteString(HandInfoStyle.Render("Enter a name to get ready"))
		m.actionInput.Placeholder = "name <name>"
	case t.MyTurn():
		content.WriteString(ActionsStyle.Render(fmt.Sprintf("Your turn. Claim %s: ", t.ClaimedRank)))
		content.WriteString(SuccessStyle.Render("[play n...]"))
		if t.LastPlayerID != "" && t.LastPlayerID != t.PlayerID {
			content.WriteString(" ")
			content.WriteString(ErrorStyle.Render("[reveal]"))
		}
		m.actionInput.Placeholder = "play 1 3, or reveal"
	default:
		content.WriteString(HandInfoStyle.Render(fmt.Sprintf("Waiting for %s...", t.NameOf(t.CurrentTurn))))
		m.actionInput.Placeholder = "help"
	}
	content.WriteString("\n")

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(HelpStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(HelpStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}

	return content.String()
}

// formatHand numbers cards from 1 to match the play command
func (m *TUIModel) formatHand(cards []deck.Card) string {
	formatted := make([]string, 0, len(cards))
	for i, card := range cards {
		formatted = append(formatted, fmt.Sprintf("%d:%s", i+1, m.formatCard(card)))
	}
	return strings.Join(formatted, " ")
}

// formatCards formats cards with colors
func (m *TUIModel) formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}

	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		formatted = append(formatted, m.formatCard(card))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func (m *TUIModel) formatCard(card deck.Card) string {
	if card.IsRed() {
		return RedCardStyle.Render(card.String())
	}
	return BlackCardStyle.Render(card.String())
}

// SetTable replaces the rendered table view
func (m *TUIModel) SetTable(snapshot client.TableSnapshot) {
	m.table = snapshot
}

// Table returns the rendered table view
func (m *TUIModel) Table() client.TableSnapshot {
	return m.table
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// processAction splits input into a lowercased verb and its arguments.
// Arguments keep their case so names survive.
func (m *TUIModel) processAction(input string) {
	parts := strings.Fields(input)

	result := ActionResult{Args: []string{}, Continue: true}
	if len(parts) > 0 {
		result.Action = strings.ToLower(parts[0])
		result.Args = parts[1:]
	}
	m.submit(result)
}

func (m *TUIModel) submit(result ActionResult) {
	select {
	case m.actionResult <- result:
	default:
		m.logger.Warn("Dropping input, previous action still pending", "action", result.Action)
	}
}

// WaitForAction waits for user input
func (m *TUIModel) WaitForAction() (string, []string, bool, error) {
	result := <-m.actionResult
	return result.Action, result.Args, result.Continue, result.Error
}

// SendQuitSignal signals the TUI to quit gracefully
func (m *TUIModel) SendQuitSignal() {
	select {
	case m.quitSignal <- true:
	default:
		// quit already signalled
	}
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// InjectAction programmatically injects an action (test mode only)
func (m *TUIModel) InjectAction(action string, args []string) error {
	if !m.testMode {
		return fmt.Errorf("action injection only available in test mode")
	}

	select {
	case m.actionResult <- ActionResult{Action: action, Args: args, Continue: true}:
		return nil
	default:
		return fmt.Errorf("action channel full")
	}
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}

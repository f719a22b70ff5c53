package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/narrative-engine/internal/logger"
	"github.com/jwebster45206/narrative-engine/pkg/engine"
	"github.com/jwebster45206/narrative-engine/pkg/prompts"
	"github.com/jwebster45206/narrative-engine/pkg/state"
)

const (
	EngineName      = "Engine"
	PlaceHolderText = "Describe what you do, or /help for commands..."
)

type entryKind int

const (
	entryPlayer entryKind = iota
	entryEngine
	entryNarrator
	entryInfo
	entryError
)

type entry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx          context.Context
	engine       *engine.Engine
	storyID      string
	sessionID    string
	log          *slog.Logger
	lastTurn     *engine.Turn
	transcript   []entry
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Story selection state
	showStoryModal bool
	stories        []string
	selectedStory  int

	// Quit confirmation state
	showQuitModal bool
}

type turnMsg struct {
	turn *engine.Turn
	err  error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	engineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

// NewConsoleUI creates the console model. An empty sessionID starts a new session.
func NewConsoleUI(ctx context.Context, eng *engine.Engine, log *slog.Logger, stories []string, sessionID string) ConsoleUI {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		ctx:            ctx,
		engine:         eng,
		sessionID:      sessionID,
		log:            log,
		textarea:       ta,
		chatViewport:   chatVp,
		metaViewport:   metaVp,
		showStoryModal: true,
		stories:        stories,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6
	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showStoryModal {
		return m.updateStoryModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.loading = true
			m.transcript = append(m.transcript, entry{entryPlayer, input})
			m.writeChatContent()
			return m, m.processTurn(input)
		}

	case turnMsg:
		m.loading = false
		if msg.err != nil {
			m.transcript = append(m.transcript, entry{entryError, "Error: " + msg.err.Error()})
		} else {
			m.lastTurn = msg.turn
			m.transcript = append(m.transcript, entry{entryEngine, describeTurn(msg.turn)})
		}
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) processTurn(action string) tea.Cmd {
	return func() tea.Msg {
		turn, err := m.engine.ProcessTurn(m.ctx, engine.TurnRequest{
			StoryID:   m.storyID,
			SessionID: m.sessionID,
			UserID:    m.sessionID,
			Action:    action,
		})
		return turnMsg{turn, err}
	}
}

// describeTurn summarizes what the engine did with an action.
func describeTurn(t *engine.Turn) string {
	var b strings.Builder
	if len(t.Context) == 0 {
		b.WriteString("No story context matched.\n")
	} else {
		labels := make([]string, 0, len(t.Context))
		for _, c := range t.Context {
			label := c.Metadata.Label()
			if c.Expanded {
				label += "*"
			}
			labels = append(labels, label)
		}
		fmt.Fprintf(&b, "Context: %s\n", strings.Join(labels, ", "))
	}

	for _, beat := range t.Beats.TriggeredBeats {
		fmt.Fprintf(&b, "Beat triggered: %s (%s)\n", beat.Name, beat.Type)
	}
	for _, hint := range t.Beats.NarrativeHints {
		fmt.Fprintf(&b, "Hint: %s\n", hint)
	}
	for _, ev := range t.PendingEvents {
		b.WriteString(prompts.StoryEventPrefix + ev + "\n")
	}
	for _, u := range t.Beats.UrgentActions {
		b.WriteString(urgentStyle.Render(u) + "\n")
	}
	if t.Intervention != "" {
		fmt.Fprintf(&b, "Pacing: %s\n", prompts.InterventionPrompt(t.Intervention))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("NARRATIVE ENGINE") + "\n\n")
	content.WriteString("Type player actions below to see what context the narrator would receive.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, e := range m.transcript {
		switch e.kind {
		case entryPlayer:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, chatWidth-6))
		case entryEngine:
			content.WriteString(engineStyle.Render(EngineName+":") + "\n" + wordwrap.String(e.text, chatWidth))
		case entryNarrator:
			content.WriteString(narratorStyle.Render("Narrator: ") + wordwrap.String(e.text, chatWidth-10))
		case entryInfo:
			content.WriteString(wordwrap.String(e.text, chatWidth))
		case entryError:
			content.WriteString(errorStyle.Render(wordwrap.String(e.text, chatWidth)))
		}
		content.WriteString("\n\n")
	}
	if m.loading {
		content.WriteString(promptStyle.Render("Processing...") + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("STORY STATE") + "\n\n")

	content.WriteString("Story:\n" + m.storyID + "\n\n")
	sid := m.sessionID
	if len(sid) > 8 {
		sid = sid[:8] + "..."
	}
	content.WriteString("Session:\n" + sid + "\n\n")

	st := m.engine.GetOrCreateStoryState(m.storyID, m.sessionID)
	content.WriteString("Location:\n" + orNone(st.CurrentLocation) + "\n\n")
	content.WriteString("Completed beats:\n" + listOrNone(st.CompletedBeats) + "\n")
	content.WriteString("Active beats:\n" + listOrNone(st.ActiveBeats) + "\n")
	content.WriteString("Characters:\n" + listOrNone(st.DiscoveredCharacters) + "\n")
	content.WriteString("Known locations:\n" + listOrNone(st.KnownLocations) + "\n")

	flags := make([]string, 0, len(st.StoryFlags))
	for k, v := range st.StoryFlags {
		flags = append(flags, fmt.Sprintf("%s = %t", k, v))
	}
	sort.Strings(flags)
	content.WriteString("Flags:\n" + listOrNone(flags) + "\n")

	ps, intervention := m.engine.Pacing(m.storyID, m.sessionID)
	content.WriteString("Pacing:\n")
	fmt.Fprintf(&content, "• tension: %s\n• momentum: %s\n• scenes: %d\n", ps.Tension, ps.Momentum, ps.SceneCounter)
	if !ps.PlayerStatus.Alive {
		content.WriteString(errorStyle.Render("• DEAD: "+ps.PlayerStatus.LastDeathReason) + "\n")
	}
	if intervention != "" {
		content.WriteString("• needs: " + string(intervention) + "\n")
	}

	content.WriteString("\nCommands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None\n"
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("• " + item + "\n")
	}
	return b.String()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "/help":
		m.info(`Commands:
• /help - Show this help
• /beats - List beats available right now
• /state - Dump the story state as JSON
• /copy - Copy the narrator context for the last turn
• /narrate <text> - Record narrator text for pacing
• /goto <location> - Move the player to a location
• /choose <beat> <choice> - Record a decision at a beat
• /resurrect - Revive a dead player
• /restart - Reset pacing for a new attempt
• Ctrl+C - Quit

Anything else is sent as a player action.`)

	case "/beats":
		available := m.engine.GetAvailableBeats(m.storyID, m.sessionID)
		if len(available) == 0 {
			m.info("No beats are available.")
			break
		}
		var b strings.Builder
		b.WriteString("Available beats:\n")
		for _, beat := range available {
			fmt.Fprintf(&b, "• %s (%s)\n", beat.ID, beat.Type)
		}
		m.info(strings.TrimRight(b.String(), "\n"))

	case "/state":
		st := m.engine.GetOrCreateStoryState(m.storyID, m.sessionID)
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			m.fail(fmt.Errorf("failed to marshal story state: %w", err))
			break
		}
		m.info(string(data))

	case "/copy":
		if m.lastTurn == nil {
			m.info("Nothing to copy yet. Send an action first.")
			break
		}
		text, err := prompts.BuildContext(m.lastTurn)
		if err != nil {
			m.fail(err)
			break
		}
		if err := clipboard.WriteAll(text); err != nil {
			m.fail(fmt.Errorf("failed to copy to clipboard: %w", err))
			break
		}
		m.info("Narrator context copied to clipboard.")

	case "/narrate":
		if arg == "" {
			m.info("Usage: /narrate <text>")
			break
		}
		action := ""
		if m.lastTurn != nil {
			action = m.lastTurn.Request.Action
		}
		m.engine.RecordNarrative(m.storyID, m.sessionID, arg, action)
		m.transcript = append(m.transcript, entry{entryNarrator, arg})

	case "/goto":
		if arg == "" {
			m.info("Usage: /goto <location>")
			break
		}
		st := m.engine.UpdateStoryState(m.storyID, m.sessionID, state.WithLocation(arg))
		m.info("Moved to " + st.CurrentLocation + ".")

	case "/choose":
		beatID, choice, ok := strings.Cut(arg, " ")
		if !ok || strings.TrimSpace(choice) == "" {
			m.info("Usage: /choose <beat> <choice>")
			break
		}
		st := m.engine.RecordPlayerChoice(m.storyID, m.sessionID, beatID, strings.TrimSpace(choice), "")
		m.info(fmt.Sprintf("Choice recorded. %d major decisions so far.", st.Metadata.MajorDecisions))

	case "/resurrect":
		if m.engine.Resurrect(m.storyID, m.sessionID) {
			m.info("The player has been resurrected.")
		} else {
			m.info("The player is not dead.")
		}

	case "/restart":
		m.engine.Restart(m.storyID, m.sessionID)
		m.info("Pacing reset for a new attempt.")

	default:
		m.info("Unknown command: " + cmd)
	}

	m.writeChatContent()
	m.metaViewport.SetContent(m.writeMetadata())
	return m, nil
}

func (m *ConsoleUI) info(text string) {
	m.transcript = append(m.transcript, entry{entryInfo, text})
}

func (m *ConsoleUI) fail(err error) {
	m.transcript = append(m.transcript, entry{entryError, "Error: " + err.Error()})
}

func (m ConsoleUI) updateStoryModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedStory > 0 {
				m.selectedStory--
			}
		case tea.KeyDown:
			if m.selectedStory < len(m.stories)-1 {
				m.selectedStory++
			}
		case tea.KeyEnter:
			m.storyID = m.stories[m.selectedStory]
			m.showStoryModal = false
			m.log = logger.WithSession(m.log, m.storyID, m.sessionID)
			restored, err := m.engine.Restore(m.ctx, m.storyID, m.sessionID)
			if err != nil {
				logger.WithError(m.log, err).Warn("Failed to restore session")
			}
			m.log.Info("Story selected", "restored", restored)
			if m.width > 0 && m.height > 0 {
				m.resize()
				m.ready = true
			}
			if title := m.engine.Corpus(m.storyID).Title; title != "" {
				m.info("Starting " + title + ".")
			}
			if restored {
				m.info("Resumed saved session " + m.sessionID + ".")
			}
			m.writeChatContent()
			m.metaViewport.SetContent(m.writeMetadata())
			m.textarea.Focus()
			return m, textarea.Blink
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to end this session?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderStoryModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Select a Story"))
	content.WriteString("\n\n")

	for i, story := range m.stories {
		if i == m.selectedStory {
			content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", story)))
		} else {
			content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", story)))
		}
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showStoryModal {
		return m.renderStoryModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/parley-engine/parley/internal/config"
	"github.com/parley-engine/parley/internal/engine"
	"github.com/parley-engine/parley/internal/services"
	"github.com/parley-engine/parley/pkg/scenario"
	"github.com/parley-engine/parley/pkg/session"
)

const placeholderText = "Speak, or use /help for commands..."

const helpText = `
Commands:
• /say <text> - Speak to the NPC
• /give <item> - Offer an item
• /trade <your item> for <their item> - Propose a trade
• /request <item> - Ask for an item
• /accept, /decline - Answer a counter-proposal
• /quit - End the negotiation
• Ctrl+Y - Copy session ID
• Ctrl+C - Quit

Plain text works too; your intent is classified automatically.
`

// transcript entry kinds, used to reformat on resize
type entryKind int

const (
	entryUser entryKind = iota
	entryNPC
	entryNotice
	entryError
)

type entry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	cfg       *config.Config
	log       *slog.Logger
	client    *services.Client
	store     services.SessionStore
	scenarios []*scenario.Scenario

	eng  *engine.Engine
	sess *session.Session

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	entries      []entry
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	ended        bool
	statusLine   string

	// Scenario selection state
	showScenarioModal bool
	selectedScenario  int

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type sessionStartedMsg struct {
	eng  *engine.Engine
	sess *session.Session
	err  error
}

type turnDoneMsg struct {
	result *engine.TurnResult
	err    error
}

type progressTickMsg struct{}

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

	npcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

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

func NewConsoleUI(cfg *config.Config, log *slog.Logger, client *services.Client, store services.SessionStore, scenarios []*scenario.Scenario) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = placeholderText
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
		cfg:               cfg,
		log:               log,
		client:            client,
		store:             store,
		scenarios:         scenarios,
		textarea:          ta,
		chatViewport:      chatVp,
		metaViewport:      metaVp,
		showScenarioModal: true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showScenarioModal {
		return m.updateScenarioModal(msg)
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
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanels()
		m.ready = true
		m.writeChatContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil

		case tea.KeyCtrlY:
			if m.sess != nil {
				if err := clipboard.WriteAll(m.sess.ID.String()); err != nil {
					m.statusLine = "Clipboard unavailable"
				} else {
					m.statusLine = "Session ID copied"
				}
				m.writeMetadata()
			}
			return m, nil

		case tea.KeyEnter:
			if m.loading || m.ended {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.appendEntry(entryUser, input)
			m.writeChatContent()
			return m, tea.Batch(m.runTurn(input), progressTick())
		}

	case turnDoneMsg:
		m.loading = false
		m = m.applyTurn(msg)
		m.writeChatContent()
		m.writeMetadata()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// applyTurn folds a finished turn into the transcript.
func (m ConsoleUI) applyTurn(msg turnDoneMsg) ConsoleUI {
	if msg.err != nil {
		m.err = msg.err
		m.appendEntry(entryError, "Error: "+msg.err.Error())
		return m
	}

	result := msg.result
	switch {
	case result.Quit:
		m.appendEntry(entryNotice, m.eng.Epilogue(m.sess, false))
		m.ended = true
		return m

	case result.Help:
		m.appendEntry(entryNotice, strings.TrimSpace(helpText))
		return m

	case result.PlayerErr != "":
		m.appendEntry(entryError, result.PlayerErr)
		return m
	}

	if result.NPCReply != "" {
		m.appendEntry(entryNPC, result.NPCReply)
	}
	if result.NPCResult != nil {
		for _, change := range result.NPCResult.StateChanges {
			m.appendEntry(entryNotice, change)
		}
	}
	if result.DispositionChanged {
		m.appendEntry(entryNotice, fmt.Sprintf("%s now seems %s.", m.sess.NPC.Name, result.NewDisposition))
	}
	if result.Victory {
		m.appendEntry(entryNotice, m.eng.Epilogue(m.sess, true))
		m.ended = true
	}
	return m
}

func (m *ConsoleUI) appendEntry(kind entryKind, text string) {
	m.entries = append(m.entries, entry{kind: kind, text: text})
}

func (m *ConsoleUI) resizePanels() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// writeChatContent rebuilds the transcript for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 20 {
		chatWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("PARLEY") + "\n\n")
	if m.sess != nil {
		content.WriteString(wordwrap.String(m.eng.Introduction(), chatWidth) + "\n\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	npcName := "NPC"
	if m.sess != nil {
		npcName = m.sess.NPC.Name
	}

	for _, e := range m.entries {
		switch e.kind {
		case entryUser:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, chatWidth-5) + "\n\n")
		case entryNPC:
			content.WriteString(speakerStyle.Render(npcName+": ") + npcStyle.Render(wordwrap.String(e.text, chatWidth-len(npcName)-2)) + "\n\n")
		case entryNotice:
			content.WriteString(noticeStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		case entryError:
			content.WriteString(errorStyle.Render(wordwrap.String(e.text, chatWidth)) + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	if m.sess == nil {
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("NEGOTIATION") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(m.sess.ID.String()[:8] + "...\n\n")

	content.WriteString("Scenario:\n")
	content.WriteString(m.sess.ScenarioName + "\n\n")

	content.WriteString(fmt.Sprintf("%s:\n%s\n\n", m.sess.Player.Name, m.sess.Player.Inventory.DisplayNames()))
	content.WriteString(fmt.Sprintf("%s (%s):\n%s\n\n", m.sess.NPC.Name, m.sess.NPC.Disposition, m.sess.NPC.Inventory.DisplayNames()))

	npc := m.sess.NPC
	if npc.ActiveOffer != nil {
		content.WriteString(fmt.Sprintf("Standing offer:\n%s from %s\n\n", npc.ActiveOffer.Item.Name, npc.ActiveOffer.OfferedBy))
	}
	if npc.ActiveTrade != nil {
		content.WriteString(fmt.Sprintf("Standing trade:\n%s for %s\n(by %s)\n\n",
			npc.ActiveTrade.PlayerItem.Name, npc.ActiveTrade.NPCItem.Name, npc.ActiveTrade.ProposedBy))
	}
	if npc.ActiveRequest != nil {
		content.WriteString(fmt.Sprintf("Standing request:\n%s by %s\n\n", npc.ActiveRequest.ItemName, npc.ActiveRequest.RequestedBy))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• Ctrl+Y: Copy ID\n")
	content.WriteString("• Ctrl+C: Quit\n")

	if m.statusLine != "" {
		content.WriteString("\n" + noticeStyle.Render(m.statusLine) + "\n")
	}

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) runTurn(input string) tea.Cmd {
	eng, sess := m.eng, m.sess
	return func() tea.Msg {
		result, err := eng.PlayerTurn(context.Background(), sess, input)
		return turnDoneMsg{result: result, err: err}
	}
}

func (m ConsoleUI) startSession(scn *scenario.Scenario) tea.Cmd {
	cfg, log, client, store := m.cfg, m.log, m.client, m.store
	return func() tea.Msg {
		eng := engine.NewEngine(client, store, scn, cfg, log)
		sess, err := eng.StartSession(context.Background())
		return sessionStartedMsg{eng: eng, sess: sess, err: err}
	}
}

func (m ConsoleUI) updateScenarioModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case sessionStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.eng = msg.eng
		m.sess = msg.sess
		m.showScenarioModal = false
		if m.width > 0 && m.height > 0 {
			m.resizePanels()
			m.ready = true
		}
		m.writeChatContent()
		m.writeMetadata()
		m.textarea.Focus()
		return m, textarea.Blink

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedScenario > 0 {
				m.selectedScenario--
			}
		case tea.KeyDown:
			if m.selectedScenario < len(m.scenarios)-1 {
				m.selectedScenario++
			}
		case tea.KeyEnter:
			if m.loading || len(m.scenarios) == 0 {
				return m, nil
			}
			m.loading = true
			return m, m.startSession(m.scenarios[m.selectedScenario])
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
				if !m.showScenarioModal {
					m.textarea.Focus()
					return m, textarea.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderScenarioModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(m.err.Error()))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Starting Negotiation..."))
		content.WriteString("\n\n")
		content.WriteString(noticeStyle.Render("Setting the scene..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Scenario"))
		content.WriteString("\n\n")
		for i, scn := range m.scenarios {
			label := fmt.Sprintf("%s (%s)", scn.Name, scn.Description)
			if i == m.selectedScenario {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Walk Away?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the negotiation?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showScenarioModal {
		return m.renderScenarioModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar draws the animated bar shown while a turn is running.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

// Package tui implements the interactive chat view for a document.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docsage/docsage-cli/internal/core/domain"
	"github.com/docsage/docsage-cli/internal/core/ports/driving"
)

var (
	chatBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
	documentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// exchange is one question/answer pair in the transcript.
type exchange struct {
	question string
	answer   *domain.Answer
}

// answerMsg carries a completed answer back into the update loop.
type answerMsg struct {
	question string
	answer   *domain.Answer
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx      context.Context
	service  driving.QueryService
	document string

	input    textinput.Model
	viewport viewport.Model

	transcript []exchange
	status     string
	waiting    bool
	ready      bool
}

// New creates a chat model over one document.
func New(ctx context.Context, service driving.QueryService, document string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		ctx:      ctx,
		service:  service,
		document: document,
		input:    ti,
		viewport: vp,
		status:   "Ready. The first question builds the index and may take a moment.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header + document line, status, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case answerMsg:
		m.waiting = false
		m.transcript = append(m.transcript, exchange{question: msg.question, answer: msg.answer})
		if msg.answer.Failed() {
			m.status = "Something went wrong. Ask again or press Ctrl+C to quit."
		} else {
			m.status = fmt.Sprintf("Answered in %.1fs. Ask a follow-up.", msg.answer.Metrics.TotalLatency)
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.input.SetValue("")
				m.waiting = true
				m.status = "Thinking..."
				return m, m.ask(q)
			}
		case "up":
			m.viewport.ScrollUp(1)
			return m, nil
		case "down":
			m.viewport.ScrollDown(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask runs the query off the update loop.
func (m Model) ask(question string) tea.Cmd {
	ctx, svc, doc := m.ctx, m.service, m.document
	return func() tea.Msg {
		return answerMsg{question: question, answer: svc.Ask(ctx, doc, question)}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docsage chat")
	document := documentStyle.Render(m.document)
	transcript := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + document + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.transcript) == 0 {
		return "No questions yet."
	}

	var b strings.Builder
	for i, ex := range m.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + ex.question))
		b.WriteString("\n\n")
		if ex.answer.Failed() {
			b.WriteString(failureStyle.Render(ex.answer.Text))
			continue
		}
		b.WriteString(ex.answer.Text)
		if len(ex.answer.Sources) > 0 {
			b.WriteString("\n")
			for _, src := range ex.answer.Sources {
				if src.Page == domain.UnknownPage {
					b.WriteString(sourceStyle.Render("\n  (page unknown) "+src.Excerpt))
					continue
				}
				b.WriteString(sourceStyle.Render(fmt.Sprintf("\n  page %d: %s", src.Page, src.Excerpt)))
			}
		}
	}
	return b.String()
}

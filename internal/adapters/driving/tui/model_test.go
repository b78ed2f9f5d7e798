package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsage/docsage-cli/internal/core/domain"
)

type stubService struct {
	answer *domain.Answer
	asked  []string
}

func (s *stubService) Ask(_ context.Context, _, question string) *domain.Answer {
	s.asked = append(s.asked, question)
	return s.answer
}

func goodAnswer(text string) *domain.Answer {
	return &domain.Answer{
		Text: text,
		Sources: []domain.SourceAttribution{
			{Page: 2, Excerpt: "relevant passage"},
		},
		Metrics: domain.QueryMetrics{TotalLatency: 1.1, NumSources: 1},
	}
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func TestNew(t *testing.T) {
	m := New(context.Background(), &stubService{}, "manual.pdf")

	assert.Equal(t, "manual.pdf", m.document)
	assert.False(t, m.ready)
	assert.Empty(t, m.transcript)
}

func TestUpdate_WindowSizeMakesReady(t *testing.T) {
	m := sized(New(context.Background(), &stubService{}, "manual.pdf"))

	assert.True(t, m.ready)
	assert.Contains(t, m.View(), "docsage chat")
	assert.Contains(t, m.View(), "manual.pdf")
}

func TestUpdate_EnterAsksService(t *testing.T) {
	svc := &stubService{answer: goodAnswer("Two years.")}
	m := sized(New(context.Background(), svc, "manual.pdf"))
	m.input.SetValue("How long is the warranty?")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	require.NotNil(t, cmd)
	assert.True(t, m.waiting)
	assert.Empty(t, m.input.Value())

	// Running the command performs the query and yields the answer.
	msg := cmd()
	answer, ok := msg.(answerMsg)
	require.True(t, ok)
	assert.Equal(t, []string{"How long is the warranty?"}, svc.asked)
	assert.Equal(t, "Two years.", answer.answer.Text)
}

func TestUpdate_EmptyInputDoesNothing(t *testing.T) {
	svc := &stubService{answer: goodAnswer("x")}
	m := sized(New(context.Background(), svc, "manual.pdf"))
	m.input.SetValue("   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, svc.asked)
}

func TestUpdate_IgnoresEnterWhileWaiting(t *testing.T) {
	svc := &stubService{answer: goodAnswer("x")}
	m := sized(New(context.Background(), svc, "manual.pdf"))
	m.waiting = true
	m.input.SetValue("another question")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Empty(t, svc.asked)
}

func TestUpdate_AnswerAppendsToTranscript(t *testing.T) {
	m := sized(New(context.Background(), &stubService{}, "manual.pdf"))
	m.waiting = true

	updated, _ := m.Update(answerMsg{question: "Q?", answer: goodAnswer("A.")})
	m = updated.(Model)

	assert.False(t, m.waiting)
	require.Len(t, m.transcript, 1)
	assert.Contains(t, m.renderTranscript(), "You: Q?")
	assert.Contains(t, m.renderTranscript(), "A.")
	assert.Contains(t, m.renderTranscript(), "page 2")
	assert.Contains(t, m.status, "Answered in 1.1s")
}

func TestUpdate_FailedAnswerShownInTranscript(t *testing.T) {
	m := sized(New(context.Background(), &stubService{}, "manual.pdf"))
	failed := &domain.Answer{
		Text:    "Could not connect to the answer service.",
		Failure: domain.FailureUnavailable,
	}

	updated, _ := m.Update(answerMsg{question: "Q?", answer: failed})
	m = updated.(Model)

	assert.Contains(t, m.renderTranscript(), "Could not connect")
	assert.Contains(t, m.status, "Something went wrong")
}

func TestUpdate_CtrlCQuits(t *testing.T) {
	m := sized(New(context.Background(), &stubService{}, "manual.pdf"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

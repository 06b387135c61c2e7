// Package chat provides the conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
	"github.com/custodia-labs/voxdesk/internal/core/services"
)

// ErrRecognitionUnavailable is shown when ctrl+r is pressed without a
// configured speech provider.
var ErrRecognitionUnavailable = errors.New("speech recognition is not configured")

// Services are the driving ports the chat view uses.
// Knowledge and Recognition are optional.
type Services struct {
	Voice        driving.VoiceService
	Conversation driving.ConversationService
	Knowledge    driving.KnowledgeService
	Recognition  driving.RecognitionService
	Recording    domain.RecordingSettings
}

// View is the conversation transcript with an input line and status bar.
//
// The conversation is only touched from Update while no question is in
// flight, so History snapshots never race with Respond.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.ChatInput
	statusbar *status.Bar
	svc       Services
	ctx       context.Context

	history  []domain.Turn
	pending  string
	thinking bool
	err      error

	recording bool
	stopSoon  bool
	live      string
	stopRec   context.CancelFunc
	progress  chan messages.RecordingProgress

	scroll int
	width  int
	height int
}

// NewView creates a chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, svc Services) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if svc.Recording.MaxDuration <= 0 {
		svc.Recording.MaxDuration = services.DefaultMaxRecordLimit
	}
	if svc.Recording.PollInterval <= 0 {
		svc.Recording.PollInterval = services.DefaultPollInterval
	}

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewChatInput(s),
		statusbar: status.NewBar(s, km),
		svc:       svc,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	v.refreshHistory()
	return tea.Batch(v.input.Init(), v.loadKnowledge())
}

// Update handles messages for the chat view.
//
//nolint:gocyclo // message dispatch
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.QuestionSubmitted:
		return v, v.ask(msg.Question)

	case messages.ReplyReceived:
		v.thinking = false
		v.pending = ""
		v.scroll = 0
		v.refreshHistory()
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.statusbar.Clear()
		return v, nil

	case messages.RecordingStarted:
		return v, v.handleRecordingStarted(msg)

	case messages.RecordingProgress:
		if !v.recording {
			return v, nil
		}
		v.live = msg.Transcript
		v.statusbar.SetRecording(msg.Elapsed, v.svc.Recording.MaxDuration)
		return v, waitForProgress(v.progress)

	case messages.RecordingFinished:
		return v, v.handleRecordingFinished(msg)

	case messages.KnowledgeLoaded:
		v.statusbar.SetKnowledge(v.svc.Conversation.RAGEnabled(), msg.Stats.Count)
		return v, nil

	case messages.ConversationReset:
		v.refreshHistory()
		v.statusbar.Clear()
		v.statusbar.SetMessage("Conversation reset")
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Record):
		if v.recording {
			v.stopRecording()
			return v, nil
		}
		return v, v.startRecording()

	case v.recording:
		// Typing is paused while the microphone is live.
		return v, nil

	case keymap.Matches(k, v.keymap.Send):
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.thinking {
			return v, nil
		}
		v.input.Reset()
		return v, v.ask(question)

	case keymap.Matches(k, v.keymap.Reset):
		if v.thinking {
			return v, nil
		}
		v.svc.Conversation.Reset()
		return v, func() tea.Msg { return messages.ConversationReset{} }

	case keymap.Matches(k, v.keymap.ToggleRAG):
		if v.thinking {
			return v, nil
		}
		v.svc.Conversation.SetRAGEnabled(!v.svc.Conversation.RAGEnabled())
		return v, v.loadKnowledge()

	case keymap.Matches(k, v.keymap.Up):
		v.scroll++
		return v, nil

	case keymap.Matches(k, v.keymap.Down):
		if v.scroll > 0 {
			v.scroll--
		}
		return v, nil

	case keymap.Matches(k, v.keymap.Back):
		v.input.Reset()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask sends a question to the assistant in the background.
func (v *View) ask(question string) tea.Cmd {
	if v.thinking {
		return nil
	}
	v.thinking = true
	v.pending = question
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateThinking)

	voice, ctx := v.svc.Voice, v.ctx
	return func() tea.Msg {
		reply, err := voice.Query(ctx, question, false)
		return messages.ReplyReceived{Question: question, Reply: reply, Err: err}
	}
}

func (v *View) startRecording() tea.Cmd {
	if v.thinking {
		return nil
	}
	rec := v.svc.Recognition
	if rec == nil || !rec.Available() {
		v.setError(ErrRecognitionUnavailable)
		return nil
	}
	// Mark as recording now so a second ctrl+r before Start returns is a stop.
	v.recording = true
	v.stopSoon = false
	v.live = ""
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateRecording)
	v.statusbar.SetRecording(0, v.svc.Recording.MaxDuration)
	v.input.SetPlaceholder("Listening...")

	ctx := v.ctx
	return func() tea.Msg {
		handle, err := rec.Start(ctx)
		return messages.RecordingStarted{Handle: handle, Err: err}
	}
}

func (v *View) handleRecordingStarted(msg messages.RecordingStarted) tea.Cmd {
	if msg.Err != nil {
		v.endRecording()
		v.setError(msg.Err)
		return nil
	}

	recCtx, cancel := context.WithCancel(v.ctx)
	if v.stopSoon {
		// Stopped before the recogniser came up; the poll stops it at once.
		cancel()
	}
	v.stopRec = cancel
	progress := make(chan messages.RecordingProgress, 1)
	v.progress = progress

	rec := v.svc.Recognition
	cfg := services.PollConfig{
		Interval:    v.svc.Recording.PollInterval,
		MaxDuration: v.svc.Recording.MaxDuration,
	}
	poll := func() tea.Msg {
		defer close(progress)
		result, err := services.PollRecording(recCtx, rec, msg.Handle, cfg,
			func(transcript string, elapsed time.Duration) {
				select {
				case progress <- messages.RecordingProgress{Transcript: transcript, Elapsed: elapsed}:
				default:
					// The view has not drained the last update; drop this one.
				}
			})
		if err == nil {
			err = result.LastError
		}
		return messages.RecordingFinished{
			Text:        result.Text,
			AutoStopped: result.AutoStopped,
			Elapsed:     result.Elapsed,
			Err:         err,
		}
	}
	return tea.Batch(poll, waitForProgress(progress))
}

func (v *View) stopRecording() {
	if v.stopRec != nil {
		v.stopRec()
		return
	}
	// Start has not returned yet.
	v.stopSoon = true
}

func (v *View) handleRecordingFinished(msg messages.RecordingFinished) tea.Cmd {
	v.endRecording()

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		if msg.Err != nil {
			v.setError(msg.Err)
		} else {
			v.statusbar.SetMessage("No speech recognised")
		}
		return nil
	}
	return v.ask(text)
}

func (v *View) endRecording() {
	if v.stopRec != nil {
		v.stopRec()
	}
	v.recording = false
	v.stopSoon = false
	v.stopRec = nil
	v.progress = nil
	v.live = ""
	v.statusbar.Clear()
	v.input.SetPlaceholder("")
}

// waitForProgress delivers the next live transcript update.
func waitForProgress(ch <-chan messages.RecordingProgress) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return update
	}
}

func (v *View) loadKnowledge() tea.Cmd {
	if v.svc.Knowledge == nil {
		v.statusbar.SetKnowledge(v.svc.Conversation.RAGEnabled(), 0)
		return nil
	}
	knowledge := v.svc.Knowledge
	return func() tea.Msg {
		return messages.KnowledgeLoaded{Stats: knowledge.Stats()}
	}
}

func (v *View) refreshHistory() {
	v.history = v.svc.Conversation.History()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the chat view.
func (v *View) View() string {
	header := v.styles.Title.Render("voxdesk") + v.styles.Muted.Render(" · voice support assistant")
	footer := lipgloss.JoinVertical(lipgloss.Left, v.input.View(), v.statusbar.View())

	bodyHeight := v.height - lipgloss.Height(header) - lipgloss.Height(footer) - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := v.visibleLines(v.transcriptLines(), bodyHeight)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.Join(body, "\n"),
		footer,
	)
}

// transcriptLines renders every turn, wrapped to the view width.
func (v *View) transcriptLines() []string {
	wrap := lipgloss.NewStyle().Width(v.width)
	var lines []string
	add := func(label lipgloss.Style, name, text string) {
		rendered := wrap.Render(label.Render(name+": ") + v.styles.Normal.Render(text))
		lines = append(lines, strings.Split(rendered, "\n")...)
		lines = append(lines, "")
	}

	if len(v.history) == 0 && v.pending == "" && !v.recording {
		lines = append(lines, v.styles.Muted.Render("Type a question or press ctrl+r to speak."))
	}
	for _, turn := range v.history {
		switch turn.Role {
		case domain.RoleUser:
			add(v.styles.User, "You", turn.Content)
		case domain.RoleAssistant:
			add(v.styles.Assistant, "Assistant", turn.Content)
		case domain.RoleSystem:
		}
	}
	if v.pending != "" {
		add(v.styles.User, "You", v.pending)
		lines = append(lines, v.styles.Muted.Render("Assistant is typing..."))
	}
	if v.recording {
		live := v.live
		if live == "" {
			live = "..."
		}
		add(v.styles.Recording, "Listening", live)
	}
	return lines
}

// visibleLines returns the window of lines ending scroll lines above the
// bottom. scroll is clamped so the window never runs past the top.
func (v *View) visibleLines(lines []string, height int) []string {
	maxScroll := len(lines) - height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if v.scroll > maxScroll {
		v.scroll = maxScroll
	}
	end := len(lines) - v.scroll
	start := end - height
	if start < 0 {
		start = 0
	}
	return lines[start:end]
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// History returns the last snapshot of the conversation.
func (v *View) History() []domain.Turn {
	return v.history
}

// Thinking reports whether a question is in flight.
func (v *View) Thinking() bool {
	return v.thinking
}

// Recording reports whether the microphone is live.
func (v *View) Recording() bool {
	return v.recording
}

// Live returns the live transcript of the current recording.
func (v *View) Live() string {
	return v.live
}

// Err returns the last error shown.
func (v *View) Err() error {
	return v.err
}

// Input returns the input value.
func (v *View) Input() string {
	return v.input.Value()
}

// Status returns the status bar state.
func (v *View) Status() status.State {
	return v.statusbar.State()
}

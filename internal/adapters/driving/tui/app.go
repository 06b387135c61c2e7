package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/voxdesk/internal/adapters/driving/tui/views/chat"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	// chatView is the conversation view.
	chatView *chat.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	chatView := chat.NewView(s, km, chat.Services{
		Voice:        ports.Voice,
		Conversation: ports.Conversation,
		Knowledge:    ports.Knowledge,
		Recognition:  ports.Recognition,
		Recording:    ports.Recording,
	})

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chatView,
		currentView: messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("voxdesk - Voice Support"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		k := msg.String()
		if keymap.Matches(k, a.keymap.Quit) {
			return a, tea.Quit
		}
		if keymap.Matches(k, a.keymap.Help) {
			a.toggleHelp()
			return a, nil
		}
		if a.currentView == messages.ViewHelp {
			if keymap.Matches(k, a.keymap.Back) {
				a.currentView = messages.ViewChat
			}
			return a, nil
		}

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Background results reach the chat view whichever view is showing.
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *App) toggleHelp() {
	if a.currentView == messages.ViewHelp {
		a.currentView = messages.ViewChat
		return
	}
	a.currentView = messages.ViewHelp
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	if a.currentView == messages.ViewHelp {
		return a.viewHelp()
	}
	return a.chatView.View()
}

// viewHelp renders the help view from the key map.
func (a *App) viewHelp() string {
	lines := []string{a.styles.Title.Render("Help"), ""}
	for _, group := range a.keymap.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("  %-10s %s", h.Key, h.Desc))
		}
		lines = append(lines, "")
	}
	lines = append(lines,
		a.styles.Muted.Render("Recordings stop on their own after the configured limit."),
		"",
		a.styles.Help.Render("[esc] back to chat"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Chat returns the conversation view.
func (a *App) Chat() *chat.View {
	return a.chatView
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
}

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/voxdesk/internal/core/domain"
	"github.com/custodia-labs/voxdesk/internal/core/ports/driving"
)

// Verify mocks implement interfaces.
var (
	_ driving.SettingsService     = (*mockSettingsService)(nil)
	_ driving.KnowledgeService    = (*mockKnowledgeService)(nil)
	_ driving.ConversationService = (*mockConversationService)(nil)
	_ driving.VoiceService        = (*mockVoiceService)(nil)
	_ driving.RecognitionService  = (*mockRecognitionService)(nil)
)

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	llmErr      error

	llmProvider    domain.AIProvider
	llmModel       string
	llmKey         string
	llmBaseURL     string
	speechProvider domain.SpeechProvider
	speechKey      string
	speechRegion   string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey, baseURL string) error {
	m.llmProvider, m.llmModel, m.llmKey, m.llmBaseURL = p, model, apiKey, baseURL
	m.settings.LLM.Provider = p
	m.settings.LLM.Model = model
	return nil
}

func (m *mockSettingsService) SetSpeechProvider(p domain.SpeechProvider, key, region string) error {
	m.speechProvider, m.speechKey, m.speechRegion = p, key, region
	m.settings.Speech.Provider = p
	return nil
}

func (m *mockSettingsService) SetSystemPrompt(prompt string) error {
	m.settings.Assistant.SystemPrompt = prompt
	return nil
}

func (m *mockSettingsService) SetRAGEnabled(enabled bool) error {
	m.settings.Assistant.RAGEnabled = enabled
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.llmErr }

type mockKnowledgeService struct {
	stats     domain.KnowledgeStats
	results   []domain.RankedResult
	build     *domain.BuildResult
	buildErr  error
	sources   []string
	mode      domain.RenderMode
	builds    int
	cleared   int
	lastQuery string
	lastK     int
}

func (m *mockKnowledgeService) Build(
	_ context.Context,
	sources []string,
	mode domain.RenderMode,
) (*domain.BuildResult, error) {
	m.builds++
	m.sources, m.mode = sources, mode
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	if m.build != nil {
		return m.build, nil
	}
	return &domain.BuildResult{Success: true, Message: "Knowledge base built"}, nil
}

func (m *mockKnowledgeService) Stats() domain.KnowledgeStats { return m.stats }

func (m *mockKnowledgeService) Clear(_ context.Context) error {
	m.cleared++
	return nil
}

func (m *mockKnowledgeService) Search(query string, k int) []domain.RankedResult {
	m.lastQuery, m.lastK = query, k
	return m.results
}

func (m *mockKnowledgeService) Answer(_ context.Context, _ string) domain.Answer {
	return domain.Answer{}
}

func (m *mockKnowledgeService) Restore(_ context.Context) error { return nil }

type mockConversationService struct {
	history []domain.Turn
	prompt  string
	rag     bool
	resets  int
	cleared int
}

func (m *mockConversationService) Respond(_ context.Context, text string) (string, error) {
	return text, nil
}

func (m *mockConversationService) Reset() {
	m.resets++
	m.history = nil
}

func (m *mockConversationService) History() []domain.Turn {
	return append([]domain.Turn(nil), m.history...)
}

func (m *mockConversationService) SystemPrompt() string { return m.prompt }

func (m *mockConversationService) SetSystemPrompt(prompt string) error {
	m.prompt = prompt
	return nil
}

func (m *mockConversationService) RAGEnabled() bool { return m.rag }

func (m *mockConversationService) SetRAGEnabled(enabled bool) { m.rag = enabled }

func (m *mockConversationService) ClearKnowledge(_ context.Context) error {
	m.cleared++
	m.rag = false
	return nil
}

// mockVoiceService replies with a fixed answer and records the exchange
// on the conversation.
type mockVoiceService struct {
	conv      *mockConversationService
	reply     string
	audio     []byte
	audioErr  error
	err       error
	canSpeak  bool
	questions []string
	withAudio []bool
}

func (m *mockVoiceService) Query(ctx context.Context, text string, withAudio bool) (*domain.Reply, error) {
	m.questions = append(m.questions, text)
	m.withAudio = append(m.withAudio, withAudio)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	m.conv.history = append(m.conv.history, domain.UserTurn(text), domain.AssistantTurn(m.reply))
	reply := &domain.Reply{Text: m.reply}
	if withAudio {
		reply.Audio, reply.AudioErr = m.audio, m.audioErr
	}
	return reply, nil
}

func (m *mockVoiceService) Speak(_ context.Context, _ string) ([]byte, error) {
	return m.audio, m.err
}

func (m *mockVoiceService) CanSpeak() bool { return m.canSpeak }

func (m *mockVoiceService) AudioFormat() string { return "mp3" }

// mockRecognitionService ends the session on the first poll.
type mockRecognitionService struct {
	available bool
	final     string
	lastErr   error
	starts    int
	stops     int
	onStart   func()
}

func (m *mockRecognitionService) Start(_ context.Context) (domain.RecognitionHandle, error) {
	m.starts++
	if m.onStart != nil {
		m.onStart()
	}
	return domain.RecognitionHandle{ID: "rec", StartedAt: time.Now()}, nil
}

func (m *mockRecognitionService) Stop(_ context.Context, _ domain.RecognitionHandle) (string, error) {
	m.stops++
	return m.final, nil
}

func (m *mockRecognitionService) CurrentTranscript() string { return m.final }

func (m *mockRecognitionService) Status() domain.RecognitionStatus {
	return domain.RecognitionStatus{Transcript: m.final, LastError: m.lastErr}
}

func (m *mockRecognitionService) Available() bool { return m.available }

type mockPromptEditor struct {
	dir   string
	saved map[string]string
}

func (m *mockPromptEditor) Dir() string             { return m.dir }
func (m *mockPromptEditor) Path(name string) string { return m.dir + "/" + name + ".tmpl" }
func (m *mockPromptEditor) Load(name string) (string, error) {
	return m.saved[name], nil
}
func (m *mockPromptEditor) Save(name, content string) error {
	m.saved[name] = content
	return nil
}
func (m *mockPromptEditor) Reset(name string) error {
	delete(m.saved, name)
	return nil
}

type mockAudioFiles struct {
	path string
}

func (m *mockAudioFiles) UseFile(path string) { m.path = path }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	settings     *mockSettingsService
	knowledge    *mockKnowledgeService
	conversation *mockConversationService
	voice        *mockVoiceService
	recognition  *mockRecognitionService
	prompts      *mockPromptEditor
	audioFiles   *mockAudioFiles
}

// setupTestServices installs fresh mocks and returns them with a cleanup
// function that restores the unconfigured state.
func setupTestServices() (*testServices, func()) {
	conv := &mockConversationService{prompt: "You are a helpful support assistant."}
	ts := &testServices{
		settings:     newMockSettingsService(),
		knowledge:    &mockKnowledgeService{stats: domain.KnowledgeStats{Status: "Not initialized"}},
		conversation: conv,
		voice:        &mockVoiceService{conv: conv, reply: "Refunds take 5 days."},
		recognition:  &mockRecognitionService{available: true, final: "where is my order"},
		prompts:      &mockPromptEditor{dir: "/cfg/prompts", saved: map[string]string{}},
		audioFiles:   &mockAudioFiles{},
	}
	SetServices(&Services{
		Settings:     ts.settings,
		Knowledge:    ts.knowledge,
		Conversation: ts.conversation,
		Voice:        ts.voice,
		Recognition:  ts.recognition,
		Prompts:      ts.prompts,
		AudioFiles:   ts.audioFiles,
		Recording:    domain.RecordingSettings{MaxDuration: time.Second, PollInterval: time.Millisecond},
	})
	return ts, resetCLI
}

// resetCLI clears services and every flag so tests do not leak state.
func resetCLI() {
	settingsService = nil
	knowledgeService = nil
	conversationService = nil
	voiceService = nil
	recognitionService = nil
	promptEditor = nil
	audioFiles = nil
	recordingSettings = domain.DefaultAppSettings().Recording
	resetFlags(rootCmd)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// interruptRecordings makes every recording end as if Ctrl+C was pressed
// while it ran. Steps that follow get a fresh context.
func interruptRecordings(t *testing.T, rec *mockRecognitionService) {
	t.Helper()
	orig := interruptContext
	var latest context.CancelFunc
	interruptContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(parent)
		latest = cancel
		return ctx, cancel
	}
	rec.onStart = func() { latest() }
	t.Cleanup(func() {
		interruptContext = orig
		rec.onStart = nil
	})
}

// interruptEverything cancels every step as soon as it starts.
func interruptEverything(t *testing.T) {
	t.Helper()
	orig := interruptContext
	interruptContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		ctx, cancel := context.WithCancel(parent)
		cancel()
		return ctx, cancel
	}
	t.Cleanup(func() { interruptContext = orig })
}

// runCLI executes the root command with args and stdin, returning the
// combined output.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

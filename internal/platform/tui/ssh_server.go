package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-quest/internal/config"
	"github.com/vovakirdan/tui-quest/internal/content"
	"github.com/vovakirdan/tui-quest/internal/core"
	"github.com/vovakirdan/tui-quest/internal/engine"
	"github.com/vovakirdan/tui-quest/internal/session"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":2324").
	Address string

	// HostKeyPath is the path to the host key file.
	// Relative paths are resolved against the home directory.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// ResumeTTL is how long a dropped quest stays live for reconnects.
	// Zero closes sessions on disconnect.
	ResumeTTL time.Duration
}

// SSHServerConfigFrom converts the file configuration.
func SSHServerConfigFrom(c config.SSHConfig) SSHServerConfig {
	return SSHServerConfig{
		Address:     c.Address,
		HostKeyPath: c.HostKey,
		IdleTimeout: c.IdleTimeout,
		ResumeTTL:   c.ResumeTTL,
	}
}

// SSHServer wraps a Wish SSH server for the quest player.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	quests   []content.Quest
	launcher Launcher
	live     *LiveSessions
	logger   *log.Logger
}

// NewSSHServer creates a new SSH server that serves quests. Every SSH user
// is a learner; their attempts are recorded through launcher.
func NewSSHServer(cfg SSHServerConfig, quests []content.Quest, launcher Launcher) (*SSHServer, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "quest-ssh",
	})
	if launcher.Logger == nil {
		launcher.Logger = logger
	}

	srv := &SSHServer{
		config:   cfg,
		quests:   quests,
		launcher: launcher,
		logger:   logger,
	}
	if cfg.ResumeTTL > 0 {
		srv.live = NewLiveSessions(cfg.ResumeTTL, logger)
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" || !filepath.IsAbs(hostKeyPath) {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		if hostKeyPath == "" {
			hostKeyPath = filepath.Join(".quest", "host_key")
		}
		hostKeyPath = filepath.Join(home, hostKeyPath)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := s.launcher.Settings
	cfg.ScreenW = pty.Window.Width
	cfg.ScreenH = pty.Window.Height

	model := NewAppModel(s.quests, s.launcher, s.live, cfg, sshSession.User())

	// The program does not report its final model when the connection
	// drops, so the running quest is handed back from here.
	go func() {
		<-sshSession.Context().Done()
		model.Detach()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "quests", len(s.quests))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server and closes parked sessions.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.live != nil {
		s.live.CloseAll()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

type appScreen int

const (
	screenMenu appScreen = iota
	screenQuest
	screenProgress
)

// questSlot is the quest running inside one program. It is shared with the
// connection watcher, so it is guarded.
type questSlot struct {
	mu   sync.Mutex
	sess *session.Session
}

func (s *questSlot) set(sess *session.Session) {
	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()
}

func (s *questSlot) take() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sess
	s.sess = nil
	return sess
}

// AppModel manages the full remote flow: menu -> quest -> menu, with the
// progress screen reachable from the menu.
type AppModel struct {
	quests   []content.Quest
	launcher Launcher
	live     *LiveSessions
	learner  string
	config   core.RuntimeConfig
	slot     *questSlot

	screen   appScreen
	menu     MenuModel
	progress ProgressModel
	quest    *Model
	quitting bool
}

// NewAppModel creates the top-level model for one learner. live may be nil.
func NewAppModel(quests []content.Quest, launcher Launcher, live *LiveSessions, cfg core.RuntimeConfig, learner string) AppModel {
	return AppModel{
		quests:   quests,
		launcher: launcher,
		live:     live,
		learner:  learner,
		config:   cfg,
		slot:     &questSlot{},
		menu:     NewMenuModel(quests, launcher.Store, cfg),
	}
}

// Init initializes the app.
func (m AppModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the app.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.screen {
	case screenQuest:
		return m.updateQuest(msg)
	case screenProgress:
		return m.updateProgress(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m AppModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsProgress():
		m.progress = NewProgressModel(m.quests, m.launcher.Store, m.config.Lang, m.config.ScreenW, m.config.ScreenH)
		m.screen = screenProgress
		return m, m.progress.Init()

	case m.menu.Selected() != nil:
		return m.openQuest(m.menu.Selected().QuestID)
	}

	return m, cmd
}

// openQuest adopts a parked session of the quest or launches a new one.
func (m AppModel) openQuest(questID string) (tea.Model, tea.Cmd) {
	var q *content.Quest
	for i := range m.quests {
		if m.quests[i].ID == questID {
			q = &m.quests[i]
			break
		}
	}
	if q == nil {
		return m.backToMenu()
	}

	var sess *session.Session
	var sched *Scheduler
	adopted := false
	if m.live != nil {
		sess, sched, adopted = m.live.Adopt(m.learner, questID)
	}
	if !adopted {
		var err error
		sess, sched, err = m.launcher.Launch(q, m.learner, engine.Resume{})
		if err != nil {
			m.launcher.logger().Error("cannot launch quest", "quest", questID, "user", m.learner, "err", err)
			return m.backToMenu()
		}
		if m.live != nil {
			m.live.Track(m.learner, sess, sched)
		}
	}
	m.slot.set(sess)

	quest := NewModel(sess, sched, m.config)
	m.quest = &quest
	m.screen = screenQuest
	return m, m.quest.Init()
}

// updateQuest handles updates when a quest is playing.
func (m AppModel) updateQuest(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.quest.Update(msg)
	if questModel, ok := newModel.(Model); ok {
		m.quest = &questModel
	}

	if m.quest.BackToMenu() {
		m.closeQuest()
		return m.backToMenu()
	}

	if m.quest.IsQuitting() {
		m.Detach()
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// updateProgress handles updates on the progress screen.
func (m AppModel) updateProgress(msg tea.Msg) (tea.Model, tea.Cmd) {
	newProgress, cmd := m.progress.Update(msg)
	if progressModel, ok := newProgress.(ProgressModel); ok {
		m.progress = progressModel
	}

	if m.progress.IsGoingBack() {
		return m.backToMenu()
	}
	if m.progress.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, cmd
}

func (m AppModel) backToMenu() (tea.Model, tea.Cmd) {
	m.quest = nil
	m.screen = screenMenu
	m.menu = NewMenuModel(m.quests, m.launcher.Store, m.config)
	return m, m.menu.Init()
}

// closeQuest ends the running quest for good.
func (m AppModel) closeQuest() {
	sess := m.slot.take()
	if sess == nil {
		return
	}
	if m.live != nil {
		m.live.Done(m.learner, sess)
	}
	sess.Close()
}

// Detach hands the running quest to the live pool for a later reconnect,
// or closes it when there is no pool. It is safe to call more than once.
func (m AppModel) Detach() {
	sess := m.slot.take()
	if sess == nil {
		return
	}
	if m.live != nil && m.live.Release(m.learner, sess) {
		return
	}
	sess.Close()
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenQuest:
		if m.quest != nil {
			return m.quest.View()
		}
	case screenProgress:
		return m.progress.View()
	}
	return m.menu.View()
}

package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nixlim/hva-top/internal/activity"
	"github.com/nixlim/hva-top/internal/burnrate"
	"github.com/nixlim/hva-top/internal/config"
	"github.com/nixlim/hva-top/internal/logbuf"
	"github.com/nixlim/hva-top/internal/notice"
	"github.com/nixlim/hva-top/internal/status"
)

type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewLogs
)

// LogSource selects which log list the Logs view shows.
type LogSource int

const (
	SourceLocal LogSource = iota
	SourceBackend
)

type tickMsg time.Time

// toggledMsg reports the outcome of a listening toggle.
type toggledMsg struct{ ok bool }

// backendLogsMsg carries a backend log tail.
type backendLogsMsg struct {
	lines []string
	err   error
}

type ActivityProvider interface {
	Entries() []activity.Entry
	ActiveTask() (activity.ActiveTask, bool)
}

type StatusProvider interface {
	Snapshot() status.Snapshot
}

type CostProvider interface {
	Compute(now time.Time) burnrate.BurnRate
	ColorForRate(hourlyRate float64) burnrate.RateColor
}

type LogProvider interface {
	List() []logbuf.Entry
	Clear()
}

type NoticeProvider interface {
	Latest(now time.Time, ttl time.Duration) (notice.Notice, bool)
}

// ListenToggler flips the backend's listening state. It reports failures
// on its own and only returns whether the request succeeded.
type ListenToggler interface {
	Toggle(ctx context.Context) bool
}

// BackendLogFetcher returns the last n backend log lines.
type BackendLogFetcher func(ctx context.Context, n int) ([]string, error)

type Model struct {
	view     ViewState
	width    int
	height   int
	keys     KeyMap
	quitting bool

	cfg config.Config
	now func() time.Time
	log zerolog.Logger

	activity ActivityProvider
	status   StatusProvider
	cost     CostProvider
	logs     LogProvider
	notices  NoticeProvider
	toggler  ListenToggler
	fetch    BackendLogFetcher

	// Snapshots refreshed on tick; rendering reads only these.
	cachedStatus  status.Snapshot
	cachedEntries []activity.Entry
	cachedTask    activity.ActiveTask
	hasTask       bool
	cachedCost    burnrate.BurnRate
	cachedLogs    []logbuf.Entry
	cachedNotice  notice.Notice
	hasNotice     bool
	lastTick      time.Time

	logSource LogSource
	logCursor int
	// selectedID pins the local selection to an entry so eviction does not
	// move it. Empty means follow the newest entry.
	selectedID     string
	backendLines   []string
	backendErr     string
	backendLoading bool
	backendLoaded  bool
	toggling       bool

	detailOverlay   bool
	detailTitle     string
	detailContent   string
	detailScrollPos int

	refreshRate time.Duration
	onShutdown  func()
}

func NewModel(cfg config.Config, opts ...ModelOption) Model {
	m := Model{
		view:        ViewDashboard,
		keys:        DefaultKeyMap(),
		cfg:         cfg,
		now:         time.Now,
		log:         zerolog.Nop(),
		refreshRate: cfg.Display.RefreshInterval(),
	}
	if m.refreshRate <= 0 {
		m.refreshRate = time.Second
	}

	for _, opt := range opts {
		opt(&m)
	}

	m.refresh(m.now())
	return m
}

type ModelOption func(*Model)

func WithActivityProvider(a ActivityProvider) ModelOption {
	return func(m *Model) { m.activity = a }
}

func WithStatusProvider(s StatusProvider) ModelOption {
	return func(m *Model) { m.status = s }
}

func WithCostProvider(c CostProvider) ModelOption {
	return func(m *Model) { m.cost = c }
}

func WithLogProvider(l LogProvider) ModelOption {
	return func(m *Model) { m.logs = l }
}

func WithNoticeProvider(n NoticeProvider) ModelOption {
	return func(m *Model) { m.notices = n }
}

func WithListenToggler(t ListenToggler) ModelOption {
	return func(m *Model) { m.toggler = t }
}

func WithBackendLogs(f BackendLogFetcher) ModelOption {
	return func(m *Model) { m.fetch = f }
}

func WithStartView(v ViewState) ModelOption {
	return func(m *Model) { m.view = v }
}

func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) { m.now = now }
}

// WithLogger sets the logger for failures the UI handles itself.
func WithLogger(log zerolog.Logger) ModelOption {
	return func(m *Model) { m.log = log }
}

func WithOnShutdown(fn func()) ModelOption {
	return func(m *Model) { m.onShutdown = fn }
}

func (m Model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh(time.Time(msg))
		return m, m.tickCmd()

	case toggledMsg:
		m.toggling = false
		m.refresh(m.now())
		return m, nil

	case backendLogsMsg:
		m.backendLoading = false
		m.backendLoaded = true
		if msg.err != nil {
			m.backendErr = msg.err.Error()
			m.log.Error().Err(msg.err).Msg("failed to fetch backend logs")
			m.refresh(m.now())
			return m, nil
		}
		m.backendErr = ""
		m.backendLines = msg.lines
		if m.logSource == SourceBackend {
			m.logCursor = lastIndex(len(m.backendLines))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// refresh pulls fresh snapshots from every provider.
func (m *Model) refresh(now time.Time) {
	m.lastTick = now
	if m.status != nil {
		m.cachedStatus = m.status.Snapshot()
	}
	if m.activity != nil {
		m.cachedEntries = m.activity.Entries()
		m.cachedTask, m.hasTask = m.activity.ActiveTask()
	}
	if m.cost != nil {
		m.cachedCost = m.cost.Compute(now)
	}
	if m.logs != nil {
		m.cachedLogs = m.logs.List()
		if m.logSource == SourceLocal {
			m.syncLocalCursor()
		}
	}
	if m.notices != nil {
		m.cachedNotice, m.hasNotice = m.notices.Latest(now, notice.DefaultTTL)
	}
}

// syncLocalCursor places the cursor on the pinned entry, or on the newest
// entry when nothing is pinned. A pinned entry that was evicted hands the
// selection to the oldest remaining entry.
func (m *Model) syncLocalCursor() {
	if m.selectedID == "" {
		m.logCursor = lastIndex(len(m.cachedLogs))
		return
	}
	for i, e := range m.cachedLogs {
		if e.ID == m.selectedID {
			m.logCursor = i
			return
		}
	}
	m.logCursor = 0
	m.selectedID = ""
	if len(m.cachedLogs) > 1 {
		m.selectedID = m.cachedLogs[0].ID
	}
}

// pinLocalSelection records the entry under the cursor. Resting on the
// newest entry resumes following the tail.
func (m *Model) pinLocalSelection() {
	if m.logSource != SourceLocal || m.logCursor >= len(m.cachedLogs)-1 {
		m.selectedID = ""
		return
	}
	m.selectedID = m.cachedLogs[m.logCursor].ID
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.detailOverlay {
		return m.handleDetailOverlayKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.onShutdown != nil {
			m.onShutdown()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		if m.view == ViewDashboard {
			m.view = ViewLogs
			m.logCursor = lastIndex(m.currentLogLen())
			m.selectedID = ""
		} else {
			m.view = ViewDashboard
		}
		return m, nil

	case key.Matches(msg, m.keys.Listen):
		return m.toggleListening()
	}

	if m.view == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) toggleListening() (tea.Model, tea.Cmd) {
	if m.toggler == nil || m.toggling {
		return m, nil
	}
	m.toggling = true
	t := m.toggler
	return m, func() tea.Msg {
		return toggledMsg{ok: t.Toggle(context.Background())}
	}
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.logCursor > 0 {
			m.logCursor--
		}
		m.pinLocalSelection()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.logCursor < m.currentLogLen()-1 {
			m.logCursor++
		}
		m.pinLocalSelection()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		return m.openDiagnosis(), nil

	case key.Matches(msg, m.keys.Clear):
		if m.logSource == SourceLocal && m.logs != nil {
			m.logs.Clear()
			m.cachedLogs = nil
			m.logCursor = 0
			m.selectedID = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.logSource == SourceBackend {
			return m.fetchBackendLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.Source):
		if m.logSource == SourceLocal {
			m.logSource = SourceBackend
			m.logCursor = lastIndex(len(m.backendLines))
			if !m.backendLoaded {
				return m.fetchBackendLogs()
			}
			return m, nil
		}
		m.logSource = SourceLocal
		m.logCursor = lastIndex(len(m.cachedLogs))
		m.selectedID = ""
		return m, nil
	}

	return m, nil
}

func (m Model) fetchBackendLogs() (tea.Model, tea.Cmd) {
	if m.fetch == nil || m.backendLoading {
		return m, nil
	}
	m.backendLoading = true
	fetch, n := m.fetch, m.cfg.Control.LogTailLines
	return m, func() tea.Msg {
		lines, err := fetch(context.Background(), n)
		return backendLogsMsg{lines: lines, err: err}
	}
}

// openDiagnosis shows the diagnosis overlay for the selected local entry.
// Entries below WARN are ignored.
func (m Model) openDiagnosis() Model {
	if m.logSource != SourceLocal || m.logCursor < 0 || m.logCursor >= len(m.cachedLogs) {
		return m
	}
	e := m.cachedLogs[m.logCursor]
	d, ok := e.Diagnose()
	if !ok {
		return m
	}
	m.detailOverlay = true
	m.detailTitle = d.Title
	m.detailContent = formatDiagnosis(e, d.Explanation, d.Cause, d.Impact, d.Steps)
	m.detailScrollPos = 0
	return m
}

func (m Model) handleDetailOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Enter):
		m.detailOverlay = false
		m.detailContent = ""
		m.detailTitle = ""
		m.detailScrollPos = 0
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.detailScrollPos > 0 {
			m.detailScrollPos--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.detailScrollPos++
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if m.onShutdown != nil {
			m.onShutdown()
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) currentLogLen() int {
	if m.logSource == SourceBackend {
		return len(m.backendLines)
	}
	return len(m.cachedLogs)
}

func lastIndex(n int) int {
	if n == 0 {
		return 0
	}
	return n - 1
}

func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var output string
	switch m.view {
	case ViewDashboard:
		output = m.renderDashboard()
	case ViewLogs:
		output = m.renderLogsView()
	}

	if m.height > 0 {
		lines := strings.Split(output, "\n")
		if len(lines) > m.height {
			lines = lines[:m.height]
			output = strings.Join(lines, "\n")
		}
	}

	return output
}

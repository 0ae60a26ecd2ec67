package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/hva-top/internal/logbuf"
)

var levelStyles = map[logbuf.Level]lipgloss.Style{
	logbuf.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
	logbuf.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	logbuf.LevelError: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
}

func (m Model) renderLogsView() string {
	dims := computeDimensions(m.width, m.height)

	help := "↑↓:Move  Enter:Diagnose  c:Clear  b:Backend  Tab:Dashboard  q:Quit "
	if m.logSource == SourceBackend {
		help = "↑↓:Move  r:Refresh  b:Local  Tab:Dashboard  q:Quit "
	}
	header := m.renderHeader("Logs", help)

	var panel string
	if m.logSource == SourceBackend {
		panel = m.renderBackendLogs(dims.logsW, dims.logsH)
	} else {
		panel = m.renderLocalLogs(dims.logsW, dims.logsH)
	}

	layout := lipgloss.JoinVertical(lipgloss.Left, header, m.renderTabBar(), panel, m.renderStatusBar())
	if m.detailOverlay {
		layout = m.overlayDetail(layout)
	}
	return layout
}

func (m Model) renderTabBar() string {
	local := fmt.Sprintf("Local (%d)", len(m.cachedLogs))
	backend := "Backend"
	if m.backendLoaded {
		backend = fmt.Sprintf("Backend (%d)", len(m.backendLines))
	}
	if m.logSource == SourceBackend {
		return tabInactiveStyle.Render(local) + tabActiveStyle.Render(backend)
	}
	return tabActiveStyle.Render(local) + tabInactiveStyle.Render(backend)
}

func (m Model) renderLocalLogs(w, h int) string {
	contentW := w - 4
	if contentW < 10 {
		contentW = 10
	}
	if len(m.cachedLogs) == 0 {
		return renderBorderedPanel(dimStyle.Render("No log entries"), w, h)
	}

	lines := make([]string, len(m.cachedLogs))
	for i, e := range m.cachedLogs {
		lines[i] = renderLogLine(e, contentW, i == m.logCursor)
	}
	return renderBorderedPanel(strings.Join(window(lines, m.logCursor, h-2), "\n"), w, h)
}

func (m Model) renderBackendLogs(w, h int) string {
	contentW := w - 4
	if contentW < 10 {
		contentW = 10
	}

	switch {
	case m.backendLoading && len(m.backendLines) == 0:
		return renderBorderedPanel(dimStyle.Render("Loading backend logs..."), w, h)
	case m.backendErr != "":
		return renderBorderedPanel(noticeErrorStyle.Render("Backend logs unavailable: "+truncateText(m.backendErr, contentW-28)), w, h)
	case len(m.backendLines) == 0:
		return renderBorderedPanel(dimStyle.Render("No backend log lines"), w, h)
	}

	lines := make([]string, len(m.backendLines))
	for i, l := range m.backendLines {
		l = truncateText(l, contentW)
		if i == m.logCursor {
			l = selectedStyle.Render(l)
		}
		lines[i] = l
	}
	return renderBorderedPanel(strings.Join(window(lines, m.logCursor, h-2), "\n"), w, h)
}

func renderLogLine(e logbuf.Entry, maxW int, selected bool) string {
	prefix := fmt.Sprintf("%s %-5s ", e.Timestamp.Format("15:04:05"), e.Level)
	msg := truncateText(e.Message, maxW-len(prefix))
	if selected {
		return selectedStyle.Render(prefix + msg)
	}
	style, ok := levelStyles[e.Level]
	if !ok {
		style = dimStyle
	}
	return dimStyle.Render(prefix) + style.Render(msg)
}

// window returns the slice of lines of height h that keeps cursor visible,
// preferring to show the tail.
func window(lines []string, cursor, h int) []string {
	if h < 1 {
		h = 1
	}
	if len(lines) <= h {
		return lines
	}
	start := len(lines) - h
	if cursor < start {
		start = cursor
	}
	if start < 0 {
		start = 0
	}
	return lines[start : start+h]
}

func formatDiagnosis(e logbuf.Entry, explanation, cause, impact string, steps []string) string {
	lines := []string{
		"Level:     " + string(e.Level),
		"Time:      " + e.Timestamp.Format("2006-01-02 15:04:05"),
		"Message:   " + e.Message,
		"",
		explanation,
		"",
		"Cause:  " + cause,
		"Impact: " + impact,
		"",
		"Steps:",
	}
	for i, s := range steps {
		lines = append(lines, fmt.Sprintf("  %d. %s", i+1, s))
	}
	return strings.Join(lines, "\n")
}

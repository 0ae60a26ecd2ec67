package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/hva-top/internal/activity"
)

var entryTypeStyles = map[activity.EntryType]lipgloss.Style{
	activity.EntryInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
	activity.EntrySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
	activity.EntrySkip:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	activity.EntryProcess: lipgloss.NewStyle().Foreground(lipgloss.Color("222")),
}

var activeTaskStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("226"))

// renderActivityPanel renders the active task (if any) above the newest
// activity entries.
func (m Model) renderActivityPanel(w, h int) string {
	contentW := w - 4
	if contentW < 10 {
		contentW = 10
	}
	contentH := h - 2
	if contentH < 1 {
		contentH = 1
	}

	lines := []string{panelTitleStyle.Render("Activity")}

	if m.hasTask {
		lines = append(lines, m.renderActiveTask(contentW))
		if m.cachedTask.Details != "" {
			lines = append(lines, dimStyle.Render("  "+truncateText(m.cachedTask.Details, contentW-2)))
		}
	}

	if len(m.cachedEntries) == 0 {
		lines = append(lines, "", dimStyle.Render("No activity yet"))
		return renderBorderedPanel(strings.Join(lines, "\n"), w, h)
	}

	// Newest entries stay visible at the bottom.
	visible := contentH - len(lines)
	if visible < 1 {
		visible = 1
	}
	start := len(m.cachedEntries) - visible
	if start < 0 {
		start = 0
	}
	for _, e := range m.cachedEntries[start:] {
		lines = append(lines, renderEntryLine(e, contentW))
	}

	return renderBorderedPanel(strings.Join(lines, "\n"), w, h)
}

func (m Model) renderActiveTask(maxW int) string {
	t := m.cachedTask
	elapsed := formatElapsed(t.Elapsed(m.lastTick))
	label := fmt.Sprintf("⏳ %s · %s", t.Model, t.Task)
	return activeTaskStyle.Render(truncateText(label, maxW-len(elapsed)-1) + " " + elapsed)
}

func renderEntryLine(e activity.Entry, maxW int) string {
	style, ok := entryTypeStyles[e.Type]
	if !ok {
		style = dimStyle
	}
	stamp := e.Timestamp.Format("15:04:05")
	return dimStyle.Render(stamp) + " " + style.Render(truncateText(e.Message, maxW-len(stamp)-1))
}

// formatElapsed renders d as mm:ss, or h:mm:ss from one hour on.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, mnt, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mnt, s)
	}
	return fmt.Sprintf("%02d:%02d", mnt, s)
}

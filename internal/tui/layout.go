package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/hva-top/internal/channel"
	"github.com/nixlim/hva-top/internal/notice"
)

type panelDimensions struct {
	activityW, activityH int
	costW, costH         int
	logsW, logsH         int
	headerH              int
	statusH              int
}

const (
	minWidth  = 40
	minHeight = 10

	headerHeight = 1
	statusHeight = 1
	tabBarHeight = 1

	costMinWidth = 28
	costMaxWidth = 48
)

func computeDimensions(totalW, totalH int) panelDimensions {
	if totalW < minWidth {
		totalW = minWidth
	}
	if totalH < minHeight {
		totalH = minHeight
	}

	d := panelDimensions{
		headerH: headerHeight,
		statusH: statusHeight,
	}

	usableH := totalH - headerHeight - statusHeight
	if usableH < 4 {
		usableH = 4
	}

	d.costW = totalW * 35 / 100
	if d.costW < costMinWidth {
		d.costW = costMinWidth
	}
	if d.costW > costMaxWidth {
		d.costW = costMaxWidth
	}
	if d.costW > totalW-20 {
		d.costW = totalW - 20
	}
	d.costH = usableH

	d.activityW = totalW - d.costW
	d.activityH = usableH

	d.logsW = totalW
	d.logsH = usableH - tabBarHeight
	if d.logsH < 3 {
		d.logsH = 3
	}

	return d
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	panelBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	connectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82")).
			Background(lipgloss.Color("62"))

	connectingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")).
			Background(lipgloss.Color("62"))

	disconnectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196")).
				Background(lipgloss.Color("62"))

	costGreenStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("82"))

	costYellowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226"))

	costRedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	noticeInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	noticeWarningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("226"))

	noticeErrorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 1)

	detailOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("69")).
				Padding(1, 2)
)

func renderBorderedPanel(content string, w, h int) string {
	contentH := h - 2
	if contentH < 1 {
		contentH = 1
	}

	lines := strings.Split(content, "\n")
	if len(lines) > contentH {
		lines = lines[:contentH]
		content = strings.Join(lines, "\n")
	}

	return panelBorderStyle.
		Width(w - 2).
		Height(contentH).
		Render(content)
}

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func (m Model) renderDashboard() string {
	dims := computeDimensions(m.width, m.height)

	header := m.renderHeader("Dashboard", "l:Listen  Tab:Logs  q:Quit ")
	activityPanel := m.renderActivityPanel(dims.activityW, dims.activityH)
	costPanel := m.renderCostPanel(dims.costW, dims.costH)
	main := lipgloss.JoinHorizontal(lipgloss.Top, activityPanel, costPanel)

	layout := lipgloss.JoinVertical(lipgloss.Left, header, main, m.renderStatusBar())
	if m.detailOverlay {
		layout = m.overlayDetail(layout)
	}
	return layout
}

func (m Model) renderHeader(viewName, help string) string {
	title := " hva-top"
	viewLabel := " [" + viewName + "] "
	indicator := m.channelIndicator()

	padding := m.width - lipgloss.Width(title) - lipgloss.Width(viewLabel) - lipgloss.Width(indicator) - lipgloss.Width(help)
	if padding < 0 {
		padding = 0
	}

	return headerStyle.Width(m.width).Render(title + viewLabel + indicator + strings.Repeat(" ", padding) + help)
}

// channelIndicator renders the connection dot and the status label.
func (m Model) channelIndicator() string {
	snap := m.cachedStatus
	var style lipgloss.Style
	switch snap.Channel {
	case channel.Connected:
		style = connectedStyle
	case channel.Connecting:
		style = connectingStyle
	default:
		style = disconnectedStyle
	}
	label := snap.Label()
	if m.toggling {
		label += "…"
	}
	return style.Render("● " + label)
}

// renderStatusBar shows the latest transient notice, or a summary line when
// none is live.
func (m Model) renderStatusBar() string {
	if m.hasNotice {
		n := m.cachedNotice
		style := noticeInfoStyle
		switch n.Severity {
		case notice.SeverityWarning:
			style = noticeWarningStyle
		case notice.SeverityError:
			style = noticeErrorStyle
		}
		text := n.Title
		if n.Message != "" {
			text += ": " + n.Message
		}
		return style.Render(" " + truncateText(text, m.width-2))
	}

	return statusBarStyle.Render(" " + m.cfg.Channel.URL)
}

func (m Model) overlayDetail(base string) string {
	overlayW := m.width * 70 / 100
	if overlayW < 40 {
		overlayW = 40
	}
	if m.width > 0 && overlayW > m.width-4 {
		overlayW = m.width - 4
	}
	overlayH := m.height * 60 / 100
	if overlayH < 10 {
		overlayH = 10
	}
	if m.height > 0 && overlayH > m.height-4 {
		overlayH = m.height - 4
	}

	contentW := overlayW - 6
	if contentW < 10 {
		contentW = 10
	}
	contentH := overlayH - 4
	if contentH < 3 {
		contentH = 3
	}

	wrapped := wrapLines(m.detailContent, contentW)

	startIdx := m.detailScrollPos
	if startIdx > len(wrapped)-contentH {
		startIdx = len(wrapped) - contentH
	}
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := startIdx + contentH
	if endIdx > len(wrapped) {
		endIdx = len(wrapped)
	}

	body := strings.Join(wrapped[startIdx:endIdx], "\n")

	title := panelTitleStyle.Render(m.detailTitle)
	footer := dimStyle.Render("Esc/Enter: Close")
	if len(wrapped) > contentH {
		footer += dimStyle.Render("  Up/Down: Scroll")
	}

	dialog := detailOverlayStyle.
		Width(overlayW - 2).
		Render(title + "\n\n" + body + "\n\n" + footer)

	return placeOverlay(dialog, base)
}

// wrapLines breaks every line of s at word boundaries to at most w runes.
func wrapLines(s string, w int) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		r := []rune(line)
		for len(r) > w {
			cut := w
			for i := w; i > 0; i-- {
				if r[i] == ' ' {
					cut = i
					break
				}
			}
			out = append(out, string(r[:cut]))
			r = r[cut:]
			if len(r) > 0 && r[0] == ' ' {
				r = r[1:]
			}
		}
		out = append(out, string(r))
	}
	return out
}

func placeOverlay(fg, bg string) string {
	return lipgloss.Place(
		lipgloss.Width(bg),
		lipgloss.Height(bg),
		lipgloss.Center,
		lipgloss.Center,
		fg,
		lipgloss.WithWhitespaceChars(" "),
	)
}

// truncateText shortens s to at most max runes, marking the cut with "...".
func truncateText(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

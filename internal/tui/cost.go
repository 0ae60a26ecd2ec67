package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nixlim/hva-top/internal/burnrate"
)

// Block-character digit fonts for the cost odometer. renderCostDisplay
// picks the largest one that fits.
var digitFontLarge = map[rune][5]string{
	'0': {"█▀▀▀▀█", "█    █", "█    █", "█    █", "█▄▄▄▄█"},
	'1': {"    ▀█", "     █", "     █", "     █", "    ▄█"},
	'2': {" ▀▀▀▀█", "     █", "█▀▀▀▀ ", "█     ", "█▄▄▄▄▄"},
	'3': {"▀▀▀▀▀█", "     █", " ▀▀▀▀█", "     █", "▄▄▄▄▄█"},
	'4': {"█    █", "█    █", "▀▀▀▀▀█", "     █", "     █"},
	'5': {"█▀▀▀▀▀", "█     ", "▀▀▀▀▀█", "     █", "▄▄▄▄▄█"},
	'6': {"█▀▀▀▀▀", "█     ", "█▀▀▀▀█", "█    █", "█▄▄▄▄█"},
	'7': {"▀▀▀▀▀█", "     █", "     █", "     █", "     █"},
	'8': {"█▀▀▀▀█", "█    █", "█▀▀▀▀█", "█    █", "█▄▄▄▄█"},
	'9': {"█▀▀▀▀█", "█    █", "▀▀▀▀▀█", "     █", "▄▄▄▄▄█"},
	'.': {"      ", "      ", "      ", "      ", "  █   "},
	',': {"      ", "      ", "      ", "      ", "  █   "},
}

var digitFontMedium = map[rune][3]string{
	'0': {"█▀▀█", "█  █", "█▄▄█"},
	'1': {"  ▀█", "   █", "  ▄█"},
	'2': {"▀▀▀█", "█▀▀▀", "█▄▄▄"},
	'3': {"▀▀▀█", " ▀▀█", "▄▄▄█"},
	'4': {"█  █", "▀▀▀█", "   █"},
	'5': {"█▀▀▀", "▀▀▀█", "▄▄▄█"},
	'6': {"█▀▀▀", "█▀▀█", "█▄▄█"},
	'7': {"▀▀▀█", "   █", "   █"},
	'8': {"█▀▀█", "█▀▀█", "█▄▄█"},
	'9': {"█▀▀█", "▀▀▀█", "▄▄▄█"},
	'.': {"   ", "   ", " ▄ "},
	',': {"   ", "   ", " ▄ "},
}

// renderCostPanel renders cumulative spend, the hourly rate with its trend,
// projections, and a per-model breakdown.
func (m Model) renderCostPanel(w, h int) string {
	br := m.cachedCost

	contentH := h - 2
	if contentH < 1 {
		contentH = 1
	}
	contentW := w - 4
	if contentW < 10 {
		contentW = 10
	}

	lines := []string{panelTitleStyle.Render("Cost")}

	// Lines below the odometer: rate, session, projections, baseline,
	// then up to three models.
	extraLines := 4
	shown := br.PerModel
	if len(shown) > 3 {
		shown = shown[:3]
	}
	extraLines += len(shown)

	costStr := fmt.Sprintf("%.2f", br.TotalCost)
	lines = append(lines, renderCostDisplay(costStr, contentH-1-extraLines, contentW, costGreenStyle))

	rateStyle := m.rateStyle(br.HourlyRate)
	lines = append(lines, rateStyle.Render(fmt.Sprintf("$%.2f/hr %s", br.HourlyRate, br.Trend.Arrow())))
	lines = append(lines, dimStyle.Render(fmt.Sprintf("Session $%.4f  %s calls", br.SessionCost, formatNumber(int64(br.Calls)))))
	lines = append(lines, dimStyle.Render(fmt.Sprintf("Day $%.2f  Mon $%.2f", br.DailyProjection, br.MonthlyProjection)))
	if br.BaselineDays > 0 {
		lines = append(lines, dimStyle.Render(fmt.Sprintf("%dd history $%.2f  %s tok",
			br.BaselineDays, br.BaselineCost, formatNumber(br.BaselineTokens))))
	} else {
		lines = append(lines, dimStyle.Render("No usage history"))
	}

	for _, pm := range shown {
		line := fmt.Sprintf("  %s $%.2f/hr $%.4f", shortModel(pm.Model), pm.HourlyRate, pm.TotalCost)
		lines = append(lines, dimStyle.Render(truncateText(line, contentW)))
	}

	return renderBorderedPanel(strings.Join(lines, "\n"), w, h)
}

// renderCostDisplay renders a cost string at the largest font size that fits
// within availH rows and availW columns, falling back to plain text.
func renderCostDisplay(s string, availH, availW int, style lipgloss.Style) string {
	if availH >= 5 && digitWidth(s, 6) <= availW {
		return renderDigitFont(s, digitFontLarge, 5, style)
	}
	if availH >= 3 && digitWidth(s, 4) <= availW {
		return renderDigitFont(s, digitFontMedium, 3, style)
	}
	return style.Render("$" + s)
}

// digitWidth is the rendered width of s at charW columns per glyph, one
// column gap between glyphs and one for the "$" prefix.
func digitWidth(s string, charW int) int {
	n := len([]rune(s))
	if n == 0 {
		return 1
	}
	return 1 + n*charW + (n - 1)
}

// renderDigitFont renders s with font, placing "$" on the middle row.
func renderDigitFont[T [3]string | [5]string](s string, font map[rune]T, nRows int, style lipgloss.Style) string {
	rows := make([]string, nRows)
	for i, ch := range s {
		pattern, ok := font[ch]
		if !ok {
			pattern = font['.']
		}
		for row := 0; row < nRows; row++ {
			if i > 0 {
				rows[row] += " "
			}
			rows[row] += pattern[row]
		}
	}

	midRow := nRows / 2
	result := make([]string, 0, nRows)
	for i, row := range rows {
		prefix := " "
		if i == midRow {
			prefix = "$"
		}
		result = append(result, style.Render(prefix+row))
	}
	return strings.Join(result, "\n")
}

func (m Model) rateStyle(hourlyRate float64) lipgloss.Style {
	if m.cost == nil {
		return costGreenStyle
	}
	switch m.cost.ColorForRate(hourlyRate) {
	case burnrate.ColorYellow:
		return costYellowStyle
	case burnrate.ColorRed:
		return costRedStyle
	default:
		return costGreenStyle
	}
}

// shortModel drops a provider prefix ("openai/") and a trailing date
// stamp ("-20250929") from a model name.
func shortModel(model string) string {
	s := model
	if i := strings.LastIndex(s, "/"); i >= 0 && i < len(s)-1 {
		s = s[i+1:]
	}
	if len(s) > 9 && s[len(s)-9] == '-' && allDigits(s[len(s)-8:]) {
		s = s[:len(s)-9]
	}
	if s == "" {
		return model
	}
	return s
}

func allDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// formatNumber formats n with comma separators (1,234,567).
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}

	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

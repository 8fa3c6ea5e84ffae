package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/meshtopo/pkg/mesh"
	"github.com/matzehuels/meshtopo/pkg/mesh/quality"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings such as the mesh name in 'stats'.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleHighlight renders addresses and other emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue renders values and paths.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleWarning renders warnings and suspicious values.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Status lines
// =============================================================================

func printStatus(icon lipgloss.Style, glyph, msg string) {
	fmt.Println(icon.Render(glyph) + " " + msg)
}

func printSuccess(format string, args ...any) {
	printStatus(styleIconSuccess, "✓", fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printStatus(styleIconError, "✗", fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printStatus(styleIconWarning, "!", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printStatus(styleIconInfo, "›", fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the last status.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

// =============================================================================
// Mesh summaries
// =============================================================================

// printStats prints the counts of a processed mesh on one line, followed
// by whether it came from the cache.
func printStats(c mesh.Counts, triangles int, cached bool) {
	var parts []string
	for _, p := range []struct {
		n    int
		unit string
	}{{c.Vertices, "vertices"}, {c.Edges, "edges"}, {triangles, "triangles"}} {
		if p.n > 0 {
			parts = append(parts, StyleDim.Render(fmt.Sprintf("%d %s", p.n, p.unit)))
		}
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleIconInfo.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printQuality prints the distribution of triangle quality.
func printQuality(q quality.Summary) {
	printKeyValue("triangles", fmt.Sprint(q.Triangles))
	if q.Triangles == 0 {
		return
	}
	inverted := fmt.Sprint(q.Inverted)
	if q.Inverted > 0 {
		inverted = StyleWarning.Render(inverted)
	}
	printKeyValue("inverted", inverted)
	printKeyValue("min", fmt.Sprintf("%.4f", q.Min))
	printKeyValue("p10", fmt.Sprintf("%.4f", q.P10))
	printKeyValue("median", fmt.Sprintf("%.4f", q.Median))
	printKeyValue("mean", fmt.Sprintf("%.4f ± %.4f", q.Mean, q.StdDev))
	printKeyValue("max", fmt.Sprintf("%.4f", q.Max))
}

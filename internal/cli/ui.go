package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/villas/pkg/pipeline"
)

// Palette. The plan view colors tiles with the same values.
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
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)

	styleValue       = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// mark is the leading icon of a status line.
type mark struct {
	icon  string
	style lipgloss.Style
}

var (
	markSuccess = mark{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	markError   = mark{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	markWarning = mark{"!", lipgloss.NewStyle().Foreground(colorYellow)}
	markInfo    = mark{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (m mark) String() string { return m.style.Render(m.icon) }

// uiOut receives status output. The root command points it at its stderr.
var uiOut io.Writer = os.Stdout

func printLine(parts ...string) {
	fmt.Fprintln(uiOut, strings.Join(parts, " "))
}

func printSuccess(format string, args ...any) {
	printLine(markSuccess.String(), fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(markError.String(), fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(markWarning.String(), markWarning.style.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(markInfo.String(), fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	printLine(" ", StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a written file.
func printFile(path string) {
	printLine(" ", StyleDim.Render("→"), styleValue.Render(path))
}

func printKeyValue(key, value string) {
	printLine(styleKey.Render(key), styleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	printLine(StyleDim.Render(description+":"), styleCommand.Render(cmd))
}

// printStats prints a one-line plan summary, e.g.
// "3 rooms · 2 regions · 1 passage · cached".
func printStats(stats pipeline.Stats, cached bool) {
	parts := []string{
		plural(stats.RoomCount, "room"),
		plural(stats.RegionCount, "region"),
	}
	if stats.PassageCount > 0 {
		parts = append(parts, plural(stats.PassageCount, "passage"))
	}
	origin := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		origin = lipgloss.NewStyle().Foreground(colorGreen).Render("cached")
	}

	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	printLine(" ", strings.Join(append(parts, origin), StyleDim.Render(" · ")))
}

// plural formats n with a singular or plural noun ("1 room", "3 entries").
func plural(n int, noun string) string {
	switch {
	case n == 1:
		return "1 " + noun
	case strings.HasSuffix(noun, "y"):
		return fmt.Sprintf("%d %sies", n, strings.TrimSuffix(noun, "y"))
	default:
		return fmt.Sprintf("%d %ss", n, noun)
	}
}

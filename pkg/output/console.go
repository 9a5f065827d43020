package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	isatty "github.com/mattn/go-isatty"
)

var (
	styleArrow   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)  // cyan/blue
	styleSection = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)  // bright white
	styleDesc    = lipgloss.NewStyle().Faint(true)                                  // dim
	styleWarnLbl = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true) // yellow
	styleWarnTxt = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))            // yellow
	styleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)  // green
	styleZero    = lipgloss.NewStyle().Faint(true)
	colorEnabled = true
)

// InitConsole configures color output based on noColor flag and TTY detection.
func InitConsole(noColor bool) {
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	colorEnabled = tty && !noColor
}

func r(st lipgloss.Style, s string) string {
	if !colorEnabled {
		return s
	}
	return st.Render(s)
}

// TemplateHeader returns a colored header for a template being processed.
func TemplateHeader(name, description string) string {
	var b strings.Builder
	arrow := r(styleArrow, "→")
	b.WriteString(fmt.Sprintf("%s %s\n", arrow, r(styleSection, name)))
	if strings.TrimSpace(description) != "" {
		b.WriteString(r(styleDesc, "  "+description))
		b.WriteByte('\n')
	}
	return b.String()
}

// Warnf returns a single-line colored warning string with a standard prefix.
func Warnf(format string, a ...interface{}) string {
	msg := fmt.Sprintf(format, a...)
	return r(styleWarnLbl, "Warning:") + " " + r(styleWarnTxt, msg)
}

// GeneratedCount returns a colored per-template summary line.
func GeneratedCount(n int) string {
	if n <= 0 {
		return r(styleZero, "  Generated 0 file(s)")
	}
	return r(styleDone, fmt.Sprintf("  Generated %d file(s)", n))
}

// ListFiles returns a faint bullet list of generated file names.
func ListFiles(names []string) string {
	if len(names) == 0 {
		return ""
	}
	var b strings.Builder
	for _, n := range names {
		b.WriteString(r(styleDesc, "    - "))
		b.WriteString(r(styleDesc, n))
		b.WriteByte('\n')
	}
	return b.String()
}

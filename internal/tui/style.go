package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/xmazu/envsync/internal/updater"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	KeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)

	InsertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	DeleteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))
)

func Header(text string) string {
	return HeaderStyle.Render(text)
}

func Success(text string) string {
	return SuccessStyle.Render(text)
}

func Warning(text string) string {
	return WarningStyle.Render(text)
}

func Error(text string) string {
	return ErrorStyle.Render(text)
}

func Muted(text string) string {
	return MutedStyle.Render(text)
}

func Key(text string) string {
	return KeyStyle.Render(text)
}

func Label(text string) string {
	return LabelStyle.Render(text)
}

// PrintDiff writes lines with a +/- gutter. Unchanged lines are muted.
func PrintDiff(w io.Writer, lines []updater.DiffLine) {
	for _, l := range lines {
		switch l.Op {
		case updater.DiffInsert:
			fmt.Fprintln(w, InsertStyle.Render("+ "+l.Text))
		case updater.DiffDelete:
			fmt.Fprintln(w, DeleteStyle.Render("- "+l.Text))
		default:
			fmt.Fprintln(w, Muted("  "+l.Text))
		}
	}
}

// PrintKeys writes "label: A, B" when keys is not empty.
func PrintKeys(w io.Writer, label string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(w, "%s ", Label(label+":"))
	for i, k := range keys {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprint(w, Key(k))
	}
	fmt.Fprintln(w)
}

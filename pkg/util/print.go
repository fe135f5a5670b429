package util

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Colors
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBold   = "\033[1m"
)

// Emojis
const (
	EmojiRocket  = "🚀"
	EmojiError   = "❌"
	EmojiCheck   = "✅"
	EmojiKey     = "🔑"
	EmojiGear    = "⚙️"
	EmojiWarning = "⚠️"
	EmojiRobot   = "🤖"
	EmojiScale   = "⚖️"
)

// Common formatting
const (
	SeparatorChar  = "-"
	SeparatorWidth = 80
)

// GetSeparator returns a separator line of standard width
func GetSeparator() string {
	return strings.Repeat(SeparatorChar, SeparatorWidth)
}

// Printer handles output formatting with configurable writer
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer with the given writer
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w}
}

// PrintTitle prints a title with an emoji and separator
func (p *Printer) PrintTitle(title string, emoji string) {
	fmt.Fprintf(p.out, "\n%s %s%s%s", emoji, ColorBold, title, ColorReset)
	p.PrintSeparator()
}

const maxErrorLength = 300

// PrintError prints an error message
func (p *Printer) PrintError(message string) {
	message = strings.Join(strings.Fields(message), " ")
	if runewidth.StringWidth(message) > maxErrorLength {
		message = runewidth.Truncate(message, maxErrorLength, "...")
	}
	fmt.Fprintf(p.out, "%s%s %s%s\n", ColorRed, EmojiError, message, ColorReset)
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) {
	fmt.Fprintf(p.out, "%s%s %s%s\n", ColorGreen, EmojiCheck, message, ColorReset)
}

// PrintWarning prints a warning message
func (p *Printer) PrintWarning(message string) {
	fmt.Fprintf(p.out, "%s%s %s%s\n", ColorYellow, EmojiWarning, message, ColorReset)
}

// Printf formats and prints a message
func (p *Printer) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// Println prints a message with a newline
func (p *Printer) Println(args ...interface{}) {
	fmt.Fprintln(p.out, args...)
}

// PrintSeparator prints a separator line
func (p *Printer) PrintSeparator() {
	p.Printf("\n%s\n", GetSeparator())
}

// PrintTable prints rows in columns padded to their widest display cell.
// Rows shorter than header are padded with empty cells.
func (p *Printer) PrintTable(header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(header) && i < len(row); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	p.Println(ColorBold + formatRow(header, widths) + ColorReset)
	for _, row := range rows {
		p.Println(formatRow(row, widths))
	}
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = runewidth.FillRight(cell, w)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

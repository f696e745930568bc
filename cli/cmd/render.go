package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/numscript/lang"
)

// contextLines is the number of source lines shown on each side of the line
// an error points at.
const contextLines = 2

type renderStyle struct {
	title, gutter, mark, caret lipgloss.Style
}

func newRenderStyle(w io.Writer) renderStyle {
	r := lipgloss.NewRenderer(w)

	return renderStyle{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		gutter: r.NewStyle().Faint(true),
		mark:   r.NewStyle().Underline(true).Foreground(lipgloss.Color("1")),
		caret:  r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// RenderError writes err for the script src. Errors located in the source
// are shown with up to five lines of context and the offending span
// highlighted; other errors are written on one line.
func RenderError(w io.Writer, src Source, err error) error {
	style := newRenderStyle(w)

	var le *lang.Error
	if !errors.As(err, &le) || !le.Located() {
		_, werr := fmt.Fprintln(w, style.title.Render(src.Name+": "+err.Error()))

		return werr
	}

	lines := strings.SplitAfter(src.Text, "\n")
	offset := min(max(le.Offset(), 0), len(src.Text))
	end := min(offset+le.Length(), len(src.Text))

	row, col := position(lines, offset)

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", style.title.Render(
		fmt.Sprintf("%s:%d:%d: %s", src.Name, row+1, col+1, le.Message())))

	first := max(row-contextLines, 0)
	last := min(row+contextLines, len(lines)-1)
	width := len(strconv.Itoa(last + 1))

	start := 0
	for i := range first {
		start += len(lines[i])
	}

	for i := first; i <= last; i++ {
		line := strings.TrimRight(lines[i], "\r\n")
		lo := min(max(offset-start, 0), len(line))
		hi := min(max(end-start, 0), len(line))

		sb.WriteString(style.gutter.Render(fmt.Sprintf("%*d │ ", width, i+1)))
		sb.WriteString(line[:lo])
		sb.WriteString(style.mark.Render(line[lo:hi]))
		sb.WriteString(line[hi:])
		sb.WriteByte('\n')

		if i == row {
			pad := strings.Repeat(" ", width+3+lipgloss.Width(line[:lo]))
			span := max(lipgloss.Width(line[lo:hi]), 1)
			sb.WriteString(pad)
			sb.WriteString(style.caret.Render("^" + strings.Repeat("~", span-1)))
			sb.WriteByte('\n')
		}

		start += len(lines[i])
	}

	_, werr := io.WriteString(w, sb.String())

	return werr
}

// position returns the zero-based line and display column of offset.
func position(lines []string, offset int) (row, col int) {
	for i, line := range lines {
		if offset < len(line) || i == len(lines)-1 {
			return i, lipgloss.Width(line[:min(offset, len(line))])
		}

		offset -= len(line)
	}

	return 0, 0
}

package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/example/go-visemes/internal/analysis"
	"github.com/example/go-visemes/internal/viseme"
)

// styles holds the lipgloss styles for text output. They degrade to plain
// text when w is not a terminal.
type styles struct {
	header   lipgloss.Style
	word     lipgloss.Style
	pause    lipgloss.Style
	raw      lipgloss.Style
	visemes  lipgloss.Style
	fallback lipgloss.Style
	label    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		word:     r.NewStyle().Bold(true),
		pause:    r.NewStyle().Foreground(lipgloss.Color("241")),
		raw:      r.NewStyle().Foreground(lipgloss.Color("245")),
		visemes:  r.NewStyle().Foreground(lipgloss.Color("86")),
		fallback: r.NewStyle().Italic(true).Foreground(lipgloss.Color("214")),
		label:    r.NewStyle().Bold(true),
	}
}

// renderText writes a word-by-word breakdown of each result.
func renderText(w io.Writer, inputs []string, results []analysis.Result) error {
	st := newStyles(w)

	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(st.header.Render("Text: "+inputs[i]) + "\n")

		for _, wr := range res.Detailed {
			wordStyle := st.word
			if wr.IsPause() {
				wordStyle = st.pause
			}
			line := wordStyle.Render(pad(wr.Word, 18)) +
				st.raw.Render(pad(strings.Join(wr.RawPhonemes, " "), 28)) +
				st.visemes.Render(joinCodes(wr.Phonemes))
			if wr.Fallback != "" {
				line += " " + st.fallback.Render("("+string(wr.Fallback)+")")
			}
			b.WriteString("  " + strings.TrimRight(line, " ") + "\n")
		}

		b.WriteString(st.label.Render("Sequence:") + " " + joinCodes(res.Sequence) + "\n")
		b.WriteString(st.label.Render("Raw:") + " " + strings.Join(res.RawSequence, " ") + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// renderTable writes the phone → viseme table grouped by viseme in
// alphabet order.
func renderTable(w io.Writer) error {
	st := newStyles(w)
	table := viseme.Table()

	var b strings.Builder
	b.WriteString(st.header.Render(fmt.Sprintf("%d phones → %d visemes", len(table), len(viseme.Alphabet()))) + "\n")

	for _, code := range viseme.Alphabet() {
		var phones []string
		for phone, c := range table {
			if c == code {
				phones = append(phones, phone)
			}
		}
		if len(phones) == 0 {
			continue
		}
		slices.Sort(phones)
		b.WriteString("  " + st.word.Render(pad(string(code), 8)) + strings.Join(phones, " ") + "\n")
	}
	b.WriteString("  " + st.pause.Render(pad("*", 8)) + "unmapped codes become " + string(viseme.Schwa) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// pad left-aligns s in a column of width n, leaving one space after longer
// values.
func pad(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s + " "
}

func joinCodes(codes []viseme.Code) string {
	s := make([]string, len(codes))
	for i, c := range codes {
		s[i] = string(c)
	}
	return strings.Join(s, " ")
}

// Package render formats quotes for terminals.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

var (
	accent  = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#6B7280")
	danger  = lipgloss.Color("#E53935")
	primary = lipgloss.Color("#2196F3")
)

// Renderer draws quotes as bordered cards.
type Renderer struct {
	card     lipgloss.Style
	text     lipgloss.Style
	category lipgloss.Style
	pending  lipgloss.Style
	heading  lipgloss.Style
	width    int
}

// New creates a renderer writing through out; color support is detected
// from out. A width of zero leaves cards unwrapped.
func New(out io.Writer, width int) *Renderer {
	r := lipgloss.NewRenderer(out)

	card := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if width > 0 {
		card = card.Width(width)
	}

	return &Renderer{
		card:     card,
		text:     r.NewStyle().Italic(true),
		category: r.NewStyle().Foreground(muted),
		pending:  r.NewStyle().Foreground(danger),
		heading:  r.NewStyle().Bold(true).Foreground(primary),
		width:    width,
	}
}

// Quote renders a single quote card.
func (r *Renderer) Quote(q domain.Quote) string {
	meta := r.category.Render("#" + q.Category)
	if !q.Synced() {
		meta = lipgloss.JoinHorizontal(lipgloss.Top, meta, " ", r.pending.Render("(not synced)"))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		r.text.Render(fmt.Sprintf("%q", q.Text)),
		meta,
	)

	return r.card.Render(body)
}

// Quotes renders a heading followed by one card per quote.
func (r *Renderer) Quotes(category string, quotes []domain.Quote) string {
	if category == "" {
		category = domain.CategoryAll
	}

	parts := make([]string, 0, len(quotes)+1)
	parts = append(parts, r.heading.Render(fmt.Sprintf("%s (%d)", category, len(quotes))))

	if len(quotes) == 0 {
		parts = append(parts, r.category.Render("No quotes in this category."))
	}

	for _, q := range quotes {
		parts = append(parts, r.Quote(q))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Categories renders the category list, marking the selected one.
func (r *Renderer) Categories(categories []string, selected string) string {
	var b strings.Builder

	all := append([]string{domain.CategoryAll}, categories...)
	for _, c := range all {
		if c == selected {
			b.WriteString(r.heading.Render("* " + c))
		} else {
			b.WriteString("  " + c)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Notification renders a notice as a single line.
func (r *Renderer) Notification(n ports.Notification) string {
	style := r.category
	switch n.Level {
	case ports.NotificationSuccess:
		style = r.heading
	case ports.NotificationError:
		style = r.pending
	}

	return style.Render(fmt.Sprintf("[%s] %s", n.Level, n.Message))
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

type styles struct {
	title   lipgloss.Style
	key     lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
}

// printer writes human output with lipgloss styles, or JSON with --json.
type printer struct {
	w      io.Writer
	json   bool
	styles styles
}

func newPrinter(cmd *cobra.Command) *printer {
	out := cmd.OutOrStdout()
	p := &printer{w: out, json: isJSONMode(cmd)}
	if !isTerminal(out) {
		plain := lipgloss.NewStyle()
		p.styles = styles{title: plain, key: plain, muted: plain, success: plain}
		return p
	}
	p.styles = styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")), // Blue
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),            // Cyan
		muted:   lipgloss.NewStyle().Faint(true),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")), // Green
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func (p *printer) writeJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) title(text string) {
	fmt.Fprintln(p.w, p.styles.title.Render(text))
}

func (p *printer) row(key, value string) {
	fmt.Fprintf(p.w, "  %s  %s\n", p.styles.key.Render(key), value)
}

func (p *printer) note(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.muted.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.success.Render(fmt.Sprintf(format, args...)))
}

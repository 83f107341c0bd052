package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/sthwalo/acc-sub003/internal/engine"
	"github.com/sthwalo/acc-sub003/internal/model"
)

// FormatAmount renders money with two decimals and thousands separators.
func FormatAmount(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + b.String() + "." + frac
}

// RenderImportSummary describes one imported statement.
func RenderImportSummary(source string, r *engine.ImportResult) string {
	lines := []string{
		fmt.Sprintf("Transactions parsed: %d", r.Parsed),
		StyleSuccess(fmt.Sprintf("Saved: %d", r.Saved)),
		fmt.Sprintf("Duplicates ignored: %d", r.Duplicates),
		SubtleStyle.Render(fmt.Sprintf("Lines skipped: %d", r.Skipped)),
	}
	if r.OpeningBalance != nil {
		lines = append(lines, fmt.Sprintf("Opening balance: %s", FormatAmount(*r.OpeningBalance)))
	}
	if len(r.Errors) > 0 {
		lines = append(lines, StyleWarning(fmt.Sprintf("Rejected lines: %d", len(r.Errors))))
	}
	return RenderBox(FolderIcon+" "+source, strings.Join(lines, "\n"))
}

// RenderBatchSummary describes a journal run.
func RenderBatchSummary(r *engine.BatchResult) string {
	lines := []string{
		fmt.Sprintf("Processed: %d", r.Processed),
		fmt.Sprintf("Classified: %d", r.Classified),
		StyleSuccess(fmt.Sprintf("Journal entries: %d", r.Journaled)),
		SubtleStyle.Render(fmt.Sprintf("Already posted: %d", r.Skipped)),
	}
	if r.Failed > 0 {
		lines = append(lines, StyleError(fmt.Sprintf("Failed: %d", r.Failed)))
	}
	if len(r.Unclassified) > 0 {
		lines = append(lines, StyleWarning(fmt.Sprintf("Unclassified: %d (teach them with: fin rules learn)", len(r.Unclassified))))
	}
	lines = append(lines, SubtleStyle.Render("Duration: "+r.Duration.Round(1e6).String()))

	title := ChartIcon + " Journal run"
	if r.Success() {
		title += " " + SuccessIcon
	}
	return RenderBox(title, strings.Join(lines, "\n"))
}

// RenderRules renders classification rules as a table.
func RenderRules(rules []model.ClassificationRule) string {
	if len(rules) == 0 {
		return SubtleStyle.Render("No classification rules")
	}

	headers := []string{"ID", "Scope", "Pattern", "Match", "Account", "Priority", "Used"}
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		scope := "company"
		if r.IsStandard() {
			scope = "standard"
		}
		rows = append(rows, []string{
			fmt.Sprint(r.ID),
			scope,
			r.Pattern,
			string(r.MatchType),
			r.AccountCode + " " + r.AccountName,
			fmt.Sprint(r.Priority),
			fmt.Sprint(r.UsageCount),
		})
	}
	return renderTable(headers, rows)
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	render := func(style lipgloss.Style, cells []string) string {
		out := make([]string, len(cells))
		for i, cell := range cells {
			out[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, out...))
	}

	lines := []string{render(TableHeaderStyle, headers)}
	for _, row := range rows {
		lines = append(lines, render(lipgloss.NewStyle(), row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

package report

import (
	"strconv"
	"strings"

	"whohas/internal/config"
	"whohas/internal/database"
	"whohas/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"gorm.io/gorm"
)

// NoRecordsMessage is rendered instead of an empty table.
const NoRecordsMessage = "- No accepted ARP requests captured\n" +
	"- If this is unexpected, check your allow/deny configuration"

type Options struct {
	Resolve bool                 // include PTR columns
	Active  bool                 // include the TS (unresponsive target) column
	Profile *config.ColorProfile // nil renders plain text
}

// Build renders the ledger as a table: most requested pairs first, rows
// grouped by sender with the sender label (and its PTR) only on the group's
// first row. Groups alternate between the profile's odd and even styles,
// starting with odd.
func Build(db *gorm.DB, opts Options) (string, error) {
	transactions, err := database.AllTransactions(db)
	if err != nil {
		return "", err
	}

	if len(transactions) == 0 {
		return NoRecordsMessage, nil
	}

	headers := []string{"Sender", "Target"}
	if opts.Active {
		headers = append(headers, "TS")
	}
	headers = append(headers, "ARP#")
	if opts.Resolve {
		headers = append(headers, "Sender PTR", "Target PTR")
	}

	// Collect rows per sender; a sender's first appearance fixes its
	// group's position.
	var groupOrder []string
	groups := make(map[string][][]string)
	for _, transaction := range transactions {
		sender := transaction.Sender.Value
		rows, seen := groups[sender]
		if !seen {
			groupOrder = append(groupOrder, sender)
		}
		groups[sender] = append(rows, buildRow(transaction, !seen, opts))
	}

	var rows [][]string
	for i, sender := range groupOrder {
		style := groupStyle(opts.Profile, i+1)
		for _, row := range groups[sender] {
			rows = append(rows, styleRow(row, style))
		}
	}

	styledHeaders := headers
	if opts.Profile != nil {
		styledHeaders = styleRow(headers, &opts.Profile.Header)
	}

	return renderTable(styledHeaders, rows), nil
}

func buildRow(transaction domain.Transaction, firstOfGroup bool, opts Options) []string {
	row := []string{"", transaction.Target.Value}
	if firstOfGroup {
		row[0] = transaction.Sender.Value
	}

	if opts.Active {
		flag := ""
		if transaction.Target.Unresponsive() {
			flag = "X"
			if opts.Profile != nil && opts.Profile.Marker != "" {
				flag = opts.Profile.Marker
			}
		}
		row = append(row, flag)
	}

	row = append(row, strconv.FormatUint(transaction.Count, 10))

	if opts.Resolve {
		senderName := ""
		if firstOfGroup {
			senderName = transaction.Sender.CanonicalName()
		}
		row = append(row, senderName, transaction.Target.CanonicalName())
	}

	return row
}

func groupStyle(profile *config.ColorProfile, groupIndex int) *lipgloss.Style {
	if profile == nil {
		return nil
	}
	if groupIndex%2 == 1 {
		return &profile.Odd
	}
	return &profile.Even
}

func styleRow(row []string, style *lipgloss.Style) []string {
	if style == nil {
		return row
	}

	styled := make([]string, len(row))
	for i, cell := range row {
		if cell == "" {
			continue
		}
		styled[i] = style.Render(cell)
	}
	return styled
}

// renderTable lays out the cells with two-space gutters and a dashed rule
// under the headers. Widths are measured with lipgloss so styled cells line
// up with plain ones.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow(&b, headers, widths)

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	writeRow(&b, rule, widths)

	for _, row := range rows {
		writeRow(&b, row, widths)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	line := make([]string, len(cells))
	for i, cell := range cells {
		pad := widths[i] - lipgloss.Width(cell)
		if pad < 0 {
			pad = 0
		}
		line[i] = cell + strings.Repeat(" ", pad)
	}
	b.WriteString(strings.TrimRight(strings.Join(line, "  "), " "))
	b.WriteString("\n")
}

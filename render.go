package outdated

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Literals used when a field has no value.
const (
	missingLiteral = "MISSING"
	globalLiteral  = "global"
)

var (
	styleHeader  = lipgloss.NewStyle().Underline(true)
	styleBehind  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow: update within range
	styleOutside = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red: outside range or missing
	styleWanted  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	styleLatest  = lipgloss.NewStyle().Foreground(lipgloss.Color("5")) // magenta
)

// Render turns records into the encoding selected by opts: JSON, parseable
// lines, or the human table. Rendering an empty result set yields "".
func Render(records []Record, opts Options) string {
	if len(records) == 0 {
		return ""
	}
	switch {
	case opts.JSON:
		return renderJSON(records, opts)
	case opts.Parseable:
		return renderParseable(records, opts)
	default:
		return renderTable(records, opts)
	}
}

func renderTable(records []Record, opts Options) string {
	headers := []string{"Package", "Current", "Wanted", "Latest", "Location"}
	if opts.Long {
		headers = append(headers, "Package Type", "Homepage")
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		current := r.Current
		if current == "" {
			current = missingLiteral
		}
		location := r.Path
		if location == "" {
			location = globalLiteral
		}

		row := []string{r.Name, current, r.Wanted, r.Latest, location}
		if opts.Long {
			row = append(row, string(r.Group), r.Homepage)
		}
		if opts.Color {
			row[0] = colorName(r)
			row[2] = styleWanted.Render(row[2])
			row[3] = styleLatest.Render(row[3])
		}
		rows = append(rows, row)
	}

	// Column widths are measured on the visible text, not the styled bytes.
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = visualWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := visualWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	headerRow := make([]string, len(headers))
	for i, h := range headers {
		if opts.Color {
			h = styleHeader.Render(h)
		}
		headerRow[i] = h
	}
	writeRow(&b, headerRow, widths)
	for _, row := range rows {
		writeRow(&b, row, widths)
	}
	return b.String()
}

// writeRow pads cells to the column widths: versions right-aligned, the rest
// left-aligned.
func writeRow(b *strings.Builder, row []string, widths []int) {
	for i, cell := range row {
		if i > 0 {
			b.WriteString("  ")
		}
		pad := widths[i] - visualWidth(cell)
		rightAlign := i >= 1 && i <= 3
		if rightAlign {
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(cell)
		} else {
			b.WriteString(cell)
			if i < len(row)-1 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
	}
	b.WriteString("\n")
}

// colorName renders the package name yellow when the installed version
// already satisfies the declared range, red when it does not or the package
// is missing.
func colorName(r Record) string {
	if r.Current != "" && r.Current == r.Wanted {
		return styleBehind.Render(r.Name)
	}
	return styleOutside.Render(r.Name)
}

// visualWidth measures a cell's displayed width, ignoring ANSI styling
// escape sequences.
func visualWidth(s string) int {
	return lipgloss.Width(s)
}

func renderParseable(records []Record, opts Options) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		current := missingLiteral
		if r.Current != "" {
			current = fmt.Sprintf("%s@%s", r.Name, r.Current)
		}

		fields := []string{
			r.Path,
			fmt.Sprintf("%s@%s", r.Name, r.Wanted),
			current,
			fmt.Sprintf("%s@%s", r.Name, r.Latest),
		}
		if opts.Long {
			fields = append(fields, string(r.Group), r.Homepage)
		}
		lines = append(lines, strings.Join(fields, ":"))
	}
	return strings.Join(lines, "\n") + "\n"
}

type jsonRecord struct {
	Current  string `json:"current,omitempty"`
	Wanted   string `json:"wanted"`
	Latest   string `json:"latest"`
	Location string `json:"location,omitempty"`
	Type     string `json:"type,omitempty"`
	Homepage string `json:"homepage,omitempty"`
}

func renderJSON(records []Record, opts Options) string {
	out := make(map[string]jsonRecord, len(records))
	for _, r := range records {
		jr := jsonRecord{
			Current:  r.Current,
			Wanted:   r.Wanted,
			Latest:   r.Latest,
			Location: r.Path,
		}
		if opts.Long {
			jr.Type = string(r.Group)
			jr.Homepage = r.Homepage
		}
		out[r.Name] = jr
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		// Only strings go in; this cannot fail.
		return ""
	}
	return string(data) + "\n"
}

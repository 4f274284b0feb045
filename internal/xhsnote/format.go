package xhsnote

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatText  OutputFormat = "text"
	FormatTable OutputFormat = "table"
)

// ParseOutputFormat validates a format name
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatJSON, FormatText, FormatTable:
		return f, nil
	default:
		return "", errors.Errorf("unsupported format: %s (want json, text or table)", s)
	}
}

// Formatter handles output formatting
type Formatter struct {
	format OutputFormat
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(format OutputFormat, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// FormatResult writes a result envelope
func (f *Formatter) FormatResult(result Result) error {
	switch f.format {
	case FormatText:
		if !result.OK() {
			return f.formatErrorText(result)
		}
		return f.formatNotesText(result.Data.Notes)
	case FormatTable:
		if !result.OK() {
			return f.formatErrorText(result)
		}
		return f.formatNotesTable(result.Data.Notes)
	default:
		return f.formatJSON(result)
	}
}

// formatJSON outputs as JSON
func (f *Formatter) formatJSON(v interface{}) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

func (f *Formatter) formatErrorText(result Result) error {
	_, err := fmt.Fprintf(f.writer, "Error: %s\n", result.Message)
	return err
}

// formatNotesText formats notes as text
func (f *Formatter) formatNotesText(notes []NormalizedNote) error {
	for i, n := range notes {
		if i > 0 {
			fmt.Fprintln(f.writer, "---")
		}
		fmt.Fprintf(f.writer, "Title: %s\n", n.Title)
		fmt.Fprintf(f.writer, "ID: %s\n", n.NoteID)
		fmt.Fprintf(f.writer, "URL: %s\n", n.URL)
		fmt.Fprintf(f.writer, "Author: %s (%s)\n", n.Author.Nickname, n.Author.UserID)
		if t := n.Time.String(); t != "" {
			fmt.Fprintf(f.writer, "Time: %s\n", t)
		}
		fmt.Fprintf(f.writer, "Likes: %d  Collects: %d  Comments: %d  Shares: %d\n",
			n.Statistics.Likes, n.Statistics.Collects, n.Statistics.Comments, n.Statistics.Shares)

		if n.Content.Text != "" {
			fmt.Fprintf(f.writer, "\n%s\n", n.Content.Text)
		}
		if len(n.Content.Images) > 0 {
			fmt.Fprintln(f.writer, "\nImages:")
			for _, img := range n.Content.Images {
				fmt.Fprintf(f.writer, "  %s\n", img)
			}
		}
	}
	return nil
}

// formatNotesTable formats notes as a key-value table per note
func (f *Formatter) formatNotesTable(notes []NormalizedNote) error {
	for i, n := range notes {
		if i > 0 {
			fmt.Fprintln(f.writer)
		}
		title := n.Title
		// Truncate long titles
		if r := []rune(title); len(r) > 50 {
			title = string(r[:47]) + "..."
		}
		rows := [][]string{
			{"Title", title},
			{"ID", n.NoteID},
			{"URL", n.URL},
			{"Author", n.Author.Nickname},
			{"Author ID", n.Author.UserID},
			{"Time", n.Time.String()},
			{"Likes", strconv.FormatInt(n.Statistics.Likes, 10)},
			{"Collects", strconv.FormatInt(n.Statistics.Collects, 10)},
			{"Comments", strconv.FormatInt(n.Statistics.Comments, 10)},
			{"Shares", strconv.FormatInt(n.Statistics.Shares, 10)},
			{"Images", strconv.Itoa(len(n.Content.Images))},
		}
		if err := f.printTable([]string{"Field", "Value"}, rows); err != nil {
			return err
		}
	}
	return nil
}

// printTable prints a simple table
func (f *Formatter) printTable(headers []string, rows [][]string) error {
	if len(headers) == 0 {
		return nil
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	f.printRow(headers, widths)
	f.printSeparator(widths)
	for _, row := range rows {
		f.printRow(row, widths)
	}

	return nil
}

// printRow prints a table row
func (f *Formatter) printRow(cells []string, widths []int) {
	for i, cell := range cells {
		if i < len(widths) {
			if i < len(cells)-1 {
				fmt.Fprintf(f.writer, "%-*s  ", widths[i], cell)
			} else {
				fmt.Fprint(f.writer, cell)
			}
		}
	}
	fmt.Fprintln(f.writer)
}

// printSeparator prints a table separator
func (f *Formatter) printSeparator(widths []int) {
	for i, w := range widths {
		fmt.Fprint(f.writer, strings.Repeat("-", w))
		if i < len(widths)-1 {
			fmt.Fprint(f.writer, "  ")
		}
	}
	fmt.Fprintln(f.writer)
}

// Package presenter renders session snapshots for the terminal.
package presenter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/session"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

const (
	missingValue   = "(missing)"
	valueWidthMax  = 80
	loadingMessage = "Verifying..."
	idleMessage    = "Enter a URL to verify its Open Graph tags."
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts "table" or "json".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Presenter writes snapshots to an io.Writer.
type Presenter struct {
	out    io.Writer
	format Format
	color  bool
}

// New creates a Presenter. color enables ANSI colors in table output.
func New(out io.Writer, format Format, color bool) *Presenter {
	return &Presenter{out: out, format: format, color: color}
}

// Render writes snap. Exactly one of the loading, error, report or idle views
// is shown.
func (p *Presenter) Render(snap session.Snapshot) error {
	switch {
	case snap.Loading:
		return p.line(loadingMessage)
	case snap.Error != "":
		return p.renderError(snap.Error)
	case models.IsDisplayable(snap.Data):
		return p.renderReport(snap.Data)
	default:
		return p.line(idleMessage)
	}
}

func (p *Presenter) line(msg string) error {
	if p.format == FormatJSON {
		return nil
	}
	_, err := fmt.Fprintln(p.out, msg)
	return err
}

func (p *Presenter) renderError(msg string) error {
	if p.format == FormatJSON {
		return p.encode(map[string]string{"error": msg})
	}
	_, err := fmt.Fprintln(p.out, p.paint(text.FgRed, "Error: "+msg))
	return err
}

func (p *Presenter) renderReport(resp *models.VerificationResponse) error {
	if p.format == FormatJSON {
		return p.encode(resp)
	}

	verdict := p.paint(text.FgGreen, "valid")
	if !resp.Validation.IsValid {
		verdict = p.paint(text.FgRed, "invalid")
	}
	if _, err := fmt.Fprintf(p.out, "\n%s  [%s]  %s\n", resp.URL, verdict, resp.Timestamp); err != nil {
		return err
	}

	for _, t := range []table.Writer{
		p.tagsTable(resp.OGPData),
		p.validationTable(resp.Validation),
		p.previewsTable(resp.Previews),
	} {
		if _, err := fmt.Fprintln(p.out, t.Render()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Presenter) encode(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func (p *Presenter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

func (p *Presenter) tagsTable(data models.OGPData) table.Writer {
	t := p.newTable("Open Graph tags")
	t.AppendHeader(table.Row{"Tag", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: valueWidthMax}})

	rows := []struct{ tag, value string }{
		{"og:title", data.Title},
		{"og:description", data.Description},
		{"og:image", data.Image},
		{"og:url", data.URL},
		{"og:type", data.Type},
		{"og:site_name", data.SiteName},
		{"og:image:width", data.ImageWidth},
		{"og:image:height", data.ImageHeight},
		{"og:image:alt", data.ImageAlt},
	}
	for _, r := range rows {
		value := r.value
		if value == "" {
			value = p.paint(text.FgHiBlack, missingValue)
		}
		t.AppendRow(table.Row{r.tag, value})
	}
	return t
}

func (p *Presenter) validationTable(v models.ValidationResult) table.Writer {
	t := p.newTable("Validation")
	t.AppendHeader(table.Row{"Check", "Result"})
	t.AppendRows([]table.Row{
		{"has title", p.mark(v.Checks.HasTitle)},
		{"has description", p.mark(v.Checks.HasDescription)},
		{"has image", p.mark(v.Checks.HasImage)},
		{"image valid", p.mark(v.Checks.ImageValid)},
		{"url valid", p.mark(v.Checks.URLValid)},
	})
	if len(v.Errors)+len(v.Warnings) > 0 {
		t.AppendSeparator()
	}
	for _, e := range v.Errors {
		t.AppendRow(table.Row{"error", p.paint(text.FgRed, e)})
	}
	for _, w := range v.Warnings {
		t.AppendRow(table.Row{"warning", p.paint(text.FgYellow, w)})
	}
	return t
}

func (p *Presenter) previewsTable(previews models.PlatformPreviews) table.Writer {
	t := p.newTable("Platform previews")
	t.AppendHeader(table.Row{"Platform", "Title", "Title len", "Desc len", "Warnings"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: valueWidthMax / 2}})

	for _, platform := range models.Platforms() {
		preview, _ := previews.Get(platform)
		warnings := strings.Join(preview.Warnings, "\n")
		if warnings == "" {
			warnings = "-"
		} else {
			warnings = p.paint(text.FgYellow, warnings)
		}
		t.AppendRow(table.Row{
			platform.DisplayName(),
			preview.Title,
			fmt.Sprintf("%d/%d", preview.TitleLength, preview.MaxTitleLen),
			fmt.Sprintf("%d/%d", preview.DescLength, preview.MaxDescLen),
			warnings,
		})
	}
	return t
}

func (p *Presenter) mark(ok bool) string {
	if ok {
		return p.paint(text.FgGreen, "yes")
	}
	return p.paint(text.FgRed, "no")
}

func (p *Presenter) paint(color text.Color, s string) string {
	if !p.color {
		return s
	}
	return color.Sprint(s)
}

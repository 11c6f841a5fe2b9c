// Package article renders a reconciled filing into a publishable article.
// The body is written as Markdown and converted to the HTML the CMS expects.
package article

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"afmwatch/pkg/contracts/domain"
)

// Meta describes the register the filing came from, for wording.
type Meta struct {
	// PositionNoun is e.g. "net short position".
	PositionNoun string
	// RegisterName is the source register's display name.
	RegisterName string
}

// Article is the payload handed to the publisher. Status and category are
// publisher concerns and are attached there.
type Article struct {
	Title       string
	Excerpt     string
	ContentHTML string
	Tags        []string
	UniqueID    string
	DateISO     string
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

var titleCaser = cases.Title(language.English)

// Build renders one article from a reconciled filing.
func Build(rec domain.ReconciledFiling, meta Meta) (Article, error) {
	pct := formatPercent(rec.PercentValue, rec.PercentRaw)

	title := fmt.Sprintf("Current %s: %s — %s at %s",
		titleCaser.String(meta.PositionNoun), rec.Issuer, rec.Filer, pct)
	excerpt := fmt.Sprintf("%s currently holds a %s in %s of %s. Based on the %s register (date: %s).",
		rec.Filer, meta.PositionNoun, rec.Issuer, pct, meta.RegisterName, rec.DateISO)

	var html bytes.Buffer
	if err := markdown.Convert([]byte(body(rec, meta, pct)), &html); err != nil {
		return Article{}, fmt.Errorf("failed to render article body: %w", err)
	}
	// Invisible duplicate-detection marker, embedded in the content itself
	// so it survives CMS round-trips.
	fmt.Fprintf(&html, "\n<!-- afm:%s -->\n", rec.UniqueID)

	tags := []string{rec.Issuer}
	if rec.Filer != rec.Issuer {
		tags = append(tags, rec.Filer)
	}

	return Article{
		Title:       title,
		Excerpt:     excerpt,
		ContentHTML: html.String(),
		Tags:        tags,
		UniqueID:    rec.UniqueID,
		DateISO:     rec.DateISO,
	}, nil
}

func body(rec domain.ReconciledFiling, meta Meta, pct string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### %s Snapshot\n\n", titleCaser.String(meta.PositionNoun))
	fmt.Fprintf(&b, "- **Issuer:** %s\n", rec.Issuer)
	if rec.IssuerISIN != "" {
		fmt.Fprintf(&b, "- **ISIN:** %s\n", rec.IssuerISIN)
	}
	fmt.Fprintf(&b, "- **Reporting party:** %s\n", rec.Filer)
	fmt.Fprintf(&b, "- **Position:** %s\n", pct)
	if rec.DateISO != "" {
		fmt.Fprintf(&b, "- **Date (AFM):** %s\n", rec.DateISO)
	}
	b.WriteString("\n")

	if rec.HasPrevious() {
		prev := formatPercent(*rec.PreviousPercentValue, rec.PreviousPercentRaw)
		switch rec.Direction {
		case domain.DirectionUp:
			fmt.Fprintf(&b, "The position was **increased** from %s (reported %s).\n\n", prev, rec.PreviousDateISO)
		case domain.DirectionDown:
			fmt.Fprintf(&b, "The position was **reduced** from %s (reported %s).\n\n", prev, rec.PreviousDateISO)
		default:
			fmt.Fprintf(&b, "The position is **unchanged** from %s (reported %s).\n\n", prev, rec.PreviousDateISO)
		}
	}

	if len(rec.History) > 0 {
		b.WriteString("#### Recent history\n\n")
		b.WriteString("| Date | Position |\n| --- | --- |\n")
		for _, h := range rec.History {
			fmt.Fprintf(&b, "| %s | %s |\n", h.DateISO, formatPercent(h.PercentValue, h.PercentRaw))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "This post is generated from the %s register. Percentages refer to the disclosed %s in the issuer's outstanding share capital.\n\n",
		meta.RegisterName, meta.PositionNoun)
	if rec.SourceURL != "" {
		fmt.Fprintf(&b, "*Source:* [%s](%s)\n\n", meta.RegisterName, rec.SourceURL)
	}

	b.WriteString("#### Notes\n\n")
	b.WriteString("- Positions can change frequently; consult the register for the latest status.\n")
	b.WriteString("- Thresholds start at 0.5% and must be updated at each 0.1% change thereafter.\n\n")
	b.WriteString("*Disclaimer: This is not investment advice. Do your own research.*\n")

	return b.String()
}

// formatPercent prefers the parsed value, formatted uniformly; a zero value
// means "unknown" and falls back to whatever the source said.
func formatPercent(value float64, raw string) string {
	if value > 0 {
		return fmt.Sprintf("%.2f%%", value)
	}
	return raw
}

package register

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Spec describes one AFM register: where it lives and which header keywords
// identify its table and columns. The extraction engine is shared; only the
// Spec differs between registers, so adding a register means adding a table
// of words, not another parser.
type Spec struct {
	// Name is the human-readable register name used in logs and articles.
	Name string `yaml:"name"`
	// Slug selects the register on the command line.
	Slug string `yaml:"slug"`
	// URL is the register page carrying the table and/or export link.
	URL string `yaml:"url"`
	// PositionNoun is the wording used by the article renderer, e.g.
	// "net short position".
	PositionNoun string `yaml:"position_noun"`

	// Vocabulary scores candidate tables in the locator. Dutch and English
	// terms both appear because the register is published in both.
	Vocabulary []string `yaml:"vocabulary"`

	// Per-role header keyword lists for column resolution, matched as
	// lowercase substrings in fixed priority order.
	IssuerKeywords  []string `yaml:"issuer_keywords"`
	ISINKeywords    []string `yaml:"isin_keywords"`
	FilerKeywords   []string `yaml:"filer_keywords"`
	PercentKeywords []string `yaml:"percent_keywords"`
	DateKeywords    []string `yaml:"date_keywords"`
}

// NetShortPositions is the register of current net short positions.
func NetShortPositions() Spec {
	return Spec{
		Name:         "AFM net short positions",
		Slug:         "shortpos",
		URL:          "https://www.afm.nl/nl-nl/sector/registers/meldingenregisters/netto-shortposities-actueel",
		PositionNoun: "net short position",
		Vocabulary: []string{
			"net", "short", "positie", "position", "houder", "holder",
			"datum", "date", "emittent", "issuer", "isin",
		},
		IssuerKeywords:  []string{"emittent", "issuer", "uitgevende instelling", "onderneming"},
		ISINKeywords:    []string{"isin"},
		FilerKeywords:   []string{"houder", "holder", "melder", "partij", "party"},
		PercentKeywords: []string{"shortpositie", "short position", "netto short", "net short", "percentage"},
		DateKeywords:    []string{"datum", "date"},
	}
}

// SubstantialHoldings is the register of substantial holdings and gross
// short positions in issued capital.
func SubstantialHoldings() Spec {
	return Spec{
		Name:         "AFM substantial holdings",
		Slug:         "holdings",
		URL:          "https://www.afm.nl/nl-nl/sector/registers/meldingenregisters/substantiele-deelnemingen",
		PositionNoun: "substantial holding",
		Vocabulary: []string{
			"kapitaal", "belang", "stemrecht", "holding", "capital",
			"melder", "datum", "date", "emittent", "issuer", "isin",
		},
		IssuerKeywords:  []string{"emittent", "issuer", "uitgevende instelling", "onderneming"},
		ISINKeywords:    []string{"isin"},
		FilerKeywords:   []string{"melder", "meldingsplichtige", "houder", "holder", "notifier"},
		PercentKeywords: []string{"kapitaalbelang", "kapitaal", "capital interest", "belang", "percentage"},
		DateKeywords:    []string{"datum", "date"},
	}
}

// builtins lists the registers the scraper knows out of the box.
func builtins() []Spec {
	return []Spec{NetShortPositions(), SubstantialHoldings()}
}

// BySlug returns the built-in register spec with the given slug.
func BySlug(slug string) (Spec, error) {
	for _, s := range builtins() {
		if s.Slug == slug {
			return s, nil
		}
	}
	return Spec{}, fmt.Errorf("unknown register %q", slug)
}

// LoadSpecFile reads a register spec from a YAML file. Keyword lists left
// empty in the file fall back to the net short positions defaults, so an
// override file only needs to state what differs; the slug is always
// required.
func LoadSpecFile(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("failed to read register spec: %w", err)
	}
	spec := NetShortPositions()
	spec.Slug = ""
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("failed to parse register spec: %w", err)
	}
	if spec.Slug == "" {
		return Spec{}, fmt.Errorf("register spec %s has no slug", path)
	}
	return spec, nil
}

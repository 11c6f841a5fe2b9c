// Package filter builds the optional per-row company approval predicate.
// Configuration is passed in explicitly; nothing here reads ambient process
// state.
package filter

import (
	"strings"

	"afmwatch/internal/register"
)

// Options describes the allow/deny surface. Lists hold issuer-name fragments
// (matched lowercased) and exact ISINs (matched uppercased).
type Options struct {
	Enabled      bool
	AllowISINs   []string
	AllowIssuers []string
	DenyIssuers  []string
}

// New compiles the options into an approval predicate. A disabled filter
// approves everything, so short positions are never suppressed by accident.
func New(opts Options) register.ApproveFunc {
	if !opts.Enabled {
		return func(string, string) bool { return true }
	}

	allowISINs := make(map[string]bool, len(opts.AllowISINs))
	for _, isin := range opts.AllowISINs {
		if v := strings.ToUpper(strings.TrimSpace(isin)); v != "" {
			allowISINs[v] = true
		}
	}
	allowIssuers := lowerFragments(opts.AllowIssuers)
	denyIssuers := lowerFragments(opts.DenyIssuers)

	return func(issuer, isin string) bool {
		name := strings.ToLower(issuer)

		nameOK := true
		if len(denyIssuers) > 0 && containsAny(name, denyIssuers) {
			nameOK = false
		}
		if len(allowIssuers) > 0 {
			nameOK = nameOK && containsAny(name, allowIssuers)
		}

		isinOK := true
		if len(allowISINs) > 0 {
			isinOK = allowISINs[strings.ToUpper(isin)]
		}
		return nameOK && isinOK
	}
}

func lowerFragments(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if f := strings.ToLower(strings.TrimSpace(v)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func containsAny(haystack string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(haystack, f) {
			return true
		}
	}
	return false
}

package snapshot

import "strings"

// Kind identifies the structural role of a section marker line.
type Kind string

const (
	// KindNone means the line carries no section marker.
	KindNone Kind = ""

	KindHeading    Kind = "heading"
	KindDialog     Kind = "dialog"
	KindHeader     Kind = "header"
	KindNavigation Kind = "navigation"
	KindMain       Kind = "main"
	KindFooter     Kind = "footer"
	KindTablist    Kind = "tablist"
	KindToolbar    Kind = "toolbar"
)

// MarkerRule maps a set of keywords to a marker kind. Rules are evaluated in
// order and the first keyword hit wins, so the rule order is part of the
// contract: "main" must not shadow "navigation", and existing fixtures depend
// on the default ordering.
type MarkerRule struct {
	// Kind is the marker kind assigned when any keyword matches.
	Kind Kind

	// Keywords are matched by case-insensitive substring containment.
	Keywords []string

	// Anchor marks kinds that always open a new section regardless of how
	// dense the surrounding markers are. Non-anchor kinds are suppressed
	// inside dense regions (see Sectionize).
	Anchor bool
}

// Vocabulary holds the keyword tables driving line classification. The zero
// value is unusable; start from DefaultVocabulary and override as needed.
type Vocabulary struct {
	// Markers are the ordered section marker rules.
	Markers []MarkerRule

	// Interactive are the control-role keywords. A line containing any of
	// them (case-insensitive) is considered actionable by an agent.
	Interactive []string
}

// DefaultVocabulary returns the stock keyword tables for accessibility-tree
// dumps. The marker rule order is load-bearing.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Markers: []MarkerRule{
			{Kind: KindHeading, Keywords: []string{"heading"}, Anchor: true},
			{Kind: KindDialog, Keywords: []string{"dialog", "modal"}, Anchor: true},
			{Kind: KindHeader, Keywords: []string{"header", "banner"}},
			{Kind: KindNavigation, Keywords: []string{"navigation", "nav"}},
			{Kind: KindMain, Keywords: []string{"main"}},
			{Kind: KindFooter, Keywords: []string{"footer", "contentinfo"}},
			{Kind: KindTablist, Keywords: []string{"tablist"}},
			{Kind: KindToolbar, Keywords: []string{"toolbar"}},
		},
		Interactive: []string{
			"button", "link", "textbox", "input", "checkbox", "radio",
			"combobox", "select", "menu", "tab", "dialog", "option",
		},
	}
}

// MarkerKind classifies a single line. Empty or whitespace-only lines never
// carry a marker.
func (v Vocabulary) MarkerKind(line string) Kind {
	l := strings.ToLower(strings.TrimSpace(line))
	if l == "" {
		return KindNone
	}
	for _, rule := range v.Markers {
		for _, kw := range rule.Keywords {
			if strings.Contains(l, kw) {
				return rule.Kind
			}
		}
	}
	return KindNone
}

// IsInteractive reports whether a line mentions any control-role keyword.
// The predicate is pure and total: it never fails and depends only on the
// line itself.
func (v Vocabulary) IsInteractive(line string) bool {
	l := strings.ToLower(line)
	for _, kw := range v.Interactive {
		if strings.Contains(l, kw) {
			return true
		}
	}
	return false
}

// isAnchor reports whether the kind opens sections unconditionally.
func (v Vocabulary) isAnchor(kind Kind) bool {
	for _, rule := range v.Markers {
		if rule.Kind == kind {
			return rule.Anchor
		}
	}
	return false
}

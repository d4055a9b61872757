package snapshot

import "strings"

const maxSectionTitleLen = 160

// SectionerConfig controls how aggressively weak layout markers are
// suppressed when sections are already dense. The default windows interact
// with the marker rule order; both are preserved as-is from the tuned
// production values rather than re-derived.
type SectionerConfig struct {
	// HeadingWindow suppresses weak markers that appear within this many
	// lines after a heading.
	HeadingWindow int `yaml:"heading_window"`

	// MarkerWindow suppresses weak markers that appear within this many
	// lines after any previous marker.
	MarkerWindow int `yaml:"marker_window"`
}

// DefaultSectionerConfig returns the stock suppression windows.
func DefaultSectionerConfig() SectionerConfig {
	return SectionerConfig{HeadingWindow: 20, MarkerWindow: 6}
}

// Section is a contiguous, titled run of lines. Sections never overlap and
// together cover the whole line range; the first section always starts at
// line 0 even when no marker opens it.
type Section struct {
	// Start and End delimit the half-open line range [Start, End).
	Start int
	End   int

	// Title is the marker line that opened the section, truncated.
	Title string

	// Kind is the marker kind that opened the section, KindNone for the
	// implicit leading section.
	Kind Kind

	// Interactive is true when any line in the range is interactive.
	Interactive bool

	// Dialog is true when the section was opened by a dialog marker.
	Dialog bool
}

// Sectionize partitions lines into sections and collects the indices of
// interactive lines. Boundaries are strictly increasing and every line
// belongs to exactly one section.
func Sectionize(lines []string, vocab Vocabulary, cfg SectionerConfig) ([]Section, map[int]bool) {
	starts := []int{0}
	titles := map[int]string{0: ""}
	kinds := map[int]Kind{0: KindNone}

	lastHeading := -1
	lastMarker := -1

	for i, line := range lines {
		if i == 0 {
			continue
		}
		kind := vocab.MarkerKind(line)
		if kind == KindNone {
			continue
		}

		// Headings and dialogs always anchor. Weak layout markers are
		// dropped when the neighborhood is already dense with markers.
		if !vocab.isAnchor(kind) {
			if lastHeading >= 0 && i-lastHeading <= cfg.HeadingWindow {
				continue
			}
			if lastMarker >= 0 && i-lastMarker <= cfg.MarkerWindow {
				continue
			}
		}

		starts = append(starts, i)
		titles[i] = sectionTitle(line)
		kinds[i] = kind
		lastMarker = i
		if kind == KindHeading {
			lastHeading = i
		}
	}

	interactive := make(map[int]bool)
	sections := make([]Section, 0, len(starts))
	for idx, start := range starts {
		end := len(lines)
		if idx+1 < len(starts) {
			end = starts[idx+1]
		}
		sec := Section{
			Start:  start,
			End:    end,
			Title:  titles[start],
			Kind:   kinds[start],
			Dialog: kinds[start] == KindDialog,
		}
		for i := start; i < end; i++ {
			if vocab.IsInteractive(lines[i]) {
				interactive[i] = true
				sec.Interactive = true
			}
		}
		sections = append(sections, sec)
	}

	return sections, interactive
}

func sectionTitle(line string) string {
	t := strings.TrimSpace(line)
	if len(t) > maxSectionTitleLen {
		t = t[:maxSectionTitleLen]
	}
	return t
}

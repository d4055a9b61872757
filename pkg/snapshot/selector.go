package snapshot

import (
	"sort"
	"strings"
)

// contextWindow is the number of lines kept around each interactive line at
// the minimal detail level.
const contextWindow = 1

// selectIndices returns the set of line indices that survive compaction at
// the given detail level. Levels:
//
//	0: interactive lines ±contextWindow, section anchors for interactive
//	   sections, and entire dialog sections
//	1: entire sections that contain interactive content or are dialogs
//	2+: everything
func selectIndices(lines []string, sections []Section, interactive map[int]bool, level int) map[int]bool {
	kept := make(map[int]bool)

	switch {
	case level <= 0:
		for i := range interactive {
			start := i - contextWindow
			if start < 0 {
				start = 0
			}
			end := i + contextWindow + 1
			if end > len(lines) {
				end = len(lines)
			}
			for j := start; j < end; j++ {
				kept[j] = true
			}
		}
		for _, sec := range sections {
			// Keep the title line (and the line before it) of sections
			// with controls so the agent still sees where it is.
			if sec.Interactive {
				kept[sec.Start] = true
				if sec.Start-1 >= 0 {
					kept[sec.Start-1] = true
				}
			}
			// Dialogs are short-lived and high value. Never fragment them.
			if sec.Dialog {
				for j := sec.Start; j < sec.End; j++ {
					kept[j] = true
				}
			}
		}

	case level == 1:
		for _, sec := range sections {
			if sec.Interactive || sec.Dialog {
				for j := sec.Start; j < sec.End; j++ {
					kept[j] = true
				}
			}
		}

	default:
		for i := range lines {
			kept[i] = true
		}
	}

	return kept
}

// renderKept joins the kept lines in original order. An empty kept-set falls
// back to the complete input: filtering must never silently discard all
// content.
func renderKept(lines []string, kept map[int]bool) string {
	if len(kept) == 0 {
		return strings.Join(lines, "\n")
	}
	indices := make([]int, 0, len(kept))
	for i := range kept {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	out := make([]string, 0, len(indices))
	for _, i := range indices {
		out = append(out, lines[i])
	}
	return strings.Join(out, "\n")
}

// budget hard-truncates text to maxChars. Truncation is a signaled condition,
// not an error; the caller renders the flag as a trailing marker line.
func budget(text string, maxChars int) (string, bool) {
	if maxChars > 0 && len(text) > maxChars {
		return text[:maxChars], true
	}
	return text, false
}

package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DeltaMode selects how consecutive snapshots are compared.
type DeltaMode string

const (
	// DeltaOff bypasses diffing; the filtered text is always emitted.
	DeltaOff DeltaMode = "off"

	// DeltaOn always emits a structural diff against the previous capture.
	DeltaOn DeltaMode = "on"

	// DeltaAuto diffs only when the change is small; large changes are
	// cheaper and safer to send whole.
	DeltaAuto DeltaMode = "auto"
)

// Sentinel and marker lines emitted by the delta engine and budgeter.
const (
	DeltaUnchangedSentinel = "[snapshot:delta] no change"
	deltaChangedHeader     = "[snapshot:delta] changed"
	addedMarker            = "[added]"
	removedMarker          = "[removed]"
	truncatedMarker        = "[snapshot:truncated] true"
)

// DeltaConfig holds the thresholds for the auto mode "small change" decision.
// The defaults are empirically tuned magic numbers; they are configurable
// precisely so nobody is tempted to re-derive them inline.
type DeltaConfig struct {
	// MaxChangedLines is the largest added+removed line count that still
	// counts as a small change.
	MaxChangedLines int `yaml:"max_changed_lines"`

	// MaxChangedFraction is the largest changed/total line fraction that
	// still counts as a small change.
	MaxChangedFraction float64 `yaml:"max_changed_fraction"`

	// MinSimilarity is the smallest sequence similarity ratio that still
	// counts as a small change.
	MinSimilarity float64 `yaml:"min_similarity"`

	// MaxDiffLines caps how many added and removed lines a structural diff
	// may carry per block.
	MaxDiffLines int `yaml:"max_diff_lines"`
}

// DefaultDeltaConfig returns the stock auto-mode thresholds.
func DefaultDeltaConfig() DeltaConfig {
	return DeltaConfig{
		MaxChangedLines:    60,
		MaxChangedFraction: 0.12,
		MinSimilarity:      0.85,
		MaxDiffLines:       200,
	}
}

// Memory is the per-session snapshot history: the most recent raw and
// filtered capture, each with a content hash. The filtered hash drives all
// delta decisions; the raw hash is tracked for debugging only. A Memory is
// owned by exactly one session and mutated only by Compact.
type Memory struct {
	RawHash      string
	RawText      string
	FilteredHash string
	FilteredText string
}

// HasPrevious reports whether a filtered capture has been recorded. The very
// first capture of a session is always emitted in full.
func (m Memory) HasPrevious() bool {
	return m.FilteredHash != ""
}

func hashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// applyDelta runs the delta decision table against the previous memory and
// returns the output text. The hash is for cheap equality, not security.
func applyDelta(mode DeltaMode, prev Memory, filtered, filteredHash string, cfg DeltaConfig) string {
	if mode == DeltaOff {
		return filtered
	}
	if !prev.HasPrevious() {
		return filtered
	}
	if prev.FilteredHash == filteredHash {
		return DeltaUnchangedSentinel
	}
	if mode == DeltaOn {
		return buildDiff(prev.FilteredText, filtered, cfg.MaxDiffLines)
	}

	added, removed := lineSetDiff(prev.FilteredText, filtered)
	changed := len(added) + len(removed)
	total := len(splitLines(prev.FilteredText)) + len(splitLines(filtered))
	if total < 1 {
		total = 1
	}
	if changed <= cfg.MaxChangedLines &&
		float64(changed)/float64(total) <= cfg.MaxChangedFraction &&
		similarity(prev.FilteredText, filtered) >= cfg.MinSimilarity {
		return buildDiff(prev.FilteredText, filtered, cfg.MaxDiffLines)
	}
	return filtered
}

// buildDiff renders the structural added/removed diff. Lines are compared by
// exact string membership, so reordered-but-identical content reads as
// unchanged and duplicates collapse.
func buildDiff(prev, now string, maxLines int) string {
	added, removed := lineSetDiff(prev, now)

	parts := []string{deltaChangedHeader}
	if len(added) > 0 {
		parts = append(parts, addedMarker)
		parts = append(parts, capLines(added, maxLines)...)
	}
	if len(removed) > 0 {
		parts = append(parts, removedMarker)
		parts = append(parts, capLines(removed, maxLines)...)
	}
	return strings.Join(parts, "\n")
}

// lineSetDiff returns the lines present in now but not prev (in now order)
// and the lines present in prev but not now (in prev order).
func lineSetDiff(prev, now string) (added, removed []string) {
	prevLines := splitLines(prev)
	nowLines := splitLines(now)

	prevSet := make(map[string]bool, len(prevLines))
	for _, l := range prevLines {
		prevSet[l] = true
	}
	nowSet := make(map[string]bool, len(nowLines))
	for _, l := range nowLines {
		nowSet[l] = true
	}

	seen := make(map[string]bool)
	for _, l := range nowLines {
		if !prevSet[l] && !seen[l] {
			added = append(added, l)
			seen[l] = true
		}
	}
	seen = make(map[string]bool)
	for _, l := range prevLines {
		if !nowSet[l] && !seen[l] {
			removed = append(removed, l)
			seen[l] = true
		}
	}
	return added, removed
}

// similarity is a normalized edit-distance-style ratio in [0,1] over the two
// texts' lines. Two empty texts are identical by definition.
func similarity(prev, now string) float64 {
	if prev == "" && now == "" {
		return 1.0
	}
	m := difflib.NewMatcher(splitLines(prev), splitLines(now))
	return m.Ratio()
}

func capLines(lines []string, max int) []string {
	if max > 0 && len(lines) > max {
		return lines[:max]
	}
	return lines
}

// splitLines splits on newlines without a trailing empty element, matching
// the semantics used when the filtered text was joined.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

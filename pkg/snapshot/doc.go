// Package snapshot compacts accessibility-tree text dumps and diffs them
// across consecutive captures.
//
// Browser automation backends emit a full structural snapshot of the page on
// every step. Those dumps are large, mostly stable between steps, and mostly
// irrelevant to an agent that only needs to find the next control to act on.
// This package shrinks each dump to the lines an agent can act on and, when a
// previous capture is remembered, replaces unchanged output with a structural
// delta.
//
// # Pipeline
//
// Compaction runs in four stages over the raw line sequence:
//
//  1. Classify: each line is labeled with a section marker kind (heading,
//     dialog, navigation, ...) and an interactive flag, using a fixed keyword
//     vocabulary. See Vocabulary.
//  2. Sectionize: marker lines open contiguous titled sections. Headings and
//     dialogs always anchor a new section; weaker layout markers are
//     suppressed inside dense regions so the dump is not fragmented into
//     micro-sections.
//  3. Select: a detail level (0..2) chooses which lines survive. Level 0
//     keeps interactive lines with one line of context plus section anchors
//     and whole dialog bodies; level 1 keeps whole sections that contain
//     interactive content; level 2 keeps everything.
//  4. Budget: the result is hard-truncated to a character budget and flagged.
//
// # Deltas
//
// A Memory value remembers the previous raw and filtered text with content
// hashes. When delta processing is enabled the engine emits either the full
// filtered text (first capture, or large change), the sentinel
// "[snapshot:delta] no change", or an added/removed line-set diff. Diff
// decisions are driven entirely by the filtered text; the raw hash is kept
// for debugging only.
//
// # State model
//
// Compact is a pure function: previous Memory in, result and next Memory out.
// Pipeline wraps it with an owned Memory for the common single-session case.
// Neither is safe for concurrent use with the same Memory; callers keep one
// Pipeline per session.
package snapshot

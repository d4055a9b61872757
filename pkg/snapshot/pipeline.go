package snapshot

import (
	"strings"
	"sync"
)

// Detail levels. Minimal keeps only interactive lines plus structural
// anchors, Section keeps whole interactive sections, Full keeps everything.
const (
	LevelMinimal = 0
	LevelSection = 1
	LevelFull    = 2
)

// MaxChars clamp bounds and per-level defaults. Budgets are character
// counts, not tokens; see EstimateTokens for the token-side view.
const (
	MinMaxChars = 2000
	MaxMaxChars = 80000

	DefaultMaxCharsMinimal = 6000
	DefaultMaxCharsSection = 12000
	DefaultMaxCharsFull    = 20000
)

// Options control one compaction call.
type Options struct {
	// Level is the detail level, clamped to 0..2. 0 keeps only interactive
	// lines plus anchors, 1 keeps whole interactive sections, 2 keeps
	// everything.
	Level int

	// MaxChars is the output budget. Zero selects the per-level default;
	// any value is clamped to [MinMaxChars, MaxMaxChars].
	MaxChars int

	// Delta selects diffing behavior. Empty defaults to DeltaAuto.
	Delta DeltaMode
}

// normalized clamps the options to their documented ranges. Compaction sits
// behind a generic tool-argument channel, so out-of-range values degrade to
// defaults instead of failing the call.
func (o Options) normalized() Options {
	if o.Level < LevelMinimal {
		o.Level = LevelMinimal
	}
	if o.Level > LevelFull {
		o.Level = LevelFull
	}
	if o.MaxChars == 0 {
		switch o.Level {
		case LevelMinimal:
			o.MaxChars = DefaultMaxCharsMinimal
		case LevelSection:
			o.MaxChars = DefaultMaxCharsSection
		default:
			o.MaxChars = DefaultMaxCharsFull
		}
	}
	if o.MaxChars < MinMaxChars {
		o.MaxChars = MinMaxChars
	}
	if o.MaxChars > MaxMaxChars {
		o.MaxChars = MaxMaxChars
	}
	switch o.Delta {
	case DeltaOff, DeltaOn, DeltaAuto:
	default:
		o.Delta = DeltaAuto
	}
	return o
}

// Config bundles the tunables for the whole pipeline.
type Config struct {
	Vocabulary Vocabulary
	Sectioner  SectionerConfig
	Delta      DeltaConfig
}

// DefaultConfig returns the stock pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Vocabulary: DefaultVocabulary(),
		Sectioner:  DefaultSectionerConfig(),
		Delta:      DefaultDeltaConfig(),
	}
}

// Compact runs the full pipeline over one raw snapshot: classify, sectionize,
// select, budget, delta. It is pure: the previous Memory goes in, the output
// text and the next Memory come out, and nothing else is touched. Memory is
// advanced unconditionally, even in DeltaOff mode, so a later call in a
// different mode sees correct history.
func Compact(cfg Config, raw string, opts Options, prev Memory) (string, Memory) {
	opts = opts.normalized()
	lines := splitRaw(raw)

	sections, interactive := Sectionize(lines, cfg.Vocabulary, cfg.Sectioner)
	kept := selectIndices(lines, sections, interactive, opts.Level)
	filtered := renderKept(lines, kept)
	filtered, truncated := budget(filtered, opts.MaxChars)

	filteredHash := hashText(filtered)
	out := applyDelta(opts.Delta, prev, filtered, filteredHash, cfg.Delta)

	next := Memory{
		RawHash:      hashText(raw),
		RawText:      raw,
		FilteredHash: filteredHash,
		FilteredText: filtered,
	}

	if truncated {
		out += "\n" + truncatedMarker
	}
	return out, next
}

// Pipeline owns one session's Memory and serializes calls against it. Use
// one Pipeline per session; sessions share nothing.
type Pipeline struct {
	mu  sync.Mutex
	cfg Config
	mem Memory
}

// NewPipeline creates a pipeline with empty memory.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Process compacts raw text and advances the remembered state.
func (p *Pipeline) Process(raw string, opts Options) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out, next := Compact(p.cfg, raw, opts, p.mem)
	p.mem = next
	return out
}

// Memory returns a copy of the current remembered state.
func (p *Pipeline) Memory() Memory {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mem
}

// Reset discards the remembered state, as when a session restarts.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mem = Memory{}
}

// splitRaw splits the raw dump into lines the way the selector expects:
// indices are 0-based positions, and a trailing newline does not create a
// phantom empty line.
func splitRaw(raw string) []string {
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

package snapshot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   Options
		want Options
	}{
		{
			name: "zero value gets level defaults",
			in:   Options{},
			want: Options{Level: 0, MaxChars: DefaultMaxCharsMinimal, Delta: DeltaAuto},
		},
		{
			name: "level clamped high",
			in:   Options{Level: 9},
			want: Options{Level: 2, MaxChars: DefaultMaxCharsFull, Delta: DeltaAuto},
		},
		{
			name: "level clamped low",
			in:   Options{Level: -3},
			want: Options{Level: 0, MaxChars: DefaultMaxCharsMinimal, Delta: DeltaAuto},
		},
		{
			name: "max chars clamped to floor",
			in:   Options{Level: 1, MaxChars: 10, Delta: DeltaOff},
			want: Options{Level: 1, MaxChars: MinMaxChars, Delta: DeltaOff},
		},
		{
			name: "max chars clamped to ceiling",
			in:   Options{Level: 2, MaxChars: 1 << 20, Delta: DeltaOn},
			want: Options{Level: 2, MaxChars: MaxMaxChars, Delta: DeltaOn},
		},
		{
			name: "tiered default for level 1",
			in:   Options{Level: 1},
			want: Options{Level: 1, MaxChars: DefaultMaxCharsSection, Delta: DeltaAuto},
		},
		{
			name: "unknown delta mode falls back to auto",
			in:   Options{Level: 1, Delta: DeltaMode("sometimes")},
			want: Options{Level: 1, MaxChars: DefaultMaxCharsSection, Delta: DeltaAuto},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.normalized())
		})
	}
}

func TestCompactTruncationMarker(t *testing.T) {
	// Force truncation: full level with a floor budget over a large page.
	lines := make([]string, 0, 400)
	for i := 0; i < 400; i++ {
		lines = append(lines, strings.Repeat("x", 20))
	}
	raw := strings.Join(lines, "\n")

	out, mem := Compact(DefaultConfig(), raw, Options{Level: 2, MaxChars: MinMaxChars, Delta: DeltaOff}, Memory{})

	require.True(t, strings.HasSuffix(out, "\n"+truncatedMarker))
	body := strings.TrimSuffix(out, "\n"+truncatedMarker)
	assert.Len(t, body, MinMaxChars)
	// Memory stores the truncated filtered text, which is what the next
	// delta comparison runs against.
	assert.Equal(t, body, mem.FilteredText)
}

// The truncation marker is appended after delta processing so it survives
// every output shape, including the unchanged sentinel.
func TestTruncationMarkerSurvivesDelta(t *testing.T) {
	lines := make([]string, 400)
	for i := range lines {
		lines[i] = strings.Repeat("y", 20)
	}
	raw := strings.Join(lines, "\n")
	cfg := DefaultConfig()
	opts := Options{Level: 2, MaxChars: MinMaxChars, Delta: DeltaAuto}

	_, mem := Compact(cfg, raw, opts, Memory{})
	out, _ := Compact(cfg, raw, opts, mem)

	assert.Equal(t, DeltaUnchangedSentinel+"\n"+truncatedMarker, out)
}

func TestCompactUpdatesMemoryHashes(t *testing.T) {
	raw := interactivePage(5)

	_, mem := Compact(DefaultConfig(), raw, Options{Level: 2, Delta: DeltaOff}, Memory{})

	assert.Equal(t, raw, mem.RawText)
	assert.Equal(t, hashText(raw), mem.RawHash)
	assert.Equal(t, raw, mem.FilteredText)
	assert.Equal(t, hashText(raw), mem.FilteredHash)
}

func TestPipelineThreadsMemory(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	raw := interactivePage(10)

	first := p.Process(raw, Options{Level: 2, Delta: DeltaAuto})
	second := p.Process(raw, Options{Level: 2, Delta: DeltaAuto})

	assert.Equal(t, raw, first)
	assert.Equal(t, DeltaUnchangedSentinel, second)

	p.Reset()
	third := p.Process(raw, Options{Level: 2, Delta: DeltaAuto})
	assert.Equal(t, raw, third)
}

func TestEmptyInputIsValid(t *testing.T) {
	out, mem := Compact(DefaultConfig(), "", Options{Level: 0, Delta: DeltaAuto}, Memory{})
	assert.Equal(t, "", out)

	out, _ = Compact(DefaultConfig(), "", Options{Level: 0, Delta: DeltaAuto}, mem)
	assert.Equal(t, DeltaUnchangedSentinel, out)
}

package snapshot

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf(`text "filler %d"`, i)
	}
	return lines
}

func TestSectionizeAlwaysStartsAtZero(t *testing.T) {
	lines := []string{`text "no markers here"`, `text "still none"`}
	sections, _ := Sectionize(lines, DefaultVocabulary(), DefaultSectionerConfig())

	require.Len(t, sections, 1)
	assert.Equal(t, 0, sections[0].Start)
	assert.Equal(t, len(lines), sections[0].End)
	assert.Equal(t, KindNone, sections[0].Kind)
}

func TestSectionizeHeadingAnchors(t *testing.T) {
	lines := makeLines(30)
	lines[5] = `heading "First"`
	lines[10] = `heading "Second"`

	sections, _ := Sectionize(lines, DefaultVocabulary(), DefaultSectionerConfig())

	require.Len(t, sections, 3)
	assert.Equal(t, 0, sections[0].Start)
	assert.Equal(t, 5, sections[1].Start)
	assert.Equal(t, 10, sections[2].Start)
	assert.Equal(t, `heading "First"`, sections[1].Title)
	assert.Equal(t, KindHeading, sections[1].Kind)
}

// Weak markers are suppressed near a heading (20-line window) or near any
// marker (6-line window); headings and dialogs always anchor.
func TestSectionizeWeakMarkerSuppression(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(lines []string)
		wantStarts []int
	}{
		{
			name: "weak marker within heading window is suppressed",
			setup: func(lines []string) {
				lines[5] = `heading "Title"`
				lines[15] = `footer region` // 10 lines after heading, inside 20
			},
			wantStarts: []int{0, 5},
		},
		{
			name: "weak marker outside both windows opens a section",
			setup: func(lines []string) {
				lines[5] = `heading "Title"`
				lines[40] = `footer region`
			},
			wantStarts: []int{0, 5, 40},
		},
		{
			name: "weak marker within 6 lines of another weak marker is suppressed",
			setup: func(lines []string) {
				lines[30] = `footer region`
				lines[34] = `toolbar "Actions"`
			},
			wantStarts: []int{0, 30},
		},
		{
			name: "dialog anchors even right after a heading",
			setup: func(lines []string) {
				lines[5] = `heading "Title"`
				lines[7] = `dialog "Confirm"`
			},
			wantStarts: []int{0, 5, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := makeLines(60)
			tt.setup(lines)

			sections, _ := Sectionize(lines, DefaultVocabulary(), DefaultSectionerConfig())

			starts := make([]int, len(sections))
			for i, s := range sections {
				starts[i] = s.Start
			}
			assert.Equal(t, tt.wantStarts, starts)
		})
	}
}

// Sections are contiguous, non-overlapping, and cover every line.
func TestSectionizeCoversAllLines(t *testing.T) {
	lines := makeLines(100)
	lines[10] = `heading "A"`
	lines[50] = `heading "B"`
	lines[80] = `footer region`

	sections, _ := Sectionize(lines, DefaultVocabulary(), DefaultSectionerConfig())

	prevEnd := 0
	for _, s := range sections {
		assert.Equal(t, prevEnd, s.Start)
		assert.Greater(t, s.End, s.Start)
		prevEnd = s.End
	}
	assert.Equal(t, len(lines), prevEnd)
}

func TestSectionizeFlags(t *testing.T) {
	lines := makeLines(20)
	lines[3] = `heading "Form"`
	lines[5] = `button "Submit"`
	lines[12] = `dialog "Confirm"`

	sections, interactive := Sectionize(lines, DefaultVocabulary(), DefaultSectionerConfig())

	require.Len(t, sections, 3)
	assert.True(t, sections[1].Interactive)
	assert.False(t, sections[1].Dialog)
	assert.True(t, sections[2].Dialog)
	assert.True(t, interactive[5])
	assert.True(t, interactive[12]) // the dialog line itself matches the vocabulary
	assert.False(t, interactive[4])
}

func TestSectionTitleTruncated(t *testing.T) {
	long := `heading "` + strings.Repeat("x", 300) + `"`
	lines := makeLines(10)
	lines[4] = long

	sections, _ := Sectionize(lines, DefaultVocabulary(), DefaultSectionerConfig())

	require.Len(t, sections, 2)
	assert.Len(t, sections[1].Title, maxSectionTitleLen)
}

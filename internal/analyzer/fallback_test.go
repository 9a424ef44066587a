package analyzer

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendjournal/tend/internal/model"
)

func areaNames(note *model.GrowthNote) []string {
	var out []string
	for _, d := range note.DetectedAreas {
		out = append(out, d.AreaName)
	}
	return out
}

func TestFallbackDetectsKeywordAreas(t *testing.T) {
	note := Fallback("had a great conversation at work today")

	assert.Equal(t, []string{"Communication", "Productivity"}, areaNames(note))
	assert.Equal(t, model.ProgressImproving, note.DetectedAreas[0].ProgressIndicator)
	assert.Equal(t, model.ProgressSteady, note.DetectedAreas[1].ProgressIndicator)
	assert.Equal(t, model.SentimentPositive, note.OverallSentiment)
}

func TestFallbackNoKeywords(t *testing.T) {
	note := Fallback("thinking about things")

	require.Len(t, note.DetectedAreas, 1)
	assert.Equal(t, "Self-reflection", note.DetectedAreas[0].AreaName)
	assert.Equal(t, model.ProgressFirstMention, note.DetectedAreas[0].ProgressIndicator)
	assert.Equal(t, model.SentimentNeutral, note.OverallSentiment)
}

func TestFallbackDeterministic(t *testing.T) {
	text := "went to the gym then a long meeting"
	assert.Equal(t, Fallback(text), Fallback(text))
}

func TestFallbackSnippetTruncation(t *testing.T) {
	long := strings.Repeat("a", 100)
	note := Fallback(long)
	require.NotEmpty(t, note.DetectedAreas)
	snippet := note.DetectedAreas[0].EvidenceSnippet
	assert.Len(t, snippet, 83)
	assert.True(t, strings.HasSuffix(snippet, "..."))

	short := "short entry"
	note = Fallback(short)
	assert.Equal(t, short, note.DetectedAreas[0].EvidenceSnippet)
}

func TestFallbackSnippetTruncatesOnRunes(t *testing.T) {
	// multibyte text straddling the cut point must stay valid UTF-8
	long := strings.Repeat("a", 79) + "日本語のテキスト"
	note := Fallback(long)
	require.NotEmpty(t, note.DetectedAreas)
	snippet := note.DetectedAreas[0].EvidenceSnippet
	assert.True(t, utf8.ValidString(snippet))
	assert.Equal(t, 83, utf8.RuneCountInString(snippet))
	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.Equal(t, strings.Repeat("a", 79)+"日", strings.TrimSuffix(snippet, "..."))

	// exactly 80 runes of multibyte text is returned untouched
	exact := strings.Repeat("語", 80)
	note = Fallback(exact)
	assert.Equal(t, exact, note.DetectedAreas[0].EvidenceSnippet)
}

func TestFallbackCaseInsensitive(t *testing.T) {
	note := Fallback("GYM day was GREAT")
	assert.Contains(t, areaNames(note), "Health")
	assert.Equal(t, model.SentimentPositive, note.OverallSentiment)
}

func TestFallbackOutputsValidEnums(t *testing.T) {
	for _, text := range []string{
		"had a great conversation at work today",
		"nothing in particular",
		"sleep was bad, skipped the gym",
	} {
		note := Fallback(text)
		assert.True(t, note.OverallSentiment.Valid(), text)
		for _, d := range note.DetectedAreas {
			assert.True(t, d.ProgressIndicator.Valid(), text)
		}
	}
}

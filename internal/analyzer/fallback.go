package analyzer

import (
	"strings"

	"github.com/tendjournal/tend/internal/model"
)

// Fixed keyword sets for the offline analysis path. Matching is done on
// lowercased text with plain substring containment, same for sentiment.
var fallbackRules = []struct {
	keywords []string
	area     string
	progress model.Progress
}{
	{[]string{"talk", "conversation", "meeting", "discussed"}, "Communication", model.ProgressImproving},
	{[]string{"work", "productive", "task", "project"}, "Productivity", model.ProgressSteady},
	{[]string{"gym", "exercise", "health", "sleep"}, "Health", model.ProgressImproving},
}

var positiveWords = []string{"great", "good", "happy"}

const snippetLimit = 80

// Fallback produces a deterministic GrowthNote from keyword matching.
// Same input text always yields the same note.
func Fallback(text string) *model.GrowthNote {
	lower := strings.ToLower(text)
	snippet := truncateSnippet(text)

	var detected []model.DetectedArea
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				detected = append(detected, model.DetectedArea{
					AreaName:          rule.area,
					EvidenceSnippet:   snippet,
					ProgressIndicator: rule.progress,
				})
				break
			}
		}
	}
	if len(detected) == 0 {
		detected = []model.DetectedArea{{
			AreaName:          "Self-reflection",
			EvidenceSnippet:   snippet,
			ProgressIndicator: model.ProgressFirstMention,
		}}
	}

	sentiment := model.SentimentNeutral
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			sentiment = model.SentimentPositive
			break
		}
	}

	return &model.GrowthNote{
		DetectedAreas:     detected,
		KeyMoments:        []string{"Took time to reflect on the day"},
		ActionableInsight: "Keep journaling daily to track your growth patterns.",
		OverallSentiment:  sentiment,
	}
}

// truncateSnippet keeps the first snippetLimit characters, never cutting
// inside a multibyte rune.
func truncateSnippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLimit {
		return text
	}
	return string(runes[:snippetLimit]) + "..."
}

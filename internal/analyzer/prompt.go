package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tendjournal/tend/internal/history"
	"github.com/tendjournal/tend/internal/model"
)

// BuildPrompt assembles the analysis prompt: the user's growth areas, a
// compressed view of recent entries, the entry text, and the exact output
// shape. History is rendered oldest-last so the newest entry sits closest
// to the text being analyzed.
func BuildPrompt(text string, areas []*model.GrowthArea, hist *history.Context) string {
	var b strings.Builder

	b.WriteString("You are a growth coach analyzing a personal journal entry.\n\n")

	if len(areas) > 0 {
		b.WriteString("The user is tracking these growth areas:\n")
		for _, a := range areas {
			if a.Description != "" {
				fmt.Fprintf(&b, "- %s: %s\n", a.Name, a.Description)
			} else {
				fmt.Fprintf(&b, "- %s\n", a.Name)
			}
		}
	} else {
		b.WriteString("The user has no growth areas defined; infer general themes from the text.\n")
	}

	if hist != nil && len(hist.Recent) > 0 {
		fmt.Fprintf(&b, "\nRecent history (%d entries total):\n", hist.TotalEntries)
		for i := len(hist.Recent) - 1; i >= 0; i-- {
			snap := hist.Recent[i]
			fmt.Fprintf(&b, "%s: %s (%s)\n", snap.Date, strings.Join(snap.Areas, ", "), snap.Sentiment)
		}
	}

	b.WriteString("\nJournal entry:\n")
	b.WriteString(text)
	b.WriteString("\n\n")

	b.WriteString(`Respond with ONLY a JSON object in exactly this shape:
{
  "detectedAreas": [
    {"areaName": "...", "evidenceSnippet": "...", "progressIndicator": "improving|steady|struggling|first_mention"}
  ],
  "keyMoments": ["..."],
  "actionableInsight": "...",
  "overallSentiment": "positive|neutral|challenging"
}
Detect 1-3 areas, each grounded in direct evidence quoted from the entry.
Give exactly one actionable insight. Use only the enum values shown.`)

	return b.String()
}

// stripFences removes a surrounding markdown code fence if present.
// Applying it to already-bare JSON is a no-op.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseNote decodes the model's reply into a GrowthNote. Anything that does
// not decode, or decodes to invalid enum values, becomes the placeholder
// note asking the user to retry.
func parseNote(raw string) *model.GrowthNote {
	var note model.GrowthNote
	if err := json.Unmarshal([]byte(stripFences(raw)), &note); err != nil {
		return placeholderNote()
	}
	if !note.OverallSentiment.Valid() {
		note.OverallSentiment = model.SentimentNeutral
	}
	kept := note.DetectedAreas[:0]
	for _, d := range note.DetectedAreas {
		if d.AreaName == "" {
			continue
		}
		if !d.ProgressIndicator.Valid() {
			d.ProgressIndicator = model.ProgressSteady
		}
		kept = append(kept, d)
	}
	note.DetectedAreas = kept
	return &note
}

func placeholderNote() *model.GrowthNote {
	return &model.GrowthNote{
		DetectedAreas:     []model.DetectedArea{},
		KeyMoments:        []string{"Unable to parse AI response"},
		ActionableInsight: "Please try again",
		OverallSentiment:  model.SentimentNeutral,
	}
}

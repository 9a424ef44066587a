// Package growth computes timeline and summary aggregates over a user's
// journal entries. All functions are pure: they take entries in ascending
// creation order and never touch storage.
package growth

import (
	"sort"
	"strings"

	"github.com/tendjournal/tend/internal/model"
)

const maxMilestones = 5

// Timeline builds the chronological view of one growth area. Matching is
// case-insensitive and only the first matching detection per entry counts,
// so an entry contributes at most one point.
func Timeline(areaName string, entries []*model.JournalEntry) *model.AreaTimeline {
	want := strings.ToLower(areaName)

	var points []model.TimelinePoint
	for _, e := range entries {
		if e.GrowthNote == nil {
			continue
		}
		for _, d := range e.GrowthNote.DetectedAreas {
			if strings.ToLower(d.AreaName) != want {
				continue
			}
			points = append(points, model.TimelinePoint{
				Date:      e.CreationTime,
				EntryID:   e.EntryID,
				Evidence:  d.EvidenceSnippet,
				Progress:  d.ProgressIndicator,
				Sentiment: e.GrowthNote.OverallSentiment,
			})
			break
		}
	}

	out := &model.AreaTimeline{
		AreaName:     areaName,
		Timeline:     points,
		TotalEntries: len(points),
	}
	if len(points) > 0 {
		baseline := points[0]
		out.Baseline = &baseline
	}
	out.Milestones = milestones(points)
	return out
}

// milestones returns the last maxMilestones improving points, oldest first.
func milestones(points []model.TimelinePoint) []model.TimelinePoint {
	var improving []model.TimelinePoint
	for _, p := range points {
		if p.Progress == model.ProgressImproving {
			improving = append(improving, p)
		}
	}
	if len(improving) > maxMilestones {
		improving = improving[len(improving)-maxMilestones:]
	}
	return improving
}

// Summarize groups detections by exact area name across all entries and
// returns rows sorted by total mentions, most-mentioned first. Ties keep
// first-seen order.
func Summarize(entries []*model.JournalEntry) []model.AreaSummary {
	byName := map[string]*model.AreaSummary{}
	var order []string

	for _, e := range entries {
		if e.GrowthNote == nil {
			continue
		}
		for _, d := range e.GrowthNote.DetectedAreas {
			row, ok := byName[d.AreaName]
			if !ok {
				row = &model.AreaSummary{AreaName: d.AreaName}
				byName[d.AreaName] = row
				order = append(order, d.AreaName)
			}
			row.TotalMentions++
			switch d.ProgressIndicator {
			case model.ProgressImproving:
				row.ImprovingCount++
			case model.ProgressSteady:
				row.SteadyCount++
			case model.ProgressStruggling:
				row.StrugglingCount++
			}
			ts := e.CreationTime
			if row.LastMention == nil || ts.After(*row.LastMention) {
				t := ts
				row.LastMention = &t
			}
		}
	}

	out := make([]model.AreaSummary, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalMentions > out[j].TotalMentions
	})
	return out
}

// Rollup condenses a summary into the persisted per-user form. LastProgress
// is the progress of the area's most recent detection.
func Rollup(entries []*model.JournalEntry) []model.AreaRollup {
	type last struct {
		progress model.Progress
	}
	lastByName := map[string]last{}
	for _, e := range entries {
		if e.GrowthNote == nil {
			continue
		}
		for _, d := range e.GrowthNote.DetectedAreas {
			lastByName[d.AreaName] = last{progress: d.ProgressIndicator}
		}
	}

	summary := Summarize(entries)
	out := make([]model.AreaRollup, 0, len(summary))
	for _, row := range summary {
		r := model.AreaRollup{
			AreaName:     row.AreaName,
			Mentions:     row.TotalMentions,
			LastProgress: lastByName[row.AreaName].progress,
		}
		if row.LastMention != nil {
			r.LastMention = *row.LastMention
		}
		out = append(out, r)
	}
	return out
}

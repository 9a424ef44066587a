package model

import "time"

// Sentiment classifies the overall tone of one journal entry.
type Sentiment string

const (
	SentimentPositive    Sentiment = "positive"
	SentimentNeutral     Sentiment = "neutral"
	SentimentChallenging Sentiment = "challenging"
)

// Valid reports whether s is one of the three allowed sentiments.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentChallenging:
		return true
	}
	return false
}

// Progress is the categorical trend judgment for a growth area in one entry.
type Progress string

const (
	ProgressImproving    Progress = "improving"
	ProgressSteady       Progress = "steady"
	ProgressStruggling   Progress = "struggling"
	ProgressFirstMention Progress = "first_mention"
)

// Valid reports whether p is one of the four allowed progress indicators.
func (p Progress) Valid() bool {
	switch p {
	case ProgressImproving, ProgressSteady, ProgressStruggling, ProgressFirstMention:
		return true
	}
	return false
}

// User represents an account in the system.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreationTime time.Time `json:"createdAt"`
}

// GrowthArea is a user-defined life theme tracked across entries.
// Its name is meaningful only within the owning user's scope.
type GrowthArea struct {
	AreaID       string    `json:"id"`
	UserID       string    `json:"-"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	IsActive     bool      `json:"isActive"`
	CreationTime time.Time `json:"createdAt"`
}

// DetectedArea is one growth area the analyzer found evidence for in an entry.
type DetectedArea struct {
	AreaID            string   `json:"areaId,omitempty"`
	AreaName          string   `json:"areaName"`
	EvidenceSnippet   string   `json:"evidenceSnippet"`
	ProgressIndicator Progress `json:"progressIndicator"`
}

// GrowthNote is the structured analysis of one journal entry. It is owned
// by the entry and persisted inside it, never as a separate row.
type GrowthNote struct {
	DetectedAreas     []DetectedArea `json:"detectedAreas"`
	KeyMoments        []string       `json:"keyMoments"`
	ActionableInsight string         `json:"actionableInsight"`
	OverallSentiment  Sentiment      `json:"overallSentiment"`
}

// JournalEntry is an immutable record of one submission plus its analysis.
// Entries are never edited after creation, only deleted.
type JournalEntry struct {
	EntryID               string      `json:"entryId"`
	UserID                string      `json:"userId"`
	RawText               string      `json:"rawText"`
	ImageURL              string      `json:"imageUrl,omitempty"`
	GrowthNote            *GrowthNote `json:"growthNote"`
	ProcessingTimeSeconds float64     `json:"processingTimeSeconds"`
	AIModel               string      `json:"aiModel"`
	APICost               float64     `json:"apiCost"`
	CreationTime          time.Time   `json:"createdAt"`
}

// AreaRollup is one per-area line of a MemorySummary.
type AreaRollup struct {
	AreaName     string    `json:"areaName"`
	Mentions     int       `json:"mentions"`
	LastProgress Progress  `json:"lastProgress"`
	LastMention  time.Time `json:"lastMention"`
}

// MemorySummary is the persisted per-user rollup of growth timelines,
// refreshed after every entry write.
type MemorySummary struct {
	UserID          string       `json:"userId"`
	LastUpdated     time.Time    `json:"lastUpdated"`
	GrowthTimelines []AreaRollup `json:"growthTimelines"`
}

// TimelinePoint is one row of an area timeline.
type TimelinePoint struct {
	Date      time.Time `json:"date"`
	EntryID   string    `json:"entryId"`
	Evidence  string    `json:"evidence"`
	Progress  Progress  `json:"progress"`
	Sentiment Sentiment `json:"sentiment"`
}

// AreaTimeline is the full chronological view of one growth area.
type AreaTimeline struct {
	AreaName     string          `json:"areaName"`
	Timeline     []TimelinePoint `json:"timeline"`
	Baseline     *TimelinePoint  `json:"baseline"`
	Milestones   []TimelinePoint `json:"milestones"`
	TotalEntries int             `json:"totalEntries"`
}

// AreaSummary is one row of the cross-area aggregate.
type AreaSummary struct {
	AreaName        string     `json:"areaName"`
	TotalMentions   int        `json:"totalMentions"`
	ImprovingCount  int        `json:"improvingCount"`
	SteadyCount     int        `json:"steadyCount"`
	StrugglingCount int        `json:"strugglingCount"`
	LastMention     *time.Time `json:"lastMention"`
}

// ListEntriesRequest captures filters used when listing entries.
type ListEntriesRequest struct {
	UserID string
	Limit  int
	Offset int
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendjournal/tend/internal/analyzer"
	"github.com/tendjournal/tend/internal/history"
	"github.com/tendjournal/tend/internal/model"
)

func testNote() *model.GrowthNote {
	return &model.GrowthNote{
		DetectedAreas: []model.DetectedArea{{
			AreaName:          "Communication",
			EvidenceSnippet:   "spoke with the team",
			ProgressIndicator: model.ProgressImproving,
		}},
		KeyMoments:        []string{"team sync"},
		ActionableInsight: "Keep it up",
		OverallSentiment:  model.SentimentPositive,
	}
}

func newJournalService(fs *fakeStore, fa *fakeAnalyzer, fb *fakeBlob) *JournalService {
	log := zerolog.Nop()
	builder := history.NewBuilder(fs, log)
	return NewJournalService(fs, fa, fb, builder, 5, log)
}

func TestCreateEntryTextOnly(t *testing.T) {
	fs := newFakeStore()
	fa := &fakeAnalyzer{note: testNote(), meta: analyzer.Meta{Model: "gemini-2.0-flash", Elapsed: 1500 * time.Millisecond, APICost: 0.0002}}
	fb := &fakeBlob{}
	svc := newJournalService(fs, fa, fb)

	entry, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		UserID: "u1", Text: "talked with the team today",
	})
	require.NoError(t, err)
	assert.Equal(t, "talked with the team today", entry.RawText)
	assert.Equal(t, "gemini-2.0-flash", entry.AIModel)
	assert.InDelta(t, 1.5, entry.ProcessingTimeSeconds, 0.001)
	require.NotNil(t, entry.GrowthNote)
	assert.Empty(t, entry.ImageURL)
	assert.Zero(t, fb.puts)

	// rollup was refreshed
	sum, err := fs.Summaries().Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, sum.GrowthTimelines, 1)
	assert.Equal(t, "Communication", sum.GrowthTimelines[0].AreaName)
}

func TestCreateEntryRequiresTextOrImage(t *testing.T) {
	svc := newJournalService(newFakeStore(), &fakeAnalyzer{}, &fakeBlob{})

	_, err := svc.CreateEntry(context.Background(), CreateEntryRequest{UserID: "u1"})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateEntryPassesActiveAreasAndHistory(t *testing.T) {
	fs := newFakeStore()
	ctx := context.Background()
	_, err := fs.GrowthAreas().Create(ctx, &model.GrowthArea{UserID: "u1", Name: "Health", IsActive: true})
	require.NoError(t, err)
	_, err = fs.GrowthAreas().Create(ctx, &model.GrowthArea{UserID: "u1", Name: "Old habit", IsActive: false})
	require.NoError(t, err)

	fa := &fakeAnalyzer{note: testNote()}
	svc := newJournalService(fs, fa, &fakeBlob{})

	_, err = svc.CreateEntry(ctx, CreateEntryRequest{UserID: "u1", Text: "first entry"})
	require.NoError(t, err)
	require.Len(t, fa.gotAreas, 1)
	assert.Equal(t, "Health", fa.gotAreas[0].Name)
	require.NotNil(t, fa.gotHist)
	assert.Equal(t, 0, fa.gotHist.TotalEntries)

	_, err = svc.CreateEntry(ctx, CreateEntryRequest{UserID: "u1", Text: "second entry"})
	require.NoError(t, err)
	assert.Equal(t, 1, fa.gotHist.TotalEntries)
	require.Len(t, fa.gotHist.Recent, 1)
	assert.Equal(t, []string{"Communication"}, fa.gotHist.Recent[0].Areas)
}

func TestCreateEntryWithImage(t *testing.T) {
	fs := newFakeStore()
	fa := &fakeAnalyzer{note: testNote(), ocrText: "handwritten thoughts"}
	fb := &fakeBlob{}
	svc := newJournalService(fs, fa, fb)

	entry, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		UserID: "u1", Image: []byte("png-bytes"), ImageMime: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "handwritten thoughts", entry.RawText)
	assert.Equal(t, "uploads/entries/img-1.png", entry.ImageURL)
	assert.Equal(t, []byte("png-bytes"), fa.ocrReceived)
	assert.Equal(t, "handwritten thoughts", fa.gotText)
}

func TestCreateEntryImageAppendsToText(t *testing.T) {
	fa := &fakeAnalyzer{note: testNote(), ocrText: "from the page"}
	svc := newJournalService(newFakeStore(), fa, &fakeBlob{})

	entry, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		UserID: "u1", Text: "typed part", Image: []byte("img"), ImageMime: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "typed part\nfrom the page", entry.RawText)
}

func TestCreateEntryOCRFailureCleansUpImage(t *testing.T) {
	fa := &fakeAnalyzer{ocrErr: errors.New("vision unavailable")}
	fb := &fakeBlob{}
	svc := newJournalService(newFakeStore(), fa, fb)

	_, err := svc.CreateEntry(context.Background(), CreateEntryRequest{
		UserID: "u1", Image: []byte("img"), ImageMime: "image/png",
	})
	require.Error(t, err)
	require.Len(t, fb.deletes, 1)
	assert.Equal(t, "uploads/entries/img-1.png", fb.deletes[0])
}

func TestCreateEntryAnalyzerErrorPropagates(t *testing.T) {
	fa := &fakeAnalyzer{analyzeErr: context.Canceled}
	svc := newJournalService(newFakeStore(), fa, &fakeBlob{})

	_, err := svc.CreateEntry(context.Background(), CreateEntryRequest{UserID: "u1", Text: "text"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListEntriesPaging(t *testing.T) {
	fs := newFakeStore()
	fa := &fakeAnalyzer{note: testNote()}
	svc := newJournalService(fs, fa, &fakeBlob{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateEntry(ctx, CreateEntryRequest{UserID: "u1", Text: "entry"})
		require.NoError(t, err)
	}

	page, total, err := svc.ListEntries(ctx, model.ListEntriesRequest{UserID: "u1", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)
}

func TestDeleteEntryRemovesImage(t *testing.T) {
	fs := newFakeStore()
	fa := &fakeAnalyzer{note: testNote(), ocrText: "scan"}
	fb := &fakeBlob{}
	svc := newJournalService(fs, fa, fb)
	ctx := context.Background()

	entry, err := svc.CreateEntry(ctx, CreateEntryRequest{UserID: "u1", Image: []byte("img"), ImageMime: "image/png"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(ctx, "u1", entry.EntryID))
	assert.Contains(t, fb.deletes, entry.ImageURL)

	_, err = svc.GetEntry(ctx, "u1", entry.EntryID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteEntry(ctx, "u1", entry.EntryID), model.ErrNotFound)
}

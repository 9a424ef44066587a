package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/tendjournal/tend/internal/analyzer"
	"github.com/tendjournal/tend/internal/blob"
	"github.com/tendjournal/tend/internal/history"
	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/store"
)

// JournalService orchestrates the entry pipeline: optional image upload and
// OCR, context assembly, analysis, persistence and the summary rollup.
type JournalService struct {
	store        store.Store
	analyzer     analyzer.Analyzer
	blobs        blob.Store
	builder      *history.Builder
	historyDepth int
	log          zerolog.Logger
}

func NewJournalService(s store.Store, a analyzer.Analyzer, b blob.Store, hb *history.Builder, historyDepth int, log zerolog.Logger) *JournalService {
	if historyDepth <= 0 {
		historyDepth = history.DefaultDepth
	}
	return &JournalService{store: s, analyzer: a, blobs: b, builder: hb, historyDepth: historyDepth, log: log}
}

// CreateEntryRequest carries one submission. Either Text or Image must be
// present; when both are given the image text is appended to Text.
type CreateEntryRequest struct {
	UserID    string
	Text      string
	Image     []byte
	ImageMime string
}

// CreateEntry runs the full pipeline and returns the stored entry.
func (s *JournalService) CreateEntry(ctx context.Context, req CreateEntryRequest) (*model.JournalEntry, error) {
	if req.Text == "" && len(req.Image) == 0 {
		return nil, errors.Wrap(model.ErrValidation, "entry needs text or an image")
	}

	text := req.Text
	var imageURL string
	if len(req.Image) > 0 {
		url, err := s.blobs.Put(ctx, req.Image, req.ImageMime)
		if err != nil {
			return nil, errors.Wrap(err, "store image")
		}
		imageURL = url

		extracted, _, err := s.analyzer.ExtractText(ctx, req.Image, req.ImageMime)
		if err != nil {
			// the upload is orphaned otherwise
			if delErr := s.blobs.Delete(ctx, imageURL); delErr != nil {
				s.log.Warn().Err(delErr).Str("imageUrl", imageURL).Msg("failed to remove image after ocr failure")
			}
			return nil, errors.Wrap(err, "extract text from image")
		}
		if text == "" {
			text = extracted
		} else {
			text = text + "\n" + extracted
		}
	}

	areas, err := s.store.GrowthAreas().List(ctx, req.UserID, true)
	if err != nil {
		return nil, err
	}
	hist, err := s.builder.Context(ctx, req.UserID, s.historyDepth)
	if err != nil {
		return nil, err
	}

	note, meta, err := s.analyzer.Analyze(ctx, text, areas, hist)
	if err != nil {
		return nil, errors.Wrap(err, "analyze entry")
	}
	if meta.Fallback {
		s.log.Info().Str("userId", req.UserID).Msg("analysis used keyword fallback")
	}

	entry, err := s.store.Entries().Create(ctx, &model.JournalEntry{
		UserID:                req.UserID,
		RawText:               text,
		ImageURL:              imageURL,
		GrowthNote:            note,
		ProcessingTimeSeconds: meta.Elapsed.Seconds(),
		AIModel:               meta.Model,
		APICost:               meta.APICost,
	})
	if err != nil {
		return nil, err
	}

	// rollup refresh never fails the write
	if err := s.builder.UpdateSummary(ctx, req.UserID); err != nil {
		s.log.Warn().Err(err).Str("userId", req.UserID).Msg("summary rollup update failed")
	}
	return entry, nil
}

// GetEntry fetches one entry owned by the user.
func (s *JournalService) GetEntry(ctx context.Context, userID, entryID string) (*model.JournalEntry, error) {
	return s.store.Entries().GetByID(ctx, userID, entryID)
}

// ListEntries returns one page newest-first plus the user's total count.
func (s *JournalService) ListEntries(ctx context.Context, req model.ListEntriesRequest) ([]*model.JournalEntry, int, error) {
	entries, err := s.store.Entries().List(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Entries().Count(ctx, req.UserID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// DeleteEntry removes an entry and, best-effort, its stored image, then
// refreshes the summary rollup.
func (s *JournalService) DeleteEntry(ctx context.Context, userID, entryID string) error {
	entry, err := s.store.Entries().GetByID(ctx, userID, entryID)
	if err != nil {
		return err
	}
	if err := s.store.Entries().Delete(ctx, userID, entryID); err != nil {
		return err
	}
	if entry.ImageURL != "" {
		if err := s.blobs.Delete(ctx, entry.ImageURL); err != nil {
			s.log.Warn().Err(err).Str("imageUrl", entry.ImageURL).Msg("failed to delete entry image")
		}
	}
	if err := s.builder.UpdateSummary(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("userId", userID).Msg("summary rollup update failed")
	}
	return nil
}

package store

import (
	"context"
	"log/slog"

	"github.com/verte-zerg/typist/internal/model"
)

// BestEffort adapts a Store for callers that must not fail on persistence.
// Errors are logged and swallowed; loads fall back to empty values.
type BestEffort struct {
	store  *Store
	logger *slog.Logger
}

// NewBestEffort wraps s. A nil logger uses slog.Default().
func NewBestEffort(s *Store, logger *slog.Logger) *BestEffort {
	if logger == nil {
		logger = slog.Default()
	}
	return &BestEffort{store: s, logger: logger}
}

// AppendScore stores rec, logging on failure.
func (b *BestEffort) AppendScore(ctx context.Context, rec model.ScoreRecord) {
	if err := b.store.AppendScore(ctx, rec); err != nil {
		b.logger.WarnContext(ctx, "score not saved", "mode", rec.Mode, "err", err)
	}
}

// LastScores returns up to n recent records, or nil on failure.
func (b *BestEffort) LastScores(ctx context.Context, n int) []model.ScoreRecord {
	recs, err := b.store.ListScores(ctx, ScoreFilter{Last: n})
	if err != nil {
		b.logger.WarnContext(ctx, "scores not loaded", "err", err)
		return nil
	}
	return recs
}

// LoadProgress returns saved progress, or the zero value when missing or unreadable.
func (b *BestEffort) LoadProgress(ctx context.Context) model.StoryProgress {
	p, ok, err := b.store.LoadProgress(ctx)
	if err != nil {
		b.logger.WarnContext(ctx, "story progress not loaded", "err", err)
		return model.StoryProgress{}
	}
	if !ok {
		return model.StoryProgress{}
	}
	return p
}

// SaveProgress stores p, logging on failure.
func (b *BestEffort) SaveProgress(ctx context.Context, p model.StoryProgress) {
	if err := b.store.SaveProgress(ctx, p); err != nil {
		b.logger.WarnContext(ctx, "story progress not saved", "node", p.CurrentNode, "err", err)
	}
}

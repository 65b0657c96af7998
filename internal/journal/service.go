// Package journal records the psychological journal kept alongside trades.
package journal

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/security"
	"trade-journal/internal/store"
	"trade-journal/pkg/id"
)

const (
	MinStress = 1
	MaxStress = 10

	MaxContentLength = 20000
)

// Store is the persistence the service needs.
type Store interface {
	store.JournalStore
	GetTrade(ctx context.Context, userID, id string) (*models.Trade, error)
}

// Input describes a new journal entry.
type Input struct {
	TradeID       string         `json:"tradeId,omitempty"`
	Date          time.Time      `json:"date"`
	Emotion       models.Emotion `json:"emotion"`
	StressLevel   int            `json:"stressLevel"`
	Profitability float64        `json:"profitability"`
	Content       string         `json:"content"`
	Tags          []string       `json:"tags,omitempty"`
}

// Patch holds optional edits. An empty TradeID unlinks the entry.
type Patch struct {
	TradeID       *string         `json:"tradeId,omitempty"`
	Date          *time.Time      `json:"date,omitempty"`
	Emotion       *models.Emotion `json:"emotion,omitempty"`
	StressLevel   *int            `json:"stressLevel,omitempty"`
	Profitability *float64        `json:"profitability,omitempty"`
	Content       *string         `json:"content,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
}

// Service implements journal CRUD.
type Service struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a journal service.
func NewService(st Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logging.WithOperation(logger, "journal"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create adds an entry dated now unless a date is given.
func (s *Service) Create(ctx context.Context, userID string, in Input) (*models.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	now := s.now()
	e := &models.JournalEntry{
		ID:            id.New(),
		UserID:        userID,
		TradeID:       in.TradeID,
		Date:          in.Date,
		Emotion:       in.Emotion,
		StressLevel:   in.StressLevel,
		Profitability: in.Profitability,
		Content:       security.SanitizeText(in.Content),
		Tags:          security.NormalizeTags(in.Tags),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if e.Date.IsZero() {
		e.Date = now
	}
	if err := s.validate(ctx, e); err != nil {
		return nil, err
	}

	if err := s.store.CreateJournalEntry(ctx, e); err != nil {
		return nil, err
	}
	log := logging.WithUser(s.logger, userID)
	log.Debug().
		Str("entry_id", e.ID).
		Str("emotion", string(e.Emotion)).
		Msg("Journal entry created")
	return e, nil
}

// Get returns one entry with its linked trade populated.
func (s *Service) Get(ctx context.Context, userID, entryID string) (*models.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	e, err := s.store.GetJournalEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if e.TradeID != "" {
		t, err := s.store.GetTrade(ctx, userID, e.TradeID)
		switch {
		case err == nil:
			e.Trade = t
		case !apperrors.Is(err, apperrors.ErrNotFound):
			return nil, err
		}
	}
	return e, nil
}

// List returns the user's entries matching filter, newest first.
func (s *Service) List(ctx context.Context, userID string, filter store.JournalFilter) ([]models.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, apperrors.ErrInvalidWindow
	}
	filter.UserID = userID
	filter.Tags = security.NormalizeTags(filter.Tags)
	return s.store.GetJournal(ctx, filter)
}

// Update applies a patch.
func (s *Service) Update(ctx context.Context, userID, entryID string, patch Patch) (*models.JournalEntry, error) {
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	e, err := s.store.GetJournalEntry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	if patch.TradeID != nil {
		e.TradeID = *patch.TradeID
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Emotion != nil {
		e.Emotion = *patch.Emotion
	}
	if patch.StressLevel != nil {
		e.StressLevel = *patch.StressLevel
	}
	if patch.Profitability != nil {
		e.Profitability = *patch.Profitability
	}
	if patch.Content != nil {
		e.Content = security.SanitizeText(*patch.Content)
	}
	if patch.Tags != nil {
		e.Tags = security.NormalizeTags(patch.Tags)
	}
	e.Trade = nil
	e.UpdatedAt = s.now()

	if err := s.validate(ctx, e); err != nil {
		return nil, err
	}
	if err := s.store.UpdateJournalEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, userID, entryID string) error {
	if userID == "" {
		return apperrors.ErrUnauthorized
	}
	return s.store.DeleteJournalEntry(ctx, userID, entryID)
}

func (s *Service) validate(ctx context.Context, e *models.JournalEntry) error {
	if !e.Emotion.Valid() {
		return apperrors.InvalidJournal("emotion", e.Emotion, "unknown emotion")
	}
	if e.StressLevel < MinStress || e.StressLevel > MaxStress {
		return apperrors.InvalidJournal("stressLevel", e.StressLevel, "must be between 1 and 10")
	}
	if len(e.Content) > MaxContentLength {
		return apperrors.InvalidJournal("content", len(e.Content), "entry is too long")
	}
	if e.TradeID == "" {
		return nil
	}
	if _, err := s.store.GetTrade(ctx, e.UserID, e.TradeID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.InvalidJournal("tradeId", e.TradeID, "trade not found")
		}
		return err
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/balancebuddy/internal/client/client"
	"github.com/dmitrijs2005/balancebuddy/internal/client/models"
	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

type JournalService interface {
	List(ctx context.Context) ([]models.JournalEntry, error)
	// Add writes an entry; a zero date means today.
	Add(ctx context.Context, content string, date models.Date) (models.JournalEntry, error)
}

type journalService struct {
	backend client.Backend
	today   func() models.Date
}

func NewJournalService(backend client.Backend) JournalService {
	return &journalService{backend: backend, today: models.Today}
}

func (s *journalService) List(ctx context.Context) ([]models.JournalEntry, error) {
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return nil, err
	}
	entries, err := s.backend.ListJournal(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	return entries, nil
}

func (s *journalService) Add(ctx context.Context, content string, date models.Date) (models.JournalEntry, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.JournalEntry{}, fmt.Errorf("%w: entry is empty", common.ErrInvalidInput)
	}
	if date.IsZero() {
		date = s.today()
	}
	userID, err := s.backend.CurrentUserID()
	if err != nil {
		return models.JournalEntry{}, err
	}

	e, err := s.backend.AddJournal(ctx, userID, content, date)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("add journal entry: %w", err)
	}
	return e, nil
}

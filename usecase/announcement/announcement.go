package announcement

import (
	"context"
	"strings"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

const listLimit = 50

type UseCase struct {
	announcements repository.AnnouncementRepository
}

func New(announcements repository.AnnouncementRepository) *UseCase {
	return &UseCase{announcements: announcements}
}

// List returns the most recent announcements, newest first.
func (uc *UseCase) List(ctx context.Context) ([]domain.Announcement, error) {
	items, err := uc.announcements.List(ctx, listLimit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Announcement{}
	}
	return items, nil
}

func (uc *UseCase) Create(ctx context.Context, title, description string) (*domain.Announcement, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "title is required", nil)
	}
	return uc.announcements.Create(ctx, &domain.Announcement{
		Title:       title,
		Description: strings.TrimSpace(description),
	})
}

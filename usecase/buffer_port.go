package usecase

import (
	"context"

	"github.com/nexusliving/bms/domain"
)

// ProfileDeferrer parks a profile upsert the primary store rejected so it can
// be replayed once the store recovers.
type ProfileDeferrer interface {
	DeferProfile(ctx context.Context, user domain.User) error
}

package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/internal/infrastructure/buffer"
	"github.com/nexusliving/bms/pkg/logger"
	"github.com/nexusliving/bms/usecase"
)

// BufferBridge parks profile upserts in the local queue. Roles never travel
// through it: a replayed upsert can only create a user or refresh name and
// photo.
type BufferBridge struct {
	queue  *buffer.Queue
	logger *zap.Logger
	now    func() time.Time
}

func NewBufferBridge(queue *buffer.Queue, log *zap.Logger) *BufferBridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &BufferBridge{queue: queue, logger: log, now: time.Now}
}

func (b *BufferBridge) DeferProfile(ctx context.Context, user domain.User) error {
	if b == nil || b.queue == nil {
		return domain.ErrInvalidPayload
	}
	user.Role = ""
	entry, err := b.queue.Put(user, b.now())
	if err != nil {
		return err
	}
	logger.WithRequestID(ctx, b.logger).Info("profile upsert deferred",
		zap.String("email", entry.Email()),
		zap.Uint64("version", entry.Version))
	return nil
}

var _ usecase.ProfileDeferrer = (*BufferBridge)(nil)

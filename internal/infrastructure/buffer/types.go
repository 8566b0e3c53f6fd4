package buffer

import (
	"time"

	"github.com/nexusliving/bms/domain"
)

// Pending is a profile upsert awaiting replay. A later upsert for the same
// email replaces the earlier one, so only the newest version is replayed.
type Pending struct {
	Profile   domain.User `json:"profile"`
	Version   uint64      `json:"version"`
	Attempts  int         `json:"attempts"`
	QueuedAt  time.Time   `json:"queued_at"`
	LastError string      `json:"last_error,omitempty"`
}

// Email is the queue key.
func (p Pending) Email() string {
	return p.Profile.Email
}

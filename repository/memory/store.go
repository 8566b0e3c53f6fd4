// Package memory implements the repository interfaces on process memory.
// It backs local development (STORE_DRIVER=memory) and the use case and
// handler tests. Transactions hold a store-wide lock and restore a snapshot
// when the transaction function fails.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

type state struct {
	users          map[string]domain.User
	agreements     map[string]domain.Agreement
	agreementOrder []string
	events         []domain.AgreementEvent
	apartments     map[string]domain.Apartment
	coupons        map[string]domain.Coupon
	announcements  []domain.Announcement
	sessions       map[string]domain.Session
}

func newState() *state {
	return &state{
		users:      make(map[string]domain.User),
		agreements: make(map[string]domain.Agreement),
		apartments: make(map[string]domain.Apartment),
		coupons:    make(map[string]domain.Coupon),
		sessions:   make(map[string]domain.Session),
	}
}

func (s *state) clone() *state {
	out := &state{
		users:          make(map[string]domain.User, len(s.users)),
		agreements:     make(map[string]domain.Agreement, len(s.agreements)),
		agreementOrder: append([]string(nil), s.agreementOrder...),
		events:         append([]domain.AgreementEvent(nil), s.events...),
		apartments:     make(map[string]domain.Apartment, len(s.apartments)),
		coupons:        make(map[string]domain.Coupon, len(s.coupons)),
		announcements:  append([]domain.Announcement(nil), s.announcements...),
		sessions:       make(map[string]domain.Session, len(s.sessions)),
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.agreements {
		out.agreements[k] = v
	}
	for k, v := range s.apartments {
		out.apartments[k] = v
	}
	for k, v := range s.coupons {
		out.coupons[k] = v
	}
	for k, v := range s.sessions {
		out.sessions[k] = v
	}
	return out
}

// Store holds every collection behind a single mutex.
type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		data: newState(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{s: s}
}

func (s *Store) Agreements() repository.AgreementRepository {
	return &agreementRepository{s: s}
}

func (s *Store) Apartments() repository.ApartmentRepository {
	return &apartmentRepository{s: s}
}

func (s *Store) Coupons() repository.CouponRepository {
	return &couponRepository{s: s}
}

func (s *Store) Announcements() repository.AnnouncementRepository {
	return &announcementRepository{s: s}
}

func (s *Store) Sessions() repository.SessionRepository {
	return &sessionRepository{s: s}
}

// InTx serializes fn against every other store access.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	return fn(ctx, repository.TxRepositories{
		Users:      &userRepository{s: s, inTx: true},
		Agreements: &agreementRepository{s: s, inTx: true},
	})
}

// view runs fn on the current state, taking the lock unless the caller
// already holds it through InTx.
func (s *Store) view(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.data)
}

var _ repository.Transactor = (*Store)(nil)

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

package stats

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

type UseCase struct {
	apartments repository.ApartmentRepository
	agreements repository.AgreementRepository
	users      repository.UserRepository
}

func New(apartments repository.ApartmentRepository, agreements repository.AgreementRepository, users repository.UserRepository) *UseCase {
	return &UseCase{
		apartments: apartments,
		agreements: agreements,
		users:      users,
	}
}

// Overview gathers the dashboard counters concurrently. An apartment counts
// as unavailable once it backs an accepted agreement.
func (uc *UseCase) Overview(ctx context.Context) (*domain.Stats, error) {
	var out domain.Stats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.TotalApartments, err = uc.apartments.Count(gctx)
		return wrap("count apartments", err)
	})
	g.Go(func() (err error) {
		out.AcceptedAgreements, err = uc.agreements.CountByStatus(gctx, domain.AgreementAccepted)
		return wrap("count accepted agreements", err)
	})
	g.Go(func() (err error) {
		out.Users, err = uc.users.CountByRole(gctx, domain.RoleUser)
		return wrap("count users", err)
	})
	g.Go(func() (err error) {
		out.Members, err = uc.users.CountByRole(gctx, domain.RoleMember)
		return wrap("count members", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.TotalApartments > 0 {
		unavailable := float64(out.AcceptedAgreements) / float64(out.TotalApartments) * 100
		unavailable = math.Min(unavailable, 100)
		out.UnavailablePercentage = round2(unavailable)
		out.AvailablePercentage = round2(100 - unavailable)
	}
	return &out, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package seed loads the canonical apartment catalog.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

//go:embed apartments.json
var apartmentsJSON []byte

// Apartments returns the catalog bundled with the binary.
func Apartments() ([]domain.Apartment, error) {
	var out []domain.Apartment
	if err := json.Unmarshal(apartmentsJSON, &out); err != nil {
		return nil, fmt.Errorf("decode apartment catalog: %w", err)
	}
	return out, nil
}

// Apply upserts the catalog by apartment number, so running it twice leaves
// one row per apartment.
func Apply(ctx context.Context, apartments repository.ApartmentRepository, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	catalog, err := Apartments()
	if err != nil {
		return 0, err
	}
	for i := range catalog {
		if err := apartments.Upsert(ctx, &catalog[i]); err != nil {
			return i, fmt.Errorf("upsert apartment %d: %w", catalog[i].ApartmentNo, err)
		}
	}
	logger.Info("apartment catalog seeded", zap.Int("count", len(catalog)))
	return len(catalog), nil
}

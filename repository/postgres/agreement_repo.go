package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
)

const agreementColumns = `id, user_email, user_name, apartment_id, floor_no, block_name, apartment_no, rent, status, accepted_at, created_at, updated_at`

type agreementRepository struct {
	db DBTX
}

// NewAgreementRepository returns a Postgres-backed AgreementRepository. The
// one-request-per-user rule is enforced by the unique index on user_email.
func NewAgreementRepository(db DBTX) repository.AgreementRepository {
	return &agreementRepository{db: db}
}

func (r *agreementRepository) GetByID(ctx context.Context, id string) (*domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE id = $1`
	return scanAgreement(r.db.QueryRow(ctx, query, id))
}

func (r *agreementRepository) GetForUpdate(ctx context.Context, id string) (*domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE id = $1 FOR UPDATE`
	return scanAgreement(r.db.QueryRow(ctx, query, id))
}

func (r *agreementRepository) GetByEmail(ctx context.Context, email string) (*domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE user_email = $1`
	return scanAgreement(r.db.QueryRow(ctx, query, email))
}

func (r *agreementRepository) GetActiveByEmail(ctx context.Context, email string) (*domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE user_email = $1 AND status = $2`
	return scanAgreement(r.db.QueryRow(ctx, query, email, string(domain.AgreementAccepted)))
}

func (r *agreementRepository) List(ctx context.Context, filter repository.AgreementFilter) ([]domain.Agreement, error) {
	query := `
	SELECT ` + agreementColumns + `
	FROM agreements
	WHERE ($1 = '' OR status = $1)
	ORDER BY created_at, id
	LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, string(filter.Status), optionalLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agreements []domain.Agreement
	for rows.Next() {
		agreement, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		agreements = append(agreements, *agreement)
	}
	return agreements, rows.Err()
}

func (r *agreementRepository) Create(ctx context.Context, agreement *domain.Agreement) (*domain.Agreement, error) {
	if agreement == nil || agreement.UserEmail == "" {
		return nil, domain.ErrInvalidPayload
	}
	if agreement.ID == "" {
		agreement.ID = uuid.NewString()
	}
	if agreement.Status == "" {
		agreement.Status = domain.AgreementPending
	}

	const query = `
	INSERT INTO agreements (id, user_email, user_name, apartment_id, floor_no, block_name, apartment_no, rent, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (user_email) DO NOTHING
	RETURNING created_at, updated_at
	`

	if err := r.db.QueryRow(ctx, query,
		agreement.ID,
		agreement.UserEmail,
		agreement.UserName,
		agreement.ApartmentID,
		agreement.FloorNo,
		agreement.BlockName,
		agreement.ApartmentNo,
		agreement.Rent,
		string(agreement.Status),
	).Scan(&agreement.CreatedAt, &agreement.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDuplicateRequest
		}
		return nil, err
	}

	return agreement, nil
}

func (r *agreementRepository) UpdateStatus(ctx context.Context, id string, status domain.AgreementStatus, acceptedAt *time.Time) error {
	const query = `
	UPDATE agreements
	SET status = $2,
		accepted_at = COALESCE($3, accepted_at),
		updated_at = NOW()
	WHERE id = $1
	`

	var decided interface{}
	if acceptedAt != nil {
		decided = *acceptedAt
	}

	tag, err := r.db.Exec(ctx, query, id, string(status), decided)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAgreementNotFound
	}
	return nil
}

func (r *agreementRepository) CountByStatus(ctx context.Context, status domain.AgreementStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM agreements WHERE ($1 = '' OR status = $1)`
	var count int
	if err := r.db.QueryRow(ctx, query, string(status)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *agreementRepository) AppendEvent(ctx context.Context, event domain.AgreementEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO agreement_events (id, agreement_id, name, actor, created_at)
	VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.AgreementID,
		event.Name,
		event.Actor,
		nullTime(event.CreatedAt),
	)
	return err
}

func (r *agreementRepository) ListEvents(ctx context.Context, agreementID string) ([]domain.AgreementEvent, error) {
	const query = `
	SELECT id, agreement_id, name, actor, created_at
	FROM agreement_events
	WHERE agreement_id = $1
	ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.AgreementEvent
	for rows.Next() {
		var event domain.AgreementEvent
		if err := rows.Scan(&event.ID, &event.AgreementID, &event.Name, &event.Actor, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanAgreement(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Agreement, error) {
	var agreement domain.Agreement
	var (
		status     string
		acceptedAt *time.Time
	)

	if err := row.Scan(
		&agreement.ID,
		&agreement.UserEmail,
		&agreement.UserName,
		&agreement.ApartmentID,
		&agreement.FloorNo,
		&agreement.BlockName,
		&agreement.ApartmentNo,
		&agreement.Rent,
		&status,
		&acceptedAt,
		&agreement.CreatedAt,
		&agreement.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgreementNotFound
		}
		return nil, err
	}

	agreement.Status = domain.AgreementStatus(status)
	agreement.AcceptedAt = acceptedAt
	return &agreement, nil
}

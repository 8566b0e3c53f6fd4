package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nexusliving/bms/repository"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner is a DBTX that can open transactions.
type TxBeginner interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type store struct {
	db TxBeginner
}

// NewStore returns a Transactor that binds user and agreement repositories
// to a single Postgres transaction.
func NewStore(db TxBeginner) repository.Transactor {
	return &store{db: db}
}

func (s *store) InTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}

	// Finishing the transaction must not depend on the caller still waiting.
	finishCtx := context.WithoutCancel(ctx)
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(finishCtx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(finishCtx)
			return
		}
		err = tx.Commit(finishCtx)
	}()

	err = fn(ctx, repository.TxRepositories{
		Users:      NewUserRepository(tx),
		Agreements: NewAgreementRepository(tx),
	})
	return err
}

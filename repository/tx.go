package repository

import "context"

// TxRepositories are bound to a single transaction.
type TxRepositories struct {
	Users      UserRepository
	Agreements AgreementRepository
}

// Transactor runs fn atomically: every write made through the provided
// repositories is committed when fn returns nil and discarded otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

package enroll

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Tokens interface {
	repository.Repository[*Token]

	GetBySecretHash(ctx context.Context, hash string) (*Token, error)
	GetBySecretHashTx(ctx context.Context, tx bun.IDB, hash string) (*Token, error)

	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

type tokens struct {
	repository.Repository[*Token]
	db *bun.DB
}

var (
	_ Tokens                        = (*tokens)(nil)
	_ repository.Repository[*Token] = (*tokens)(nil)
)

func NewTokensRepository(db *bun.DB) Tokens {
	repo := repository.NewRepository[*Token](db, repository.ModelHandlers[*Token]{
		NewRecord: func() *Token { return &Token{} },
		GetID: func(t *Token) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Token, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
	})

	return &tokens{
		Repository: repo,
		db:         db,
	}
}

func (a *tokens) GetBySecretHash(ctx context.Context, hash string) (*Token, error) {
	return a.GetBySecretHashTx(ctx, a.db, hash)
}

func (a *tokens) GetBySecretHashTx(ctx context.Context, tx bun.IDB, hash string) (*Token, error) {
	record := &Token{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.secret_hash = ?", hash).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"secret_hash": hash,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *tokens) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return a.DeleteByUserTx(ctx, a.db, userID)
}

// DeleteByUserTx removes every token record for the user. Run inside the
// same transaction as a following insert so validators never observe the old
// and new tokens live at once.
func (a *tokens) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Token)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)
	return err
}

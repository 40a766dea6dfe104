package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists user records and balance transactions in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed user store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, referred_by, referral_level, balance, referral_earnings, referral_count, created_at`

// GetUser fetches a user record by identifier.
func (s *PostgresStore) GetUser(ctx context.Context, id int64) (UserRecord, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// CreateUser inserts a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, user UserRecord) error {
	cmd, err := s.db.Exec(ctx, `INSERT INTO users (id, referred_by, referral_level, balance, referral_earnings, referral_count, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO NOTHING`,
		user.ID, user.ReferredBy, user.ReferralLevel, user.Balance, user.ReferralEarnings, user.ReferralCount, user.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserExists
	}
	return nil
}

// SetReferrer attaches the user to its upline. The referred_by column is
// written only once; a second attempt affects zero rows and fails.
func (s *PostgresStore) SetReferrer(ctx context.Context, id, referrerID int64, level int) error {
	cmd, err := s.db.Exec(ctx, `UPDATE users SET referred_by = $1, referral_level = $2
        WHERE id = $3 AND referred_by IS NULL`, referrerID, level, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddBalance credits the user's balance and appends a balance transaction.
func (s *PostgresStore) AddBalance(ctx context.Context, id int64, amount float64, description string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := creditBalance(ctx, tx, id, amount, description); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// IncrementReferralCount bumps the direct-children counter.
func (s *PostgresStore) IncrementReferralCount(ctx context.Context, id int64) error {
	cmd, err := s.db.Exec(ctx, `UPDATE users SET referral_count = referral_count + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateReferralEarnings adds delta to the cumulative earnings figure.
func (s *PostgresStore) UpdateReferralEarnings(ctx context.Context, id int64, delta float64) error {
	cmd, err := s.db.Exec(ctx, `UPDATE users SET referral_earnings = referral_earnings + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreditBonus posts a commission credit atomically: balance, transaction
// record and earnings move in a single database transaction, closing the
// partial-failure window between the two legacy calls.
func (s *PostgresStore) CreditBonus(ctx context.Context, id int64, amount float64, description string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := creditBalance(ctx, tx, id, amount, description); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET referral_earnings = referral_earnings + $1 WHERE id = $2`, amount, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetReferralsByUsers returns every user referred by one of ids.
func (s *PostgresStore) GetReferralsByUsers(ctx context.Context, ids []int64) ([]UserRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE referred_by = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func creditBalance(ctx context.Context, tx pgx.Tx, id int64, amount float64, description string) error {
	cmd, err := tx.Exec(ctx, `UPDATE users SET balance = balance + $1 WHERE id = $2`, amount, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("credit %d: %w", id, ErrUserNotFound)
	}
	_, err = tx.Exec(ctx, `INSERT INTO balance_transactions (id, user_id, amount, description, created_at)
        VALUES ($1, $2, $3, $4, NOW())`, uuid.New(), id, amount, description)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (UserRecord, error) {
	var u UserRecord
	err := row.Scan(&u.ID, &u.ReferredBy, &u.ReferralLevel, &u.Balance, &u.ReferralEarnings, &u.ReferralCount, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserRecord{}, ErrUserNotFound
		}
		return UserRecord{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

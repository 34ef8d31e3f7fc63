// internal/repository/postgres/card_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cardflow/internal/cardcrypto"
	"cardflow/internal/domain"
	"cardflow/internal/repository"
	"cardflow/internal/util"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// uniqueViolation is the PostgreSQL error code for a unique index hit.
const uniqueViolation = "23505"

// cardRow is the persisted shape of a card. The number is stored as
// ciphertext plus a deterministic fingerprint backing the unique index
// and lookups by number.
type cardRow struct {
	ID              int64            `db:"id"`
	NumberEncrypted string           `db:"number_encrypted"`
	Fingerprint     string           `db:"number_fingerprint"`
	OwnerID         uuid.UUID        `db:"owner_id"`
	Expiry          domain.YearMonth `db:"expiry_date"`
	Status          string           `db:"status"`
	Balance         decimal.Decimal  `db:"balance"`
	CreatedAt       time.Time        `db:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at"`
}

const cardColumns = `id, number_encrypted, number_fingerprint, owner_id, expiry_date, status, balance, created_at, updated_at`

// CardRepository implements repository.CardRepository for PostgreSQL.
// It applies the number codec on every row crossing the boundary.
type CardRepository struct {
	codec *cardcrypto.Codec
}

// NewCardRepository creates a new CardRepository using the given codec.
func NewCardRepository(codec *cardcrypto.Codec) repository.CardRepository {
	return &CardRepository{codec: codec}
}

func (r *CardRepository) toDomain(row *cardRow) (*domain.Card, error) {
	number, err := r.codec.Decrypt(row.NumberEncrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt card number for id %d: %w", row.ID, err)
	}
	return &domain.Card{
		ID:        row.ID,
		Number:    number,
		OwnerID:   row.OwnerID,
		Expiry:    row.Expiry,
		Status:    domain.CardStatus(row.Status),
		Balance:   row.Balance,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Insert persists a new card using the provided DBExecutor.
func (r *CardRepository) Insert(ctx context.Context, q repository.DBExecutor, card *domain.Card) error {
	encrypted, err := r.codec.Encrypt(card.Number)
	if err != nil {
		return fmt.Errorf("failed to encrypt card number: %w", err)
	}

	query := `INSERT INTO cards (number_encrypted, number_fingerprint, owner_id, expiry_date, status, balance, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err = q.QueryRowContext(ctx, query,
		encrypted, r.codec.Fingerprint(card.Number), card.OwnerID,
		card.Expiry, card.Status, card.Balance, card.CreatedAt, card.UpdatedAt,
	).Scan(&card.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return util.ErrConflict
		}
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// FindByID retrieves a card by its ID using the provided DBExecutor.
func (r *CardRepository) FindByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Card, error) {
	var row cardRow
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	if err := q.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card by ID %d: %w", id, err)
	}
	return r.toDomain(&row)
}

// FindByNumber retrieves a card by its plaintext number via the
// deterministic fingerprint.
func (r *CardRepository) FindByNumber(ctx context.Context, q repository.DBExecutor, number string) (*domain.Card, error) {
	var row cardRow
	query := `SELECT ` + cardColumns + ` FROM cards WHERE number_fingerprint = $1`
	if err := q.GetContext(ctx, &row, query, r.codec.Fingerprint(number)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card by number: %w", err)
	}
	return r.toDomain(&row)
}

// FindByIDAndOwner retrieves a card only when it belongs to the owner.
func (r *CardRepository) FindByIDAndOwner(ctx context.Context, q repository.DBExecutor, id int64, ownerID uuid.UUID) (*domain.Card, error) {
	var row cardRow
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 AND owner_id = $2`
	if err := q.GetContext(ctx, &row, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card %d for owner %s: %w", id, ownerID, err)
	}
	return r.toDomain(&row)
}

func (r *CardRepository) list(ctx context.Context, q repository.DBExecutor, where string, page repository.Page, args ...interface{}) (*repository.Paged, error) {
	page, column, dir := page.Normalize()

	var total int64
	countQuery := `SELECT COUNT(*) FROM cards` + where
	if err := q.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}

	// column and dir come from the Normalize whitelist, never from
	// caller input directly.
	query := fmt.Sprintf(`SELECT %s FROM cards%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		cardColumns, where, column, dir, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	var rows []cardRow
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	items := make([]domain.Card, 0, len(rows))
	for i := range rows {
		card, err := r.toDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *card)
	}
	return &repository.Paged{Items: items, TotalCount: total, Number: page.Number, Size: page.Size}, nil
}

// ListByOwner returns one page of the owner's cards.
func (r *CardRepository) ListByOwner(ctx context.Context, q repository.DBExecutor, ownerID uuid.UUID, page repository.Page) (*repository.Paged, error) {
	return r.list(ctx, q, ` WHERE owner_id = $1`, page, ownerID)
}

// ListAll returns one page over all cards.
func (r *CardRepository) ListAll(ctx context.Context, q repository.DBExecutor, page repository.Page) (*repository.Paged, error) {
	return r.list(ctx, q, ``, page)
}

// BulkExpire marks every card whose expiry month is strictly before
// the month of now as EXPIRED. Expiry dates are stored as the last day
// of their month, so comparing against the first day of the current
// month gives month-granularity semantics.
func (r *CardRepository) BulkExpire(ctx context.Context, q repository.DBExecutor, now time.Time) (int64, error) {
	now = now.UTC()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	query := `UPDATE cards SET status = $1, updated_at = $2 WHERE expiry_date < $3 AND status <> $1`
	result, err := q.ExecContext(ctx, query, domain.CardStatusExpired, now, firstOfMonth)
	if err != nil {
		return 0, fmt.Errorf("failed to expire cards: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected by expiry sweep: %w", err)
	}
	return affected, nil
}

// BulkSetStatus applies one status to a set of ids in a single
// statement. Expired cards are terminal and never leave EXPIRED.
func (r *CardRepository) BulkSetStatus(ctx context.Context, q repository.DBExecutor, ids []int64, status domain.CardStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `UPDATE cards SET status = $1, updated_at = $2 WHERE id = ANY($3) AND status <> $4`
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), pq.Array(ids), domain.CardStatusExpired)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk set status %s: %w", status, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected by bulk status update: %w", err)
	}
	return affected, nil
}

// Deposit atomically adds amount to the card's balance.
func (r *CardRepository) Deposit(ctx context.Context, q repository.DBExecutor, id int64, amount decimal.Decimal) (int64, error) {
	query := `UPDATE cards SET balance = balance + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to deposit to card %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected by deposit to card %d: %w", id, err)
	}
	return affected, nil
}

// Withdraw atomically subtracts amount, guarded so the balance can
// never go negative. Zero rows means the card is missing or the guard
// failed.
func (r *CardRepository) Withdraw(ctx context.Context, q repository.DBExecutor, id int64, amount decimal.Decimal) (int64, error) {
	query := `UPDATE cards SET balance = balance - $1, updated_at = $2 WHERE id = $3 AND balance >= $1`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to withdraw from card %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected by withdrawal from card %d: %w", id, err)
	}
	return affected, nil
}

// DeleteByID removes the card.
func (r *CardRepository) DeleteByID(ctx context.Context, q repository.DBExecutor, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return nil
}

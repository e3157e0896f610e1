package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

const otpColumns = `id, booking_id, code, sent_time, verified, verified_at,
	email_sent, email_sent_at, email_message_id, email_error, email_retry_count,
	created_at, updated_at`

// OTPRepository is a PostgreSQL implementation of repository.OTPRepository.
// The booking_id column carries a UNIQUE constraint so at most one record
// exists per booking; a periodic sweep is the primary cleanup path and the
// 15-minute retention window is enforced by the sweeper, not the store.
type OTPRepository struct {
	q Querier
}

// NewOTPRepository creates a new PostgreSQL OTP repository.
func NewOTPRepository(db *sql.DB) *OTPRepository {
	return &OTPRepository{q: db}
}

func scanOTP(row rowScanner) (*domain.OTPRecord, error) {
	var o domain.OTPRecord
	var verifiedAt, emailSentAt sql.NullTime
	var messageID, emailErr sql.NullString

	err := row.Scan(
		&o.ID,
		&o.BookingID,
		&o.Code,
		&o.SentTime,
		&o.Verified,
		&verifiedAt,
		&o.EmailSent,
		&emailSentAt,
		&messageID,
		&emailErr,
		&o.EmailRetryCount,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.VerifiedAt = verifiedAt.Time
	o.EmailSentAt = emailSentAt.Time
	o.EmailMessageID = messageID.String
	o.EmailError = emailErr.String

	return &o, nil
}

// GetByBookingID retrieves the OTP record for a booking.
func (r *OTPRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.OTPRecord, error) {
	query := `SELECT ` + otpColumns + ` FROM otps WHERE booking_id = $1`

	o, err := scanOTP(r.q.QueryRowContext(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// Upsert inserts the record or overwrites the existing one for the booking.
func (r *OTPRepository) Upsert(ctx context.Context, o *domain.OTPRecord) error {
	query := `
		INSERT INTO otps (` + otpColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (booking_id) DO UPDATE SET
			code = EXCLUDED.code,
			sent_time = EXCLUDED.sent_time,
			verified = EXCLUDED.verified,
			verified_at = EXCLUDED.verified_at,
			email_sent = EXCLUDED.email_sent,
			email_sent_at = EXCLUDED.email_sent_at,
			email_message_id = EXCLUDED.email_message_id,
			email_error = EXCLUDED.email_error,
			email_retry_count = EXCLUDED.email_retry_count,
			updated_at = NOW()
	`

	_, err := r.q.ExecContext(ctx, query,
		o.ID,
		o.BookingID,
		o.Code,
		o.SentTime,
		o.Verified,
		nullTime(o.VerifiedAt),
		o.EmailSent,
		nullTime(o.EmailSentAt),
		nullString(o.EmailMessageID),
		nullString(o.EmailError),
		o.EmailRetryCount,
		o.CreatedAt,
		o.UpdatedAt,
	)
	return err
}

// Update rewrites an existing record.
func (r *OTPRepository) Update(ctx context.Context, o *domain.OTPRecord) error {
	query := `
		UPDATE otps SET
			code = $1, sent_time = $2, verified = $3, verified_at = $4,
			email_sent = $5, email_sent_at = $6, email_message_id = $7,
			email_error = $8, email_retry_count = $9, updated_at = NOW()
		WHERE booking_id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		o.Code,
		o.SentTime,
		o.Verified,
		nullTime(o.VerifiedAt),
		o.EmailSent,
		nullTime(o.EmailSentAt),
		nullString(o.EmailMessageID),
		nullString(o.EmailError),
		o.EmailRetryCount,
		o.BookingID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteExpired removes unverified records sent before the cutoff.
func (r *OTPRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.q.ExecContext(ctx,
		`DELETE FROM otps WHERE verified = FALSE AND sent_time < $1`, cutoff)
	if err != nil {
		return 0, err
	}

	n, err := result.RowsAffected()
	return int(n), err
}

// List returns a page of records matching the filter plus the total.
func (r *OTPRepository) List(ctx context.Context, f repository.OTPFilter) ([]*domain.OTPRecord, int, error) {
	var conds []string
	var args []any

	if f.Verified != nil {
		args = append(args, *f.Verified)
		conds = append(conds, "verified = $1")
	}
	if f.Expired != nil {
		args = append(args, time.Now().Add(-domain.OTPExpiry))
		op := "<"
		if !*f.Expired {
			op = ">="
		}
		conds = append(conds, "sent_time "+op+" $"+itoa(len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM otps"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	args = append(args, limit, (page-1)*limit)
	query := "SELECT " + otpColumns + " FROM otps" + where +
		" ORDER BY sent_time DESC LIMIT $" + itoa(len(args)-1) + " OFFSET $" + itoa(len(args))

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*domain.OTPRecord
	for rows.Next() {
		o, err := scanOTP(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, o)
	}
	return records, total, rows.Err()
}

// Count returns the total number of OTP records.
func (r *OTPRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM otps`).Scan(&n)
	return n, err
}

// CountVerified returns the number of verified records.
func (r *OTPRepository) CountVerified(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM otps WHERE verified = TRUE`).Scan(&n)
	return n, err
}

// CountExpired returns the number of unverified records past the cutoff.
func (r *OTPRepository) CountExpired(ctx context.Context, cutoff time.Time) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM otps WHERE verified = FALSE AND sent_time < $1`, cutoff).Scan(&n)
	return n, err
}

package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"context"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

const bookingColumns = `id, user_id, driver_id, ambulance_id, emergency_level,
	pickup_lat, pickup_lng, pickup_address, drop_lat, drop_lng, drop_address,
	distance_km, estimated_fare, final_fare, base_fare, per_km_rate, emergency_multiplier,
	otp, otp_verified, payment_status, payment_method, status,
	rating, feedback, cancellation_reason, is_refunded,
	customer_notes, medical_requirements, emergency_contact_name, emergency_contact_phone,
	created_at, updated_at`

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32)
	`

	_, err := r.q.ExecContext(ctx, query,
		b.ID,
		b.UserID,
		nullString(b.DriverID),
		nullString(b.AmbulanceID),
		b.EmergencyLevel,
		b.PickupLocation.Lat,
		b.PickupLocation.Lng,
		nullString(b.PickupLocation.Address),
		b.DropLocation.Lat,
		b.DropLocation.Lng,
		nullString(b.DropLocation.Address),
		b.DistanceKm,
		b.EstimatedFare,
		nullFloat(b.FinalFare),
		b.FareBreakdown.BaseFare,
		b.FareBreakdown.PerKmRate,
		b.FareBreakdown.EmergencyMultiplier,
		nullString(b.OTP),
		b.OTPVerified,
		b.PaymentStatus,
		b.PaymentMethod,
		b.Status,
		nullInt(b.Rating),
		nullString(b.Feedback),
		nullString(b.CancellationReason),
		b.IsRefunded,
		nullString(b.CustomerNotes),
		nullString(b.MedicalRequirements),
		nullString(b.EmergencyContact.Name),
		nullString(b.EmergencyContact.Phone),
		b.CreatedAt,
		b.UpdatedAt,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var driverID, ambulanceID, pickupAddr, dropAddr sql.NullString
	var otp, feedback, cancelReason, notes, medical, contactName, contactPhone sql.NullString
	var finalFare sql.NullFloat64
	var rating sql.NullInt64

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&driverID,
		&ambulanceID,
		&b.EmergencyLevel,
		&b.PickupLocation.Lat,
		&b.PickupLocation.Lng,
		&pickupAddr,
		&b.DropLocation.Lat,
		&b.DropLocation.Lng,
		&dropAddr,
		&b.DistanceKm,
		&b.EstimatedFare,
		&finalFare,
		&b.FareBreakdown.BaseFare,
		&b.FareBreakdown.PerKmRate,
		&b.FareBreakdown.EmergencyMultiplier,
		&otp,
		&b.OTPVerified,
		&b.PaymentStatus,
		&b.PaymentMethod,
		&b.Status,
		&rating,
		&feedback,
		&cancelReason,
		&b.IsRefunded,
		&notes,
		&medical,
		&contactName,
		&contactPhone,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.DriverID = driverID.String
	b.AmbulanceID = ambulanceID.String
	b.PickupLocation.Address = pickupAddr.String
	b.DropLocation.Address = dropAddr.String
	b.FinalFare = finalFare.Float64
	b.OTP = otp.String
	b.Rating = int(rating.Int64)
	b.Feedback = feedback.String
	b.CancellationReason = cancelReason.String
	b.CustomerNotes = notes.String
	b.MedicalRequirements = medical.String
	b.EmergencyContact.Name = contactName.String
	b.EmergencyContact.Phone = contactPhone.String

	return &b, nil
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// GetByUserID retrieves all bookings owned by a user, newest first.
func (r *BookingRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// Update rewrites an existing booking document.
func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `
		UPDATE bookings SET
			driver_id = $1, ambulance_id = $2, emergency_level = $3,
			distance_km = $4, estimated_fare = $5, final_fare = $6,
			base_fare = $7, per_km_rate = $8, emergency_multiplier = $9,
			otp = $10, otp_verified = $11, payment_status = $12, payment_method = $13,
			status = $14, rating = $15, feedback = $16, cancellation_reason = $17,
			is_refunded = $18, customer_notes = $19, medical_requirements = $20,
			emergency_contact_name = $21, emergency_contact_phone = $22,
			updated_at = NOW()
		WHERE id = $23
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(b.DriverID),
		nullString(b.AmbulanceID),
		b.EmergencyLevel,
		b.DistanceKm,
		b.EstimatedFare,
		nullFloat(b.FinalFare),
		b.FareBreakdown.BaseFare,
		b.FareBreakdown.PerKmRate,
		b.FareBreakdown.EmergencyMultiplier,
		nullString(b.OTP),
		b.OTPVerified,
		b.PaymentStatus,
		b.PaymentMethod,
		b.Status,
		nullInt(b.Rating),
		nullString(b.Feedback),
		nullString(b.CancellationReason),
		b.IsRefunded,
		nullString(b.CustomerNotes),
		nullString(b.MedicalRequirements),
		nullString(b.EmergencyContact.Name),
		nullString(b.EmergencyContact.Phone),
		b.ID,
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

// List returns a page of bookings matching the filter plus the total count.
func (r *BookingRepository) List(ctx context.Context, f repository.BookingFilter) ([]*domain.Booking, int, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}
	if f.Search != "" {
		p := arg(f.Search)
		conds = append(conds, fmt.Sprintf("(id::text = %s OR otp ILIKE '%%' || %s || '%%')", p, p))
	}
	if !f.From.IsZero() {
		conds = append(conds, "created_at >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "created_at <= "+arg(f.To))
	}
	if f.AmbulanceID != "" {
		conds = append(conds, "ambulance_id = "+arg(f.AmbulanceID))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings"+where, args...).Scan(&total); err != nil {
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

	query := "SELECT " + bookingColumns + " FROM bookings" + where +
		" ORDER BY created_at DESC LIMIT " + arg(limit) + " OFFSET " + arg((page-1)*limit)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// Count returns the total number of bookings.
func (r *BookingRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n)
	return n, err
}

// CountByStatus returns the number of bookings in the given status.
func (r *BookingRepository) CountByStatus(ctx context.Context, status domain.BookingStatus) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE status = $1`, status).Scan(&n)
	return n, err
}

// CountOTPVerified returns the number of bookings with the given OTP flag.
func (r *BookingRepository) CountOTPVerified(ctx context.Context, verified bool) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE otp_verified = $1`, verified).Scan(&n)
	return n, err
}

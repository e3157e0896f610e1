package tests

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/geocode"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if b.UserID == userID {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[booking.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]*domain.Booking, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*domain.Booking, 0)
	for _, b := range m.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.AmbulanceID != "" && b.AmbulanceID != filter.AmbulanceID {
			continue
		}
		if filter.Search != "" && b.ID != filter.Search && !strings.Contains(b.OTP, filter.Search) {
			continue
		}
		if !filter.From.IsZero() && b.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && b.CreatedAt.After(filter.To) {
			continue
		}
		copy := *b
		matched = append(matched, &copy)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= total {
		return []*domain.Booking{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *MockBookingRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings), nil
}

func (m *MockBookingRepository) CountByStatus(ctx context.Context, status domain.BookingStatus) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, b := range m.bookings {
		if b.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *MockBookingRepository) CountOTPVerified(ctx context.Context, verified bool) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, b := range m.bookings {
		if b.OTPVerified == verified {
			count++
		}
	}
	return count, nil
}

// GetBooking returns the booking by ID (for test assertions).
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

// CountBookings returns the number of bookings.
func (m *MockBookingRepository) CountBookings() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// ──────────────────────────────────────────────
// MOCK OTP REPOSITORY
// ──────────────────────────────────────────────

// MockOTPRepository is a mock implementation of OTPRepository. Records are
// keyed by booking ID, mirroring the 1:1 storage constraint.
type MockOTPRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.OTPRecord

	// Clock used for expiry filters; defaults to time.Now.
	Now func() time.Time

	// Counters for verification
	UpsertCallCount int32
	UpdateCallCount int32

	// Error injection
	UpsertError error
	UpdateError error
}

// NewMockOTPRepository creates a new mock OTP repository.
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{
		records: make(map[string]*domain.OTPRecord),
		Now:     time.Now,
	}
}

// AddRecord adds an OTP record to the mock repository.
func (m *MockOTPRepository) AddRecord(rec *domain.OTPRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.BookingID] = rec
}

func (m *MockOTPRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.OTPRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *rec
	return &copy, nil
}

func (m *MockOTPRepository) Upsert(ctx context.Context, otp *domain.OTPRecord) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *otp
	m.records[otp.BookingID] = &copy
	return nil
}

func (m *MockOTPRepository) Update(ctx context.Context, otp *domain.OTPRecord) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[otp.BookingID]; !ok {
		return repository.ErrNotFound
	}
	copy := *otp
	m.records[otp.BookingID] = &copy
	return nil
}

func (m *MockOTPRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for bookingID, rec := range m.records {
		if !rec.Verified && rec.SentTime.Before(cutoff) {
			delete(m.records, bookingID)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockOTPRepository) List(ctx context.Context, filter repository.OTPFilter) ([]*domain.OTPRecord, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.Now()
	matched := make([]*domain.OTPRecord, 0)
	for _, rec := range m.records {
		if filter.Verified != nil && rec.Verified != *filter.Verified {
			continue
		}
		if filter.Expired != nil && rec.IsExpired(now) != *filter.Expired {
			continue
		}
		copy := *rec
		matched = append(matched, &copy)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].SentTime.After(matched[j].SentTime)
	})
	return matched, len(matched), nil
}

func (m *MockOTPRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

func (m *MockOTPRepository) CountVerified(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, rec := range m.records {
		if rec.Verified {
			count++
		}
	}
	return count, nil
}

func (m *MockOTPRepository) CountExpired(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, rec := range m.records {
		if !rec.Verified && rec.SentTime.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

// GetRecord returns the record for a booking (for test assertions).
func (m *MockOTPRepository) GetRecord(bookingID string) *domain.OTPRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[bookingID]
}

// CountRecords returns the number of stored records.
func (m *MockOTPRepository) CountRecords() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// ──────────────────────────────────────────────
// MOCK FARE HISTORY REPOSITORY
// ──────────────────────────────────────────────

// MockFareHistoryRepository is a mock implementation of
// FareHistoryRepository.
type MockFareHistoryRepository struct {
	mu      sync.RWMutex
	records []*domain.FareHistory

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockFareHistoryRepository creates a new mock fare history repository.
func NewMockFareHistoryRepository() *MockFareHistoryRepository {
	return &MockFareHistoryRepository{
		records: make([]*domain.FareHistory, 0),
	}
}

func (m *MockFareHistoryRepository) Create(ctx context.Context, record *domain.FareHistory) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *record
	m.records = append(m.records, &copy)
	return nil
}

func (m *MockFareHistoryRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*domain.FareHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.FareHistory, 0)
	for _, rec := range m.records {
		if rec.BookingID == bookingID {
			copy := *rec
			result = append(result, &copy)
		}
	}
	return result, nil
}

// CountRecords returns the number of audit records.
func (m *MockFareHistoryRepository) CountRecords() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// LastRecord returns the most recently appended record.
func (m *MockFareHistoryRepository) LastRecord() *domain.FareHistory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.records) == 0 {
		return nil
	}
	return m.records[len(m.records)-1]
}

// ──────────────────────────────────────────────
// MOCK AMBULANCE REPOSITORY
// ──────────────────────────────────────────────

// MockAmbulanceRepository is a mock implementation of AmbulanceRepository.
type MockAmbulanceRepository struct {
	mu         sync.RWMutex
	ambulances map[string]*domain.Ambulance

	// Counters for verification
	CreateCallCount         int32
	UpdateStatusCallCount   int32
	UpdateLocationCallCount int32

	// Error injection
	CreateError         error
	UpdateLocationError error
}

// NewMockAmbulanceRepository creates a new mock ambulance repository.
func NewMockAmbulanceRepository() *MockAmbulanceRepository {
	return &MockAmbulanceRepository{
		ambulances: make(map[string]*domain.Ambulance),
	}
}

// AddAmbulance adds an ambulance to the mock repository.
func (m *MockAmbulanceRepository) AddAmbulance(a *domain.Ambulance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ambulances[a.ID] = a
}

func (m *MockAmbulanceRepository) Create(ctx context.Context, ambulance *domain.Ambulance) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.ambulances {
		if a.PlateNumber == ambulance.PlateNumber {
			return repository.ErrDuplicate
		}
	}
	m.ambulances[ambulance.ID] = ambulance
	return nil
}

func (m *MockAmbulanceRepository) GetByID(ctx context.Context, id string) (*domain.Ambulance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.ambulances[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *a
	return &copy, nil
}

func (m *MockAmbulanceRepository) GetByPlate(ctx context.Context, plate string) (*domain.Ambulance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.ambulances {
		if a.PlateNumber == plate {
			copy := *a
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockAmbulanceRepository) FindByPlateLike(ctx context.Context, fragment string) (*domain.Ambulance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	needle := strings.ToLower(fragment)
	for _, a := range m.ambulances {
		if strings.Contains(strings.ToLower(a.PlateNumber), needle) {
			copy := *a
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockAmbulanceRepository) GetAll(ctx context.Context) ([]*domain.Ambulance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ambulance, 0, len(m.ambulances))
	for _, a := range m.ambulances {
		copy := *a
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockAmbulanceRepository) UpdateStatus(ctx context.Context, id string, status domain.AmbulanceStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.ambulances[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *MockAmbulanceRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.ambulances[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.CurrentLat = lat
	a.CurrentLng = lng
	return nil
}

// GetAmbulance returns the ambulance by ID (for test assertions).
func (m *MockAmbulanceRepository) GetAmbulance(id string) *domain.Ambulance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ambulances[id]
}

// ──────────────────────────────────────────────
// MOCK USER / DRIVER REPOSITORIES
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{drivers: make(map[string]*domain.Driver)}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of the ambulance geo index.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations []redis.AmbulanceLocation

	// Counters for verification
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError error
	FindNearbyError     error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make([]redis.AmbulanceLocation, 0),
	}
}

// SetLocations sets all locations (for test setup).
func (m *MockLocationStore) SetLocations(locations []redis.AmbulanceLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = locations
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, ambulanceID string, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.AmbulanceID == ambulanceID {
			m.locations[i].Lat = lat
			m.locations[i].Lng = lng
			return nil
		}
	}
	m.locations = append(m.locations, redis.AmbulanceLocation{
		AmbulanceID: ambulanceID,
		Lat:         lat,
		Lng:         lng,
	})
	return nil
}

func (m *MockLocationStore) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]redis.AmbulanceLocation, error) {
	if m.FindNearbyError != nil {
		return nil, m.FindNearbyError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Return all locations (mock doesn't do real geo filtering).
	result := make([]redis.AmbulanceLocation, len(m.locations))
	copy(result, m.locations)
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, ambulanceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, loc := range m.locations {
		if loc.AmbulanceID == ambulanceID {
			m.locations = append(m.locations[:i], m.locations[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks if an ambulance location exists.
func (m *MockLocationStore) HasLocation(ambulanceID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations {
		if loc.AmbulanceID == ambulanceID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of the sweep lock.
type MockLockStore struct {
	mu     sync.Mutex
	expiry time.Time

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{}
}

func (m *MockLockStore) AcquireSweepLock(ctx context.Context, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if time.Now().Before(m.expiry) {
		return false, nil // Lock still held.
	}
	m.expiry = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseSweepLock(ctx context.Context) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiry = time.Time{}
	return nil
}

// ──────────────────────────────────────────────
// FAKE GEOCODER
// ──────────────────────────────────────────────

// FakeGeocoder resolves addresses from a fixed table.
type FakeGeocoder struct {
	mu     sync.RWMutex
	points map[string]geocodePoint

	// Error injection
	GeocodeError error

	// Counters for verification
	GeocodeCallCount int32
}

type geocodePoint struct {
	Lat float64
	Lng float64
}

// NewFakeGeocoder creates a new fake geocoder.
func NewFakeGeocoder() *FakeGeocoder {
	return &FakeGeocoder{points: make(map[string]geocodePoint)}
}

// AddAddress registers a resolvable address.
func (g *FakeGeocoder) AddAddress(address string, lat, lng float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.points[address] = geocodePoint{Lat: lat, Lng: lng}
}

func (g *FakeGeocoder) Geocode(ctx context.Context, address string) (geocode.Point, error) {
	atomic.AddInt32(&g.GeocodeCallCount, 1)
	if g.GeocodeError != nil {
		return geocode.Point{}, g.GeocodeError
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.points[address]
	if !ok {
		return geocode.Point{}, geocode.ErrNoResults
	}
	return geocode.Point{Lat: p.Lat, Lng: p.Lng}, nil
}

// ──────────────────────────────────────────────
// MOCK MAILER
// ──────────────────────────────────────────────

// SentMail records one delivered message.
type SentMail struct {
	To        string
	Code      string
	BookingID string
}

// MockMailer is a mock mail transport that records every send.
type MockMailer struct {
	mu   sync.Mutex
	sent []SentMail

	// Error injection
	SendError error

	// Counters for verification
	SendCallCount int32
}

// NewMockMailer creates a new mock mailer.
func NewMockMailer() *MockMailer {
	return &MockMailer{sent: make([]SentMail, 0)}
}

func (m *MockMailer) SendOTP(ctx context.Context, to, code, bookingID string) (string, error) {
	atomic.AddInt32(&m.SendCallCount, 1)
	if m.SendError != nil {
		return "", m.SendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentMail{To: to, Code: code, BookingID: bookingID})
	return "mock-message-id", nil
}

// SentCount returns the number of recorded sends.
func (m *MockMailer) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// LastSent returns the most recent send, or nil.
func (m *MockMailer) LastSent() *SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	last := m.sent[len(m.sent)-1]
	return &last
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)

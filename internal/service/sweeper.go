package service

import (
	"context"
	"log"
	"time"

	internalRedis "dispatch/internal/redis"
)

// OTPSweeper periodically deletes expired, unverified OTP records. A Redis
// lock keeps the sweep single-flight across server instances sharing one
// store.
type OTPSweeper struct {
	otpService *OTPService
	locks      internalRedis.LockStoreInterface
	interval   time.Duration
}

// NewOTPSweeper creates a new OTPSweeper.
func NewOTPSweeper(otpService *OTPService, locks internalRedis.LockStoreInterface, interval time.Duration) *OTPSweeper {
	return &OTPSweeper{
		otpService: otpService,
		locks:      locks,
		interval:   interval,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
// Intended to run in its own goroutine.
func (s *OTPSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep performs one cleanup pass under the distributed lock. Lock
// contention means another instance is sweeping, which is not an error.
func (s *OTPSweeper) sweep(ctx context.Context) {
	acquired, err := s.locks.AcquireSweepLock(ctx, s.interval)
	if err != nil {
		log.Printf("otp sweep: lock acquire failed: %v", err)
		return
	}
	if !acquired {
		return
	}
	defer func() {
		if err := s.locks.ReleaseSweepLock(ctx); err != nil {
			log.Printf("otp sweep: lock release failed: %v", err)
		}
	}()

	deleted, err := s.otpService.CleanupExpired(ctx)
	if err != nil {
		log.Printf("otp sweep: cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("otp sweep: removed %d expired record(s)", deleted)
	}
}

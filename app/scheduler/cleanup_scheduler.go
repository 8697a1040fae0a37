// Package scheduler runs the periodic maintenance loops of the platform
package scheduler

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/smart-stationery/backend/repository"
	"gopkg.in/natefinch/lumberjack.v2"
)

// CleanupScheduler periodically purges expired OTP rows, revoked or expired
// sessions and cart lines pointing at deactivated products.
type CleanupScheduler struct {
	otpRepo     repository.OTPVerificationRepository
	sessionRepo repository.UserSessionRepository
	cartRepo    repository.CartItemRepository
	logger      *log.Logger
	interval    time.Duration
}

func NewCleanupScheduler(
	otpRepo repository.OTPVerificationRepository,
	sessionRepo repository.UserSessionRepository,
	cartRepo repository.CartItemRepository,
	interval time.Duration,
) *CleanupScheduler {
	if interval <= 0 {
		interval = time.Hour
	}

	return &CleanupScheduler{
		otpRepo:     otpRepo,
		sessionRepo: sessionRepo,
		cartRepo:    cartRepo,
		logger:      newSchedulerLogger("cleanup "),
		interval:    interval,
	}
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *CleanupScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *CleanupScheduler) runOnce(ctx context.Context) {
	if err := s.otpRepo.CleanupExpired(ctx); err != nil {
		s.logger.Printf("OTP cleanup failed: %v", err)
	}
	if err := s.sessionRepo.CleanupExpiredSessions(ctx); err != nil {
		s.logger.Printf("session cleanup failed: %v", err)
	}
	pruned, err := s.cartRepo.PruneDeactivated(ctx)
	if err != nil {
		s.logger.Printf("cart prune failed: %v", err)
	} else if pruned > 0 {
		s.logger.Printf("pruned %d cart lines of deactivated products", pruned)
	}
}

// newSchedulerLogger writes to stdout and a size-rotated file under data/.
func newSchedulerLogger(prefix string) *log.Logger {
	rotated := &lumberjack.Logger{
		Filename:   filepath.Join("data", "scheduler.log"),
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	mw := io.MultiWriter(os.Stdout, rotated)
	return log.New(mw, prefix, log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

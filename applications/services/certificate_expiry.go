package services

import (
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/applications/repositories"
	"github.com/microaistudio/hptourism-r1-sub000/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CertificateExpirySweeper closes approved registrations whose certificate
// validity has lapsed. Runs nightly.
type CertificateExpirySweeper struct {
	applicationRepo repositories.ApplicationRepository
	scheduler       *cron.Cron
}

func NewCertificateExpirySweeper(applicationRepo repositories.ApplicationRepository) *CertificateExpirySweeper {
	return &CertificateExpirySweeper{
		applicationRepo: applicationRepo,
		scheduler:       cron.New(),
	}
}

// Start schedules the nightly sweep at 02:00 and runs one pass immediately
// so a restart never leaves lapsed certificates open for a full day.
func (s *CertificateExpirySweeper) Start() error {
	if _, err := s.scheduler.AddFunc("0 2 * * *", s.Sweep); err != nil {
		return err
	}
	s.scheduler.Start()
	go s.Sweep()
	return nil
}

func (s *CertificateExpirySweeper) Stop() {
	s.scheduler.Stop()
}

// Sweep marks every approved application with a lapsed certificate as
// EXPIRED.
func (s *CertificateExpirySweeper) Sweep() {
	expired, err := s.applicationRepo.ExpireCertificatesBefore(time.Now())
	if err != nil {
		config.Logger.Error("certificate expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		config.Logger.Info("expired lapsed registrations", zap.Int64("count", expired))
	}
}

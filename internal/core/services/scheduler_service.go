package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"renthub/internal/adapters/persistence/models"
	"renthub/internal/adapters/persistence/repositories"
	"renthub/internal/core/domain"

	"github.com/robfig/cron/v3"
)

// reminderWindowDays is how far ahead the payment reminder job looks.
const reminderWindowDays = 3

// expiryReminderDays are the days-before-end marks at which lease expiry
// reminders go out.
var expiryReminderDays = []int{30, 14, 7, 3, 1}

// defaultBatchSize bounds each repository page during job scans.
const defaultBatchSize = 500

// SchedulerService runs the recurring jobs: payment reminders, lease expiry
// reminders, next-month rent generation and overdue detection. Every job is
// idempotent against re-runs inside the same period, so a missed or doubled
// tick is harmless.
type SchedulerService struct {
	cron          *cron.Cron
	leaseRepo     repositories.LeaseRepository
	paymentRepo   repositories.PaymentRepository
	notifyService *NotificationService
	now           func() time.Time
	batchSize     int
}

// NewSchedulerService creates a new scheduler service
func NewSchedulerService(
	leaseRepo repositories.LeaseRepository,
	paymentRepo repositories.PaymentRepository,
	notifyService *NotificationService,
) *SchedulerService {
	return &SchedulerService{
		cron:          cron.New(),
		leaseRepo:     leaseRepo,
		paymentRepo:   paymentRepo,
		notifyService: notifyService,
		now:           time.Now,
		batchSize:     defaultBatchSize,
	}
}

// Start registers the job schedule and starts the cron loop
func (s *SchedulerService) Start() error {
	jobs := []struct {
		spec string
		name string
		run  func(context.Context) error
	}{
		{"0 9 * * *", "payment-reminders", s.RunPaymentReminders},
		{"30 9 * * *", "lease-expiry-reminders", s.RunLeaseExpiryReminders},
		{"0 2 25 * *", "monthly-payment-generation", s.RunMonthlyPaymentGeneration},
		{"0 1 * * *", "overdue-detection", s.RunOverdueDetection},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			s.runJob(job.name, job.run)
		})
		if err != nil {
			return fmt.Errorf("schedule job %s: %w", job.name, err)
		}
	}

	s.cron.Start()
	log.Println("Scheduler started")
	return nil
}

// Stop stops the cron loop and waits for running jobs
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

// runJob isolates one job run. A panic or error in one job must not take the
// scheduler down or block the other jobs.
func (s *SchedulerService) runJob(name string, run func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("job %s panicked: %v", name, r)
		}
	}()

	start := s.now()
	if err := run(context.Background()); err != nil {
		log.Printf("job %s failed after %s: %v", name, time.Since(start), err)
		return
	}
	log.Printf("job %s completed in %s", name, time.Since(start))
}

// RunPaymentReminders notifies tenants of Pending payments coming due within
// the reminder window. Dedup is per lease, so a tenant gets at most one
// reminder per lease per day even when several rows sit in the window.
func (s *SchedulerService) RunPaymentReminders(ctx context.Context) error {
	now := s.now()
	until := now.AddDate(0, 0, reminderWindowDays)

	var afterID uint
	for {
		payments, err := s.paymentRepo.ListPendingDueBetween(ctx, now, until, afterID, s.batchSize)
		if err != nil {
			return err
		}
		if len(payments) == 0 {
			return nil
		}

		for _, payment := range payments {
			afterID = payment.ID
			if payment.Lease == nil {
				continue
			}

			_, err := s.notifyService.NotifyOnce(ctx, payment.Lease.TenantID, domain.RoleTenant, domain.NotifyPaymentDue,
				"Rent payment due soon",
				fmt.Sprintf("Your payment of $%.2f is due on %s.", payment.AmountDue, payment.DueDate.Format("2006-01-02")),
				map[string]interface{}{
					"payment_id": payment.ID,
					"lease_id":   *payment.LeaseID,
					"amount_due": payment.AmountDue,
					"due_date":   payment.DueDate,
				},
				fmt.Sprintf("lease:%d", *payment.LeaseID))
			if err != nil {
				log.Printf("payment reminder for payment %d failed: %v", payment.ID, err)
			}
		}

		if len(payments) < s.batchSize {
			return nil
		}
	}
}

// RunLeaseExpiryReminders notifies tenant and manager when a lease end date
// sits exactly at one of the reminder marks (30, 14, 7, 3, 1 days out).
func (s *SchedulerService) RunLeaseExpiryReminders(ctx context.Context) error {
	now := s.now()
	horizon := now.AddDate(0, 0, expiryReminderDays[0]+1)

	var afterID uint
	for {
		leases, err := s.leaseRepo.ListEndingBetween(ctx, now, horizon, afterID, s.batchSize)
		if err != nil {
			return err
		}
		if len(leases) == 0 {
			return nil
		}

		for _, lease := range leases {
			afterID = lease.ID

			days := daysBetween(now, lease.EndDate)
			if !isReminderDay(days) {
				continue
			}

			payload := map[string]interface{}{
				"lease_id": lease.ID,
				"end_date": lease.EndDate,
				"days":     days,
			}
			dedupKey := fmt.Sprintf("lease:%d", lease.ID)

			if _, err := s.notifyService.NotifyOnce(ctx, lease.TenantID, domain.RoleTenant, domain.NotifyLeaseExpiring,
				"Lease expiring soon",
				fmt.Sprintf("Your lease ends on %s (%d days from now).", lease.EndDate.Format("2006-01-02"), days),
				payload, dedupKey); err != nil {
				log.Printf("expiry reminder to tenant %d failed: %v", lease.TenantID, err)
			}

			if lease.Property != nil {
				if _, err := s.notifyService.NotifyOnce(ctx, lease.Property.ManagerID, domain.RoleManager, domain.NotifyLeaseExpiring,
					"Lease expiring soon",
					fmt.Sprintf("The lease for %s ends on %s (%d days from now).",
						lease.Property.Name, lease.EndDate.Format("2006-01-02"), days),
					payload, dedupKey); err != nil {
					log.Printf("expiry reminder to manager %d failed: %v", lease.Property.ManagerID, err)
				}
			}
		}

		if len(leases) < s.batchSize {
			return nil
		}
	}
}

// RunMonthlyPaymentGeneration creates next month's rent row for every lease
// active on the 1st of next month. The per-lease existence check keeps the
// run idempotent and skips months already covered by the activation schedule.
func (s *SchedulerService) RunMonthlyPaymentGeneration(ctx context.Context) error {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	monthEnd := time.Date(now.Year(), now.Month()+2, 1, 0, 0, 0, 0, now.Location())

	var afterID uint
	for {
		leases, err := s.leaseRepo.ListActiveAt(ctx, monthStart, afterID, s.batchSize)
		if err != nil {
			return err
		}
		if len(leases) == 0 {
			return nil
		}

		for _, lease := range leases {
			afterID = lease.ID

			exists, err := s.paymentRepo.ExistsForLeaseBetween(ctx, lease.ID, monthStart, monthEnd)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			payment := &models.Payment{
				AmountDue:       lease.Rent,
				DueDate:         monthStart,
				Status:          string(domain.PaymentPending),
				Type:            string(domain.PaymentMonthlyRent),
				GracePeriodDays: domain.GracePeriodDays,
				LeaseID:         &lease.ID,
			}
			if err := s.paymentRepo.Create(ctx, payment); err != nil {
				return err
			}
		}

		if len(leases) < s.batchSize {
			return nil
		}
	}
}

// RunOverdueDetection flips Pending payments to Overdue once strictly past
// due date plus grace. Grace varies per row, so the cutoff is applied here
// rather than in the query.
func (s *SchedulerService) RunOverdueDetection(ctx context.Context) error {
	now := s.now()

	var afterID uint
	for {
		payments, err := s.paymentRepo.ListPendingDueBefore(ctx, now, afterID, s.batchSize)
		if err != nil {
			return err
		}
		if len(payments) == 0 {
			return nil
		}

		for _, payment := range payments {
			afterID = payment.ID

			deadline := payment.DueDate.AddDate(0, 0, payment.GracePeriodDays)
			if !now.After(deadline) {
				continue
			}

			payment.Status = string(domain.PaymentOverdue)
			if err := s.paymentRepo.Update(ctx, payment); err != nil {
				return err
			}

			if payment.Lease != nil {
				_, err := s.notifyService.NotifyOnce(ctx, payment.Lease.TenantID, domain.RoleTenant, domain.NotifyPaymentOverdue,
					"Rent payment overdue",
					fmt.Sprintf("Your payment of $%.2f due on %s is now overdue.", payment.AmountDue, payment.DueDate.Format("2006-01-02")),
					map[string]interface{}{
						"payment_id": payment.ID,
						"lease_id":   *payment.LeaseID,
						"amount_due": payment.AmountDue,
					},
					fmt.Sprintf("payment:%d", payment.ID))
				if err != nil {
					log.Printf("overdue notification for payment %d failed: %v", payment.ID, err)
				}
			}
		}

		if len(payments) < s.batchSize {
			return nil
		}
	}
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

func isReminderDay(days int) bool {
	for _, d := range expiryReminderDays {
		if d == days {
			return true
		}
	}
	return false
}

package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"pbgym/internal/logger"
	"pbgym/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey       = "notices"
	failedQueueKey = "notices:failed"
	maxTries       = 3
)

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return NewWithClient(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass,
		redis.NewClient(&redis.Options{Addr: redisAddr}))
}

func NewWithClient(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass string, client *redis.Client) *Service {
	return &Service{
		redis:    client,
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue %s notice to %s: %v", job.Type, job.To, err)
		return err
	}

	logger.Infof("Notice queued: %s to %s", job.Type, job.To)
	return nil
}

// Start runs the delivery worker until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notice data: %v", err)
		return
	}

	job.Tries++
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send %s notice to %s (attempt %d): %v", job.Type, job.To, job.Tries, err)
		metrics.RecordEmail(job.Type, "failed")

		if job.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Type, "success")
	logger.Infof("Notice sent to %s", job.To)
}

func (s *Service) sendNow(job Job) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job Job, cause error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": cause.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notice to %s moved to failed queue after %d attempts", job.To, job.Tries)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.EmailQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendPaymentReceipt(ctx context.Context, email, name, passTitle string, amountCents int64) error {
	body := fmt.Sprintf(`Hi %s,

We charged %.2f PLN for your "%s" membership.

Thanks for training with us!

- PBGym`, name, float64(amountCents)/100, passTitle)

	return s.enqueue(ctx, Job{
		To:      email,
		Name:    name,
		Type:    "payment_receipt",
		Subject: "Payment received - " + passTitle,
		Body:    body,
		Created: time.Now(),
	})
}

func (s *Service) SendPaymentFailureNotice(ctx context.Context, email, name, passTitle string) error {
	body := fmt.Sprintf(`Hi %s,

We could not charge your saved payment method for your "%s" membership,
so the pass has been deactivated. Purchase a new pass once your payment
details are up to date.

- PBGym`, name, passTitle)

	return s.enqueue(ctx, Job{
		To:      email,
		Name:    name,
		Type:    "payment_failure",
		Subject: "Payment failed - membership deactivated",
		Body:    body,
		Created: time.Now(),
	})
}

func (s *Service) SendPassExpiryNotice(ctx context.Context, email, name, passTitle string) error {
	body := fmt.Sprintf(`Hi %s,

Your "%s" membership has ended. We'd love to see you back - check the
current offers in the app.

- PBGym`, name, passTitle)

	return s.enqueue(ctx, Job{
		To:      email,
		Name:    name,
		Type:    "pass_expiry",
		Subject: "Your membership has ended",
		Body:    body,
		Created: time.Now(),
	})
}

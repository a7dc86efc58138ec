package mail

import (
	"context"
	"sync"
	"time"

	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/services"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var emailsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "emails_total",
		Help: "Outbound emails by kind and result",
	},
	[]string{"kind", "result"},
)

func init() {
	prometheus.MustRegister(emailsTotal)
}

// Dispatcher delivers emails on a bounded queue drained by a fixed worker pool.
// Request handlers never wait for SMTP.
type Dispatcher struct {
	mailer  services.Mailer
	queue   chan services.Email
	timeout time.Duration
	log     *zap.Logger

	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewDispatcher starts cfg.Workers workers over a queue of cfg.QueueSize
func NewDispatcher(mailer services.Mailer, cfg config.MailConfig, log *zap.Logger) *Dispatcher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	size := cfg.QueueSize
	if size < 1 {
		size = 100
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	d := &Dispatcher{
		mailer:  mailer,
		queue:   make(chan services.Email, size),
		timeout: timeout,
		log:     log.Named("mail"),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// Enqueue queues an email; when the queue is full or closed the email is dropped and logged
func (d *Dispatcher) Enqueue(email services.Email) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(email, "closed")
		return
	}
	select {
	case d.queue <- email:
	default:
		d.drop(email, "queue_full")
	}
}

func (d *Dispatcher) drop(email services.Email, reason string) {
	emailsTotal.WithLabelValues(email.Kind, "dropped").Inc()
	d.log.Warn("email dropped",
		zap.String("reason", reason),
		zap.String("kind", email.Kind),
		zap.String("to", email.To),
	)
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for email := range d.queue {
		d.send(email)
	}
}

func (d *Dispatcher) send(email services.Email) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.mailer.Send(ctx, email); err != nil {
		emailsTotal.WithLabelValues(email.Kind, "failed").Inc()
		d.log.Error("email delivery failed",
			zap.String("kind", email.Kind),
			zap.String("to", email.To),
			zap.Error(err),
		)
		return
	}
	emailsTotal.WithLabelValues(email.Kind, "sent").Inc()
	d.log.Debug("email sent", zap.String("kind", email.Kind), zap.String("to", email.To))
}

// Close stops accepting emails and waits for queued ones to drain, bounded by ctx
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.log.Warn("mail queue not drained before shutdown", zap.Int("pending", len(d.queue)))
		return ctx.Err()
	}
}

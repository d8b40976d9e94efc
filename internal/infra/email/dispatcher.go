package email

import (
	"context"

	"subscription_tracker/internal/infra/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gopkg.in/mail.v2"
)

// Transport sends fully built messages. *mail.Dialer satisfies it.
type Transport interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPDispatcher delivers reminder emails over SMTP, throttled to the configured rate.
type SMTPDispatcher struct {
	cfg       config.SMTPConfig
	transport Transport
	limiter   *rate.Limiter
	logger    *logrus.Entry
}

// NewSMTPDispatcher builds a dispatcher with a real SMTP dialer.
func NewSMTPDispatcher(cfg config.SMTPConfig, logger *logrus.Entry) *SMTPDispatcher {
	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.Timeout = cfg.Timeout
	dialer.SSL = cfg.Secure
	if !cfg.Secure {
		dialer.StartTLSPolicy = mail.MandatoryStartTLS
	}
	return NewSMTPDispatcherWithTransport(cfg, dialer, logger)
}

func NewSMTPDispatcherWithTransport(cfg config.SMTPConfig, transport Transport, logger *logrus.Entry) *SMTPDispatcher {
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	if !cfg.HasCredentials() {
		logger.Warn("SMTP credentials not configured. Email reminders disabled.")
	}
	return &SMTPDispatcher{
		cfg:       cfg,
		transport: transport,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:    logger,
	}
}

// Enabled reports whether the dispatcher can attempt delivery at all.
func (d *SMTPDispatcher) Enabled() bool {
	return d.cfg.HasCredentials()
}

func (d *SMTPDispatcher) Send(ctx context.Context, recipientEmail, subject, plainBody, richBody string) bool {
	log := d.logger.WithFields(logrus.Fields{"to": recipientEmail, "subject": subject})

	if !d.cfg.HasCredentials() {
		log.Warn("SMTP credentials not configured, reminder not sent")
		return false
	}

	if err := d.limiter.Wait(ctx); err != nil {
		log.WithError(err).Error("Rate limiter aborted email send")
		return false
	}

	from := d.cfg.From
	if from == "" {
		from = d.cfg.Username
	}

	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", recipientEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", richBody)

	if err := d.transport.DialAndSend(m); err != nil {
		log.WithError(err).Error("Failed to send email")
		return false
	}

	log.Info("Reminder email sent")
	return true
}

package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/t77yq/sysmon/internal/model"
)

// Notifier forwards an alert to an external channel.
type Notifier interface {
	Send(alert *model.Alert) error
}

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	To       string
	Password string
}

// EmailNotifier submits one message per alert over authenticated SMTP with
// STARTTLS. When no credential is configured, Send is a silent no-op so an
// unconfigured deployment still records alerts.
type EmailNotifier struct {
	logger *zap.Logger
	config SMTPConfig
}

// NewEmailNotifier creates an email notifier.
func NewEmailNotifier(logger *zap.Logger, config SMTPConfig) *EmailNotifier {
	return &EmailNotifier{
		logger: logger.Named("email"),
		config: config,
	}
}

// Send implements Notifier.Send
func (n *EmailNotifier) Send(alert *model.Alert) error {
	if n.config.Password == "" {
		return nil
	}

	auth := smtp.PlainAuth("", n.config.From, n.config.Password, n.config.Host)
	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)

	if err := smtp.SendMail(addr, auth, n.config.From, []string{n.config.To}, n.message(alert)); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	n.logger.Debug("Alert email sent",
		zap.String("alert_type", string(alert.Type)),
		zap.String("to", n.config.To))

	return nil
}

// message renders one alert as an RFC 5322 message with the alert type in
// the subject line.
func (n *EmailNotifier) message(alert *model.Alert) []byte {
	return []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: Monitoring: %s\r\n"+
		"\r\n"+
		"Time: %s\r\n"+
		"Type: %s\r\n"+
		"Message: %s\r\n",
		n.config.From,
		n.config.To,
		strings.ToUpper(string(alert.Type)),
		alert.Timestamp.Format("2006-01-02 15:04:05"),
		alert.Type,
		alert.Message))
}

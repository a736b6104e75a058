package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"

	mail "github.com/go-mail/mail/v2"
	"github.com/linskybing/grant-review/pkg/logger"
)

type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Notifier sends outbound e-mail. Callers treat failures as non-fatal.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	From          string
	SkipTLSVerify bool
}

type SMTPNotifier struct {
	dialer *mail.Dialer
	from   string
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	return &SMTPNotifier{dialer: d, from: cfg.From}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return n.dialer.DialAndSend(m)
}

// LogNotifier records messages in the log instead of sending them. Used
// when no SMTP server is configured.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.log.Info("mail not sent, smtp disabled", "subject", msg.Subject, "recipients", len(msg.To))
	return nil
}

// ReviewerAssigned tells a reviewer about a new assignment. Only the blind
// code identifies the proposal.
func ReviewerAssigned(to, callTitle, blindCode string) Message {
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("New review assignment: %s", blindCode),
		HTML: fmt.Sprintf("<p>You were assigned to review proposal <b>%s</b> in the call <b>%s</b>.</p>",
			html.EscapeString(blindCode), html.EscapeString(callTitle)),
	}
}

// DecisionRecorded tells the applicant the final outcome of a proposal.
func DecisionRecorded(to, callTitle, proposalTitle, outcome string) Message {
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Decision on your proposal: %s", proposalTitle),
		HTML: fmt.Sprintf("<p>Your proposal <b>%s</b> in the call <b>%s</b> received the decision <b>%s</b>.</p>",
			html.EscapeString(proposalTitle), html.EscapeString(callTitle), html.EscapeString(outcome)),
	}
}

package errreport

import (
	"context"
	"fmt"
	"net/http"
	"net/smtp"
	"net/url"
	"strings"

	"github.com/ignite/pixelforum/internal/config"
	"github.com/ignite/pixelforum/internal/pkg/httpretry"
)

// Notifier delivers a digest (or any other admin-facing message) to
// whatever out-of-band channel the implementation wraps.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// MailNotifier sends the digest as an email via plain SMTP.
type MailNotifier struct {
	host, username, password string
	from, fromName, to       string
}

// NewMailNotifier builds a MailNotifier from the process's mail
// config. Returns nil if mailing isn't configured, so callers can
// skip wiring it into the reporter entirely.
func NewMailNotifier(cfg config.MailConfig) *MailNotifier {
	if !cfg.Enabled || cfg.Server == "" {
		return nil
	}
	return &MailNotifier{
		host:     cfg.Server,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.SelfAddr,
		fromName: cfg.SelfName,
		to:       cfg.SelfAddr,
	}
}

// Notify sends subject/body as a plain-text email to the configured
// admin address, matching the original's Mail::ErrorReport variant
// (admin reports go to the service's own mailbox, not a user).
func (m *MailNotifier) Notify(ctx context.Context, subject, body string) error {
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.fromName, m.from, m.to, subject, body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, hostOnly(m.host))
	}

	if err := smtp.SendMail(m.host, auth, m.from, []string{m.to}, []byte(msg)); err != nil {
		return fmt.Errorf("errreport: send admin mail: %w", err)
	}
	return nil
}

func hostOnly(addr string) string {
	if i := strings.LastIndex(addr, ":"); i != -1 {
		return addr[:i]
	}
	return addr
}

// SMSNotifier sends the digest as a text message through a
// Twilio-style provider, grounded on send_sms in
// original_source/src/handler/messenger.rs - a form-encoded POST to
// .../Messages.json with HTTP basic auth.
type SMSNotifier struct {
	http                        *httpretry.RetryClient
	url, accountID, authToken   string
	selfNumber                  string
}

// NewSMSNotifier builds an SMSNotifier from the process's SMS config.
// Returns nil if SMS isn't configured.
func NewSMSNotifier(cfg config.SMSConfig) *SMSNotifier {
	if !cfg.Enabled || cfg.URL == "" {
		return nil
	}
	return &SMSNotifier{
		http:       httpretry.NewRetryClient(nil, 3),
		url:        cfg.URL,
		accountID:  cfg.AccountID,
		authToken:  cfg.AuthToken,
		selfNumber: cfg.SelfNumber,
	}
}

// Notify texts the message body to the service's own admin number;
// subject is folded into the body since SMS has no separate subject
// line.
func (s *SMSNotifier) Notify(ctx context.Context, subject, body string) error {
	form := url.Values{}
	form.Set("From", s.selfNumber)
	form.Set("To", s.selfNumber)
	form.Set("Body", subject+": "+body)

	endpoint := fmt.Sprintf("%s%s/Messages.json", s.url, s.accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("errreport: build sms request: %w", err)
	}
	req.SetBasicAuth(s.accountID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("errreport: send admin sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("errreport: sms provider returned %d", resp.StatusCode)
	}
	return nil
}

// fanoutNotifier delivers the same message to every non-nil notifier,
// matching process_errors' f1.join(f2) (send to SMS and mail
// concurrently, treating each as best-effort). Unlike the actix
// version this runs sequentially - there are only ever two
// collaborators and the gap between them is immaterial next to
// ErrorTimeGap.
type fanoutNotifier struct {
	notifiers []Notifier
}

func newFanout(notifiers ...Notifier) *fanoutNotifier {
	var live []Notifier
	for _, n := range notifiers {
		if n != nil {
			live = append(live, n)
		}
	}
	return &fanoutNotifier{notifiers: live}
}

func (f *fanoutNotifier) Notify(ctx context.Context, subject, body string) error {
	var errs []string
	for _, n := range f.notifiers {
		if err := n.Notify(ctx, subject, body); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errreport: %s", strings.Join(errs, "; "))
	}
	return nil
}

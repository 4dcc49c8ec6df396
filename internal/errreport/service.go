package errreport

import (
	"context"
	"time"

	"github.com/ignite/pixelforum/internal/logger"
)

// Service ticks every ErrorTimeGap, asks the Report for a digest, and
// hands anything it gets to the configured notifiers. Mirrors
// process_errors in original_source/src/handler/messenger.rs, which
// runs on the same cadence and sends admin reports directly (not
// through the mail/sms queues the rest of the message service uses),
// since an error report about the collaborators those queues depend
// on shouldn't itself wait behind them.
type Service struct {
	report   *Report
	notifier Notifier
}

// NewService builds a Service. mail and sms may individually be nil when
// that channel isn't configured; passing both nil is valid and simply
// means digests are computed (and their counts reset) but never sent
// anywhere.
func NewService(report *Report, mail *MailNotifier, sms *SMSNotifier) *Service {
	var notifiers []Notifier
	if mail != nil {
		notifiers = append(notifiers, mail)
	}
	if sms != nil {
		notifiers = append(notifiers, sms)
	}

	var notifier Notifier
	if len(notifiers) > 0 {
		notifier = newFanout(notifiers...)
	}
	return &Service{report: report, notifier: notifier}
}

// Record increments kind's count for the next digest pass.
func (s *Service) Record(kind Kind) {
	s.report.Record(kind)
}

// Report implements internal/reconcile.Reporter and
// internal/psnqueue.Reporter: both packages only know failures by a
// free-form string tag, so this maps the tags they actually emit
// ("redis", "http_client") onto this package's own Kind enum and
// falls back to Database for anything unrecognized rather than
// dropping the count.
func (s *Service) Report(kind string, err error) {
	var k Kind
	switch kind {
	case "redis":
		k = Redis
	case "http_client":
		k = HTTPClient
	default:
		k = Database
	}
	s.Record(k)
}

// Run blocks, ticking every ErrorTimeGap until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(ErrorTimeGap)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	message, ok := s.report.Digest(time.Now())
	if !ok {
		return
	}
	if s.notifier == nil {
		logger.Warn("error digest suppressed: no notifier configured", "message", message)
		return
	}
	if err := s.notifier.Notify(ctx, "PixelForum service errors", message); err != nil {
		logger.Error("failed to deliver error digest", "error", err)
	}
}

package errreport

import (
	"context"
	"errors"
	"testing"
)

type fakeNotifier struct {
	subject, body string
	calls         int
	err           error
}

func (f *fakeNotifier) Notify(ctx context.Context, subject, body string) error {
	f.calls++
	f.subject, f.body = subject, body
	return f.err
}

func TestServiceTickDeliversDigestOnThreshold(t *testing.T) {
	report := New(true)
	report.Record(Redis)
	report.Record(Redis)
	report.Record(Redis)

	fake := &fakeNotifier{}
	svc := &Service{report: report, notifier: fake}

	svc.tick(context.Background())

	if fake.calls != 1 {
		t.Fatalf("expected one notify call, got %d", fake.calls)
	}
}

func TestServiceTickSkipsWhenNothingCrossedThreshold(t *testing.T) {
	report := New(true)
	report.Record(Redis)

	fake := &fakeNotifier{}
	svc := &Service{report: report, notifier: fake}

	svc.tick(context.Background())

	if fake.calls != 0 {
		t.Fatalf("expected no notify call, got %d", fake.calls)
	}
}

func TestServiceTickWithNoNotifierDoesNotPanic(t *testing.T) {
	report := New(true)
	report.Record(Database)
	report.Record(Database)
	report.Record(Database)

	svc := &Service{report: report}
	svc.tick(context.Background())
}

func TestNewServiceOnlyWiresConfiguredNotifiers(t *testing.T) {
	report := New(true)
	svc := NewService(report, nil, nil)
	if svc.notifier != nil {
		t.Fatal("expected no notifier when neither mail nor sms is configured")
	}
}

func TestFanoutNotifierJoinsErrors(t *testing.T) {
	ok := &fakeNotifier{}
	bad := &fakeNotifier{err: errors.New("boom")}
	f := newFanout(ok, bad)

	err := f.Notify(context.Background(), "s", "b")
	if err == nil {
		t.Fatal("expected an error from the failing notifier")
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("expected both notifiers to be attempted, got ok=%d bad=%d", ok.calls, bad.calls)
	}
}

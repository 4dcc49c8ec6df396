package errreport

import (
	"strings"
	"testing"
	"time"
)

func TestDigestSilentBelowThreshold(t *testing.T) {
	r := New(true)
	r.Record(Redis)
	r.Record(Redis)

	if _, ok := r.Digest(time.Now()); ok {
		t.Fatal("expected no digest for a count at the threshold boundary")
	}
}

func TestDigestReportsKindOverThreshold(t *testing.T) {
	r := New(true)
	r.Record(Redis)
	r.Record(Redis)
	r.Record(Redis)

	msg, ok := r.Digest(time.Now())
	if !ok {
		t.Fatal("expected a digest once redis crossed its threshold")
	}
	if !strings.Contains(msg, "Redis service error") {
		t.Fatalf("expected redis line in digest, got %q", msg)
	}
}

func TestDigestDisabledNeverReports(t *testing.T) {
	r := New(false)
	for i := 0; i < 10; i++ {
		r.Record(Database)
	}

	if _, ok := r.Digest(time.Now()); ok {
		t.Fatal("expected a disabled report to never produce a digest")
	}
}

func TestDigestResetsCountsRegardlessOfThreshold(t *testing.T) {
	r := New(true)
	r.Record(SMS)
	r.Record(SMS)

	r.Digest(time.Now())

	r.Record(SMS)
	if msg, ok := r.Digest(time.Now().Add(ReportTimeGap + time.Second)); ok {
		t.Fatalf("expected the earlier sub-threshold count to have been reset, got digest %q", msg)
	}
}

func TestDigestRateLimitsRepeatReports(t *testing.T) {
	r := New(true)
	base := time.Now()

	r.Record(Database)
	r.Record(Database)
	r.Record(Database)
	if _, ok := r.Digest(base); !ok {
		t.Fatal("expected the first digest to go out")
	}

	r.Record(Database)
	r.Record(Database)
	r.Record(Database)
	r.Record(Database)
	if _, ok := r.Digest(base.Add(10 * time.Second)); ok {
		t.Fatal("expected the second digest to be suppressed by ReportTimeGap")
	}

	r.Record(Database)
	r.Record(Database)
	r.Record(Database)
	r.Record(Database)
	if _, ok := r.Digest(base.Add(ReportTimeGap + time.Second)); !ok {
		t.Fatal("expected a digest once ReportTimeGap elapsed")
	}
}

func TestDigestUngatedKindNeverRecordedIsSkipped(t *testing.T) {
	r := New(true)
	r.Record(Redis)
	r.Record(Redis)
	r.Record(Redis)

	msg, ok := r.Digest(time.Now())
	if !ok {
		t.Fatal("expected a digest")
	}
	if strings.Contains(msg, "Database") || strings.Contains(msg, "SMS") {
		t.Fatalf("expected only recorded kinds to appear, got %q", msg)
	}
}


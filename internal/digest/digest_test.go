package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/slack-go/slack"

	"findingboard/internal/config"
	"findingboard/internal/domain"
	"findingboard/internal/pivot"
)

func rec(action, issue, phase, finding string) domain.Record {
	return domain.Record{
		Action:  domain.T(action),
		Issue:   domain.T(issue),
		Phase:   domain.T(phase),
		Finding: domain.T(finding),
	}
}

func sampleRecords() []domain.Record {
	return []domain.Record{
		rec("Fix", "I1 Label", domain.PhaseBeforePayment, "F1"),
		rec("Fix", "I1 Label", domain.PhaseBeforePayment, "F2"),
		rec("Fix", "I2 Timeout", domain.PhaseDuringPayment, "F3"),
		rec("Escalate", "I3 Fraud", domain.PhaseCrossCutting, "F4"),
		rec("Escalate", "I3 Fraud", domain.PhaseCrossCutting, "F5"),
		rec("Escalate", "I3 Fraud", domain.PhaseCrossCutting, "F6"),
		rec("Escalate", "I4 Other", "Backlog", "F7"),
	}
}

type staticStore struct {
	records []domain.Record
	err     error
}

func (s staticStore) Records(context.Context) ([]domain.Record, error) {
	return s.records, s.err
}

type fakePoster struct {
	channel string
	calls   int
	err     error
}

func (p *fakePoster) PostMessage(channelID string, _ ...slack.MsgOption) (string, string, error) {
	p.calls++
	p.channel = channelID
	return channelID, "1700000000.000100", p.err
}

func TestTopCells(t *testing.T) {
	view := pivot.Compute(sampleRecords(), domain.Selection{})
	cells := TopCells(view, 2)
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0] != (Cell{Action: "Escalate", Phase: domain.PhaseCrossCutting, Issue: "Fraud", Count: 3}) {
		t.Fatalf("unexpected first cell: %+v", cells[0])
	}
	if cells[1] != (Cell{Action: "Fix", Phase: domain.PhaseBeforePayment, Issue: "Label", Count: 2}) {
		t.Fatalf("unexpected second cell: %+v", cells[1])
	}
	if all := TopCells(view, 100); len(all) != 3 {
		t.Fatalf("expected 3 cells in total, got %d", len(all))
	}
}

func TestSummarize(t *testing.T) {
	view := pivot.Compute(sampleRecords(), domain.Selection{})
	got := Summarize(view, 3)
	want := "*Finding digest*: 7 rows across 2 actions (1 outside the known phases)\n" +
		"Top 3 action/issue cells:\n" +
		"1. *Escalate* / Cross-cutting / Fraud: 3 findings\n" +
		"2. *Fix* / Phase 1: Before Payment / Label: 2 findings\n" +
		"3. *Fix* / Phase 2: During Payment / Timeout: 1 finding"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(pivot.Compute(nil, domain.Selection{}), 5)
	want := "*Finding digest*: 0 rows across 0 actions\nNo findings to report."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPost(t *testing.T) {
	poster := &fakePoster{}
	if err := Post(context.Background(), staticStore{records: sampleRecords()}, poster, "C42", 5); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if poster.calls != 1 || poster.channel != "C42" {
		t.Fatalf("unexpected post: calls=%d channel=%q", poster.calls, poster.channel)
	}
}

func TestPostSurfacesErrors(t *testing.T) {
	loadErr := errors.New("data source not found")
	poster := &fakePoster{}
	err := Post(context.Background(), staticStore{err: loadErr}, poster, "C42", 5)
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected load error, got %v", err)
	}
	if poster.calls != 0 {
		t.Fatal("nothing should be posted when the table is unavailable")
	}

	poster.err = errors.New("channel_not_found")
	err = Post(context.Background(), staticStore{records: sampleRecords()}, poster, "C42", 5)
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected post error, got %v", err)
	}
}

func TestRunSchedulerDisabled(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		done <- RunScheduler(context.Background(), config.Config{}, staticStore{}, &fakePoster{})
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunScheduler returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("disabled scheduler should return immediately")
	}
}

func TestRunSchedulerStopsOnCancel(t *testing.T) {
	orig := postDigestFn
	postDigestFn = func(context.Context, RecordSource, Poster, string, int) error {
		t.Error("digest should not be posted before the schedule fires")
		return nil
	}
	defer func() { postDigestFn = orig }()

	cfg := config.Config{
		SlackBotToken:   "xoxb-test",
		DigestChannelID: "C42",
		DigestSchedule:  "0 9 1 1 *",
		DigestTopN:      5,
		Location:        time.UTC,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunScheduler(ctx, cfg, staticStore{}, &fakePoster{})
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunScheduler returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler should stop when the context is cancelled")
	}
}

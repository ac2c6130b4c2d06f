// Package digest posts a periodic Slack summary of the largest pivot cells.
package digest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"findingboard/internal/config"
	"findingboard/internal/domain"
	"findingboard/internal/pivot"
)

// Poster is the part of *slack.Client the digest needs.
type Poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// RecordSource supplies the cached table.
type RecordSource interface {
	Records(ctx context.Context) ([]domain.Record, error)
}

// Cell is one (action, phase, issue) pivot entry.
type Cell struct {
	Action string
	Phase  string
	Issue  string
	Count  int
}

// TopCells returns the n largest pivot cells. Ties keep action order, then
// canonical phase order, then pivot order.
func TopCells(view domain.View, n int) []Cell {
	var cells []Cell
	for _, action := range view.AllActions {
		for _, bucket := range view.Pivot[action] {
			for _, ic := range bucket.Issues {
				cells = append(cells, Cell{
					Action: action,
					Phase:  bucket.Phase,
					Issue:  ic.IssueClean,
					Count:  ic.FindingCount,
				})
			}
		}
	}
	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].Count > cells[j].Count
	})
	if n >= 0 && len(cells) > n {
		cells = cells[:n]
	}
	return cells
}

// Summarize renders the digest message in Slack mrkdwn.
func Summarize(view domain.View, topN int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Finding digest*: %d rows across %d actions", view.RowCount, len(view.AllActions))
	if view.UnphasedCount > 0 {
		fmt.Fprintf(&b, " (%d outside the known phases)", view.UnphasedCount)
	}
	b.WriteString("\n")

	cells := TopCells(view, topN)
	if len(cells) == 0 {
		b.WriteString("No findings to report.")
		return b.String()
	}
	fmt.Fprintf(&b, "Top %d action/issue cells:\n", len(cells))
	for i, c := range cells {
		noun := "findings"
		if c.Count == 1 {
			noun = "finding"
		}
		fmt.Fprintf(&b, "%d. *%s* / %s / %s: %d %s\n", i+1, c.Action, c.Phase, c.Issue, c.Count, noun)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Post computes the unfiltered view and posts its summary to channelID.
func Post(ctx context.Context, store RecordSource, poster Poster, channelID string, topN int) error {
	records, err := store.Records(ctx)
	if err != nil {
		return err
	}
	msg := Summarize(pivot.Compute(records, domain.Selection{}), topN)
	if _, _, err := poster.PostMessage(channelID, slack.MsgOptionText(msg, false)); err != nil {
		return fmt.Errorf("post digest to %s: %w", channelID, err)
	}
	return nil
}

var postDigestFn = Post

// RunScheduler posts the digest on cfg.DigestSchedule until ctx is done.
// It returns nil immediately when the digest is not configured.
func RunScheduler(ctx context.Context, cfg config.Config, store RecordSource, poster Poster) error {
	if !cfg.DigestEnabled() {
		log.Println("Digest disabled (digest_schedule, slack_bot_token or digest_channel_id not set)")
		return nil
	}
	schedule := strings.TrimSpace(cfg.DigestSchedule)
	sched, err := config.ParseSchedule(schedule)
	if err != nil {
		log.Printf("Invalid digest_schedule '%s': %v. Digest disabled", schedule, err)
		return nil
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	log.Printf("Digest scheduled (cron: %s) to channel %s, top %d", schedule, cfg.DigestChannelID, cfg.DigestTopN)

	for {
		now := time.Now().In(loc)
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next digest at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if err := postDigestFn(ctx, store, poster, cfg.DigestChannelID, cfg.DigestTopN); err != nil {
			log.Printf("Digest error: %v", err)
			continue
		}
		log.Printf("Digest posted to %s", cfg.DigestChannelID)
	}
}

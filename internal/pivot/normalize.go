// Package pivot turns the raw finding table into the dashboard views: the
// Action → Phase → Issue pivot with distinct finding counts, the facet value
// lists and the per-cell detail map.
package pivot

import (
	"strings"

	"findingboard/internal/domain"
)

// Normalize filters records by the selection and derives the cleaned issue
// and action labels. Facets combine with AND; values within one facet
// combine with OR. A null cell never matches a filter. records is not
// modified.
func Normalize(records []domain.Record, sel domain.Selection) []domain.Finding {
	users := facetSet(sel.Users)
	campaignTypes := facetSet(sel.CampaignTypes)
	segments := facetSet(sel.Segments)

	out := make([]domain.Finding, 0, len(records))
	for _, r := range records {
		if !matches(users, r.User) || !matches(campaignTypes, r.Type) || !matches(segments, r.UserSegment) {
			continue
		}
		out = append(out, domain.Finding{
			Record:      r,
			IssueClean:  CleanIssue(r.Issue),
			ActionClean: CleanAction(r.Action),
		})
	}
	return out
}

// CleanIssue drops the leading code from an issue such as "I12 Missing
// receipt". Issues without a code are returned unchanged.
func CleanIssue(issue domain.Text) domain.Text {
	if !issue.Valid {
		return issue
	}
	_, label, found := strings.Cut(issue.Value, " ")
	if !found || label == "" {
		return issue
	}
	return domain.T(label)
}

// CleanAction trims the action and maps missing or blank actions to
// domain.NoAction.
func CleanAction(action domain.Text) string {
	if !action.Valid {
		return domain.NoAction
	}
	trimmed := strings.TrimSpace(action.Value)
	if trimmed == "" {
		return domain.NoAction
	}
	return trimmed
}

func facetSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func matches(set map[string]struct{}, v domain.Text) bool {
	if set == nil {
		return true
	}
	if !v.Valid {
		return false
	}
	_, ok := set[v.Value]
	return ok
}

package pivot

import (
	"sort"

	"findingboard/internal/domain"
)

// Build derives the pivot, facet lists and detail map from one filtered
// sequence. Rows whose phase is not canonical, or whose issue is null, are
// kept in the detail map but counted in no pivot cell.
func Build(findings []domain.Finding) domain.View {
	view := domain.View{
		Pivot:            make(map[string]domain.PhaseIssues),
		PhaseOrder:       domain.PhaseOrder(),
		AllActions:       distinctSorted(findings, func(f domain.Finding) domain.Text { return domain.T(f.ActionClean) }),
		AllUsers:         distinctSorted(findings, func(f domain.Finding) domain.Text { return f.User }),
		AllCampaignTypes: distinctSorted(findings, func(f domain.Finding) domain.Text { return f.Type }),
		AllSegments:      distinctSorted(findings, func(f domain.Finding) domain.Text { return f.UserSegment }),
		DetailMap:        make(map[string][]domain.DetailEntry),
		RowCount:         len(findings),
	}

	byAction := make(map[string][]domain.Finding, len(view.AllActions))
	for _, f := range findings {
		byAction[f.ActionClean] = append(byAction[f.ActionClean], f)
	}
	for _, action := range view.AllActions {
		view.Pivot[action] = buildPhases(byAction[action])
	}

	for _, f := range findings {
		if !domain.IsCanonicalPhase(f.Phase) {
			view.UnphasedCount++
		}
		key := domain.DetailKey(f.ActionClean, f.Issue)
		view.DetailMap[key] = append(view.DetailMap[key], detailEntry(f))
	}
	return view
}

// Compute normalizes and builds in one step, so both views always come
// from the same filtered rows.
func Compute(records []domain.Record, sel domain.Selection) domain.View {
	return Build(Normalize(records, sel))
}

func buildPhases(rows []domain.Finding) domain.PhaseIssues {
	phases := domain.NewPhaseIssues()
	for i := range phases {
		var subset []domain.Finding
		for _, f := range rows {
			if f.Phase.Valid && f.Phase.Value == phases[i].Phase {
				subset = append(subset, f)
			}
		}
		phases[i].Issues = countIssues(subset)
	}
	return phases
}

type issueKey struct {
	issue string
	clean string
}

// countIssues groups rows by (Issue, Issue_Clean) and counts distinct
// findings per group, largest first. Equal counts keep first-seen order.
func countIssues(rows []domain.Finding) []domain.IssueCount {
	var order []issueKey
	distinct := make(map[issueKey]map[string]struct{})
	for _, f := range rows {
		if !f.Issue.Valid {
			continue
		}
		k := issueKey{issue: f.Issue.Value, clean: f.IssueClean.Value}
		seen, ok := distinct[k]
		if !ok {
			seen = make(map[string]struct{})
			distinct[k] = seen
			order = append(order, k)
		}
		if f.Finding.Valid {
			seen[f.Finding.Value] = struct{}{}
		}
	}

	out := make([]domain.IssueCount, 0, len(order))
	for _, k := range order {
		out = append(out, domain.IssueCount{
			Issue:        k.issue,
			IssueClean:   k.clean,
			FindingCount: len(distinct[k]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FindingCount > out[j].FindingCount
	})
	return out
}

func distinctSorted(findings []domain.Finding, field func(domain.Finding) domain.Text) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, f := range findings {
		v := field(f)
		if !v.Valid || seen[v.Value] {
			continue
		}
		seen[v.Value] = true
		out = append(out, v.Value)
	}
	sort.Strings(out)
	return out
}

func detailEntry(f domain.Finding) domain.DetailEntry {
	return domain.DetailEntry{
		Finding:           f.Finding,
		Phase:             f.Phase,
		User:              f.User,
		IssueExplanation:  f.IssueExplanation,
		ActionExplanation: f.ActionExplanation,
		ActionConfidence:  f.ActionConfidence,
		IssueConfidence:   f.ConfidenceScore,
		CampaignType:      f.Type,
		UserSegment:       f.UserSegment,
		Reference:         f.Reference,
	}
}

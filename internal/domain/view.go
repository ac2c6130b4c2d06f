package domain

import (
	"bytes"
	"encoding/json"
)

// NoAction labels rows whose action is missing or blank.
const NoAction = "No Action"

// DetailKeySeparator joins the action and issue of a detail map key.
const DetailKeySeparator = "|||"

// DetailKey builds the detail map key for an action label and raw issue.
// A null issue contributes the empty string.
func DetailKey(action string, issue Text) string {
	return action + DetailKeySeparator + issue.String()
}

// Finding is a filtered record with its derived labels.
type Finding struct {
	Record
	IssueClean  Text
	ActionClean string
}

// IssueCount is one row of a pivot cell.
type IssueCount struct {
	Issue        string `json:"Issue"`
	IssueClean   string `json:"Issue_Clean"`
	FindingCount int    `json:"Finding_Count"`
}

type PhaseBucket struct {
	Phase  string
	Issues []IssueCount
}

// PhaseIssues holds the issue lists of one action, one bucket per canonical
// phase in canonical order. It serializes as a JSON object whose keys keep
// that order.
type PhaseIssues []PhaseBucket

// NewPhaseIssues returns one empty bucket per canonical phase.
func NewPhaseIssues() PhaseIssues {
	out := make(PhaseIssues, len(phaseOrder))
	for i, phase := range phaseOrder {
		out[i] = PhaseBucket{Phase: phase, Issues: []IssueCount{}}
	}
	return out
}

// Get returns the issue list for a phase.
func (p PhaseIssues) Get(phase string) ([]IssueCount, bool) {
	for _, b := range p {
		if b.Phase == phase {
			return b.Issues, true
		}
	}
	return nil, false
}

func (p PhaseIssues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Phase)
		if err != nil {
			return nil, err
		}
		issues := b.Issues
		if issues == nil {
			issues = []IssueCount{}
		}
		list, err := json.Marshal(issues)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(list)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DetailEntry is one source row as shown in the detail modal.
type DetailEntry struct {
	Finding           Text  `json:"finding"`
	Phase             Text  `json:"phase"`
	User              Text  `json:"user"`
	IssueExplanation  Text  `json:"issue_explanation"`
	ActionExplanation Text  `json:"action_explanation"`
	ActionConfidence  Score `json:"action_confidence"`
	IssueConfidence   Score `json:"issue_confidence"`
	CampaignType      Text  `json:"campaign_type"`
	UserSegment       Text  `json:"user_segment"`
	Reference         Text  `json:"reference"`
}

// View is everything the dashboard renders for one filter selection.
type View struct {
	Pivot            map[string]PhaseIssues   `json:"pivot_data"`
	PhaseOrder       []string                 `json:"phase_order"`
	AllActions       []string                 `json:"all_actions"`
	AllUsers         []string                 `json:"all_users"`
	AllCampaignTypes []string                 `json:"all_campaign_types"`
	AllSegments      []string                 `json:"all_segments"`
	DetailMap        map[string][]DetailEntry `json:"detail_map"`
	RowCount         int                      `json:"row_count"`
	UnphasedCount    int                      `json:"unphased_count"`
}

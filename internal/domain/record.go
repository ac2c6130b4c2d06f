package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Source table column names.
const (
	ColUser              = "User"
	ColType              = "Type"
	ColUserSegment       = "User Segment"
	ColIssue             = "Issue"
	ColFinding           = "Finding"
	ColPhase             = "Phase"
	ColAction            = "action_1"
	ColActionExplanation = "action_1_explanation"
	ColActionConfidence  = "action_1_conf"
	ColIssueExplanation  = "Issue_Explanation"
	ColConfidenceScore   = "Confidence_Score"
	ColReference         = "Reference"
)

// Columns lists every column a Record carries, in source order.
var Columns = []string{
	ColUser, ColType, ColUserSegment, ColIssue, ColFinding, ColPhase,
	ColAction, ColActionExplanation, ColActionConfidence,
	ColIssueExplanation, ColConfidenceScore, ColReference,
}

// RequiredColumns must be present in a source header.
var RequiredColumns = []string{ColUser, ColIssue, ColFinding, ColPhase, ColAction}

// Text is a nullable text cell. The zero value is null.
type Text struct {
	Value string
	Valid bool
}

// T returns a non-null Text.
func T(s string) Text {
	return Text{Value: s, Valid: true}
}

func (t Text) String() string {
	if !t.Valid {
		return ""
	}
	return t.Value
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Text{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = T(s)
	return nil
}

// Score is a confidence cell: numeric in most sheets, free text in some.
// It serializes as a JSON number when the text parses as a finite float.
type Score struct {
	Text
}

// S returns a non-null Score.
func S(s string) Score {
	return Score{Text: T(s)}
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	if f, ok := s.Float(); ok {
		return json.Marshal(f)
	}
	return json.Marshal(s.Value)
}

// Float reports the numeric value of the score, if it has one.
func (s Score) Float() (float64, bool) {
	if !s.Valid {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Record is one row of the source table. Records are loaded once and
// never modified afterwards.
type Record struct {
	User              Text
	Type              Text
	UserSegment       Text
	Issue             Text
	Finding           Text
	Phase             Text
	Action            Text
	ActionExplanation Text
	ActionConfidence  Score
	IssueExplanation  Text
	ConfidenceScore   Score
	Reference         Text
}

// Field returns the cell for a column name, and false for unknown columns.
func (r Record) Field(column string) (Text, bool) {
	switch column {
	case ColUser:
		return r.User, true
	case ColType:
		return r.Type, true
	case ColUserSegment:
		return r.UserSegment, true
	case ColIssue:
		return r.Issue, true
	case ColFinding:
		return r.Finding, true
	case ColPhase:
		return r.Phase, true
	case ColAction:
		return r.Action, true
	case ColActionExplanation:
		return r.ActionExplanation, true
	case ColActionConfidence:
		return r.ActionConfidence.Text, true
	case ColIssueExplanation:
		return r.IssueExplanation, true
	case ColConfidenceScore:
		return r.ConfidenceScore.Text, true
	case ColReference:
		return r.Reference, true
	}
	return Text{}, false
}

// SetField assigns the cell for a column name. Unknown columns are ignored.
func (r *Record) SetField(column string, v Text) {
	switch column {
	case ColUser:
		r.User = v
	case ColType:
		r.Type = v
	case ColUserSegment:
		r.UserSegment = v
	case ColIssue:
		r.Issue = v
	case ColFinding:
		r.Finding = v
	case ColPhase:
		r.Phase = v
	case ColAction:
		r.Action = v
	case ColActionExplanation:
		r.ActionExplanation = v
	case ColActionConfidence:
		r.ActionConfidence = Score{Text: v}
	case ColIssueExplanation:
		r.IssueExplanation = v
	case ColConfidenceScore:
		r.ConfidenceScore = Score{Text: v}
	case ColReference:
		r.Reference = v
	}
}

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedSelection = errors.New("malformed filter selection")

// Selection holds the facet filters of one request. An empty list leaves
// its facet unfiltered.
type Selection struct {
	Users         []string `json:"users"`
	CampaignTypes []string `json:"campaign_types"`
	Segments      []string `json:"segments"`
}

// IsEmpty reports whether no facet is constrained.
func (s Selection) IsEmpty() bool {
	return len(s.Users) == 0 && len(s.CampaignTypes) == 0 && len(s.Segments) == 0
}

// ParseSelection decodes a filter payload. An empty body or JSON null is an
// empty selection. Each known field must be absent, null or an array of
// strings; anything else fails with ErrMalformedSelection.
func ParseSelection(payload []byte) (Selection, error) {
	var sel Selection
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return sel, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return sel, fmt.Errorf("%w: payload must be a JSON object: %v", ErrMalformedSelection, err)
	}

	var err error
	if sel.Users, err = decodeFacet(raw, "users"); err != nil {
		return Selection{}, err
	}
	if sel.CampaignTypes, err = decodeFacet(raw, "campaign_types"); err != nil {
		return Selection{}, err
	}
	if sel.Segments, err = decodeFacet(raw, "segments"); err != nil {
		return Selection{}, err
	}
	return sel, nil
}

func decodeFacet(raw map[string]json.RawMessage, field string) ([]string, error) {
	msg, ok := raw[field]
	if !ok || string(bytes.TrimSpace(msg)) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(msg, &items); err != nil {
		return nil, fmt.Errorf("%w: field %q must be an array of strings", ErrMalformedSelection, field)
	}
	values := make([]string, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '"' {
			return nil, fmt.Errorf("%w: field %q item %d is not a string: %s", ErrMalformedSelection, field, i, item)
		}
		var v string
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("%w: field %q item %d: %v", ErrMalformedSelection, field, i, err)
		}
		values = append(values, v)
	}
	return values, nil
}

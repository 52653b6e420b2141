package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexInt decodes a JSON number, a numeric string or null into an int.
// Upstream hand exporters do not agree on scalar types.
type FlexInt int

func (v *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*v = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("numeric string %q: %w", s, err)
		}
		*v = FlexInt(int(f))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = FlexInt(int(f))
	return nil
}

// FlexString decodes a JSON string, number or null into a string.
type FlexString string

func (v *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = FlexString(n.String())
	return nil
}

// Player is one seat entry in a hand record.
type Player struct {
	Name string `json:"name"`
}

// RawOffsets locates the hand inside its source history file.
type RawOffsets struct {
	HandStart FlexInt `json:"hand_start"`
}

// Street holds the action list recorded for one board street. Only presence
// of actions matters to this engine; individual actions are never inspected.
type Street struct {
	Actions []json.RawMessage `json:"actions"`
}

// Positions is the seat-derived enrichment section.
type Positions struct {
	PosGroup         map[string]any `json:"pos_group"`
	AbsPositions     map[string]any `json:"abs_positions"`
	TableMaxResolved FlexInt        `json:"table_max_resolved"`
}

// Derived carries the upstream enrichment sections. Apart from positions
// these are open field sets referenced by catalog clauses by name, so they
// stay maps.
type Derived struct {
	Positions Positions      `json:"positions"`
	Preflop   map[string]any `json:"preflop"`
	IP        map[string]any `json:"ip"`
	Stacks    map[string]any `json:"stacks"`
	Flags     map[string]any `json:"flags"`
	Postflop  map[string]any `json:"postflop"`
}

// Record is one enriched hand as it appears on a JSONL line. The engine
// consumes pre-derived fields only and never recomputes poker semantics.
type Record struct {
	Site         string            `json:"site"`
	TournamentID FlexString        `json:"tournament_id"`
	FileID       string            `json:"file_id"`
	TourneyClass string            `json:"tourney_class"`
	TableMax     FlexInt           `json:"table_max"`
	ButtonSeat   FlexInt           `json:"button_seat"`
	Hero         string            `json:"hero"`
	Players      []Player          `json:"players"`
	TimestampUTC string            `json:"timestamp_utc"`
	Month        string            `json:"month"`
	RawOffsets   RawOffsets        `json:"raw_offsets"`
	Streets      map[string]Street `json:"streets"`
	Derived      Derived           `json:"derived"`
}

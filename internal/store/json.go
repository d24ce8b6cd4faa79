package store

import "encoding/json"

// encodeStrings serializes a string slice into the flat JSON array stored
// in TEXT columns like tasks.labels and agents.capabilities, matching the
// teacher's convention of storing repeated string sets as a JSON blob
// rather than a join table.
func encodeStrings(v []string) string {
	if len(v) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var v []string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return v
}

func encodeMeta(v map[string]string) string {
	if len(v) == 0 {
		return ""
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeMeta(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return v
}

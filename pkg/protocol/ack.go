package protocol

import "encoding/json"

// AckArgs interprets an ACK payload as a JSON array. A payload that is not an
// array (including an empty payload) yields an empty, non-nil slice.
func AckArgs(payload []byte) []json.RawMessage {
	var args []json.RawMessage
	if err := json.Unmarshal(payload, &args); err != nil || args == nil {
		return []json.RawMessage{}
	}
	return args
}

// IsNull reports whether a raw JSON value is absent or the literal null.
func IsNull(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	return v == nil
}

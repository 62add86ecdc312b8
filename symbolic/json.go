package symbolic

import "encoding/json"

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON renders the tree as nested objects keyed by node type.
func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToJSONIndent is ToJSON with two-space indentation.
func ToJSONIndent(e Expr) (string, error) {
	b, err := json.MarshalIndent(e.toJSON(), "", "  ")
	return string(b), err
}

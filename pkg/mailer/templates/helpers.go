package templates

import "encoding/json"

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// FromMap rebuilds EmailData from a decoded EmailJob.Data payload.
func FromMap(m map[string]any) EmailData {
	b, _ := json.Marshal(m)
	var d EmailData
	_ = json.Unmarshal(b, &d)
	return d
}

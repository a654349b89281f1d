package models

// UXIssue is a catalogued issue from the UX research store. Records are
// read-only from this system's point of view; created_at orders results
// but is not part of the projection returned to callers.
type UXIssue struct {
	Product        string `json:"product"`
	Screen         string `json:"screen"`
	Symptom        string `json:"symptom"`
	RootCause      string `json:"root_cause"`
	Recommendation string `json:"recommendation"`
	Metric         string `json:"metric"`
}

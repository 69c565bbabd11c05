package domain

// RequestSummary is the persisted snapshot of a RequestInstance.
type RequestSummary struct {
	RunID     string              `json:"run_id"`
	RequestID string              `json:"request_id"`
	State     string              `json:"state,omitempty"`
	Valid     bool                `json:"valid"`
	Lapse     float64             `json:"lapse"`
	Threads   int                 `json:"threads"`
	Joins     int                 `json:"joins"`
	Hosts     []string            `json:"hosts,omitempty"`
	MainPath  []string            `json:"main_path,omitempty"`
	Vars      map[string]string   `json:"vars,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Warnings  map[string][]string `json:"warnings,omitempty"`
}

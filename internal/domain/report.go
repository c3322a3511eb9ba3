package domain

// TargetResult records the outcome of one webhook delivery.
type TargetResult struct {
	TargetID int64
	Platform string
	Success  bool
	Err      error
}

// DeliveryStats aggregates per-recipient email outcomes.
type DeliveryStats struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// RunReport summarizes one pipeline execution. It is never persisted;
// it is returned to the trigger caller and logged.
type RunReport struct {
	Created          bool          `json:"created"`
	Skipped          bool          `json:"skipped"`
	ArticleID        int64         `json:"articleId,omitempty"`
	Title            string        `json:"title,omitempty"`
	TargetsDelivered int           `json:"targetsDelivered"`
	TargetsFailed    []int64       `json:"targetsFailed,omitempty"`
	Admins           DeliveryStats `json:"admins"`
	Subscribers      DeliveryStats `json:"subscribers"`
}

package domain

import "time"

// Article is the unit of publication produced once per day by the pipeline.
type Article struct {
	ID        int64
	Title     string
	Excerpt   string
	Body      string
	Category  string
	ReadTime  string
	ImageURL  string
	Published bool
	CreatedAt time.Time
}

// Draft carries the generated fields of an article before persistence.
type Draft struct {
	Title    string
	Excerpt  string
	Body     string
	ReadTime string
}

// DistributionTarget is a configured webhook endpoint. Owned by
// configuration; the pipeline only reads the enabled set at fan-out time.
type DistributionTarget struct {
	ID       int64
	Platform string
	URL      string
	Enabled  bool
}

// Subscriber is a newsletter recipient.
type Subscriber struct {
	Email          string
	Confirmed      bool
	UnsubscribedAt *time.Time
}

// Active reports whether the subscriber should receive notifications.
func (s Subscriber) Active() bool {
	return s.Confirmed && s.UnsubscribedAt == nil
}

// EmailMessage is a single outbound email handed to the mail provider.
type EmailMessage struct {
	To      string
	Subject string
	HTML    string
}

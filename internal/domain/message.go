package domain

// Push priorities, 1 (min) to 5 (urgent).
const (
	PriorityMin     = 1
	PriorityLow     = 2
	PriorityDefault = 3
	PriorityHigh    = 4
	PriorityUrgent  = 5
)

// FormattedMessage is one notification rendered in every body length a
// channel may want. SMS favours UrgentBody, WhatsApp and push FullBody.
type FormattedMessage struct {
	Title      string   `json:"title"`
	ShortBody  string   `json:"shortBody"`
	FullBody   string   `json:"fullBody"`
	UrgentBody string   `json:"urgentBody"`
	Priority   int      `json:"priority"`
	Tags       []string `json:"tags,omitempty"`
}

type EmailContent struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

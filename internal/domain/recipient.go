package domain

type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
	RoleManager   Role = "manager"
)

type NotificationKind string

const (
	KindReceipt         NotificationKind = "receipt"
	KindOrder           NotificationKind = "order"
	KindPayment         NotificationKind = "payment"
	KindUrgent          NotificationKind = "urgent"
	KindCustomerMessage NotificationKind = "customer-message"
	KindTest            NotificationKind = "test"
)

// Recipient is one staff contact. Any contact field may be empty; adapters
// answer with a skipped result for the channels it cannot reach.
type Recipient struct {
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Phone    string `json:"phoneNumber,omitempty"`
	WhatsApp string `json:"whatsappNumber,omitempty"`
	Email    string `json:"emailAddress,omitempty"`
}

// Label names the recipient without exposing contact details.
func (r Recipient) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return string(r.Role)
}

// Audience is who receives one notification kind.
type Audience struct {
	Recipients []Recipient `json:"recipients"`
	PushTopic  string      `json:"pushTopic,omitempty"`
}

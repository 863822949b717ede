package domain

// PurchaseRequest is an in-chat offer emitted by the writer stage. A session
// holds at most one pending offer; a new one replaces the slot.
type PurchaseRequest struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"timestamp"`
}

type PurchaseOutcome string

const (
	PurchaseAccepted PurchaseOutcome = "accepted"
	PurchaseDeclined PurchaseOutcome = "declined"
	PurchaseIgnored  PurchaseOutcome = "ignored"
	PurchaseTimeout  PurchaseOutcome = "timeout"
)

// ValidPurchaseOutcome reports whether s is one of the recognized outcome tags.
func ValidPurchaseOutcome(s string) bool {
	switch PurchaseOutcome(s) {
	case PurchaseAccepted, PurchaseDeclined, PurchaseIgnored, PurchaseTimeout:
		return true
	}
	return false
}

// PurchaseDecision links a resolved offer to its outcome. Recording one
// clears the session's pending slot; the history itself is append-only.
type PurchaseDecision struct {
	ID        string          `json:"id"`
	Request   PurchaseRequest `json:"request"`
	Decision  PurchaseOutcome `json:"decision"`
	CreatedAt Timestamp       `json:"timestamp"`
}

// Package lifecycle derives what an order row may show and do next from its
// raw {status, payment_status, payment_method} tuple. The mapping is pure;
// the order service performs the actual transitions.
package lifecycle

import (
	"kl-decors-backend/internal/models"
)

// Action is a user-triggerable transition on an order row.
type Action string

const (
	ActionCancel   Action = "cancel"
	ActionReturn   Action = "return"
	ActionMarkPaid Action = "mark_paid" // admin only
)

// Badge is the externally visible state of an order: a label, a tone the UI
// maps to a colour, and the actions currently legal on the row.
type Badge struct {
	Label   string   `json:"label"`
	Tone    string   `json:"tone"`
	Actions []Action `json:"actions"`
}

// CanCancel reports whether cancelling is legal. One-way: a cancelled order
// never goes back to an active state, and a returned order stays returned.
func CanCancel(o models.Order) bool {
	return o.Status != models.StatusCancelled && o.Status != models.StatusReturned
}

// CanReturn reports whether a return may be requested.
func CanReturn(o models.Order) bool {
	return o.Status == models.StatusCompleted
}

// CanMarkPaid reports whether an admin may flip the payment to paid.
func CanMarkPaid(o models.Order) bool {
	return o.PaymentStatus != models.PayPaid && o.Status != models.StatusCancelled
}

// NeedsRefund reports whether cancelling this order must also raise a refund
// with the gateway. "success" is a legacy value some early rows carry.
func NeedsRefund(o models.Order) bool {
	if o.PaymentMethod == models.PaymentCOD {
		return false
	}
	return o.PaymentStatus == models.PayPaid || o.PaymentStatus == "success"
}

// Derive maps the raw tuple to a Badge. Total: any unknown combination gets
// a neutral badge with no actions rather than panicking the list view.
func Derive(o models.Order) Badge {
	switch o.Status {
	case models.StatusCancelled:
		if o.PaymentStatus == models.PayRefunded {
			return Badge{Label: "refunded", Tone: "blue"}
		}
		if NeedsRefund(o) {
			// refund raised, gateway has not confirmed yet
			return Badge{Label: "refund-pending", Tone: "orange"}
		}
		return Badge{Label: "cancelled", Tone: "red"}

	case models.StatusReturned:
		return Badge{Label: "returned", Tone: "yellow"}

	case models.StatusCompleted:
		b := Badge{Label: "completed", Tone: "green", Actions: []Action{ActionReturn, ActionCancel}}
		if CanMarkPaid(o) {
			b.Actions = append(b.Actions, ActionMarkPaid)
		}
		return b

	case models.StatusConfirmed:
		b := Badge{Label: "confirmed", Tone: "blue", Actions: []Action{ActionCancel}}
		if CanMarkPaid(o) {
			b.Actions = append(b.Actions, ActionMarkPaid)
		}
		return b

	case models.StatusPending, "":
		b := Badge{Label: "pending", Tone: "orange", Actions: []Action{ActionCancel}}
		if CanMarkPaid(o) {
			b.Actions = append(b.Actions, ActionMarkPaid)
		}
		return b

	default:
		return Badge{Label: o.Status, Tone: "gray"}
	}
}

package service

// Rejection is a deterministic, user-correctable refusal of an order. It is
// returned before anything is committed.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

var (
	ErrInvalidOrder         = &Rejection{Reason: "Invalid order payload"}
	ErrPriceNotAvailable    = &Rejection{Reason: "Price not available"}
	ErrInsufficientCash     = &Rejection{Reason: "Insufficient cash"}
	ErrInsufficientQuantity = &Rejection{Reason: "Insufficient quantity"}
)

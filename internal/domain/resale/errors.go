package resale

import "errors"

// Kind groups errors by how a caller is expected to react.
type Kind int

const (
	KindUnknown Kind = iota
	// KindPolicyViolation is recoverable by adjusting input (lower price, wait longer).
	KindPolicyViolation
	// KindAuthorization needs a state change elsewhere, e.g. getting verified.
	KindAuthorization
	// KindStateConflict surfaces a race or a stale client view; refresh and retry.
	KindStateConflict
	KindNotFound
	KindInput
	// KindUnavailable means a collaborator (oracle, payments, store) failed or timed out.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindPolicyViolation:
		return "policy_violation"
	case KindAuthorization:
		return "authorization"
	case KindStateConflict:
		return "state_conflict"
	case KindNotFound:
		return "not_found"
	case KindInput:
		return "input"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

type Error struct {
	Code string
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Code: code, Kind: kind, msg: msg}
}

var (
	ErrPriceCapExceeded     = newError(KindPolicyViolation, "PRICE_CAP_EXCEEDED", "price exceeds resale cap")
	ErrHoldPeriodActive     = newError(KindPolicyViolation, "HOLD_PERIOD_ACTIVE", "hold period has not elapsed")
	ErrTransferLimitReached = newError(KindPolicyViolation, "TRANSFER_LIMIT_REACHED", "transfer limit reached")

	ErrVerificationRequired = newError(KindAuthorization, "VERIFICATION_REQUIRED", "recipient is not verified")
	ErrBuyerNotVerified     = newError(KindAuthorization, "BUYER_NOT_VERIFIED", "buyer is not verified")
	ErrNotOwner             = newError(KindAuthorization, "NOT_OWNER", "not the ticket owner")
	ErrNotTicketOwner       = newError(KindAuthorization, "NOT_TICKET_OWNER", "seller does not own the ticket")
	ErrNotSeller            = newError(KindAuthorization, "NOT_SELLER", "only the seller may cancel the listing")
	ErrNotOrganizer         = newError(KindAuthorization, "NOT_ORGANIZER", "only the organizer may withdraw")

	ErrTicketRedeemed       = newError(KindStateConflict, "TICKET_REDEEMED", "ticket already redeemed")
	ErrAlreadyRedeemed      = newError(KindStateConflict, "ALREADY_REDEEMED", "ticket already redeemed")
	ErrListingAlreadyActive = newError(KindStateConflict, "LISTING_ALREADY_ACTIVE", "ticket already has an active listing")
	ErrListingNotActive     = newError(KindStateConflict, "LISTING_NOT_ACTIVE", "listing is not active")
	ErrSellerNoLongerOwner  = newError(KindStateConflict, "SELLER_NO_LONGER_OWNER", "seller no longer owns the ticket")
	ErrDuplicateSettlement  = newError(KindStateConflict, "DUPLICATE_SETTLEMENT", "settlement reference already used")

	ErrTicketNotFound  = newError(KindNotFound, "TICKET_NOT_FOUND", "ticket not found")
	ErrEventNotFound   = newError(KindNotFound, "EVENT_NOT_FOUND", "event not found")
	ErrListingNotFound = newError(KindNotFound, "LISTING_NOT_FOUND", "ticket has never been listed")

	ErrPriceMismatch     = newError(KindInput, "PRICE_MISMATCH", "paid amount does not match price")
	ErrInvalidPrice      = newError(KindInput, "INVALID_PRICE", "price must be positive")
	ErrInvalidPolicy     = newError(KindInput, "INVALID_POLICY", "invalid resale policy")
	ErrBuyerIsSeller     = newError(KindInput, "BUYER_IS_SELLER", "seller cannot buy their own listing")
	ErrInsufficientFunds = newError(KindInput, "INSUFFICIENT_FUNDS", "insufficient funds")

	ErrOracleUnavailable   = newError(KindUnavailable, "ORACLE_UNAVAILABLE", "verification oracle unavailable")
	ErrPaymentsUnavailable = newError(KindUnavailable, "PAYMENTS_UNAVAILABLE", "payments unavailable")
)

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the stable code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

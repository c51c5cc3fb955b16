package policies

import (
	"context"
	"errors"

	"homestay/internal/domain/shared/money"
)

// ErrGateway marks any failure to obtain a usable answer from the external
// payment processor: transport errors, timeouts, non-2xx statuses and
// malformed bodies all collapse into it. The adapter never retries; callers
// decide what to do with the degraded result.
var ErrGateway = errors.New("payments: gateway unavailable")

// InitializeRequest is the payload forwarded to the processor's initialize
// endpoint.
type InitializeRequest struct {
	Amount      money.Money
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	Reference   string
	CallbackURL string
	ReturnURL   string
	Description string
	Meta        map[string]string
}

// InitializeResult carries the processor identifiers stored verbatim on the
// payment record.
type InitializeResult struct {
	CheckoutURL   string
	TransactionID string
}

// VerifyResult is the processor's reported transaction state: "success",
// "failed" or "pending", plus the raw response data for auditing.
type VerifyResult struct {
	Status  string
	Message string
	Raw     map[string]any
}

// PaymentProcessor is the port to the external payment service.
type PaymentProcessor interface {
	Initialize(ctx context.Context, req InitializeRequest) (InitializeResult, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)
}

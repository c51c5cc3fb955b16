package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"homestay/internal/app/policies"
)

// DefaultTimeout bounds every round trip to the processor.
const DefaultTimeout = 30 * time.Second

// Client talks to a Chapa-compatible payment processor. Every failure mode,
// transport errors, non-2xx statuses, malformed bodies, collapses into
// policies.ErrGateway; the client never retries and never panics.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	SecretKey  string
	Logger     *slog.Logger
	Metrics    interface {
		GatewayCall(operation string, duration time.Duration)
	}
}

type initializePayload struct {
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name,omitempty"`
	LastName    string            `json:"last_name,omitempty"`
	PhoneNumber string            `json:"phone_number,omitempty"`
	TxRef       string            `json:"tx_ref"`
	CallbackURL string            `json:"callback_url,omitempty"`
	ReturnURL   string            `json:"return_url,omitempty"`
	Description string            `json:"description,omitempty"`
	Meta        map[string]string `json:"meta,omitempty"`
}

type initializeResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL   string `json:"checkout_url"`
		TransactionID string `json:"transaction_id"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type verifyData struct {
	Status string `json:"status"`
	TxRef  string `json:"tx_ref"`
}

func (c *Client) Initialize(ctx context.Context, req policies.InitializeRequest) (policies.InitializeResult, error) {
	var zero policies.InitializeResult

	payload := initializePayload{
		Amount:      req.Amount.Amount.StringFixed(2),
		Currency:    req.Amount.Currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.Phone,
		TxRef:       req.Reference,
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
		Description: req.Description,
		Meta:        req.Meta,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("%w: encode initialize: %v", policies.ErrGateway, err)
	}

	var resp initializeResponse
	if err := c.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(body), &resp, "initialize"); err != nil {
		return zero, err
	}
	if !strings.EqualFold(resp.Status, "success") {
		return zero, fmt.Errorf("%w: initialize rejected: %s", policies.ErrGateway, resp.Message)
	}
	return policies.InitializeResult{
		CheckoutURL:   resp.Data.CheckoutURL,
		TransactionID: resp.Data.TransactionID,
	}, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (policies.VerifyResult, error) {
	var zero policies.VerifyResult

	var resp verifyResponse
	path := "/transaction/verify/" + reference
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, "verify"); err != nil {
		return zero, err
	}
	if !strings.EqualFold(resp.Status, "success") {
		return zero, fmt.Errorf("%w: verify rejected: %s", policies.ErrGateway, resp.Message)
	}

	var data verifyData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return zero, fmt.Errorf("%w: decode verify data: %v", policies.ErrGateway, err)
	}
	var raw map[string]any
	_ = json.Unmarshal(resp.Data, &raw)
	return policies.VerifyResult{
		Status:  strings.ToLower(data.Status),
		Message: resp.Message,
		Raw:     raw,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any, operation string) error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base url not configured", policies.ErrGateway)
	}

	request, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", policies.ErrGateway, err)
	}
	request.Header.Set("Authorization", "Bearer "+c.SecretKey)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client().Do(request)
	if c.Metrics != nil {
		c.Metrics.GatewayCall(operation, time.Since(start))
	}
	if err != nil {
		c.logError(operation, err)
		return fmt.Errorf("%w: %v", policies.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%w: status %d: %s", policies.ErrGateway, resp.StatusCode, string(snippet))
		c.logError(operation, err)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logError(operation, err)
		return fmt.Errorf("%w: decode response: %v", policies.ErrGateway, err)
	}
	return nil
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (c *Client) logError(operation string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Error("chapa call failed", "operation", operation, "error", err)
}

var _ policies.PaymentProcessor = (*Client)(nil)

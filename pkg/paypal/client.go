// Package paypal is a thin client for the PayPal Orders v2 REST API with
// centralized auth, logging, and error mapping.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ofcourt/storefront-backend/pkg/config"
	pkgerrors "github.com/ofcourt/storefront-backend/pkg/errors"
	"github.com/ofcourt/storefront-backend/pkg/logger"
)

const (
	sandboxEnv = "sandbox"
	liveEnv    = "live"

	// StatusCompleted is the only capture status that counts as paid.
	StatusCompleted = "COMPLETED"
)

var (
	errCredentialsRequired = errors.New("paypal client id and secret are required")
	errInvalidPayPalEnv    = fmt.Errorf("paypal environment must be %q or %q", sandboxEnv, liveEnv)
	errLoggerRequired      = errors.New("paypal logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv: "https://api-m.sandbox.paypal.com",
	liveEnv:    "https://api-m.paypal.com",
}

// Client calls the PayPal Orders API. OAuth tokens are fetched lazily and
// cached until shortly before expiry.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	clientID    string
	secret      string
	environment string
	logger      *logger.Logger

	mu         sync.Mutex
	token      string
	tokenValid time.Time
}

// NewClient validates credentials and builds the wrapper. It does not call
// PayPal; the first request fetches the OAuth token.
func NewClient(cfg config.PayPalConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	secret := strings.TrimSpace(cfg.Secret)
	if clientID == "" || secret == "" {
		return nil, errCredentialsRequired
	}

	baseURL := baseURLs[env]
	if strings.TrimSpace(cfg.BaseURL) != "" {
		baseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	}

	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		clientID:    clientID,
		secret:      secret,
		environment: env,
		logger:      logg,
	}, nil
}

// Environment reports the normalized PayPal environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateOrder opens a provider order for the given amount and returns its id.
// A response without an id is a hard provider failure.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency string) (string, error) {
	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   amount.StringFixed(2),
		"currency": currency,
	})

	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"amount": map[string]string{
					"currency_code": currency,
					"value":         amount.StringFixed(2),
				},
			},
		},
	}

	var resp orderResponse
	if err := c.post(ctx, "/v2/checkout/orders", body, &resp); err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return "", err
	}

	if strings.TrimSpace(resp.ID) == "" {
		err := pkgerrors.New(pkgerrors.CodeProvider, "paypal returned no order id")
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return "", err
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"order_id": resp.ID,
		"status":   resp.Status,
	})
	return resp.ID, nil
}

// CaptureOrder captures a previously created order and returns the capture
// status string as reported by PayPal.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	c.log(ctx, "request", "capture_order", map[string]any{"order_id": orderID})

	var resp orderResponse
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", url.PathEscape(orderID))
	if err := c.post(ctx, path, map[string]any{}, &resp); err != nil {
		c.log(ctx, "error", "capture_order", map[string]any{"error": err.Error()})
		return "", err
	}

	c.log(ctx, "response", "capture_order", map[string]any{
		"order_id": resp.ID,
		"status":   resp.Status,
	})
	return resp.Status, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding paypal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building paypal request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling paypal")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading paypal response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeProvider, fmt.Sprintf("paypal responded with status %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeProvider, err, "decoding paypal response")
		}
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenValid) {
		return c.token, nil
	}

	form := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", form)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building paypal token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching paypal token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", pkgerrors.New(pkgerrors.CodeProvider, fmt.Sprintf("paypal token endpoint responded with status %d", resp.StatusCode))
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeProvider, err, "decoding paypal token response")
	}
	if decoded.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeProvider, "paypal token response missing access token")
	}

	c.token = decoded.AccessToken
	// renew a minute early so in-flight requests never carry a stale token
	c.tokenValid = time.Now().Add(time.Duration(decoded.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("paypal %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("paypal %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"card", "cvv", "secret", "token", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidPayPalEnv
	}
}

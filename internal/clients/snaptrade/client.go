// Package snaptrade provides a client for the SnapTrade brokerage API
package snaptrade

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dkmcgowan/maplebook/internal/common"
	"github.com/dkmcgowan/maplebook/internal/models"
)

const (
	DefaultBaseURL   = "https://api.snaptrade.com/api/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the BrokerageClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new SnapTrade client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("SnapTrade API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", path).Msg("SnapTrade API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetAccounts retrieves all linked brokerage accounts
func (c *Client) GetAccounts(ctx context.Context) ([]*models.Account, error) {
	var resp []accountData
	if err := c.get(ctx, "/accounts", &resp); err != nil {
		return nil, err
	}

	accounts := make([]*models.Account, len(resp))
	for i, a := range resp {
		accounts[i] = &models.Account{
			ID:       a.ID,
			Type:     normalizeAccountType(a.RawType),
			Nickname: a.Name,
			Currency: a.Currency,
			Balance:  a.Balance.Total,
		}
	}

	return accounts, nil
}

type accountData struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	RawType string `json:"raw_type"`
	Balance struct {
		Total float64 `json:"total"`
	} `json:"balance"`
	Currency string `json:"currency"`
}

// GetPositions retrieves current holdings for an account
func (c *Client) GetPositions(ctx context.Context, accountID string) ([]*models.Position, error) {
	var resp []positionData
	path := fmt.Sprintf("/accounts/%s/positions", accountID)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	positions := make([]*models.Position, len(resp))
	for i, p := range resp {
		positions[i] = &models.Position{
			ID:          models.PositionKey(accountID, p.Symbol.Symbol),
			Symbol:      p.Symbol.Symbol,
			Name:        p.Symbol.Description,
			AccountID:   accountID,
			Quantity:    p.Units,
			BookValue:   p.AveragePrice * p.Units,
			MarketValue: p.Price * p.Units,
		}
	}

	return positions, nil
}

type positionData struct {
	Symbol struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
	} `json:"symbol"`
	Units        float64 `json:"units"`
	Price        float64 `json:"price"`
	AveragePrice float64 `json:"average_purchase_price"`
}

// GetActivities retrieves the account's activity ledger, oldest first
func (c *Client) GetActivities(ctx context.Context, accountID string) ([]*models.ActivityRecord, error) {
	var resp []activityData
	path := fmt.Sprintf("/accounts/%s/activities", accountID)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	activities := make([]*models.ActivityRecord, 0, len(resp))
	for _, a := range resp {
		activityType := normalizeActivityType(a.Type)
		if !models.ValidActivityType(activityType) {
			c.logger.Warn().Str("type", a.Type).Str("id", a.ID).Msg("Skipping unrecognized activity type")
			continue
		}

		occurredAt, err := time.Parse(time.RFC3339, a.TradeDate)
		if err != nil {
			return nil, fmt.Errorf("failed to parse activity date '%s': %w", a.TradeDate, err)
		}

		record := &models.ActivityRecord{
			ID:         a.ID,
			Type:       activityType,
			Symbol:     a.Symbol.Symbol,
			Amount:     a.Amount,
			OccurredAt: occurredAt,
			AccountID:  accountID,
		}

		// SnapTrade reports sell units negative; the ledger stores
		// magnitudes and relies on Type for direction.
		if a.Units != nil {
			units := math.Abs(*a.Units)
			record.Quantity = &units
		}
		if a.Price != nil {
			price := *a.Price
			record.Price = &price
		}

		activities = append(activities, record)
	}

	return activities, nil
}

type activityData struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Symbol struct {
		Symbol string `json:"symbol"`
	} `json:"symbol"`
	Units     *float64 `json:"units"`
	Price     *float64 `json:"price"`
	Amount    float64  `json:"amount"`
	TradeDate string   `json:"trade_date"`
}

// normalizeActivityType maps SnapTrade activity names onto ledger types
func normalizeActivityType(raw string) models.ActivityType {
	switch strings.ToUpper(raw) {
	case "BUY":
		return models.ActivityBuy
	case "SELL":
		return models.ActivitySell
	case "TRANSFER", "TRANSFER_IN", "TRANSFER_OUT":
		return models.ActivityTransfer
	case "DIVIDEND", "DISTRIBUTION":
		return models.ActivityDividend
	case "FEE", "MANAGEMENT_FEE":
		return models.ActivityFee
	case "CONTRIBUTION", "DEPOSIT":
		return models.ActivityDeposit
	case "WITHDRAWAL", "EFT_OUT":
		return models.ActivityWithdrawal
	}
	return models.ActivityType(strings.ToLower(raw))
}

// normalizeAccountType maps brokerage account descriptions onto the type
// codes the classifier understands. Unknown types default to NON_REG so
// dispositions are never silently treated as sheltered.
func normalizeAccountType(raw string) string {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "TFSA"):
		return models.AccountTFSA
	case strings.Contains(upper, "RRSP"), strings.Contains(upper, "RSP"):
		return models.AccountRRSP
	case strings.Contains(upper, "FHSA"):
		return models.AccountFHSA
	case strings.Contains(upper, "RESP"):
		return models.AccountRESP
	case strings.Contains(upper, "LIRA"):
		return models.AccountLIRA
	case strings.Contains(upper, "CORPORATE"), strings.Contains(upper, "CCPC"):
		return models.AccountCorporate
	case strings.Contains(upper, "CRYPTO"):
		return models.AccountCrypto
	case strings.Contains(upper, "USD"):
		return models.AccountUSD
	default:
		return models.AccountNonReg
	}
}

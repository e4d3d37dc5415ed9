package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/parkingblisko/config"
	"github.com/Domenick1991/parkingblisko/internal/domain"
	"github.com/Domenick1991/parkingblisko/internal/logger"
	"golang.org/x/time/rate"
)

// Payload is the body posted to the reservation API: the reservation fields
// plus submission metadata.
type Payload struct {
	ID          string      `json:"id"`
	Source      string      `json:"source"`
	SubmittedAt time.Time   `json:"submitted_at"`
	Date        domain.Date `json:"date"`
	domain.Reservation
}

type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	source     string
	limiter    *rate.Limiter
	log        logger.Logger
}

func NewClient(cfg config.SubmissionConfig, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		endpoint:   strings.TrimRight(cfg.URL, "/") + "/reservations",
		token:      cfg.Token,
		source:     cfg.Source,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		log:        log,
	}
}

func (c *Client) Source() string {
	return c.source
}

// Submit posts one reservation. Any non-2xx answer is an error; the body is
// not interpreted further.
func (c *Client) Submit(ctx context.Context, p Payload) error {
	if p.Source == "" {
		p.Source = c.source
	}
	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = time.Now().UTC()
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("submission rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send reservation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("reservation API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	c.log.Info("reservation submitted", "id", p.ID, "date", p.Date.String(), "status", resp.StatusCode)
	return nil
}

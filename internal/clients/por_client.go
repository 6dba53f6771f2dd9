package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"basket-backend/internal/config"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PORAttestation is one proof-of-reserve reading: the attested backing
// reserve and when the oracle last verified it.
type PORAttestation struct {
	TotalReserve   decimal.Decimal
	LastVerifiedAt time.Time
}

// Age returns how old the attestation is at now.
func (a *PORAttestation) Age(now time.Time) time.Duration {
	return now.Sub(a.LastVerifiedAt)
}

// PORClient reads the external proof-of-reserve oracle. The read is pure;
// the gate decision lives in the orchestrator.
type PORClient interface {
	GetAttestation(ctx context.Context) (*PORAttestation, error)
}

// HTTPPORClient queries the oracle over HTTP.
type HTTPPORClient struct {
	BaseURL string
	Client  *http.Client
	logger  *logrus.Logger
}

// NewHTTPPORClient creates the oracle client.
func NewHTTPPORClient(cfg config.PORConfig, logger *logrus.Logger) *HTTPPORClient {
	timeout := 15 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &HTTPPORClient{
		BaseURL: cfg.BaseURL,
		Client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type porAttestationResponse struct {
	TotalReserve   string `json:"total_reserve"`
	LastVerifiedAt string `json:"last_verified_at"` // RFC 3339
}

// GetAttestation fetches the latest attestation.
func (c *HTTPPORClient) GetAttestation(ctx context.Context) (*PORAttestation, error) {
	url := c.BaseURL + "/api/por/attestation"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build POR request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POR oracle unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read POR response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("POR oracle returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed porAttestationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse POR response: %w", err)
	}

	reserve, err := decimal.NewFromString(parsed.TotalReserve)
	if err != nil {
		return nil, fmt.Errorf("invalid reserve amount %q: %w", parsed.TotalReserve, err)
	}
	verifiedAt, err := time.Parse(time.RFC3339, parsed.LastVerifiedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid attestation timestamp %q: %w", parsed.LastVerifiedAt, err)
	}

	c.logger.WithFields(logrus.Fields{
		"total_reserve":    reserve.String(),
		"last_verified_at": verifiedAt,
	}).Debug("POR attestation fetched")

	return &PORAttestation{
		TotalReserve:   reserve,
		LastVerifiedAt: verifiedAt,
	}, nil
}

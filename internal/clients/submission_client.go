package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"basket-backend/internal/config"
	"basket-backend/internal/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// SubmissionRequest is one per-asset transfer instruction handed to the
// external submission service. Amount is already scaled to base units.
type SubmissionRequest struct {
	ChainID         string   `json:"chain_id,omitempty"`
	AssetID         string   `json:"asset_id"`
	Symbol          string   `json:"symbol"`
	ContractAddress string   `json:"contract_address"`
	Beneficiary     string   `json:"beneficiary"`
	AmountBaseUnits *big.Int `json:"-"`
	Amount          string   `json:"amount"` // AmountBaseUnits as a decimal string
}

// SubmissionClient submits one asset transfer and returns the transaction
// hash. Signing and broadcasting are the external service's concern; this
// process never holds keys.
type SubmissionClient interface {
	Submit(ctx context.Context, req *SubmissionRequest) (string, error)
}

// EVMSubmissionClient calls the external signer service over HTTP and
// optionally confirms the returned transaction hash against the chain's
// RPC endpoint before reporting success.
type EVMSubmissionClient struct {
	BaseURL         string
	Client          *http.Client
	confirmReceipts bool
	rpcClients      map[string]*ethclient.Client // keyed by chain id
	logger          *logrus.Logger
}

// NewEVMSubmissionClient creates the submission adapter and dials the
// configured RPC endpoints. A network whose endpoint cannot be dialed is
// skipped with a warning; submissions for it simply skip confirmation.
func NewEVMSubmissionClient(cfg config.SubmissionConfig, networks map[string]config.NetworkConfig, logger *logrus.Logger) *EVMSubmissionClient {
	c := &EVMSubmissionClient{
		BaseURL:         cfg.BaseURL,
		Client:          &http.Client{Timeout: cfg.PerAssetTimeout()},
		confirmReceipts: cfg.ConfirmReceipts,
		rpcClients:      make(map[string]*ethclient.Client),
		logger:          logger,
	}

	for name, network := range networks {
		if len(network.RPCEndpoints) == 0 {
			continue
		}
		client, err := ethclient.Dial(network.RPCEndpoints[0])
		if err != nil {
			logger.WithFields(logrus.Fields{
				"network": name,
				"rpc":     network.RPCEndpoints[0],
			}).WithError(err).Warn("failed to dial RPC endpoint, receipt confirmation disabled for network")
			continue
		}
		c.rpcClients[network.Name] = client
		logger.WithFields(logrus.Fields{
			"network":  name,
			"chain_id": network.ChainID,
		}).Info("submission RPC client initialized")
	}

	return c
}

type submissionResponse struct {
	Success bool   `json:"success"`
	TxHash  string `json:"tx_hash"`
	Error   string `json:"error,omitempty"`
}

// Submit posts the transfer instruction to the signer service. The caller
// bounds ctx with the per-asset submission timeout.
func (c *EVMSubmissionClient) Submit(ctx context.Context, req *SubmissionRequest) (string, error) {
	if req.AmountBaseUnits != nil {
		req.Amount = req.AmountBaseUnits.String()
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal submission request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/transfers/submit", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build submission request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submission service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read submission response: %w", err)
	}

	var parsed submissionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse submission response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !parsed.Success {
		msg := parsed.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("submission rejected: %s", msg)
	}
	if !utils.IsValidTxHash(parsed.TxHash) {
		return "", fmt.Errorf("submission service returned malformed tx hash %q", parsed.TxHash)
	}

	if c.confirmReceipts {
		if err := c.waitForReceipt(ctx, req.ChainID, parsed.TxHash); err != nil {
			return "", err
		}
	}

	c.logger.WithFields(logrus.Fields{
		"asset_id": req.AssetID,
		"tx_hash":  parsed.TxHash,
		"chain_id": req.ChainID,
	}).Info("transfer submitted")

	return parsed.TxHash, nil
}

// waitForReceipt polls for the receipt until ctx expires. Chains without a
// dialed RPC client are accepted on the signer's word.
func (c *EVMSubmissionClient) waitForReceipt(ctx context.Context, chainID, txHash string) error {
	client, ok := c.rpcClients[chainID]
	if !ok {
		return nil
	}

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status == 0 {
				return fmt.Errorf("transaction %s reverted on chain %s", txHash, chainID)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for receipt of %s: %w", txHash, ctx.Err())
		case <-ticker.C:
		}
	}
}

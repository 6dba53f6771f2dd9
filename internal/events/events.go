// Package events defines the operator event payloads and the nil-safe
// publisher that sends them over NATS. Publishing is strictly best-effort:
// a failure is logged and counted but never fails the primary operation.
package events

import (
	"time"

	"basket-backend/internal/clients"

	"github.com/sirupsen/logrus"
)

// Subjects published under the configured prefix.
const (
	SubjectChainRegistered = "registry.chain.registered"
	SubjectChainUpdated    = "registry.chain.updated"
	SubjectAssetRegistered = "registry.asset.registered"
	SubjectBasketCreated   = "registry.basket.created"
	SubjectMintRequested   = "mint.requested"
	SubjectMintCompleted   = "mint.completed"
	SubjectMintFailed      = "mint.failed"
	SubjectBackupFailed    = "operator.backup.failed"
)

// RegistryEvent is published on registry mutations.
type RegistryEvent struct {
	Registry  string    `json:"registry"`
	EntityID  string    `json:"entity_id"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

// MintEvent is published on mint lifecycle transitions.
type MintEvent struct {
	RecordID    string    `json:"record_id"`
	BasketID    string    `json:"basket_id"`
	ChainID     string    `json:"chain_id,omitempty"`
	Beneficiary string    `json:"beneficiary"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// BackupFailureEvent reports a failed or dropped registry snapshot to the
// operator channel.
type BackupFailureEvent struct {
	Registry  string    `json:"registry"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher wraps the NATS client. A nil Publisher or a Publisher without
// a client silently drops events, so callers never branch on configuration.
type Publisher struct {
	client *clients.NATSClient
	logger *logrus.Logger
}

// NewPublisher creates a Publisher. client may be nil when NATS is not
// configured.
func NewPublisher(client *clients.NATSClient, logger *logrus.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// Publish sends payload on subject, best-effort.
func (p *Publisher) Publish(subject string, payload interface{}) {
	if p == nil || p.client == nil {
		return
	}
	if err := p.client.Publish(subject, payload); err != nil {
		p.logger.WithField("subject", subject).WithError(err).Warn("failed to publish operator event")
	}
}

package clients

import (
	"encoding/json"
	"fmt"
	"time"

	"basket-backend/internal/config"
	"basket-backend/internal/metrics"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// NATSClient is the operator notification channel. Registry mutations,
// mint lifecycle transitions and backup failures are published here for
// operator tooling; the channel is strictly best-effort.
type NATSClient struct {
	conn          *nats.Conn
	subjectPrefix string
	logger        *logrus.Logger
}

// NewNATSClient connects to the NATS server.
func NewNATSClient(cfg config.NATSConfig, logger *logrus.Logger) (*NATSClient, error) {
	connectTimeout := 10 * time.Second
	if cfg.Timeout > 0 {
		connectTimeout = time.Duration(cfg.Timeout) * time.Second
	}
	reconnectWait := 5 * time.Second
	if cfg.ReconnectWait > 0 {
		reconnectWait = time.Duration(cfg.ReconnectWait) * time.Second
	}
	maxReconnects := -1
	if cfg.MaxReconnects > 0 {
		maxReconnects = cfg.MaxReconnects
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("basket-backend"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
			metrics.NATSConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected")
			metrics.NATSConnectionStatus.Set(1)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	metrics.NATSConnectionStatus.Set(1)

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = "basket"
	}

	return &NATSClient{
		conn:          conn,
		subjectPrefix: prefix,
		logger:        logger,
	}, nil
}

// Publish marshals payload to JSON and publishes it under
// "<prefix>.<subject>". Errors are returned for the caller to log; they
// never fail the primary operation.
func (c *NATSClient) Publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	full := c.subjectPrefix + "." + subject
	if err := c.conn.Publish(full, data); err != nil {
		metrics.NATSPublishFailed.WithLabelValues(subject).Inc()
		return fmt.Errorf("failed to publish %s: %w", full, err)
	}
	metrics.NATSPublished.WithLabelValues(subject).Inc()
	return nil
}

// Close drains and closes the connection.
func (c *NATSClient) Close() {
	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.logger.WithError(err).Warn("NATS drain failed")
		}
		c.conn.Close()
	}
}

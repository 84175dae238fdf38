// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"application-wizard/internal/common/errors"
	"application-wizard/internal/common/logger"
	"application-wizard/internal/common/retry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client used to hand submitted applications to the downstream process.
type Client struct {
	client zbc.Client
	config *ClientConfig
	logger logger.Logger
}

// ClientConfig holds configuration for the Camunda/Zeebe client.
type ClientConfig struct {
	GatewayAddress         string
	UsePlaintextConnection bool
	ConnectionTimeout      time.Duration
	RequestTimeout         time.Duration
	Retry                  retry.Config
}

var DefaultRetryConfig = retry.Config{
	MaxAttempts: 4,
	BaseDelay:   1 * time.Second,
	MaxDelay:    10 * time.Second,
}

// NewClient dials the broker and verifies it with a topology request.
func NewClient(config *ClientConfig, log logger.Logger) (*Client, error) {
	if config.Retry.MaxAttempts == 0 {
		config.Retry = DefaultRetryConfig
	}
	if config.ConnectionTimeout == 0 {
		config.ConnectionTimeout = 10 * time.Second
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         config.GatewayAddress,
		UsePlaintextConnection: config.UsePlaintextConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", config.GatewayAddress, err)
	}

	return &Client{
		client: zeebeClient,
		config: config,
		logger: logger.ForComponent(log, "camunda"),
	}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// StartProcess creates an instance of the latest deployed version of processID.
// Transient broker errors are retried with backoff.
func (c *Client) StartProcess(ctx context.Context, processID string, variables map[string]interface{}) (int64, error) {
	var instanceKey int64
	attempts := 0

	err := retry.Do(ctx, c.config.Retry, isRetryableZeebeError, func(ctx context.Context) error {
		attempts++
		reqCtx := ctx
		if c.config.RequestTimeout > 0 {
			var cancel context.CancelFunc
			reqCtx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
			defer cancel()
		}

		cmd, err := c.client.NewCreateInstanceCommand().
			BPMNProcessId(processID).
			LatestVersion().
			VariablesFromMap(variables)
		if err != nil {
			return fmt.Errorf("invalid process variables: %w", err)
		}

		resp, err := cmd.Send(reqCtx)
		if err != nil {
			c.logger.Warn("create process instance failed", map[string]interface{}{
				"processId": processID,
				"attempt":   attempts,
				"error":     err.Error(),
			})
			return err
		}
		instanceKey = resp.GetProcessInstanceKey()
		return nil
	})
	if err != nil {
		return 0, mapZeebeError(err, "create-instance:"+processID, attempts)
	}

	c.logger.Info("process instance created", map[string]interface{}{
		"processId":          processID,
		"processInstanceKey": instanceKey,
	})
	return instanceKey, nil
}

// isRetryableZeebeError checks if the error is transient and should be retried.
func isRetryableZeebeError(err error) bool {
	msg := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"resource_exhausted",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// mapZeebeError converts broker failures into a PROCESS_START_FAILED StandardError.
func mapZeebeError(err error, operation string, attempts int) *errors.StandardError {
	msg := err.Error()
	lowerMsg := strings.ToLower(msg)

	enhancedMsg := fmt.Sprintf("Zeebe operation '%s' failed", operation)
	if attempts > 1 {
		enhancedMsg += fmt.Sprintf(" after %d attempts", attempts)
	}

	stdErr := errors.New(errors.ErrCodeProcessStartFailed, enhancedMsg, msg)

	switch {
	case strings.Contains(lowerMsg, "not found"):
		// undeployed process: retrying will not help
		stdErr.Retryable = false
		stdErr.WithMetadata("reason", "process_not_found")
	case strings.Contains(lowerMsg, "permission denied") ||
		strings.Contains(lowerMsg, "unauthorized"):
		stdErr.Retryable = false
		stdErr.WithMetadata("reason", "unauthorized")
	case isRetryableZeebeError(err):
		stdErr.WithMetadata("reason", "unavailable")
	default:
		stdErr.WithMetadata("reason", "unknown")
	}
	stdErr.WithMetadata("attempts", attempts)

	return stdErr
}

// HealthCheck performs a basic health check against the Zeebe broker.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectionTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

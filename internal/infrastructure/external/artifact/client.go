// Package artifact implements the client for the external level-artifact
// service. Milestone notifications are fire-and-forget: delivery failures are
// logged and never affect the recording that produced them.
package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JihunKong/vacation-sub000/internal/domain/shared"
	"github.com/JihunKong/vacation-sub000/pkg/circuitbreaker"
	"github.com/JihunKong/vacation-sub000/pkg/logger"
	"github.com/JihunKong/vacation-sub000/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the artifact client.
type ClientConfig struct {
	// BaseURL is the artifact service base URL.
	BaseURL string

	// APIKey authenticates requests to the artifact service.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *logger.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

var (
	// ErrArtifactRejected indicates the service rejected the request; the
	// delivery is not retried.
	ErrArtifactRejected = errors.New("artifact: request rejected")
)

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// MilestoneArtifact is the request body for one milestone notification.
type MilestoneArtifact struct {
	StudentID      string    `json:"student_id"`
	MilestoneLevel int       `json:"milestone_level"`
	ReachedAt      time.Time `json:"reached_at"`
}

// Client posts milestone artifacts with retry and a circuit breaker in
// front of the upstream service.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	log        *logger.Logger
}

// NewClient creates a new artifact client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	log := cfg.Logger

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: circuitbreaker.ArtifactBreaker(func(name string, from, to circuitbreaker.State) {
			log.Warn("artifact breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
		log: log,
	}
}

// NotifyMilestone delivers one milestone artifact. Transient failures are
// retried with backoff; 4xx responses abort immediately.
func (c *Client) NotifyMilestone(ctx context.Context, artifact MilestoneArtifact) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return retry.Do(ctx, func(ctx context.Context) error {
			return c.post(ctx, artifact)
		}, retry.ArtifactRetrier()...)
	})
}

// post performs one HTTP delivery attempt.
func (c *Client) post(ctx context.Context, artifact MilestoneArtifact) error {
	body, err := json.Marshal(artifact)
	if err != nil {
		return retry.Permanent(fmt.Errorf("artifact: marshal request: %w", err))
	}

	url := c.config.BaseURL + "/api/v1/milestones"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("artifact: build request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("artifact: request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return retry.Permanent(fmt.Errorf("%w: status %d", ErrArtifactRejected, resp.StatusCode))
	default:
		return fmt.Errorf("artifact: upstream status %d", resp.StatusCode)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT SUBSCRIPTION
// ══════════════════════════════════════════════════════════════════════════════

// Subscriber exposes type-scoped event subscription; the in-memory bus
// satisfies it.
type Subscriber interface {
	Subscribe(eventType shared.EventType, handler shared.EventHandler) error
}

// SubscribeMilestones wires the client to milestone events on the bus.
// Handler errors are logged by the bus and never reach the command path.
func (c *Client) SubscribeMilestones(bus Subscriber) error {
	return bus.Subscribe(shared.EventMilestoneReached, func(event shared.Event) error {
		milestone, ok := event.(shared.MilestoneReachedEvent)
		if !ok {
			return fmt.Errorf("artifact: unexpected event type %T", event)
		}

		ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout*2)
		defer cancel()

		err := c.NotifyMilestone(ctx, MilestoneArtifact{
			StudentID:      milestone.AggregateID(),
			MilestoneLevel: milestone.MilestoneLevel,
			ReachedAt:      milestone.OccurredAt(),
		})
		if err != nil {
			c.log.Warn("milestone artifact delivery failed",
				logger.String("student_id", milestone.AggregateID()),
				logger.Int("milestone_level", milestone.MilestoneLevel),
				logger.Err(err),
			)
		}
		return nil
	})
}

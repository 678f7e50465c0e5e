// Package callout issues the outbound HTTP calls that synchronize local
// contacts with the remote user-profile API.
package callout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	syncErrors "github.com/mkellner/contactsync/errors"
	"github.com/mkellner/contactsync/logging"
	"github.com/mkellner/contactsync/mapper"
	"github.com/mkellner/contactsync/models"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20 // 8MB

// ContactStore is the storage collaborator the client writes results to.
type ContactStore interface {
	Upsert(ctx context.Context, contact *models.Contact, externalID string) (*models.Contact, error)
	Update(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error)
}

// Client performs the Fetch and Push callouts against the remote API.
// Each operation is a single request/response cycle with no internal retry;
// failures are reported as recoverable CalloutErrors for the job runner to
// log and skip.
type Client struct {
	baseURL string
	store   ContactStore
	http    *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Client using the functional options pattern
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(cl *http.Client) Option {
	return func(c *Client) {
		c.http = cl
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock overrides the time source used for the last-synced timestamp
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a callout client for the given remote base URL.
func NewClient(baseURL string, store ContactStore, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		store:   store,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logging.Default().Logger,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves the remote profile for externalID and upserts it into the
// store keyed by that correlation key. Any non-200 status or transport
// failure leaves storage untouched and returns a recoverable error.
func (c *Client) Fetch(ctx context.Context, externalID string) error {
	url := fmt.Sprintf("%s/%s", c.baseURL, externalID)
	c.logger.DebugContext(ctx, "Fetching remote profile",
		slog.String("external_id", externalID),
		slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return syncErrors.NewTransportError(syncErrors.OpFetch, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return syncErrors.NewTransportError(syncErrors.OpFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return syncErrors.NewRejectionError(syncErrors.OpFetch, resp.StatusCode,
			fmt.Errorf("server error (status %d): %s", resp.StatusCode, string(body)))
	}

	var doc interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&doc); err != nil {
		return syncErrors.NewMalformedError(syncErrors.OpFetch,
			fmt.Errorf("decoding response body: %w", err))
	}

	contact, err := mapper.FromRemoteJSON(doc)
	if err != nil {
		return err
	}

	if _, err := c.store.Upsert(ctx, contact, externalID); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Remote profile fetched and stored",
		slog.String("external_id", externalID))
	return nil
}

// Push reads the contact by primary ID and posts its profile to the remote
// system. A storage miss is a recoverable no-op. On any 2xx status the
// contact's last-synced timestamp is advanced and persisted; otherwise the
// record is left unchanged.
func (c *Client) Push(ctx context.Context, contactID uuid.UUID) error {
	contact, err := c.store.GetByID(ctx, contactID)
	if err != nil {
		return err
	}
	if contact == nil {
		return syncErrors.NewNotFoundError(syncErrors.OpPush,
			fmt.Errorf("no contact with id %s", contactID))
	}

	payload, err := json.Marshal(mapper.ToPayload(contact))
	if err != nil {
		return syncErrors.New(syncErrors.OpPush, fmt.Errorf("encoding payload: %w", err))
	}

	url := c.baseURL + "/add"
	c.logger.DebugContext(ctx, "Pushing contact profile",
		slog.String("contact_id", contactID.String()),
		slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return syncErrors.NewTransportError(syncErrors.OpPush, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return syncErrors.NewTransportError(syncErrors.OpPush, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return syncErrors.NewRejectionError(syncErrors.OpPush, resp.StatusCode,
			fmt.Errorf("server error (status %d): %s", resp.StatusCode, string(body)))
	}

	syncedAt := c.now()
	contact.LastSyncedAt = &syncedAt
	if err := c.store.Update(ctx, contact); err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "Contact profile pushed",
		slog.String("contact_id", contactID.String()),
		slog.Time("synced_at", syncedAt))
	return nil
}

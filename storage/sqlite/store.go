// Package sqlite provides a SQLite implementation of the contact store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	stdSync "sync"
	"time"

	"github.com/google/uuid"

	syncErrors "github.com/mkellner/contactsync/errors"
	"github.com/mkellner/contactsync/logging"
	"github.com/mkellner/contactsync/models"

	// Go SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// Operation constants for consistent error reporting
const (
	opUpsert          = "sqlite.Upsert"
	opUpdate          = "sqlite.Update"
	opGetByID         = "sqlite.GetByID"
	opGetByExternalID = "sqlite.GetByExternalID"
)

// ErrStoreClosed is returned for operations on a closed store.
var ErrStoreClosed = fmt.Errorf("store is closed")

// Config holds configuration options for the ContactStore.
type Config struct {
	// DataSourceName is the connection string for the SQLite database.
	// Example: "file:contacts.db?_journal_mode=WAL"
	DataSourceName string

	// EnableWAL enables Write-Ahead Logging mode for better concurrency.
	// When true, automatically appends "?_journal_mode=WAL" to DataSourceName.
	EnableWAL bool

	// Logger is an optional logger for internal operations and errors.
	// If nil, logging is disabled (logs to io.Discard).
	Logger *log.Logger

	// Connection pool settings.
	// Defaults: MaxOpen=25, MaxIdle=5, Lifetime=1h, IdleTime=5m
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// setDefaults applies default values to the config
func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.EnableWAL {
		if !strings.Contains(c.DataSourceName, "?_journal_mode=") {
			c.DataSourceName += "?_journal_mode=WAL"
		}
	}
}

// DefaultConfig returns a Config with production-ready defaults.
func DefaultConfig(dataSourceName string) *Config {
	config := &Config{
		DataSourceName: dataSourceName,
		EnableWAL:      true,
	}
	config.setDefaults()
	return config
}

// NewWithDataSource is a convenience constructor
func NewWithDataSource(dataSourceName string) (*ContactStore, error) {
	return New(&Config{DataSourceName: dataSourceName})
}

// ContactStore persists contacts in SQLite. It is the storage collaborator
// behind the callout client: Upsert keys on the external correlation key,
// Update and GetByID key on the primary record ID.
type ContactStore struct {
	db     *sql.DB
	mu     stdSync.RWMutex
	closed bool
	logger *log.Logger
}

// New creates a new ContactStore from a Config.
func New(config *Config) (*ContactStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	config.setDefaults()

	if config.DataSourceName == "" {
		return nil, fmt.Errorf("DataSourceName is required")
	}

	logger := logging.WithComponent(logging.Component("sqlite-store"))
	logger.InfoContext(context.Background(), "Opening SQLite database",
		slog.String("data_source", config.DataSourceName),
		slog.Bool("wal_enabled", config.EnableWAL),
	)

	db, err := sql.Open("sqlite3", config.DataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// In-memory databases exist per connection; pin the pool to one
	if strings.Contains(config.DataSourceName, ":memory:") {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	store := &ContactStore{
		db:     db,
		logger: config.Logger,
	}

	if err := store.setupSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database schema: %w", err)
	}

	logger.InfoContext(context.Background(), "SQLite ContactStore successfully initialized")
	return store, nil
}

// setupSchema creates the 'contacts' table if it doesn't exist.
func (s *ContactStore) setupSchema() error {
	query := `
    CREATE TABLE IF NOT EXISTS contacts (
        id                  TEXT PRIMARY KEY,
        external_id         TEXT UNIQUE,
        first_name          TEXT,
        last_name           TEXT,
        email               TEXT,
        phone               TEXT,
        birthdate           TIMESTAMP,
        mailing_street      TEXT,
        mailing_city        TEXT,
        mailing_state       TEXT,
        mailing_country     TEXT,
        mailing_postal_code TEXT,
        last_synced_at      TIMESTAMP,
        created_at          TIMESTAMP NOT NULL,
        updated_at          TIMESTAMP NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_contacts_external_id ON contacts (external_id);
    `
	_, err := s.db.Exec(query)
	return err
}

// Upsert inserts or updates a contact keyed by the external correlation key.
// A stored contact with a matching external_id is overwritten in place and
// keeps its primary ID; otherwise a new record is created.
func (s *ContactStore) Upsert(ctx context.Context, contact *models.Contact, externalID string) (*models.Contact, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, syncErrors.NewStorageError(syncErrors.OpStore, ErrStoreClosed)
	}
	s.mu.RUnlock()

	existing, err := s.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	contact.ExternalID = &externalID
	contact.UpdatedAt = now

	if existing != nil {
		contact.ID = existing.ID
		contact.CreatedAt = existing.CreatedAt
		if err := s.update(ctx, contact); err != nil {
			return nil, err
		}
		return contact, nil
	}

	if contact.ID == uuid.Nil {
		contact.ID = uuid.New()
	}
	contact.CreatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contacts (id, external_id, first_name, last_name, email, phone, birthdate,
			mailing_street, mailing_city, mailing_state, mailing_country, mailing_postal_code,
			last_synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, contact.ID.String(), contact.ExternalID, contact.FirstName, contact.LastName,
		contact.Email, contact.Phone, contact.Birthdate,
		contact.MailingStreet, contact.MailingCity, contact.MailingState,
		contact.MailingCountry, contact.MailingPostalCode,
		contact.LastSyncedAt, contact.CreatedAt, contact.UpdatedAt)
	if err != nil {
		s.logger.Printf("%s: insert failed: %v", opUpsert, err)
		return nil, syncErrors.NewStorageError(syncErrors.OpStore, err)
	}

	return contact, nil
}

// Update persists changes to an existing contact by primary ID.
func (s *ContactStore) Update(ctx context.Context, contact *models.Contact) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return syncErrors.NewStorageError(syncErrors.OpStore, ErrStoreClosed)
	}
	s.mu.RUnlock()

	contact.UpdatedAt = time.Now()
	return s.update(ctx, contact)
}

func (s *ContactStore) update(ctx context.Context, contact *models.Contact) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE contacts
		SET external_id = ?, first_name = ?, last_name = ?, email = ?, phone = ?, birthdate = ?,
			mailing_street = ?, mailing_city = ?, mailing_state = ?, mailing_country = ?,
			mailing_postal_code = ?, last_synced_at = ?, updated_at = ?
		WHERE id = ?
	`, contact.ExternalID, contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Birthdate, contact.MailingStreet, contact.MailingCity, contact.MailingState,
		contact.MailingCountry, contact.MailingPostalCode, contact.LastSyncedAt,
		contact.UpdatedAt, contact.ID.String())
	if err != nil {
		s.logger.Printf("%s: update failed: %v", opUpdate, err)
		return syncErrors.NewStorageError(syncErrors.OpStore, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return syncErrors.NewStorageError(syncErrors.OpStore, err)
	}
	if rows == 0 {
		return syncErrors.NewNotFoundError(syncErrors.OpStore,
			fmt.Errorf("no contact with id %s", contact.ID))
	}

	return nil
}

// GetByID fetches a contact by primary ID. Returns (nil, nil) when no
// contact exists.
func (s *ContactStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, syncErrors.NewStorageError(syncErrors.OpLoad, ErrStoreClosed)
	}
	s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id.String())
	contact, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logger.Printf("%s: query failed: %v", opGetByID, err)
		return nil, syncErrors.NewStorageError(syncErrors.OpLoad, err)
	}
	return contact, nil
}

// GetByExternalID fetches a contact by correlation key. Returns (nil, nil)
// when no contact exists.
func (s *ContactStore) GetByExternalID(ctx context.Context, externalID string) (*models.Contact, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, syncErrors.NewStorageError(syncErrors.OpLoad, ErrStoreClosed)
	}
	s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE external_id = ?`, externalID)
	contact, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logger.Printf("%s: query failed: %v", opGetByExternalID, err)
		return nil, syncErrors.NewStorageError(syncErrors.OpLoad, err)
	}
	return contact, nil
}

// Close closes the underlying database. Subsequent operations fail with
// ErrStoreClosed.
func (s *ContactStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

const selectColumns = `
	SELECT id, external_id, first_name, last_name, email, phone, birthdate,
		mailing_street, mailing_city, mailing_state, mailing_country,
		mailing_postal_code, last_synced_at, created_at, updated_at
	FROM contacts`

func scanContact(row *sql.Row) (*models.Contact, error) {
	contact := &models.Contact{}
	var (
		id         string
		externalID sql.NullString
		birthdate  sql.NullTime
		lastSynced sql.NullTime
	)

	err := row.Scan(
		&id,
		&externalID,
		&contact.FirstName,
		&contact.LastName,
		&contact.Email,
		&contact.Phone,
		&birthdate,
		&contact.MailingStreet,
		&contact.MailingCity,
		&contact.MailingState,
		&contact.MailingCountry,
		&contact.MailingPostalCode,
		&lastSynced,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	contact.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid contact id %q: %w", id, err)
	}
	if externalID.Valid {
		contact.ExternalID = &externalID.String
	}
	if birthdate.Valid {
		contact.Birthdate = &birthdate.Time
	}
	if lastSynced.Valid {
		contact.LastSyncedAt = &lastSynced.Time
	}

	return contact, nil
}

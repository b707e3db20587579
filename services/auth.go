package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"PrescriptionPad/models"
	"PrescriptionPad/storage"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials     = errors.New(INVALID_CREDENTIALS)
	ErrCredentialsUnavailable = errors.New(COULD_NOT_VERIFY_CREDENTIALS)
)

// CredentialGate checks a username/password pair against a static CSV
// resource and remembers a successful login in the key-value store.
type CredentialGate struct {
	source string
	client *http.Client
	kv     storage.KeyValue
	logger *zap.Logger
}

// NewCredentialGate reads credentials from source, a file path or an http(s) URL.
func NewCredentialGate(source string, client *http.Client, kv storage.KeyValue, logger *zap.Logger) *CredentialGate {
	if client == nil {
		client = http.DefaultClient
	}
	return &CredentialGate{source: source, client: client, kv: kv, logger: logger}
}

/*
* Trim both inputs and fetch the credential rows
* A fetch or parse failure is ErrCredentialsUnavailable
* First row matching both fields exactly sets the logged in flag
 */
func (g *CredentialGate) Login(ctx context.Context, username string, password string) error {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	users, err := g.fetchCredentials(ctx)
	if err != nil {
		g.logger.Error("Error from fetchCredentials", zap.String("source", g.source), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	if !containsCredential(users, username, password) {
		g.logger.Info("Login rejected", zap.String("username", username))
		return ErrInvalidCredentials
	}
	if err := g.kv.Set(ctx, LOGGED_IN_KEY, "true"); err != nil {
		g.logger.Error("Error from kv.Set", zap.String("key", LOGGED_IN_KEY), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrCredentialsUnavailable, err)
	}
	g.logger.Info("Login accepted", zap.String("username", username))
	return nil
}

func (g *CredentialGate) LoggedIn(ctx context.Context) bool {
	v, err := g.kv.Get(ctx, LOGGED_IN_KEY)
	return err == nil && v == "true"
}

func containsCredential(users []models.UserCredential, username string, password string) bool {
	for _, u := range users {
		if u.Username == username && u.Password == password {
			return true
		}
	}
	return false
}

func (g *CredentialGate) fetchCredentials(ctx context.Context) ([]models.UserCredential, error) {
	if strings.HasPrefix(g.source, "http://") || strings.HasPrefix(g.source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch credentials from URL: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("non-200 response fetching credentials: %s", resp.Status)
		}
		return ParseCredentials(resp.Body)
	}

	file, err := os.Open(g.source)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseCredentials(file)
}

/*
* Parse comma separated rows, the first row is a header and is skipped
* Rows with fewer than two fields are ignored
 */
func ParseCredentials(r io.Reader) ([]models.UserCredential, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.UserCredential{}, nil
		}
		return nil, fmt.Errorf("failed to read credentials header: %w", err)
	}

	users := []models.UserCredential{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials row: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		users = append(users, models.UserCredential{Username: record[0], Password: record[1]})
	}
	return users, nil
}

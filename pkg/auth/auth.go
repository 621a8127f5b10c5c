// Package auth provides token authentication against the sentiment records API.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultProfile names the token file used when no profile is given.
const DefaultProfile = "sentiboard"

// DefaultRefreshSkew refreshes access tokens this long before they expire.
const DefaultRefreshSkew = 30 * time.Second

var (
	ErrTokenNotFound      = errors.New("token not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoRefreshToken     = errors.New("no refresh token available")
)

// Token is a JWT access/refresh pair issued by the records API.
type Token struct {
	AccessToken  string    `json:"access_token"`  // #nosec G117 - JSON field for API token, not an exposed secret
	RefreshToken string    `json:"refresh_token"` // #nosec G117 - JSON field for API token, not an exposed secret
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

// ExpiresWithin reports whether the access token expires before now+skew.
// Tokens without a known expiry never expire.
func (t *Token) ExpiresWithin(now time.Time, skew time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(t.ExpiresAt)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Flow performs the username/password login and refresh exchanges.
type Flow struct {
	baseURL    string
	httpClient HTTPClient
}

type FlowOption func(*Flow)

func WithHTTPClient(client HTTPClient) FlowOption {
	return func(f *Flow) { f.httpClient = client }
}

func NewFlow(baseURL string, opts ...FlowOption) *Flow {
	f := &Flow{baseURL: strings.TrimRight(baseURL, "/"), httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"` // #nosec G117 - request body field
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login exchanges credentials for a token pair.
func (f *Flow) Login(ctx context.Context, username, password string) (*Token, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	resp, err := f.post(ctx, "/api/token/", loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return newToken(resp.Access, resp.Refresh), nil
}

// Refresh obtains a new access token. The refresh token is kept unless the server rotates it.
func (f *Flow) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	resp, err := f.post(ctx, "/api/token/refresh/", refreshRequest{Refresh: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if resp.Refresh == "" {
		resp.Refresh = refreshToken
	}
	return newToken(resp.Access, resp.Refresh), nil
}

func (f *Flow) post(ctx context.Context, path string, payload any) (*tokenResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if token.Access == "" {
		return nil, errors.New("response carries no access token")
	}

	return &token, nil
}

func newToken(access, refresh string) *Token {
	return &Token{AccessToken: access, RefreshToken: refresh, ExpiresAt: accessExpiry(access)}
}

// accessExpiry reads the exp claim without verifying the signature; the API verifies it.
func accessExpiry(access string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.UTC()
}

type TokenStorage struct {
	dir string
}

func NewTokenStorage(dir string) *TokenStorage {
	return &TokenStorage{dir: dir}
}

func (s *TokenStorage) path(profile string) string {
	return filepath.Join(s.dir, filepath.Base(profile)+"_token.json")
}

func (s *TokenStorage) Save(profile string, token *Token) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	return os.WriteFile(s.path(profile), data, 0600)
}

func (s *TokenStorage) Load(profile string) (*Token, error) {
	data, err := os.ReadFile(s.path(profile)) // #nosec G304 -- profile is sanitized
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}

// Delete removes a stored token. Deleting a missing token is not an error.
func (s *TokenStorage) Delete(profile string) error {
	if err := os.Remove(s.path(profile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// StoredTokenSource serves access tokens from TokenStorage and refreshes them when they expire.
type StoredTokenSource struct {
	flow    *Flow
	storage *TokenStorage
	profile string
	skew    time.Duration
	now     func() time.Time

	mu sync.Mutex
}

func NewStoredTokenSource(flow *Flow, storage *TokenStorage, profile string) *StoredTokenSource {
	return &StoredTokenSource{
		flow:    flow,
		storage: storage,
		profile: profile,
		skew:    DefaultRefreshSkew,
		now:     time.Now,
	}
}

// AccessToken returns a stored access token, refreshing it first when it is about to expire.
func (s *StoredTokenSource) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.storage.Load(s.profile)
	if err != nil {
		return "", err
	}
	if !token.ExpiresWithin(s.now(), s.skew) {
		return token.AccessToken, nil
	}

	refreshed, err := s.refresh(ctx, token)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// Refresh forces a refresh, for when the API rejects a token that looked valid.
func (s *StoredTokenSource) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.storage.Load(s.profile)
	if err != nil {
		return "", err
	}

	refreshed, err := s.refresh(ctx, token)
	if err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

func (s *StoredTokenSource) refresh(ctx context.Context, token *Token) (*Token, error) {
	refreshed, err := s.flow.Refresh(ctx, token.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.storage.Save(s.profile, refreshed); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}
	return refreshed, nil
}

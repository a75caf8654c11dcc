package deye

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"solar_monitor/internal/config"
	"solar_monitor/internal/logger"
	"solar_monitor/internal/models"
)

const (
	requestTimeout = 15 * time.Second
	// tokenSafetyMargin forces renewal before the provider-reported expiry so
	// a token is never presented within the last minute of its lifetime.
	tokenSafetyMargin = 60 * time.Second
	defaultExpiresIn  = 3600 // seconds, when the login response omits or garbles expiresIn

	// successCode is the provider's "all good" response code. The field is
	// sometimes absent; absence counts as success when the flag is set.
	successCode = "1000000"
)

var (
	// ErrAuthFailed means the login exchange was rejected. This is a
	// configuration problem, not a transient one, so the caller must not retry.
	ErrAuthFailed = errors.New("deye auth failed")
	// ErrNoAccessToken means the login response had no usable token.
	ErrNoAccessToken = errors.New("deye auth response has no accessToken")
)

// Client talks to the Deye Cloud OpenAPI. It owns the access token and
// re-logins transparently when the token is missing, expired, or rejected
// with a 401. Safe for use from multiple goroutines.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	appSecret  string
	email      string
	password   string
	log        *logger.Logger

	mu            sync.Mutex
	accessToken   string
	refreshToken  string
	tokenExpireAt time.Time

	now func() time.Time
}

// New builds a client from the configured credentials. The token is fetched
// lazily on the first authenticated call.
func New(cfg config.Deye, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appID:      cfg.AppID,
		appSecret:  cfg.AppSecret,
		email:      cfg.Email,
		password:   cfg.Password,
		log:        log,
		now:        time.Now,
	}
}

// ListStations returns one page of the account's stations.
func (c *Client) ListStations(ctx context.Context, page, size int) ([]models.Station, error) {
	body, err := c.post(ctx, "/station/list", map[string]any{"page": page, "size": size})
	if err != nil {
		return nil, err
	}

	// The list arrives either at the top level or nested under a data envelope.
	var env struct {
		StationList []models.Station `json:"stationList"`
		Data        struct {
			StationList []models.Station `json:"stationList"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode station list: %w", err)
	}
	if len(env.StationList) > 0 {
		return env.StationList, nil
	}
	return env.Data.StationList, nil
}

// GetLatest returns the most recent telemetry map for a station, unwrapping
// the optional data envelope.
func (c *Client) GetLatest(ctx context.Context, stationID int64) (map[string]any, error) {
	body, err := c.post(ctx, "/station/latest", map[string]any{"stationId": stationID})
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode latest telemetry: %w", err)
	}
	if data, ok := payload["data"].(map[string]any); ok {
		return data, nil
	}
	return payload, nil
}

// statusError carries a non-2xx HTTP response so post can recognize a 401.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("deye api status %d: %s", e.code, e.body)
}

// post performs an authenticated call. On a 401 it discards the token, logs
// in once, and retries the call exactly once; a second 401 propagates.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := c.doAuthed(ctx, path, payload)
	if err == nil {
		return body, nil
	}
	var se *statusError
	if errors.As(err, &se) && se.code == http.StatusUnauthorized {
		c.log.Infow("deye token rejected, re-authenticating", "path", path)
		c.invalidateToken()
		return c.doAuthed(ctx, path, payload)
	}
	return nil, err
}

func (c *Client) doAuthed(ctx context.Context, path string, payload any) ([]byte, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deye request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read deye response %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// ensureToken returns a token that is valid for at least the safety margin,
// logging in when the cached one is missing or stale.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpireAt) {
		return c.accessToken, nil
	}
	if err := c.login(ctx); err != nil {
		return "", err
	}
	return c.accessToken, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.accessToken = ""
	c.tokenExpireAt = time.Time{}
	c.mu.Unlock()
}

type tokenResponse struct {
	Success      bool   `json:"success"`
	Code         string `json:"code"`
	Msg          string `json:"msg"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    any    `json:"expiresIn"` // the provider sends this as a string
}

// login exchanges the account credentials for a bearer token. Callers must
// hold c.mu.
func (c *Client) login(ctx context.Context) error {
	payload := map[string]any{
		"appSecret": c.appSecret,
		"email":     c.email,
		"password":  hashPassword(c.password),
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode login body: %w", err)
	}

	loginURL := c.baseURL + "/account/token?appId=" + url.QueryEscape(c.appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deye login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrAuthFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if !tr.Success || (tr.Code != "" && tr.Code != successCode) {
		return fmt.Errorf("%w: code=%q msg=%q", ErrAuthFailed, tr.Code, tr.Msg)
	}
	if tr.AccessToken == "" {
		return ErrNoAccessToken
	}

	expiresIn := expiresInSeconds(tr.ExpiresIn)

	c.accessToken = tr.AccessToken
	// The provider's refresh grant is not used: renewal is always a fresh
	// password login. The token is kept only for completeness.
	c.refreshToken = tr.RefreshToken
	c.tokenExpireAt = c.now().Add(time.Duration(expiresIn)*time.Second - tokenSafetyMargin)
	c.log.Infow("deye login ok", "expiresIn", expiresIn)
	return nil
}

// hashPassword returns the lower-case hex SHA-256 digest the token endpoint
// expects instead of the raw password.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// expiresInSeconds tolerates the expiresIn field arriving as a JSON string
// or number; anything unparseable falls back to one hour.
func expiresInSeconds(v any) int64 {
	switch x := v.(type) {
	case string:
		if n, err := strconv.ParseInt(x, 10, 64); err == nil {
			return n
		}
	case float64:
		return int64(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
	}
	return defaultExpiresIn
}

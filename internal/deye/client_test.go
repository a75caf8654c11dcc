package deye

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"solar_monitor/internal/config"
	"solar_monitor/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// apiServer is a scripted Deye Cloud endpoint counting logins and data calls.
type apiServer struct {
	mu          sync.Mutex
	logins      int
	latestCalls int
	listCalls   int

	lastLoginBody map[string]any

	// latestStatus lets a test script per-call status codes; empty means 200.
	latestStatus []int

	stationsBody string
	latestBody   string
}

func (s *apiServer) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/account/token", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.logins++
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.lastLoginBody = body
		s.mu.Unlock()

		if r.URL.Query().Get("appId") != "app-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"code":"1000000","accessToken":"tok-1","refreshToken":"ref-1","expiresIn":"3600"}`))
	})

	mux.HandleFunc("/station/list", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.listCalls++
		s.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s.stationsBody))
	})

	mux.HandleFunc("/station/latest", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.latestCalls++
		n := s.latestCalls
		var status int
		if n <= len(s.latestStatus) {
			status = s.latestStatus[n-1]
		}
		s.mu.Unlock()

		if status != 0 && status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(s.latestBody))
	})

	return mux
}

func (s *apiServer) counts() (logins, latest, list int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins, s.latestCalls, s.listCalls
}

func newTestClient(baseURL string) (*Client, *fakeClock) {
	c := New(config.Deye{
		AppID:     "app-1",
		AppSecret: "secret-1",
		Email:     "user@example.com",
		Password:  "hunter2",
		BaseURL:   baseURL,
	}, logger.Get(logger.InfoLevel))
	clk := &fakeClock{t: time.Unix(1_000_000, 0)}
	c.now = clk.Now
	return c, clk
}

func TestClient_LoginSendsHashedPassword(t *testing.T) {
	api := &apiServer{latestBody: `{"data":{"batterySOC":55}}`}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)

	payload, err := c.GetLatest(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, float64(55), payload["batterySOC"])

	sum := sha256.Sum256([]byte("hunter2"))
	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, hex.EncodeToString(sum[:]), api.lastLoginBody["password"])
	assert.Equal(t, "secret-1", api.lastLoginBody["appSecret"])
	assert.Equal(t, "user@example.com", api.lastLoginBody["email"])
}

func TestClient_TokenReusedUntilSafetyMargin(t *testing.T) {
	api := &apiServer{latestBody: `{"batterySOC":50}`}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, clk := newTestClient(srv.URL)
	ctx := context.Background()

	_, err := c.GetLatest(ctx, 7)
	require.NoError(t, err)
	logins, _, _ := api.counts()
	require.Equal(t, 1, logins)

	// expiresIn=3600 with a 60s margin: valid strictly before T+3540.
	clk.Advance(3539 * time.Second)
	_, err = c.GetLatest(ctx, 7)
	require.NoError(t, err)
	logins, _, _ = api.counts()
	assert.Equal(t, 1, logins, "call before the safety margin must not re-login")

	clk.Advance(1 * time.Second) // now exactly T+3540
	_, err = c.GetLatest(ctx, 7)
	require.NoError(t, err)
	logins, _, _ = api.counts()
	assert.Equal(t, 2, logins, "call at the safety margin boundary must re-login")
}

func TestClient_RetriesOnceAfter401(t *testing.T) {
	api := &apiServer{
		latestBody:   `{"batterySOC":33}`,
		latestStatus: []int{http.StatusUnauthorized}, // first data call rejected
	}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)

	payload, err := c.GetLatest(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, float64(33), payload["batterySOC"])

	logins, latest, _ := api.counts()
	assert.Equal(t, 2, logins, "401 must trigger exactly one re-login")
	assert.Equal(t, 2, latest, "original call retried exactly once")
}

func TestClient_SecondUnauthorizedIsHardFailure(t *testing.T) {
	api := &apiServer{
		latestBody:   `{}`,
		latestStatus: []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized},
	}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)

	_, err := c.GetLatest(context.Background(), 7)
	require.Error(t, err)

	logins, latest, _ := api.counts()
	assert.Equal(t, 2, logins)
	assert.Equal(t, 2, latest, "no third attempt after a second 401")
}

func TestClient_LoginFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "success flag missing",
			body:    `{"code":"1000000","accessToken":"tok-1"}`,
			wantErr: ErrAuthFailed,
		},
		{
			name:    "error code",
			body:    `{"success":true,"code":"2000001","msg":"bad credentials"}`,
			wantErr: ErrAuthFailed,
		},
		{
			name:    "no access token",
			body:    `{"success":true,"code":"1000000"}`,
			wantErr: ErrNoAccessToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := newTestClient(srv.URL)
			_, err := c.GetLatest(context.Background(), 7)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_ListStationsEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"top level", `{"stationList":[{"id":11,"name":"roof"},{"id":12,"name":"garage"}]}`},
		{"data envelope", `{"data":{"stationList":[{"id":11,"name":"roof"},{"id":12,"name":"garage"}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &apiServer{stationsBody: tt.body}
			srv := httptest.NewServer(api.handler(t))
			defer srv.Close()

			c, _ := newTestClient(srv.URL)
			stations, err := c.ListStations(context.Background(), 1, 10)
			require.NoError(t, err)
			require.Len(t, stations, 2)
			assert.Equal(t, int64(11), stations[0].ID)
			assert.Equal(t, "roof", stations[0].Name)
		})
	}
}

func TestClient_GetLatestUnwrapsDataEnvelope(t *testing.T) {
	api := &apiServer{latestBody: `{"data":{"batterySOC":21,"generationPower":1200.5}}`}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c, _ := newTestClient(srv.URL)
	payload, err := c.GetLatest(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, float64(21), payload["batterySOC"])
	assert.Equal(t, 1200.5, payload["generationPower"])
}

func TestExpiresInSeconds(t *testing.T) {
	assert.Equal(t, int64(5183999), expiresInSeconds("5183999"))
	assert.Equal(t, int64(7200), expiresInSeconds(float64(7200)))
	assert.Equal(t, int64(defaultExpiresIn), expiresInSeconds(nil))
	assert.Equal(t, int64(defaultExpiresIn), expiresInSeconds("not-a-number"))
}

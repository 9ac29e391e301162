package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironcycle/ironcycle/internal/logging"
	"github.com/ironcycle/ironcycle/internal/testhelpers"
)

const (
	testTimeout     = 10 * time.Second
	readyTimeout    = 30 * time.Second
	readyPollDelay  = 250 * time.Millisecond
	concurrentUsers = 3
)

// unsafeCookieJar keeps Secure session cookies usable over plain HTTP so
// the smoke test can run against a localhost server.
type unsafeCookieJar struct {
	jar *cookiejar.Jar
}

func (j *unsafeCookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	for _, c := range cookies {
		c.Secure = false
	}
	j.jar.SetCookies(u, cookies)
}

func (j *unsafeCookieJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// apiClient is a cookie-carrying JSON client bound to one session.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) (*apiClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Jar: &unsafeCookieJar{jar: jar}, Timeout: testTimeout},
	}, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, payload, nil
}

func (c *apiClient) expect(ctx context.Context, method, path string, body any, wantStatus int) error {
	status, payload, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status != wantStatus {
		return fmt.Errorf("%s %s: status %d, want %d, body %s", method, path, status, wantStatus, payload)
	}
	return nil
}

func waitForReady(ctx context.Context, baseURL string) error {
	client, err := newAPIClient(baseURL)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(readyTimeout)
	for time.Now().Before(deadline) {
		status, _, err := client.do(ctx, http.MethodGet, "/api/healthy", nil)
		if err == nil && status == http.StatusOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for ready: %w", ctx.Err())
		case <-time.After(readyPollDelay):
		}
	}
	return fmt.Errorf("server not ready within %s", readyTimeout)
}

// testAuthScenario registers a fresh account and exercises the session
// lifecycle plus an authenticated read.
func testAuthScenario(ctx context.Context, baseURL string, userIndex int) error {
	ctx, cancel := context.WithTimeout(ctx, testTimeout)
	defer cancel()

	client, err := newAPIClient(baseURL)
	if err != nil {
		return err
	}

	email := fmt.Sprintf("smoketest-%d-%d@example.com", time.Now().UnixNano(), userIndex)
	credentials := map[string]any{"email": email, "password": "smoke test password"}

	register := map[string]any{"email": email, "password": "smoke test password", "first_name": "Smoke"}
	if err = client.expect(ctx, http.MethodPost, "/api/auth/register", register, http.StatusCreated); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	if err = client.expect(ctx, http.MethodGet, "/api/preferences", nil, http.StatusOK); err != nil {
		return fmt.Errorf("read preferences: %w", err)
	}
	if err = client.expect(ctx, http.MethodPost, "/api/auth/logout", nil, http.StatusNoContent); err != nil {
		return fmt.Errorf("logout user: %w", err)
	}
	if err = client.expect(ctx, http.MethodGet, "/api/auth/me", nil, http.StatusUnauthorized); err != nil {
		return fmt.Errorf("check logged-out session: %w", err)
	}
	if err = client.expect(ctx, http.MethodPost, "/api/auth/login", credentials, http.StatusOK); err != nil {
		return fmt.Errorf("login user: %w", err)
	}
	if err = client.expect(ctx, http.MethodGet, "/api/auth/me", nil, http.StatusOK); err != nil {
		return fmt.Errorf("check logged-in session: %w", err)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if err := waitForReady(ctx, url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for i := range concurrentUsers {
		group.Go(func() error {
			return testAuthScenario(groupCtx, url, i)
		})
	}
	if err := group.Wait(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing auth", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}

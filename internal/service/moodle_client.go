package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rmn-lab/roster-api/pkg/config"
)

// MoodleClient calls the LMS auth_userkey webservice to mint one-shot
// login URLs for identified students.
type MoodleClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewMoodleClient constructs a MoodleClient. A zero timeout falls back
// to ten seconds so a hung LMS cannot stall kiosk logins forever.
func NewMoodleClient(cfg config.MoodleConfig) *MoodleClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MoodleClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the LMS endpoint is set up at all.
func (c *MoodleClient) Configured() bool {
	return c.baseURL != "" && c.token != ""
}

type moodleLoginReply struct {
	LoginURL  string `json:"loginurl"`
	Exception string `json:"exception"`
	Message   string `json:"message"`
}

// LoginURL requests a single-use login URL for the user's email. wantsURL
// is the page the browser should land on after the LMS session is set.
func (c *MoodleClient) LoginURL(ctx context.Context, email, wantsURL string) (string, error) {
	form := url.Values{}
	form.Set("wstoken", c.token)
	form.Set("wsfunction", "auth_userkey_request_login_url")
	form.Set("moodlewsrestformat", "json")
	form.Set("user[email]", email)

	endpoint := c.baseURL + "/webservice/rest/server.php"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build login url request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call login url webservice: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login url webservice returned %d", resp.StatusCode)
	}
	var reply moodleLoginReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("decode login url reply: %w", err)
	}
	if reply.Exception != "" {
		return "", fmt.Errorf("login url webservice: %s", reply.Message)
	}
	if reply.LoginURL == "" {
		return "", fmt.Errorf("login url webservice returned no url")
	}

	loginURL := reply.LoginURL
	if wantsURL != "" {
		sep := "?"
		if strings.Contains(loginURL, "?") {
			sep = "&"
		}
		loginURL += sep + "wantsurl=" + url.QueryEscape(wantsURL)
	}
	return loginURL, nil
}

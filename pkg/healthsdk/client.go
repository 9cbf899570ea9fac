package healthsdk

import (
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the HealthMate API. It covers the public
// endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new HealthMate API client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewSession wraps an already issued bearer token.
func (c *SDKClient) NewSession(token, accountID string) *Session {
	return &Session{client: c, token: token, accountID: accountID}
}

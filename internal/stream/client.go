package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const apiBaseURL = "https://chat.stream-io-api.com"

// Provider is the chat/video collaborator boundary. All calls are
// best-effort from the caller's point of view: failures are logged and
// swallowed, never propagated to the client.
type Provider interface {
	UpsertUser(ctx context.Context, id, name, image string) error
	CreateToken(userID string) (string, error)
	EnsureChannel(ctx context.Context, channelID, name, image string, memberIDs []string) error
	AddChannelMembers(ctx context.Context, channelID string, memberIDs []string) error
	RemoveChannelMembers(ctx context.Context, channelID string, memberIDs []string) error
}

// Client talks to the Stream Chat REST API. Server-side requests carry a
// JWT signed with the API secret.
type Client struct {
	apiKey      string
	apiSecret   []byte
	serverToken string
	httpClient  *http.Client
	configured  bool
}

func NewClient(apiKey, apiSecret string) (*Client, error) {
	c := &Client{
		apiKey:     apiKey,
		apiSecret:  []byte(apiSecret),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if apiKey == "" || apiSecret == "" {
		return c, nil
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"server": true})
	signed, err := token.SignedString(c.apiSecret)
	if err != nil {
		return nil, err
	}
	c.serverToken = signed
	c.configured = true
	return c, nil
}

func (c *Client) IsConfigured() bool { return c.configured }

// CreateToken mints a client token for userID, used by the frontend to
// connect to the chat provider.
func (c *Client) CreateToken(userID string) (string, error) {
	if !c.configured {
		return "", errors.New("stream client not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID})
	return token.SignedString(c.apiSecret)
}

// UpsertUser creates or updates the provider-side user record.
func (c *Client) UpsertUser(ctx context.Context, id, name, image string) error {
	body := map[string]interface{}{
		"users": map[string]interface{}{
			id: map[string]string{"id": id, "name": name, "image": image},
		},
	}
	return c.post(ctx, "/users", body)
}

// EnsureChannel creates the messaging channel if needed and makes sure the
// given members are present.
func (c *Client) EnsureChannel(ctx context.Context, channelID, name, image string, memberIDs []string) error {
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"name":    name,
			"image":   image,
			"members": memberIDs,
		},
	}
	if err := c.post(ctx, "/channels/messaging/"+channelID+"/query", body); err != nil {
		return err
	}
	if len(memberIDs) > 0 {
		return c.AddChannelMembers(ctx, channelID, memberIDs)
	}
	return nil
}

func (c *Client) AddChannelMembers(ctx context.Context, channelID string, memberIDs []string) error {
	return c.post(ctx, "/channels/messaging/"+channelID, map[string]interface{}{
		"add_members": memberIDs,
	})
}

func (c *Client) RemoveChannelMembers(ctx context.Context, channelID string, memberIDs []string) error {
	return c.post(ctx, "/channels/messaging/"+channelID, map[string]interface{}{
		"remove_members": memberIDs,
	})
}

func (c *Client) post(ctx context.Context, path string, body interface{}) error {
	if !c.configured {
		return errors.New("stream client not configured")
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal stream request: %w", err)
	}
	url := fmt.Sprintf("%s%s?api_key=%s", apiBaseURL, path, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.serverToken)
	req.Header.Set("Stream-Auth-Type", "jwt")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("stream API error: status %d, body: %v", resp.StatusCode, errBody)
	}
	return nil
}

// GroupChannelID maps a group to its provider channel.
func GroupChannelID(groupID string) string {
	return "group-" + groupID
}

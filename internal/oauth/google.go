package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is what Google hands back about the authenticated user.
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Google drives the authorization-code flow against Google's OAuth
// endpoints.
type Google struct {
	cfg        *oauth2.Config
	configured bool
}

func NewGoogle(clientID, clientSecret, callbackURL string) *Google {
	g := &Google{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
	g.configured = clientID != "" && clientSecret != ""
	return g
}

func (g *Google) IsConfigured() bool { return g.configured }

// AuthURL returns the consent-screen URL for the given anti-CSRF state.
func (g *Google) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// Exchange trades the callback code for the user's profile.
func (g *Google) Exchange(ctx context.Context, code string) (*Profile, error) {
	if !g.configured {
		return nil, errors.New("google oauth not configured")
	}
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	client := g.cfg.Client(ctx, token)
	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.ID == "" {
		return nil, errors.New("userinfo missing id")
	}
	return &profile, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/rohits-web03/otadash/internal/auth"
	"github.com/rohits-web03/otadash/internal/config"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// NewGoogleOAuthConfig returns the Google sign-in config, or nil when no client is configured.
func NewGoogleOAuthConfig(cfg config.GoogleConfig) *oauth2.Config {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// FetchGoogleProfile exchanges an authorization code and reads the Google user profile.
func FetchGoogleProfile(ctx context.Context, oc *oauth2.Config, code string) (auth.Profile, error) {
	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("code exchange failed: %w", err)
	}

	resp, err := oc.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return auth.Profile{}, fmt.Errorf("user info returned %d", resp.StatusCode)
	}

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return auth.Profile{}, fmt.Errorf("failed to parse user info: %w", err)
	}
	return auth.Profile{Email: googleUser.Email, Name: googleUser.Name, Picture: googleUser.Picture}, nil
}

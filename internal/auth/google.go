package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleAuthenticator signs users in through the Google OAuth code flow and
// resolves the token to a userinfo record.
type GoogleAuthenticator struct {
	cfg *oauth2.Config
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func NewGoogle(cfg GoogleConfig) *GoogleAuthenticator {
	return &GoogleAuthenticator{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oauth2api.UserinfoEmailScope, oauth2api.UserinfoProfileScope},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *GoogleAuthenticator) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for a token and fetches the
// userinfo record behind it.
func (g *GoogleAuthenticator) Exchange(ctx context.Context, code string) (Identity, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(g.cfg.TokenSource(ctx, token)))
	if err != nil {
		return Identity{}, fmt.Errorf("create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Id == "" {
		return Identity{}, fmt.Errorf("userinfo response missing subject id")
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}

	return Identity{
		UserID:      info.Id,
		DisplayName: name,
		Email:       info.Email,
	}, nil
}

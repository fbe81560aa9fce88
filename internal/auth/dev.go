package auth

import "context"

// DevAuthenticator short-circuits the code flow with a fixed local account.
// AuthCodeURL points straight back at the callback so the handler path is
// the same as in google mode.
type DevAuthenticator struct{}

const devCode = "dev"

func NewDev() *DevAuthenticator {
	return &DevAuthenticator{}
}

func (d *DevAuthenticator) AuthCodeURL(state string) string {
	return "/auth/callback?code=" + devCode + "&state=" + state
}

func (d *DevAuthenticator) Exchange(_ context.Context, code string) (Identity, error) {
	return Identity{
		UserID:      "dev-user",
		DisplayName: "Dev User",
		Email:       "dev@localhost",
	}, nil
}

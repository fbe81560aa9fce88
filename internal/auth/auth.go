// Package auth holds the sign-in flow and the session registry. Identities
// come from Google OAuth in production and from a fixed local account in dev
// mode, so the rest of the app only ever sees an Identity.
package auth

import "context"

// Identity is the signed-in user as the rest of the app sees it.
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
}

// Authenticator runs the sign-in code flow. AuthCodeURL returns where to
// send the browser; Exchange turns the returned code into an Identity.
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (Identity, error)
}

package oauth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// BearerClient returns an HTTP client that sends token as a Bearer
// credential, layered over base.
func BearerClient(ctx context.Context, base *http.Client, token string) *http.Client {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}

// Package auth provides the credentials attached to upstream requests.
package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/n0madic/go-oaiadapter/internal/config"
)

// NewTokenSource returns the token source for the configured upstream.
//
// When an OAuth token URL is configured, tokens come from the client
// credentials grant and are refreshed before they expire. Otherwise the
// static API key is used as a bearer token.
func NewTokenSource(ctx context.Context, up config.UpstreamConfig) (oauth2.TokenSource, error) {
	if up.UsesOAuth() {
		cc := &clientcredentials.Config{
			ClientID:     up.OAuthClientID,
			ClientSecret: up.OAuthClientSecret,
			TokenURL:     up.OAuthTokenURL,
			Scopes:       up.OAuthScopes,
			AuthStyle:    oauth2.AuthStyleAutoDetect,
		}
		return cc.TokenSource(ctx), nil
	}
	if up.APIKey == "" {
		return nil, ErrNoCredentials
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: up.APIKey, TokenType: "Bearer"}), nil
}

// NewHTTPClient wraps base so that every request carries a bearer token from
// ts. A nil base uses http.DefaultTransport.
func NewHTTPClient(ts oauth2.TokenSource, base *http.Client) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	client := &http.Client{}
	if base != nil {
		*client = *base
		if base.Transport != nil {
			transport = base.Transport
		}
	}
	client.Transport = &oauth2.Transport{Source: ts, Base: transport}
	return client
}

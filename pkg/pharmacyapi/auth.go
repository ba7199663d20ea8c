package pharmacyapi

import (
	"context"
	"net/http"
)

// SignIn exchanges credentials for the user and its access token.
func (c *Client) SignIn(ctx context.Context, in SignInInput) (*User, error) {
	return c.authenticate(ctx, "/sign-in", in)
}

// SignUp creates a customer account and signs it in.
func (c *Client) SignUp(ctx context.Context, in SignUpInput) (*User, error) {
	return c.authenticate(ctx, "/sign-up", in)
}

// Me returns the user owning the current access token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	req := request{method: http.MethodGet, path: "/me", envelopeOptional: true}
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// the auth endpoints may answer with the bare user instead of {"data": user}
func (c *Client) authenticate(ctx context.Context, path string, payload any) (*User, error) {
	req, err := jsonRequest(http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	req.envelopeOptional = true
	var out User
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

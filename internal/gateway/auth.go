package gateway

import (
	"context"
	"fmt"
	"net/http"
)

const loginPath = "/api/v1/auth/login"

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token and stores it in the session.
func (g *Gateway) Login(ctx context.Context, email, password string) error {
	const op = "login"
	body := map[string]string{"email": email, "password": password}
	resp, err := g.send(op, http.MethodPost, loginPath, g.anonymous(ctx).SetBody(body))
	if err != nil {
		return err
	}
	var out loginResponse
	if err := decode(op, resp, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return ErrEmptyToken
	}
	if g.session == nil {
		return &AuthenticationError{Op: op}
	}
	if err := g.session.SetToken(ctx, out.Token); err != nil {
		return fmt.Errorf("%s: persist token: %w", op, err)
	}
	return nil
}

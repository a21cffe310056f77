package client

import (
	"context"

	"github.com/trezcool/chikoro/core/user"
)

type (
	TokenResponse struct {
		AccessToken string       `json:"access_token"`
		TokenType   string       `json:"token_type"`
		User        user.Profile `json:"user"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

type AuthAPI struct{ c *Client }

// Login only calls the API; Client.Login also keeps the session.
func (api AuthAPI) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var res TokenResponse
	err := api.c.post(ctx, "/auth/login", map[string]string{"email": email, "password": password}, &res)
	return res, err
}

func (api AuthAPI) Me(ctx context.Context) (user.Profile, error) {
	var prof user.Profile
	err := api.c.get(ctx, "/auth/me", nil, &prof)
	return prof, err
}

func (api AuthAPI) RefreshToken(ctx context.Context) (TokenResponse, error) {
	var res TokenResponse
	err := api.c.post(ctx, "/auth/token-refresh", nil, &res)
	return res, err
}

func (api AuthAPI) RequestPasswordReset(ctx context.Context, email string) (SuccessResponse, error) {
	var res SuccessResponse
	err := api.c.post(ctx, "/auth/password-reset", map[string]string{"email": email}, &res)
	return res, err
}

func (api AuthAPI) ConfirmPasswordReset(ctx context.Context, data user.ResetUserPassword) (SuccessResponse, error) {
	var res SuccessResponse
	err := api.c.post(ctx, "/auth/password-reset-confirm", data, &res)
	return res, err
}

package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// logoutTimeout bounds the best-effort server notification on logout.
const logoutTimeout = 5 * time.Second

// Login submits credentials form-encoded, persists the returned token and returns the raw payload.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp models.LoginResponse
	if err := c.Request(ctx, http.MethodPost, "/auth/login", RequestOptions{Body: form, login: true}, &resp); err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			c.logger.Warn().Str("username", username).Msg("Login rejected")
		}
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &RequestError{StatusCode: http.StatusOK, Message: "login response did not include an access token"}
	}

	c.setSession(ctx, resp.AccessToken)
	c.logger.Info().Str("username", username).Msg("Logged in")
	return &resp, nil
}

// Logout notifies the server on a best-effort basis and always clears local session state.
func (c *Client) Logout(ctx context.Context) {
	if c.Authenticated() {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		if err := c.Request(notifyCtx, http.MethodPost, "/auth/logout", RequestOptions{noExpiry: true}, nil); err != nil {
			c.logger.Debug().Str("error", err.Error()).Msg("Server logout failed, clearing local session anyway")
		}
		cancel()
	}
	c.clearSession(context.WithoutCancel(ctx))
	c.logger.Info().Msg("Logged out")
}

// Me returns the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.Request(ctx, http.MethodGet, "/auth/me", RequestOptions{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

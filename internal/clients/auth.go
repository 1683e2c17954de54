package clients

import (
	"context"
	"net/http"
)

// AuthClient only talks to the API. Storing the returned token is the
// session's job.
type AuthClient struct{ api *API }

func NewAuthClient(api *API) *AuthClient { return &AuthClient{api: api} }

func (ac *AuthClient) Login(ctx context.Context, in LoginRequest) (AuthResult, error) {
	return fetch[AuthResult](ctx, ac.api, request{method: http.MethodPost, path: loginPath, body: in})
}

func (ac *AuthClient) Register(ctx context.Context, in RegisterRequest) (AuthResult, error) {
	return fetch[AuthResult](ctx, ac.api, request{method: http.MethodPost, path: "/auth/register", body: in})
}

package auth

import (
	"context"
	"fmt"

	"postline/internal/transport"
)

// Authenticator exchanges username/password credentials for a bearer token.
type Authenticator struct {
	data *transport.Client
	path string
}

// NewAuthenticator returns an Authenticator posting to the given login path.
func NewAuthenticator(data *transport.Client, loginPath string) *Authenticator {
	return &Authenticator{data: data, path: loginPath}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login authenticates and returns the token from the response body. The
// caller hands the token to Manager.SetCredential to establish the session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := transport.Save[loginResponse](ctx, a.data, a.path, loginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return resp.Token, nil
}

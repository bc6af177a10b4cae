package auth

import (
	"context"
	"net/http"
	"strings"
)

// Identity is what the identity provider resolved for a request.
type Identity struct {
	Subject  string `json:"subject"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Provider resolves the caller of a request. It returns nil, nil when the
// request carries no credentials and an error when they are present but invalid.
type Provider interface {
	Resolve(r *http.Request) (*Identity, error)
}

// JWTProvider accepts HS256 bearer tokens, read from the Authorization header
// or, for websocket upgrades, the auth_token query parameter.
type JWTProvider struct {
	secret []byte
	issuer string
}

func NewJWTProvider(secret, issuer string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), issuer: issuer}
}

func (p *JWTProvider) Resolve(r *http.Request) (*Identity, error) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		return nil, nil
	}
	claims, err := ValidateJWTAndGetClaims(tokenString, p.secret, p.issuer)
	if err != nil {
		return nil, err
	}
	return &Identity{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		ImageURL: claims.Picture,
	}, nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("auth_token")
}

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity stored by WithIdentity, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

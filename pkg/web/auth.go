package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/tracksdev/tracks/pkg/backend"
	"github.com/tracksdev/tracks/pkg/config"
	"github.com/tracksdev/tracks/pkg/jwk"
	"github.com/tracksdev/tracks/pkg/proto"
)

// sessionDuration is how long a login-issued JWT stays valid.
const sessionDuration = 72 * time.Hour

// ErrInvalidToken is returned when a token is invalid.
var ErrInvalidToken = errors.New("invalid token")

// publicRoutes don't require authentication.
var publicRoutes = map[string]struct{}{
	"/auth/register":         {},
	"/auth/login":            {},
	"/.well-known/jwks.json": {},
	"/health":                {},
	"/livez":                 {},
	"/readyz":                {},
}

// NewAuthMiddleware returns a middleware that authenticates every request
// outside the public routes and attaches the user to the request context.
func NewAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := publicRoutes[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := authenticate(r)
		if err != nil {
			renderJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}

		ctx := proto.WithUserContext(r.Context(), &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate authenticates the user from the request. Bearer tokens are
// either access tokens (trk_ prefix) or login JWTs.
func authenticate(r *http.Request) (proto.User, error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	header := r.Header.Get("Authorization")
	if header == "" {
		logger.Debug("no authorization header")
		return proto.User{}, proto.ErrUnauthorized
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return proto.User{}, errors.New("invalid authorization header")
	}

	be := backend.FromContext(ctx)
	token := parts[1]

	if strings.HasPrefix(token, "trk_") {
		return be.UserFromAccessToken(ctx, token)
	}

	claims, err := getJWTClaims(ctx, token)
	if err != nil {
		return proto.User{}, err
	}

	sub := strings.SplitN(claims.Subject, "#", 2)
	if len(sub) != 2 {
		logger.Error("invalid jwt subject", "subject", claims.Subject)
		return proto.User{}, ErrInvalidToken
	}

	user, err := be.UserByUsername(ctx, sub[0])
	if err != nil {
		logger.Error("failed to get user", "err", err)
		return proto.User{}, err
	}

	expectedSubject := fmt.Sprintf("%s#%d", user.Username, user.ID)
	if expectedSubject != claims.Subject {
		logger.Error("invalid jwt subject", "subject", claims.Subject, "expected", expectedSubject)
		return proto.User{}, ErrInvalidToken
	}

	return user, nil
}

func getJWTClaims(ctx context.Context, bearer string) (*jwt.RegisteredClaims, error) {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("http.auth")
	kp, err := jwk.NewPair(cfg)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(bearer, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, errors.New("invalid signing method")
		}

		return kp.JWK().Key, nil
	},
		jwt.WithIssuer(cfg.HTTP.PublicURL),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		logger.Error("failed to parse jwt", "err", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !token.Valid || !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// newSession signs a JWT for the user.
func newSession(ctx context.Context, user proto.User) (string, time.Time, error) {
	cfg := config.FromContext(ctx)
	kp, err := jwk.NewPair(cfg)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(sessionDuration)
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%s#%d", user.Username, user.ID),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    cfg.HTTP.PublicURL,
	}

	token := jwt.NewWithClaims(jwk.SigningMethod, claims)
	token.Header["kid"] = kp.JWK().KeyID
	signed, err := token.SignedString(kp.PrivateKey())
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// AuthController registers the auth routes.
func AuthController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/auth/register", postRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", postLogin).Methods(http.MethodPost)
	r.HandleFunc("/.well-known/jwks.json", getJWKS).Methods(http.MethodGet)
	r.HandleFunc("/auth/transfer-ownership", postTransferOwnership).Methods(http.MethodPost)
	r.HandleFunc("/auth/delete-account", deleteAccount).Methods(http.MethodDelete)
	r.HandleFunc("/auth/tokens", listTokens).Methods(http.MethodGet)
	r.HandleFunc("/auth/tokens", postToken).Methods(http.MethodPost)
	r.HandleFunc("/auth/tokens/{id}", deleteToken).Methods(http.MethodDelete)
}

type sessionResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      proto.User `json:"user"`
}

func postRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var req struct {
		Username    string `json:"username"`
		DisplayName string `json:"displayName"`
		Email       string `json:"email"`
		Password    string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	if req.Password == "" {
		renderError(w, r, errors.Join(proto.ErrInvalidInput, errors.New("password cannot be empty")))
		return
	}

	user, err := be.CreateUser(ctx, req.Username, req.DisplayName, req.Email, req.Password, false)
	if err != nil {
		renderError(w, r, err)
		return
	}

	token, expiresAt, err := newSession(ctx, user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, sessionResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

func postLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	user, err := be.VerifyUserPassword(ctx, req.Username, req.Password)
	if err != nil {
		renderError(w, r, err)
		return
	}

	token, expiresAt, err := newSession(ctx, user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, sessionResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

func getJWKS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := config.FromContext(ctx)

	kp, err := jwk.NewPair(cfg)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, jose.JSONWebKeySet{Keys: []jose.JSONWebKey{kp.JWK()}})
}

func postTransferOwnership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	var req struct {
		OrganizationID int64 `json:"organizationId"`
		NewOwnerID     int64 `json:"newOwnerId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}

	if err := be.TransferOwnership(ctx, *user, req.OrganizationID, req.NewOwnerID); err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func deleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	if err := be.DeleteAccount(ctx, *user); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func listTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	tokens, err := be.ListAccessTokens(ctx, *user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, tokens)
}

func postToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	var req struct {
		Name      string     `json:"name"`
		ExpiresAt *time.Time `json:"expiresAt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		renderError(w, r, err)
		return
	}
	if req.Name == "" {
		renderError(w, r, errors.Join(proto.ErrInvalidInput, errors.New("name cannot be empty")))
		return
	}

	var expiresAt time.Time
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
	}

	token, err := be.CreateAccessToken(ctx, *user, req.Name, expiresAt)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func deleteToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		renderError(w, r, errors.Join(proto.ErrInvalidInput, err))
		return
	}

	if err := be.DeleteAccessToken(ctx, *user, id); err != nil {
		renderError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rohits-web03/stashbox/internal/config"
	"github.com/rohits-web03/stashbox/internal/models"
	"github.com/rohits-web03/stashbox/internal/repositories"
	"github.com/rohits-web03/stashbox/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

const (
	FlowLogin    = "login"
	FlowRegister = "register"
)

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// GoogleAuth signs users in with their Google account. Accounts are matched
// by e-mail; the first sign-in creates a user without a password.
type GoogleAuth struct {
	oauth       *oauth2.Config
	users       *repositories.UserRepository
	userInfoURL string
	log         *zap.Logger
}

func NewGoogleAuth(cfg config.GoogleConfig, users *repositories.UserRepository, log *zap.Logger) *GoogleAuth {
	return &GoogleAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		users:       users,
		userInfoURL: googleUserInfoURL,
		log:         log,
	}
}

// AuthCodeURL returns the consent page URL and the state it embeds.
func (g *GoogleAuth) AuthCodeURL(flow string) (authURL, state string, err error) {
	if flow != FlowRegister {
		flow = FlowLogin
	}
	state, err = GenerateState(map[string]string{"flow": flow})
	if err != nil {
		return "", "", err
	}
	return g.oauth.AuthCodeURL(state), state, nil
}

// Complete exchanges the authorization code and returns the matching user,
// creating one on first sign-in.
func (g *GoogleAuth) Complete(ctx context.Context, code string) (*models.User, error) {
	if code == "" {
		return nil, newError(ErrInvalidInput, "Missing authorization code", nil)
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, newError(ErrInvalidCredentials, "Code exchange failed", err)
	}

	gu, err := g.fetchUser(ctx, token)
	if err != nil {
		return nil, newError(ErrStorageFailure, "Failed to get user info", err)
	}
	if gu.Email == "" {
		return nil, newError(ErrInvalidCredentials, "Google account has no e-mail address", nil)
	}

	u, err := g.users.GetByEmail(ctx, gu.Email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(ErrStorageFailure, "Database error", err)
	}
	return g.createUser(ctx, gu)
}

func (g *GoogleAuth) fetchUser(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %s", resp.Status)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	return &gu, nil
}

func (g *GoogleAuth) createUser(ctx context.Context, gu *GoogleUser) (*models.User, error) {
	base := usernameFromEmail(gu.Email)
	email := gu.Email

	candidate := base
	for attempt := 0; attempt < 5; attempt++ {
		if attempt > 0 {
			suffix, err := utils.RandomSuffix(4)
			if err != nil {
				return nil, newError(ErrStorageFailure, "Failed to allocate username", err)
			}
			candidate = truncate(base, MaxUsernameLen-5) + "_" + suffix
		}

		taken, err := g.users.UsernameExists(ctx, candidate)
		if err != nil {
			return nil, newError(ErrStorageFailure, "Database error", err)
		}
		if taken {
			continue
		}

		u := &models.User{Username: candidate, Email: &email}
		err = g.users.Create(ctx, u)
		if err == nil {
			g.log.Info("user registered via google", zap.String("username", candidate), zap.String("userId", u.ID.String()))
			return u, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrStorageFailure, "Failed to create user", err)
		}
		// Lost a race: either the e-mail or the username was just taken.
		if existing, lookupErr := g.users.GetByEmail(ctx, email); lookupErr == nil {
			return existing, nil
		}
	}
	return nil, newError(ErrAlreadyExists, "Could not allocate a username", nil)
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	name := truncate(b.String(), MaxUsernameLen)
	if name == "" {
		name = "user"
	}
	return name
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/mehul-pande/accountgate/internal/config"
	"github.com/mehul-pande/accountgate/internal/domain/user"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// OAuth holds the provider configurations for the issuer. It is built
// once at startup and shared across requests; oauth2.Config is safe for
// concurrent use.
type OAuth struct {
	configs map[string]*oauth2.Config
	client  *http.Client
}

// NewOAuth builds provider configs from credentials. Providers without
// a client id are left unregistered and their routes are rejected.
func NewOAuth(cfg config.OAuthConfig) *OAuth {
	o := &OAuth{
		configs: make(map[string]*oauth2.Config),
		client:  http.DefaultClient,
	}

	if cfg.Google.ClientID != "" {
		o.configs[ProviderGoogle] = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	if cfg.GitHub.ClientID != "" {
		o.configs[ProviderGitHub] = &oauth2.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURL:  cfg.GitHub.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}
	}

	return o
}

// AuthCodeURL returns the provider consent URL for the given state.
func (o *OAuth) AuthCodeURL(provider, state string) (string, error) {
	conf := o.configs[provider]
	if conf == nil {
		return "", fmt.Errorf("oauth provider %q not configured", provider)
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange trades an authorization code for the provider's identity.
func (o *OAuth) Exchange(ctx context.Context, provider, code string) (user.Identity, error) {
	conf := o.configs[provider]
	if conf == nil {
		return user.Identity{}, fmt.Errorf("oauth provider %q not configured", provider)
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return user.Identity{}, fmt.Errorf("oauth exchange: %w", err)
	}

	return o.fetchIdentity(ctx, provider, conf, tok)
}

func (o *OAuth) fetchIdentity(ctx context.Context, provider string, conf *oauth2.Config, tok *oauth2.Token) (user.Identity, error) {
	client := conf.Client(ctx, tok)

	switch provider {
	case ProviderGoogle:
		var info struct {
			Email   string `json:"email"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := getJSON(client, "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
			return user.Identity{}, err
		}
		if info.Email == "" {
			return user.Identity{}, fmt.Errorf("google userinfo returned no email")
		}
		return user.Identity{
			Email:     info.Email,
			Name:      optional(info.Name),
			AvatarURL: optional(info.Picture),
		}, nil

	case ProviderGitHub:
		var info struct {
			Login     string `json:"login"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			AvatarURL string `json:"avatar_url"`
		}
		if err := getJSON(client, "https://api.github.com/user", &info); err != nil {
			return user.Identity{}, err
		}
		email := info.Email
		if email == "" {
			// The profile email is often private; the emails endpoint
			// carries the verified primary address.
			var emails []struct {
				Email   string `json:"email"`
				Primary bool   `json:"primary"`
			}
			if err := getJSON(client, "https://api.github.com/user/emails", &emails); err != nil {
				return user.Identity{}, err
			}
			for _, e := range emails {
				if e.Primary {
					email = e.Email
					break
				}
			}
		}
		if email == "" {
			return user.Identity{}, fmt.Errorf("github account has no resolvable email")
		}
		name := info.Name
		if name == "" {
			name = info.Login
		}
		return user.Identity{
			Email:     email,
			Name:      optional(name),
			AvatarURL: optional(info.AvatarURL),
		}, nil

	default:
		return user.Identity{}, fmt.Errorf("oauth provider %q not configured", provider)
	}
}

func getJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("userinfo request: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// RandomState generates an opaque state value for the authorize redirect.
func RandomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

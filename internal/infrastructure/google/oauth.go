package google

import (
	"context"
	"fmt"

	"github.com/go-care-nosql/internal/domain"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// UserInfo is the profile Google returns after the consent screen.
type UserInfo struct {
	Name    string
	Email   string
	Picture string
}

// OAuth runs the browser authorization-code flow against Google.
type OAuth struct {
	cfg     *oauth2.Config
	apiOpts []option.ClientOption
}

func NewOAuth(clientID, clientSecret, redirectURL string) *OAuth {
	return &OAuth{cfg: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       []string{oauth2api.OpenIDScope, oauth2api.UserinfoProfileScope, oauth2api.UserinfoEmailScope},
	}}
}

// AuthCodeURL is the consent page the browser is sent to.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// UserInfo exchanges the callback code and reads the signed-in profile.
// An unverified Google email is refused with domain.ErrUnauthorized.
func (o *OAuth) UserInfo(ctx context.Context, code string) (*UserInfo, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange: %w", domain.ErrUnauthorized)
	}
	opts := append([]option.ClientOption{option.WithTokenSource(o.cfg.TokenSource(ctx, tok))}, o.apiOpts...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google userinfo client: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	if info.Email == "" || (info.VerifiedEmail != nil && !*info.VerifiedEmail) {
		return nil, fmt.Errorf("google email not verified: %w", domain.ErrUnauthorized)
	}
	return &UserInfo{Name: info.Name, Email: info.Email, Picture: info.Picture}, nil
}

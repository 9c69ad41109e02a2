package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mattsnow/albumshare/pkg/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

/*
IdentityServicer is the contract the auth handlers use to talk to the
identity provider. The three steps mirror the callback flow: build the
redirect URL, exchange the authorization code, then fetch the signed-in
user. GetUser returns a nil profile with no error when the provider
responds without a usable user.
*/
type IdentityServicer interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUser(ctx context.Context, token *oauth2.Token) (*models.Profile, error)
}

type GoogleIdentityServiceConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// UserInfoURL overrides the Google userinfo endpoint. Tests point this
	// at a local server; leave empty everywhere else.
	UserInfoURL string
}

type GoogleIdentityService struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleIdentityService(config GoogleIdentityServiceConfig) GoogleIdentityService {
	userInfoURL := config.UserInfoURL

	if userInfoURL == "" {
		userInfoURL = defaultUserInfoURL
	}

	return GoogleIdentityService{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

func (s GoogleIdentityService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (s GoogleIdentityService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	var (
		err   error
		token *oauth2.Token
	)

	if token, err = s.config.Exchange(ctx, code); err != nil {
		return nil, fmt.Errorf("error exchanging authorization code: %w", err)
	}

	return token, nil
}

func (s GoogleIdentityService) GetUser(ctx context.Context, token *oauth2.Token) (*models.Profile, error) {
	var (
		err      error
		response *http.Response
	)

	client := s.config.Client(ctx, token)

	if response, err = client.Get(s.userInfoURL); err != nil {
		return nil, fmt.Errorf("error calling userinfo endpoint: %w", err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", response.StatusCode)
	}

	userInfo := struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}{}

	if err = json.NewDecoder(response.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("error decoding userinfo response: %w", err)
	}

	if userInfo.ID == "" {
		return nil, nil
	}

	return &models.Profile{
		ID:    userInfo.ID,
		Email: userInfo.Email,
	}, nil
}

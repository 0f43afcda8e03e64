package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ProviderFacebook はFacebookプロバイダー名。
const ProviderFacebook = "facebook"

const (
	defaultFacebookAuthURL     = "https://www.facebook.com/v19.0/dialog/oauth"
	defaultFacebookTokenURL    = "https://graph.facebook.com/v19.0/oauth/access_token"
	defaultFacebookUserInfoURL = "https://graph.facebook.com/v19.0/me"
)

// FacebookOAuthConfig はFacebook Loginの設定。
type FacebookOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// テスト用にオーバーライド可能なURL
	AuthURL     string
	TokenURL    string
	UserInfoURL string

	HTTPClient *http.Client
}

// FacebookOAuthProvider はFacebook Loginによる認証を提供する。
type FacebookOAuthProvider struct {
	config FacebookOAuthConfig
}

// NewFacebookOAuthProvider はFacebookOAuthProviderを生成する。
func NewFacebookOAuthProvider(config FacebookOAuthConfig) *FacebookOAuthProvider {
	if config.AuthURL == "" {
		config.AuthURL = defaultFacebookAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultFacebookTokenURL
	}
	if config.UserInfoURL == "" {
		config.UserInfoURL = defaultFacebookUserInfoURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = newOAuthHTTPClient()
	}
	return &FacebookOAuthProvider{config: config}
}

// Name はプロバイダー名を返す。
func (p *FacebookOAuthProvider) Name() string {
	return ProviderFacebook
}

// GetLoginURL はFacebookの認証ダイアログURLを生成する。
func (p *FacebookOAuthProvider) GetLoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.config.ClientID},
		"redirect_uri":  {p.config.RedirectURL},
		"response_type": {"code"},
		"scope":         {"public_profile"},
		"state":         {state},
	}
	return p.config.AuthURL + "?" + params.Encode()
}

// facebookUserInfo はGraph APIの/meレスポンス。
type facebookUserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ExchangeCode は認可コードをアクセストークンに交換し、Graph APIからユーザー情報を取得する。
func (p *FacebookOAuthProvider) ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error) {
	accessToken, err := p.exchangeToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	userInfo, err := p.fetchUserInfo(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}

	return &OAuthUserInfo{
		ProviderUserID: userInfo.ID,
		Name:           userInfo.Name,
		Provider:       ProviderFacebook,
	}, nil
}

// exchangeToken はGraph APIのトークンエンドポイントでアクセストークンを取得する。
func (p *FacebookOAuthProvider) exchangeToken(ctx context.Context, code string) (string, error) {
	params := url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.TokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}

	var tokenResp oauthTokenResponse
	if err := doJSON(p.config.HTTPClient, req, &tokenResp); err != nil {
		return "", err
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}
	return tokenResp.AccessToken, nil
}

// fetchUserInfo はアクセストークンで/me?fields=id,nameを取得する。
func (p *FacebookOAuthProvider) fetchUserInfo(ctx context.Context, accessToken string) (*facebookUserInfo, error) {
	params := url.Values{"fields": {"id,name"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.UserInfoURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var userInfo facebookUserInfo
	if err := doJSON(p.config.HTTPClient, req, &userInfo); err != nil {
		return nil, err
	}
	if userInfo.ID == "" {
		return nil, fmt.Errorf("empty id in user info response")
	}
	return &userInfo, nil
}

// compile-time interface check
var _ OAuthProvider = (*FacebookOAuthProvider)(nil)

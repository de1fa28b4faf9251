package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	"github.com/hitoshi/apibase/internal/model"
)

const defaultGraphMeURL = "https://graph.facebook.com/v12.0/me"

// FacebookOAuthConfig はFacebook OAuthプロバイダーの設定。
type FacebookOAuthConfig struct {
	AppID       string
	AppSecret   string
	RedirectURL string

	// テスト用にオーバーライド可能なURL
	AuthURL    string
	TokenURL   string
	GraphMeURL string
}

// FacebookOAuthProvider はFacebook OAuth 2.0による認証を提供する。
// 認可コードフローはgolang.org/x/oauth2に委譲し、プロフィール取得のみ
// Graph APIを直接呼び出す。
type FacebookOAuthProvider struct {
	oauth      *oauth2.Config
	graphMeURL string
}

// NewFacebookOAuthProvider はFacebookOAuthProviderを生成する。
func NewFacebookOAuthProvider(config FacebookOAuthConfig) *FacebookOAuthProvider {
	endpoint := facebook.Endpoint
	if config.AuthURL != "" {
		endpoint.AuthURL = config.AuthURL
	}
	if config.TokenURL != "" {
		endpoint.TokenURL = config.TokenURL
	}

	graphMeURL := config.GraphMeURL
	if graphMeURL == "" {
		graphMeURL = defaultGraphMeURL
	}

	return &FacebookOAuthProvider{
		oauth: &oauth2.Config{
			ClientID:     config.AppID,
			ClientSecret: config.AppSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     endpoint,
		},
		graphMeURL: graphMeURL,
	}
}

// LoginURL はFacebookの同意画面へのリダイレクトURLを生成する。
func (p *FacebookOAuthProvider) LoginURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// facebookProfile はGraph API /me エンドポイントのレスポンス。
type facebookProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// ExchangeCode は認可コードをアクセストークンに交換し、プロフィールを取得する。
// アクセストークンは保持せず、取得したプロフィールのみを返す。
func (p *FacebookOAuthProvider) ExchangeCode(ctx context.Context, code string) (*model.Profile, error) {
	// 1. 認可コードをアクセストークンに交換
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	// 2. アクセストークンでプロフィールを取得
	profile, err := p.fetchProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &model.Profile{
		ID:       profile.ID,
		Name:     profile.Name,
		Email:    profile.Email,
		PhotoURL: profile.Picture.Data.URL,
	}, nil
}

// fetchProfile はアクセストークンでGraph APIからプロフィールを取得する。
func (p *FacebookOAuthProvider) fetchProfile(ctx context.Context, accessToken string) (*facebookProfile, error) {
	url := p.graphMeURL + "?fields=id,name,email,picture"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var profile facebookProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}

	if profile.ID == "" {
		return nil, fmt.Errorf("empty id in profile response")
	}

	return &profile, nil
}

// compile-time interface check
var _ OAuthProvider = (*FacebookOAuthProvider)(nil)

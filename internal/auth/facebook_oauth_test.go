package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFacebookOAuthProvider_LoginURL_ContainsRequiredParams(t *testing.T) {
	provider := NewFacebookOAuthProvider(FacebookOAuthConfig{
		AppID:       "test-app-id",
		RedirectURL: "http://localhost:8080/auth/facebook/callback",
	})

	url := provider.LoginURL("test-state-value")

	if url == "" {
		t.Fatal("expected non-empty URL")
	}

	// 基本的なパラメータの存在を確認
	tests := []struct {
		name     string
		contains string
	}{
		{"client_id", "client_id=test-app-id"},
		{"redirect_uri", "redirect_uri="},
		{"state", "state=test-state-value"},
		{"response_type", "response_type=code"},
		{"scope email", "email"},
		{"scope public_profile", "public_profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(url, tt.contains) {
				t.Errorf("URL should contain %q, got %q", tt.contains, url)
			}
		})
	}
}

func TestFacebookOAuthProvider_LoginURL_DefaultsToFacebookConsentScreen(t *testing.T) {
	provider := NewFacebookOAuthProvider(FacebookOAuthConfig{
		AppID:       "test-app-id",
		RedirectURL: "http://localhost:8080/auth/facebook/callback",
	})

	url := provider.LoginURL("state")

	if !strings.Contains(url, "facebook.com") {
		t.Errorf("URL = %q, should point to the Facebook consent screen", url)
	}
}

func TestFacebookOAuthProvider_ExchangeCode_Success(t *testing.T) {
	// テスト用のHTTPサーバーを立てる
	// Token Endpoint
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenServer.Close()

	// Graph API /me Endpoint
	graphServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Authorizationヘッダーの検証
		authHeader := r.Header.Get("Authorization")
		if authHeader != "Bearer test-access-token" {
			t.Errorf("unexpected Authorization header: %q", authHeader)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// fieldsパラメータの検証
		fields := r.URL.Query().Get("fields")
		if fields != "id,name,email,picture" {
			t.Errorf("fields = %q, want %q", fields, "id,name,email,picture")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "fb-user-12345",
			"name":  "Facebook User",
			"email": "user@example.com",
			"picture": map[string]interface{}{
				"data": map[string]interface{}{
					"url": "https://graph.example.com/photo.jpg",
				},
			},
		})
	}))
	defer graphServer.Close()

	provider := NewFacebookOAuthProvider(FacebookOAuthConfig{
		AppID:       "test-app-id",
		AppSecret:   "test-app-secret",
		RedirectURL: "http://localhost:8080/auth/facebook/callback",
		TokenURL:    tokenServer.URL,
		GraphMeURL:  graphServer.URL,
	})

	ctx := context.Background()
	profile, err := provider.ExchangeCode(ctx, "test-auth-code")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}

	if profile.ID != "fb-user-12345" {
		t.Errorf("ID = %q, want %q", profile.ID, "fb-user-12345")
	}
	if profile.Name != "Facebook User" {
		t.Errorf("Name = %q, want %q", profile.Name, "Facebook User")
	}
	if profile.Email != "user@example.com" {
		t.Errorf("Email = %q, want %q", profile.Email, "user@example.com")
	}
	if profile.PhotoURL != "https://graph.example.com/photo.jpg" {
		t.Errorf("PhotoURL = %q, want %q", profile.PhotoURL, "https://graph.example.com/photo.jpg")
	}
}

func TestFacebookOAuthProvider_ExchangeCode_TokenEndpointError(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "Invalid verification code format."},
		})
	}))
	defer tokenServer.Close()

	provider := NewFacebookOAuthProvider(FacebookOAuthConfig{
		AppID:       "test-app-id",
		AppSecret:   "test-app-secret",
		RedirectURL: "http://localhost:8080/auth/facebook/callback",
		TokenURL:    tokenServer.URL,
	})

	_, err := provider.ExchangeCode(context.Background(), "bad-code")
	if err == nil {
		t.Fatal("expected error for failed token exchange")
	}
}

func TestFacebookOAuthProvider_ExchangeCode_GraphEndpointError(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
		})
	}))
	defer tokenServer.Close()

	graphServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer graphServer.Close()

	provider := NewFacebookOAuthProvider(FacebookOAuthConfig{
		AppID:       "test-app-id",
		AppSecret:   "test-app-secret",
		RedirectURL: "http://localhost:8080/auth/facebook/callback",
		TokenURL:    tokenServer.URL,
		GraphMeURL:  graphServer.URL,
	})

	_, err := provider.ExchangeCode(context.Background(), "test-code")
	if err == nil {
		t.Fatal("expected error for failed profile fetch")
	}
}

func TestFacebookOAuthProvider_ExchangeCode_EmptyProfileID(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
		})
	}))
	defer tokenServer.Close()

	graphServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name": "No ID User",
		})
	}))
	defer graphServer.Close()

	provider := NewFacebookOAuthProvider(FacebookOAuthConfig{
		AppID:       "test-app-id",
		AppSecret:   "test-app-secret",
		RedirectURL: "http://localhost:8080/auth/facebook/callback",
		TokenURL:    tokenServer.URL,
		GraphMeURL:  graphServer.URL,
	})

	_, err := provider.ExchangeCode(context.Background(), "test-code")
	if err == nil {
		t.Fatal("expected error for profile without id")
	}
}

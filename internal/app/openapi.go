package app

import (
	"net/http"

	"github.com/hitoshi/apibase/internal/config"
	"github.com/hitoshi/apibase/internal/openapi"
)

// buildAPIDocument は全エンドポイントを登録したOpenAPIドキュメントを
// 構築し、配信用ハンドラーを返す。
func buildAPIDocument(cfg *config.Config) (*openapi.Handler, error) {
	b := openapi.NewBuilder(openapi.Definition{
		Title:       "apibase",
		Version:     apiVersion,
		Description: "Session-based OAuth backend starter API",
		ServerURL:   cfg.BaseURL,
		Tags: []openapi.Tag{
			{Name: "auth", Description: "Facebook OAuth login flow"},
			{Name: "demo", Description: "Demo and sample routes"},
			{Name: "ops", Description: "Operational endpoints"},
		},
	})

	operations := []struct {
		method string
		path   string
		op     openapi.Operation
	}{
		{http.MethodGet, "/", openapi.Operation{
			OperationID: "home",
			Summary:     "Show current session state",
			Description: "Returns the logged-in profile, or a plain message when anonymous.",
			Tags:        []string{"demo"},
			Responses: map[string]openapi.Response{
				"200": {Description: "Session state"},
			},
		}},
		{http.MethodGet, "/api", openapi.Operation{
			OperationID: "callExternalAPI",
			Summary:     "Call the configured external demo API once",
			Tags:        []string{"demo"},
			Responses: map[string]openapi.Response{
				"200": {Description: "Remote status code"},
				"500": {Description: "External call failed"},
			},
		}},
		{http.MethodGet, "/health", openapi.Operation{
			OperationID: "health",
			Summary:     "Liveness check",
			Tags:        []string{"ops"},
			Responses: map[string]openapi.Response{
				"200": {Description: "API is live"},
			},
		}},
		{http.MethodGet, "/auth/facebook", openapi.Operation{
			OperationID: "beginLogin",
			Summary:     "Begin the Facebook OAuth flow",
			Tags:        []string{"auth"},
			Responses: map[string]openapi.Response{
				"302": {Description: "Redirect to the consent screen"},
			},
		}},
		{http.MethodGet, "/auth/facebook/callback", openapi.Operation{
			OperationID: "completeLogin",
			Summary:     "Complete the Facebook OAuth flow",
			Description: "Redirects to / whether the login succeeded or not.",
			Tags:        []string{"auth"},
			Responses: map[string]openapi.Response{
				"302": {Description: "Redirect to /"},
			},
		}},
		{http.MethodPost, "/auth/logout", openapi.Operation{
			OperationID: "logout",
			Summary:     "Destroy the current session",
			Tags:        []string{"auth"},
			Responses: map[string]openapi.Response{
				"302": {Description: "Redirect to /"},
			},
		}},
		{http.MethodGet, "/metrics", openapi.Operation{
			OperationID: "metrics",
			Summary:     "Prometheus metrics",
			Tags:        []string{"ops"},
			Responses: map[string]openapi.Response{
				"200": {Description: "Metrics in Prometheus exposition format"},
			},
		}},
	}

	for _, o := range operations {
		if err := b.AddOperation(o.method, o.path, o.op); err != nil {
			return nil, err
		}
	}

	doc, data, err := b.Build()
	if err != nil {
		return nil, err
	}
	return openapi.NewHandler(doc, data), nil
}

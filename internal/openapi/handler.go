package openapi

import (
	"fmt"
	"net/http"
)

// docsPageTemplate は/docsで配信するインタラクティブビューアのHTML。
// Swagger UIのCDN配布物を読み込み、/openapi.jsonを表示する。
const docsPageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s - API Documentation</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = () => {
      SwaggerUIBundle({
        url: "/openapi.json",
        dom_id: "#swagger-ui",
      });
    };
  </script>
</body>
</html>
`

// Handler はOpenAPIドキュメントの配信を行うHTTPハンドラー。
// specJSONは起動時に構築したドキュメントのシリアライズ済みJSON。
type Handler struct {
	title    string
	specJSON []byte
}

// NewHandler はHandlerを生成する。
func NewHandler(doc *Document, specJSON []byte) *Handler {
	return &Handler{
		title:    doc.Info.Title,
		specJSON: specJSON,
	}
}

// ServeSpec はOpenAPIドキュメントをJSONとして返す。
// GET /openapi.json
func (h *Handler) ServeSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.specJSON)
}

// ServeDocs はインタラクティブなドキュメントページを返す。
// GET /docs
func (h *Handler) ServeDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, docsPageTemplate, h.title)
}

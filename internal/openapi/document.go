// Package openapi はOpenAPIドキュメントの構築と配信を提供する。
// ドキュメントは起動時に1回構築され、以降はイミュータブルとして扱う。
package openapi

import (
	"encoding/json"
	"fmt"
)

// Contact はAPI提供者の連絡先を表す。
type Contact struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Email string `json:"email,omitempty"`
}

// Info はAPIの静的なメタデータを表す。
type Info struct {
	Title       string   `json:"title"`
	Version     string   `json:"version"`
	Description string   `json:"description,omitempty"`
	Contact     *Contact `json:"contact,omitempty"`
}

// Server はAPIのサーバーURLを表す。
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Tag はオペレーションの分類タグを表す。
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Response はオペレーションのレスポンス定義を表す。
type Response struct {
	Description string `json:"description"`
}

// Operation は1つのHTTPオペレーションを表す。
type Operation struct {
	OperationID string              `json:"operationId,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	Description string              `json:"description,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

// PathItem は1つのパスに対するメソッド別オペレーションを表す。
type PathItem struct {
	Get  *Operation `json:"get,omitempty"`
	Post *Operation `json:"post,omitempty"`
}

// Document はOpenAPI 3.0ドキュメント全体を表す。
type Document struct {
	OpenAPI string              `json:"openapi"`
	Info    Info                `json:"info"`
	Servers []Server            `json:"servers,omitempty"`
	Tags    []Tag               `json:"tags,omitempty"`
	Paths   map[string]PathItem `json:"paths"`
}

// Definition はドキュメントの静的な定義ブロック。
// タイトル・バージョン・説明・連絡先・サーバーURL・タグ一覧を保持する。
type Definition struct {
	Title       string
	Version     string
	Description string
	Contact     *Contact
	ServerURL   string
	Tags        []Tag
}

// Builder はDocumentを段階的に構築する。
// ルーター構成時にオペレーションを登録し、Buildで確定する。
// Build後の変更は想定しない。
type Builder struct {
	doc *Document
}

// NewBuilder は定義ブロックからBuilderを生成する。
func NewBuilder(def Definition) *Builder {
	return &Builder{
		doc: &Document{
			OpenAPI: "3.0.3",
			Info: Info{
				Title:       def.Title,
				Version:     def.Version,
				Description: def.Description,
				Contact:     def.Contact,
			},
			Servers: []Server{{URL: def.ServerURL}},
			Tags:    def.Tags,
			Paths:   make(map[string]PathItem),
		},
	}
}

// AddOperation はパスとメソッドに対するオペレーションを登録する。
// サポート外のメソッドはエラーを返す。
func (b *Builder) AddOperation(method, path string, op Operation) error {
	item := b.doc.Paths[path]
	switch method {
	case "GET":
		item.Get = &op
	case "POST":
		item.Post = &op
	default:
		return fmt.Errorf("unsupported method for openapi operation: %s", method)
	}
	b.doc.Paths[path] = item
	return nil
}

// Build はドキュメントを確定し、シリアライズ済みJSONと共に返す。
func (b *Builder) Build() (*Document, []byte, error) {
	data, err := json.Marshal(b.doc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal openapi document: %w", err)
	}
	return b.doc, data, nil
}

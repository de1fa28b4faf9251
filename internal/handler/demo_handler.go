package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// ExternalCallRecorder は外部API呼び出しの結果を記録するメトリクス
// インターフェース。
type ExternalCallRecorder interface {
	RecordExternalCallSuccess()
	RecordExternalCallFailure()
}

// demoResponse は外部APIデモ呼び出しの成功レスポンス。
// dataにはリモートのHTTPステータスコードが入る。
type demoResponse struct {
	Message string `json:"message"`
	Data    int    `json:"data"`
}

// demoErrorResponse は外部APIデモ呼び出しの失敗レスポンス。
type demoErrorResponse struct {
	Error string `json:"error"`
}

// DemoHandler は外部APIへのデモ呼び出しを行うHTTPハンドラー。
// clientはSSRFガード付きのHTTPクライアントを渡すこと。
type DemoHandler struct {
	client      *http.Client
	externalURL string
	targetHost  string
	recorder    ExternalCallRecorder // nilの場合は記録しない
}

// NewDemoHandler はDemoHandlerを生成する。
func NewDemoHandler(client *http.Client, externalURL string, recorder ExternalCallRecorder) *DemoHandler {
	host := externalURL
	if u, err := url.Parse(externalURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return &DemoHandler{
		client:      client,
		externalURL: externalURL,
		targetHost:  host,
		recorder:    recorder,
	}
}

// CallExternal は設定された外部公開APIへGETを1回発行し、
// リモートのステータスコードを返す。リトライはしない。
// GET /api
func (h *DemoHandler) CallExternal(w http.ResponseWriter, r *http.Request) error {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, h.externalURL, nil)
	if err != nil {
		h.writeFailure(w, err)
		return nil
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.writeFailure(w, err)
		return nil
	}
	defer resp.Body.Close()

	if h.recorder != nil {
		h.recorder.RecordExternalCallSuccess()
	}

	respondJSON(w, http.StatusOK, demoResponse{
		Message: fmt.Sprintf("Demo API called (%s)", h.targetHost),
		Data:    resp.StatusCode,
	})
	return nil
}

// writeFailure は外部API呼び出し失敗時の500レスポンスを書き込む。
func (h *DemoHandler) writeFailure(w http.ResponseWriter, err error) {
	slog.Error("external api call failed",
		slog.String("url", h.externalURL),
		slog.String("error", err.Error()),
	)
	if h.recorder != nil {
		h.recorder.RecordExternalCallFailure()
	}
	respondJSON(w, http.StatusInternalServerError, demoErrorResponse{
		Error: "Failed to call external API",
	})
}

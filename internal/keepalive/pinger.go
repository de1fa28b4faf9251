// Package keepalive は自己pingによるスリープ回避機能を提供する。
// 無料ホスティング環境でのアイドルスリープ対策として、自分自身の
// ヘルスチェックエンドポイントへ定期的にGETを発行する。
// デフォルトでは無効であり、SELF_PING_INTERVALを正の値に設定した
// 場合のみスケジュールされる。
package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Pinger はヘルスチェックエンドポイントへの定期pingを行う。
type Pinger struct {
	client  *http.Client
	pingURL string
	logger  *slog.Logger
}

// NewPinger はPingerを生成する。
// baseURLの末尾スラッシュは正規化され、pingは BASE_URL/health に発行される。
func NewPinger(client *http.Client, baseURL string, logger *slog.Logger) *Pinger {
	return &Pinger{
		client:  client,
		pingURL: strings.TrimRight(baseURL, "/") + "/health",
		logger:  logger,
	}
}

// Start は指定間隔のティッカーで自己pingを開始する。
// コンテキストがキャンセルされるまで実行を継続する。
// ping失敗はログに残すだけで、リトライや中断は行わない。
func (p *Pinger) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info("自己pingを開始しました",
		slog.String("url", p.pingURL),
		slog.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("自己pingを停止しました")
			return
		case <-ticker.C:
			if err := p.ping(ctx); err != nil {
				p.logger.Warn("自己pingに失敗しました",
					slog.String("url", p.pingURL),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// ping はヘルスチェックエンドポイントへGETを1回発行する。
func (p *Pinger) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.pingURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build ping request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ping request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected ping status: %d", resp.StatusCode)
	}
	return nil
}

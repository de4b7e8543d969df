// Package search は外部エクササイズ検索APIとの連携を提供する。
// APIクライアントと、障害時に空結果へ縮退する検索サービスを含む。
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hitoshi/fittrack/internal/model"
)

// maxResponseSize はレスポンスボディの読み取り上限（バイト）。
const maxResponseSize = 1 << 20

// ClientConfig は外部検索APIクライアントの設定。
type ClientConfig struct {
	BaseURL string // 例: "https://exercisedb.p.rapidapi.com"
	APIKey  string // 空の場合はヘッダーを付与しない
}

// Client は外部エクササイズ検索APIのクライアント。
// 検索語を名前検索エンドポイントに渡し、結果をデコードして返す。
type Client struct {
	httpClient *http.Client
	config     ClientConfig
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, config ClientConfig) *Client {
	return &Client{
		httpClient: httpClient,
		config:     config,
	}
}

// Search は検索語に一致するエクササイズの一覧を取得する。
// 呼び出しは読み取り専用・冪等で、リトライもキャッシュも行わない。
// 失敗の扱い（縮退）は呼び出し側のServiceが担う。
func (c *Client) Search(ctx context.Context, query string) ([]model.ExerciseResult, error) {
	reqURL := fmt.Sprintf("%s/exercises/name/%s", c.config.BaseURL, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var results []model.ExerciseResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return results, nil
}

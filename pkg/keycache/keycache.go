package keycache

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

// cacheTTL はキャッシュした公開鍵の有効期間。
// アイデンティティサービス側の鍵ローテーション周期より十分短い値にする。
const cacheTTL = time.Hour

// FetchError は公開鍵の取得失敗を表す。
// ネットワークエラーまたは非2xxレスポンスで発生する。
type FetchError struct {
	// URL は取得に失敗した公開鍵のURL。
	URL string
	// StatusCode はリモートが返したHTTPステータスコード。
	// ネットワークエラーの場合は0。
	StatusCode int
	// Err は原因となったエラー。ステータスコード起因の場合はnil。
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("公開鍵の取得に失敗: url=%s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("公開鍵の取得に失敗: url=%s, status=%d", e.URL, e.StatusCode)
}

// Unwrap はラップされたエラーを返す。
func (e *FetchError) Unwrap() error { return e.Err }

// entry はキャッシュされた1つの公開鍵。URLごとに最大1件だけ保持し、
// 再取得時は丸ごと差し替える（部分更新はしない）。
type entry struct {
	// contents はPEM形式の鍵素材。
	contents string
	// expiresAt はこのエントリが使用可能な期限。
	expiresAt time.Time
}

// Cache は取得元URLごとに公開鍵を1件キャッシュする。
// プロセス内メモリのみで永続化しない。再起動後は必要時に再取得される。
type Cache struct {
	// mu はentriesを保護する。取得中はロックを持たない
	// （同一URLへの同時取得は後勝ちで許容する）。
	mu      sync.Mutex
	entries map[string]entry
	// httpClient は公開鍵取得に使用するHTTPクライアント。
	httpClient *http.Client
	// now は現在時刻の取得関数。テストで差し替える。
	now func() time.Time
}

// New は新しい公開鍵キャッシュを生成する。
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// Get はsourceURLの公開鍵素材を返す。
// 未期限のキャッシュがあればそれを返し、なければブロッキングで取得して
// 1時間の期限付きでキャッシュする。取得失敗時は*FetchErrorを返し、
// 失敗はキャッシュしない（ネガティブキャッシュなし）。
func (c *Cache) Get(ctx context.Context, sourceURL string) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[sourceURL]; ok && c.now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.contents, nil
	}
	c.mu.Unlock()

	contents, err := c.fetch(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	expiresAt := c.now().Add(cacheTTL)
	log.Printf("公開鍵キャッシュを更新: url=%s, expires=%s", sourceURL, expiresAt.Format(time.RFC3339))

	c.mu.Lock()
	c.entries[sourceURL] = entry{contents: contents, expiresAt: expiresAt}
	c.mu.Unlock()

	return contents, nil
}

// fetch はsourceURLから公開鍵をHTTP GETで取得する。
func (c *Cache) fetch(ctx context.Context, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", &FetchError{URL: sourceURL, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: sourceURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: sourceURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: sourceURL, Err: err}
	}
	return string(body), nil
}

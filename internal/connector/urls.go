package connector

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// derivedBaseURL はリクエストから外部向けのベースURLを導出する。
// リバースプロキシ背後でも正しいURLを組み立てられるよう、
// X-Forwarded-系ヘッダーを優先し、無ければリクエスト自身の値を使う。
// ポートとプレフィックスは両方揃っている場合だけ含める。
func derivedBaseURL(c *gin.Context) string {
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	proto := c.GetHeader("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
		if c.Request.TLS != nil {
			proto = "https"
		}
	}
	forwardedPort := c.GetHeader("X-Forwarded-Port")
	forwardedPrefix := c.GetHeader("X-Forwarded-Prefix")

	if forwardedPort != "" && forwardedPrefix != "" {
		return proto + "://" + host + ":" + forwardedPort + forwardedPrefix
	}
	return proto + "://" + host
}

// imageURL はカードアイコンの外部向けURLを返す。
func imageURL(c *gin.Context) string {
	return derivedBaseURL(c) + "/images/connector.png"
}

// actionURL はカードアクションの送信先URLを組み立てる。
// クライアント側のルーティングプレフィックスとプロキシの
// フォワードプレフィックスを論理パスの前に連結することで、
// 任意のリバースプロキシ背後でも同じ論理カードが機能する。
func actionURL(c *gin.Context, virtualPath string) string {
	routingPrefix := c.GetHeader("X-Routing-Prefix")
	forwardedPrefix := c.GetHeader("X-Forwarded-Prefix")
	return joinURL(routingPrefix, forwardedPrefix, virtualPath)
}

// joinURL は各要素を境界のスラッシュを正規化しつつ連結する。
// 空要素は読み飛ばす。先頭要素の形（絶対URL/絶対パス）はそのまま保つ。
func joinURL(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(strings.TrimRight(part, "/"))
			continue
		}
		b.WriteString("/")
		b.WriteString(strings.Trim(part, "/"))
	}
	return b.String()
}

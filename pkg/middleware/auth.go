package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nao1215/flowdesk/pkg/keycache"
)

// allowedAlgorithms は署名検証で許可するアルゴリズムの一覧。
//
// "none"と共有秘密鍵方式（HMAC）は許可しない。検証鍵は帯域外で
// 合意されたRSA/ECDSAの公開鍵であり、HMACを許すと攻撃者が
// 公開鍵バイト列を共有秘密として署名し直したトークンが
// 正当に見えてしまう（アルゴリズム混同攻撃）。
var allowedAlgorithms = []string{
	"RS256",
	"RS384",
	"RS512",
	"ES256",
	"ES384",
	"ES512",
}

// clockSkewTolerance は時刻クレーム（exp/iat）検証時に許容する時計のずれ。
const clockSkewTolerance = 60 * time.Second

// Claims は検証済みベアラートークンのペイロードを表す。
// アイデンティティサービスが発行するトークンのカスタムクレームを含む。
type Claims struct {
	jwt.RegisteredClaims
	// Principal は「ユーザー名@テナント」形式の呼び出し元識別子。
	Principal string `json:"prn"`
	// Domain は呼び出し元の所属ドメイン。
	Domain string `json:"domain"`
	// Email は呼び出し元のメールアドレス。
	Email string `json:"eml"`
}

// TokenInvalidError はトークン検証の失敗を表す。
// 署名不一致、許可されないアルゴリズム、期限切れなどで発生する。
// メッセージは401レスポンスにそのまま載るため英語にしている。
type TokenInvalidError struct {
	// Err は原因となったエラー。
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *TokenInvalidError) Error() string {
	return fmt.Sprintf("invalid token: %v", e.Err)
}

// Unwrap はラップされたエラーを返す。
func (e *TokenInvalidError) Unwrap() error { return e.Err }

// Verifier はベアラートークンを検証する。
// 検証用の公開鍵は注入されたキャッシュ経由でリモートから取得する。
type Verifier struct {
	// cache は公開鍵キャッシュ。
	cache *keycache.Cache
}

// NewVerifier は新しいトークン検証器を生成する。
func NewVerifier(cache *keycache.Cache) *Verifier {
	return &Verifier{cache: cache}
}

// Verify はAuthorizationヘッダー値のトークンを検証してクレームを返す。
// keySourceURLから取得した公開鍵で署名を検証し、時刻クレームは
// 60秒の時計ずれを許容して壁時計で評価する。
// 失敗時は*TokenInvalidErrorまたは*keycache.FetchErrorを返す。
func (v *Verifier) Verify(ctx context.Context, authorization, keySourceURL string) (*Claims, error) {
	keyPEM, err := v.cache.Get(ctx, keySourceURL)
	if err != nil {
		return nil, err
	}

	tokenString := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// WithValidMethodsに加えて、鍵のパース自体も署名方式の型で分岐する。
		// 共有秘密（[]byte）を返す経路を作らないことでHMAC受理の余地をなくす。
		switch t.Method.(type) {
		case *jwt.SigningMethodRSA:
			return jwt.ParseRSAPublicKeyFromPEM([]byte(keyPEM))
		case *jwt.SigningMethodECDSA:
			return jwt.ParseECPublicKeyFromPEM([]byte(keyPEM))
		default:
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
	},
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithLeeway(clockSkewTolerance),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, &TokenInvalidError{Err: err}
	}
	if !token.Valid {
		return nil, &TokenInvalidError{Err: errors.New("token is not valid")}
	}
	return claims, nil
}

// Caller は認証ゲートウェイを通過したリクエストの呼び出し元情報。
// ゲートウェイで一度だけ組み立てられ、以降のハンドラから参照される。
type Caller struct {
	// Claims は検証済みトークンのクレーム。
	Claims *Claims
	// BearerToken は"Bearer "を除いたトークン文字列。
	BearerToken string
	// ConnectorAuthorization はバックエンド呼び出し用の資格情報。
	// 呼び出し元が提示したものをそのまま保持し、ローカルでは検証しない。
	ConnectorAuthorization string
}

// contextKeyCaller はGinコンテキストに呼び出し元情報を格納するためのキー。
const contextKeyCaller = "caller"

// connectorAuthorizationHeader はバックエンド用資格情報を運ぶヘッダー名。
const connectorAuthorizationHeader = "X-Connector-Authorization"

// BearerAuth はベアラートークンを検証するGinミドルウェアを返す。
// 認証が必要なルートグループに一度だけ適用する。
// 検証に成功した場合、コンテキストにCallerを設定してハンドラへ進む。
// 失敗時は401を返してリクエストを打ち切る（リトライしない）。
func BearerAuth(verifier *Verifier, keySourceURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorization := c.GetHeader("Authorization")
		if authorization == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Missing Authorization header",
			})
			return
		}

		if keySourceURL == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid Authorization header",
			})
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), authorization, keySourceURL)
		if err != nil {
			log.Printf("呼び出し元の認証に失敗: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": fmt.Sprintf("Identity verification failed! %v", err),
			})
			return
		}

		c.Set(contextKeyCaller, &Caller{
			Claims:                 claims,
			BearerToken:            strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer ")),
			ConnectorAuthorization: c.GetHeader(connectorAuthorizationHeader),
		})
		c.Next()
	}
}

// GetCaller はGinコンテキストから呼び出し元情報を取得する。
// BearerAuthミドルウェアが事前に適用されている必要がある。
// 未設定の場合は空のCallerを返す（nilは返さない）。
func GetCaller(c *gin.Context) *Caller {
	v, _ := c.Get(contextKeyCaller)
	if caller, ok := v.(*Caller); ok {
		return caller
	}
	return &Caller{}
}

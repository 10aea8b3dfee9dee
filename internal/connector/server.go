package connector

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/flowdesk/internal/servicedesk"
	"github.com/nao1215/flowdesk/pkg/keycache"
	"github.com/nao1215/flowdesk/pkg/middleware"
)

// cardSchemaDocURL はディスカバリ文書で案内するカードスキーマのドキュメントURL。
const cardSchemaDocURL = "https://vmwaresamples.github.io/card-connectors-guide/#schema/herocard-response-schema.json"

// backendStatusHeader はバックエンドのステータスコードを呼び出し元へ
// 伝えるレスポンスヘッダー。ボディの中身は伝えない。
const backendStatusHeader = "X-Backend-Status"

// defaultServiceDeskID と defaultRequestTypeID はリクエスト作成時の
// デフォルト値。単一サービスデスク運用のデプロイを想定している。
const (
	defaultServiceDeskID = 1
	defaultRequestTypeID = 1
)

// Server はカードコネクタのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// desk はバックエンドのサービスデスクAPIクライアント。
	desk *servicedesk.Client
	// verifier はベアラートークンの検証器。
	verifier *middleware.Verifier
	// keySourceURL はトークン署名鍵の取得元URL。デプロイごとに固定。
	keySourceURL string
	// imagesDir は静的アイコンを配信するディレクトリ。
	imagesDir string
	// debug は詳細ログ出力の有効フラグ。
	debug bool

	// seedMu はcreationSeedを保護する。
	seedMu sync.RWMutex
	// creationSeed は作成カードのフィンガープリント計算に使うシード。
	// /setHashで差し替えると全クライアントが作成カードを更新扱いする。
	creationSeed string
}

// NewServer は新しいコネクタサーバーを生成する。
// 設定は環境変数から読み込む:
//
//	TOKEN_PUBLIC_KEY_URL     トークン署名鍵の取得元URL
//	SERVICEDESK_REQUEST_API  サービスデスクAPIのベースURL
//	CLOUD_ID                 SERVICEDESK_REQUEST_API未指定時のテナント識別子
//	IMAGES_DIR               静的アイコンのディレクトリ（省略時 "images"）
//	DEBUG                    非空で詳細ログを有効化
func NewServer(port string) (*Server, error) {
	deskAPI := os.Getenv("SERVICEDESK_REQUEST_API")
	if deskAPI == "" {
		cloudID := os.Getenv("CLOUD_ID")
		if cloudID == "" {
			return nil, errors.New("SERVICEDESK_REQUEST_APIまたはCLOUD_IDを設定してください")
		}
		deskAPI = fmt.Sprintf("https://api.atlassian.com/ex/jira/%s/rest/servicedeskapi", cloudID)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:       router,
		port:         port,
		desk:         servicedesk.New(deskAPI),
		verifier:     middleware.NewVerifier(keycache.New()),
		keySourceURL: os.Getenv("TOKEN_PUBLIC_KEY_URL"),
		imagesDir:    getEnvOr("IMAGES_DIR", "images"),
		debug:        os.Getenv("DEBUG") != "",
		creationSeed: creationBackendID,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// 認証ゲートウェイは保護対象のルートグループに一度だけ適用する。
func (s *Server) setupRoutes() {
	// ディスカバリと静的アセットは認証不要
	s.router.GET("/", s.handleDiscovery())
	s.router.Static("/images", s.imagesDir)

	// 運用者向けエスケープハッチ。作成カードのシードを差し替える。
	s.router.POST("/setHash", s.handleSetHash())

	// 認証必須のカードAPI
	api := s.router.Group("/")
	api.Use(middleware.BearerAuth(s.verifier, s.keySourceURL))
	{
		api.POST("/cards", s.handleCards())
		api.POST("/approvalAction", s.handleApprovalAction())
		api.POST("/createCustomerRequest", s.handleCreateCustomerRequest())
		api.POST("/listServiceDesks", s.handleListServiceDesks())
		api.POST("/listRequestTypes", s.handleListRequestTypes())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "connector"})
	})
}

// handleDiscovery はディスカバリ文書を返すハンドラを返す。
// URLはリクエストから導出するため、任意のプロキシ背後で正しく機能する。
func (s *Server) handleDiscovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		baseURL := derivedBaseURL(c)
		c.JSON(http.StatusOK, discoveryResponse{
			Image: Link{Href: baseURL + "/images/connector.png"},
			ObjectTypes: discoveryObjectType{
				Card: discoveryCardType{
					Pollable: true,
					Doc:      Link{Href: cardSchemaDocURL},
					Endpoint: Link{Href: baseURL + "/cards"},
				},
			},
		})
	}
}

// handleCards は承認待ちカスタマーリクエストのカード一覧を返すハンドラを返す。
// 先頭に作成カードを置き、以降はバックエンドの応答順を保つ。
func (s *Server) handleCards() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.GetCaller(c)

		requests, err := s.desk.PendingApprovals(c.Request.Context(), caller.ConnectorAuthorization)
		if err != nil {
			s.backendFailure(c, err)
			return
		}

		cards := make([]Card, 0, len(requests)+1)
		cards = append(cards, s.creationCard(c))
		for _, cr := range requests {
			cards = append(cards, s.cardFromCustomerRequest(c, cr))
		}

		s.debugf("カード一覧を応答: %d件", len(cards))
		c.JSON(http.StatusOK, cardsResponse{Objects: cards})
	}
}

// handleApprovalAction は承認/却下アクションをバックエンドへ適用するハンドラを返す。
func (s *Server) handleApprovalAction() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.GetCaller(c)

		var req approvalActionRequest
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		s.debugf("承認アクション: issueKey=%s, decision=%s", req.IssueKey, req.Decision)

		approval, err := s.desk.ApprovalDetail(c.Request.Context(), req.IssueKey, caller.ConnectorAuthorization)
		if err != nil {
			s.backendFailure(c, err)
			return
		}
		if approval == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no approval found"})
			return
		}

		// コメントはベストエフォート。投稿に失敗しても決定の適用は止めず、
		// 失敗はログにだけ残す。決定の記録はバックエンドが正である。
		if req.Comment != "" {
			if err := s.desk.PostComment(c.Request.Context(), req.IssueKey, req.Comment, caller.ConnectorAuthorization); err != nil {
				log.Printf("コメント投稿に失敗（決定の適用は継続）: issueKey=%s: %v", req.IssueKey, err)
			}
		}

		result, err := s.desk.ApplyDecision(c.Request.Context(), req.Decision, req.IssueKey, approval.ID, caller.ConnectorAuthorization)
		if err != nil {
			s.backendFailure(c, err)
			return
		}

		s.debugf("決定を適用: issueKey=%s, result=%s", req.IssueKey, result)
		c.JSON(http.StatusOK, gin.H{"status": result})
	}
}

// handleCreateCustomerRequest は新しいカスタマーリクエストを作成するハンドラを返す。
// ボディの欠けたフィールドにはデフォルトを適用し、欠落を理由に拒否しない。
func (s *Server) handleCreateCustomerRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.GetCaller(c)

		var req createRequestBody
		// 空ボディも許容する。バインドに失敗してもデフォルトで進める。
		_ = c.ShouldBind(&req)

		if req.Summary == "" {
			req.Summary = "summary here"
		}
		if req.Description == "" {
			req.Description = "description here"
		}
		if req.ServiceDeskID == 0 {
			req.ServiceDeskID = defaultServiceDeskID
		}
		if req.RequestTypeID == 0 {
			req.RequestTypeID = defaultRequestTypeID
		}

		created, err := s.desk.CreateCustomerRequest(c.Request.Context(), req.ServiceDeskID, req.RequestTypeID, req.Summary, req.Description, caller.ConnectorAuthorization)
		if err != nil {
			s.backendFailure(c, err)
			return
		}

		s.debugf("カスタマーリクエストを作成: issueKey=%s", created.IssueKey)
		c.JSON(http.StatusOK, gin.H{
			"issueId":  created.IssueID,
			"issueKey": created.IssueKey,
		})
	}
}

// handleListServiceDesks はサービスデスク一覧を返すハンドラを返す。
func (s *Server) handleListServiceDesks() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.GetCaller(c)

		desks, err := s.desk.ServiceDesks(c.Request.Context(), caller.ConnectorAuthorization)
		if err != nil {
			s.backendFailure(c, err)
			return
		}
		c.JSON(http.StatusOK, desks)
	}
}

// handleListRequestTypes はリクエストタイプ一覧を返すハンドラを返す。
func (s *Server) handleListRequestTypes() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := middleware.GetCaller(c)

		var req listRequestTypesBody
		_ = c.ShouldBind(&req)
		if req.ServiceDeskID == 0 {
			req.ServiceDeskID = defaultServiceDeskID
		}

		types, err := s.desk.RequestTypes(c.Request.Context(), req.ServiceDeskID, caller.ConnectorAuthorization)
		if err != nil {
			s.backendFailure(c, err)
			return
		}
		c.JSON(http.StatusOK, types)
	}
}

// handleSetHash は作成カードのフィンガープリントシードを差し替えるハンドラを返す。
// 再デプロイなしに全クライアントへ作成カードを更新扱いさせるための運用手段。
func (s *Server) handleSetHash() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req setHashRequest
		if err := c.ShouldBind(&req); err != nil || req.Hash == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hash is required"})
			return
		}

		s.seedMu.Lock()
		s.creationSeed = req.Hash
		s.seedMu.Unlock()

		log.Printf("作成カードのシードを更新: %s", req.Hash)
		c.JSON(http.StatusOK, gin.H{"new_hash": req.Hash})
	}
}

// fingerprintSeed は作成カードのフィンガープリントシードを返す。
func (s *Server) fingerprintSeed() string {
	s.seedMu.RLock()
	defer s.seedMu.RUnlock()
	return s.creationSeed
}

// backendFailure はバックエンド呼び出しの失敗を400応答に変換する。
// バックエンドのステータスコードは専用ヘッダーで伝え、
// エラーボディの中身は呼び出し元へ漏らさない。
func (s *Server) backendFailure(c *gin.Context, err error) {
	s.debugf("バックエンド呼び出しに失敗: %v", err)

	var backendErr *servicedesk.BackendError
	if errors.As(err, &backendErr) {
		c.Header(backendStatusHeader, strconv.Itoa(backendErr.StatusCode))
	}
	c.Status(http.StatusBadRequest)
}

// debugf はDEBUG有効時のみログを出力する。
// HTTPステータス/ヘッダーが失敗の正式な記録であり、ログはその補助に留める。
func (s *Server) debugf(format string, args ...any) {
	if s.debug {
		log.Printf(format, args...)
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

package connector

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nao1215/flowdesk/internal/servicedesk"
)

// creationBackendID は作成カードのbackend_idに使う固定の番兵値。
// バックエンドレコードを持たない合成カードであることを示す。
const creationBackendID = "create_request"

// declineCommentMinLength は却下時に求める理由コメントの最小文字数。
const declineCommentMinLength = 5

// fieldValue は可変長フィールド値リストからfieldIDの値を取り出す。
// 見つからない場合は空文字列を返す（エラーにはしない）。
func fieldValue(fields []servicedesk.FieldValue, fieldID string) string {
	for _, f := range fields {
		if f.FieldID == fieldID {
			return f.Value
		}
	}
	return ""
}

// cardHash は与えられた部品を順に連結したSHA-256ダイジェストを
// base64で返す。クライアント側の変更検知に使うフィンガープリント。
func cardHash(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
	}
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// cardFromCustomerRequest はバックエンドのカスタマーリクエスト1件をカードへ変換する。
// 決定的でログ出力以外の副作用を持たない。
//
// フィンガープリントはissueKeyとステータス変更日時だけから計算する。
// 表示に影響しないペイロードの揺れで毎回ハッシュが変わると、
// クライアントが不要な再描画を繰り返すため、他のフィールドは混ぜない。
func (s *Server) cardFromCustomerRequest(c *gin.Context, cr servicedesk.CustomerRequest) Card {
	approvalURL := actionURL(c, "/approvalAction")
	s.debugf("カードを生成: issueKey=%s, actionURL=%s", cr.IssueKey, approvalURL)

	return Card{
		ID:        uuid.New().String(),
		BackendID: cr.IssueKey,
		Hash:      cardHash(cr.IssueKey, cr.CurrentStatus.StatusDate.ISO8601),
		Image:     Link{Href: imageURL(c)},
		Header: CardHeader{
			Title:    fieldValue(cr.RequestFieldValues, "summary"),
			Subtitle: []string{cr.IssueKey},
		},
		Body: CardBody{
			Fields: []CardBodyField{
				{Type: "GENERAL", Title: "Description", Description: fieldValue(cr.RequestFieldValues, "description")},
				{Type: "GENERAL", Title: "Reporter", Description: cr.Reporter.DisplayName},
				{Type: "GENERAL", Title: "Request Type", Description: cr.RequestType.Name},
				{Type: "GENERAL", Title: "Status", Description: cr.CurrentStatus.Status},
				{Type: "GENERAL", Title: "Date Created", Description: cr.CreatedDate.Friendly},
			},
			Description: cr.Links.Web,
		},
		Actions: []CardAction{
			{
				ActionKey: "DIRECT",
				ID:        uuid.New().String(),
				UserInput: []UserInputField{},
				Request: map[string]string{
					"decision": "approve",
					"issueKey": cr.IssueKey,
				},
				Repeatable:     false,
				Primary:        true,
				Label:          "Approve",
				CompletedLabel: "Approved",
				Type:           "POST",
				URL:            Link{Href: approvalURL},
			},
			{
				ActionKey: "USER_INPUT",
				ID:        uuid.New().String(),
				UserInput: []UserInputField{
					{
						ID:        "comment",
						Label:     "Please explain why the Request is being denied",
						MinLength: declineCommentMinLength,
					},
				},
				Request: map[string]string{
					"decision": "decline",
					"issueKey": cr.IssueKey,
				},
				Repeatable:     false,
				Primary:        false,
				Label:          "Decline",
				CompletedLabel: "Declined",
				Type:           "POST",
				URL:            Link{Href: approvalURL},
			},
		},
	}
}

// creationCard はバックエンドレコードを持たない合成の「リクエスト作成」カードを返す。
// backend_idは固定の番兵値で、ハッシュはシードのみから計算するため、
// シードを差し替えない限りクライアントからは常に同一カードに見える。
func (s *Server) creationCard(c *gin.Context) Card {
	return Card{
		ID:        uuid.New().String(),
		BackendID: creationBackendID,
		Hash:      cardHash(s.fingerprintSeed()),
		Image:     Link{Href: imageURL(c)},
		Header: CardHeader{
			Title: "Create Customer Request",
		},
		Body: CardBody{
			Fields:      []CardBodyField{},
			Description: "Submit a Request",
		},
		Actions: []CardAction{
			{
				ActionKey: "USER_INPUT",
				ID:        uuid.New().String(),
				UserInput: []UserInputField{
					{ID: "summary", Label: "Summary", MinLength: 1},
					{ID: "details", Label: "Details", MinLength: 1},
				},
				Request:        map[string]string{},
				Repeatable:     true,
				Primary:        true,
				Label:          "Create Request",
				CompletedLabel: "Create Request",
				Type:           "POST",
				URL:            Link{Href: actionURL(c, "/createCustomerRequest")},
			},
		},
	}
}

package servicedesk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// BackendError はバックエンドAPIが非2xxを返したことを表す。
// レスポンスボディはクライアントへ漏らさず、ステータスコードだけを保持する。
type BackendError struct {
	// StatusCode はバックエンドが返したHTTPステータスコード。
	StatusCode int
}

// Error はerrorインターフェースを実装する。
func (e *BackendError) Error() string {
	return fmt.Sprintf("バックエンドAPIがエラーを返却: status=%d", e.StatusCode)
}

// Client はサービスデスクAPIへのHTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL はサービスデスクAPIのベースURL。
	baseURL string
}

// New は新しいサービスデスクAPIクライアントを生成する。
// baseURLにはサービスデスクAPIのベースURL
// （例: "https://api.example.com/ex/jira/<cloud-id>/rest/servicedeskapi"）を指定する。
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// PendingApprovals は呼び出し元の承認待ちになっているカスタマーリクエストを
// バックエンドの応答順のまま返す。
func (c *Client) PendingApprovals(ctx context.Context, connectorAuthorization string) ([]CustomerRequest, error) {
	query := url.Values{}
	query.Set("requestOwnership", "APPROVER")
	query.Set("requestStatus", "OPEN_REQUESTS")
	query.Set("approvalStatus", "MY_PENDING_APPROVAL")
	query.Set("expand", "requestType")

	var resp valuesResponse[CustomerRequest]
	if err := c.do(ctx, http.MethodGet, "/request", query, nil, &resp, connectorAuthorization); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// ApprovalDetail はissueKeyのカスタマーリクエストに紐づく承認オブジェクトを返す。
// 承認が存在しない場合はnilを返す（エラーにはしない）。
func (c *Client) ApprovalDetail(ctx context.Context, issueKey, connectorAuthorization string) (*Approval, error) {
	var resp valuesResponse[Approval]
	path := fmt.Sprintf("/request/%s/approval", issueKey)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp, connectorAuthorization); err != nil {
		return nil, err
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}
	return &resp.Values[0], nil
}

// PostComment はissueKeyのカスタマーリクエストに公開コメントを投稿する。
func (c *Client) PostComment(ctx context.Context, issueKey, comment, connectorAuthorization string) error {
	body := map[string]any{
		"body":   comment,
		"public": true,
	}
	path := fmt.Sprintf("/request/%s/comment", issueKey)
	return c.do(ctx, http.MethodPost, path, nil, body, nil, connectorAuthorization)
}

// ApplyDecision はissueKeyのリクエストの承認approvalIDに決定を適用し、
// バックエンドが記録した最終決定を返す。バックエンドが要求と異なる決定を
// 返す場合もある（既に決定済みなど）ため、呼び出し側は戻り値を信頼する。
func (c *Client) ApplyDecision(ctx context.Context, decision, issueKey, approvalID, connectorAuthorization string) (string, error) {
	body := map[string]any{
		"decision": decision,
	}
	var resp Approval
	path := fmt.Sprintf("/request/%s/approval/%s", issueKey, approvalID)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp, connectorAuthorization); err != nil {
		return "", err
	}
	return resp.FinalDecision, nil
}

// CreateCustomerRequest は新しいカスタマーリクエストを作成する。
func (c *Client) CreateCustomerRequest(ctx context.Context, serviceDeskID, requestTypeID int, summary, description, connectorAuthorization string) (*CreatedRequest, error) {
	body := map[string]any{
		"serviceDeskId": serviceDeskID,
		"requestTypeId": requestTypeID,
		"requestFieldValues": map[string]string{
			"summary":     summary,
			"description": description,
		},
	}
	var resp CreatedRequest
	if err := c.do(ctx, http.MethodPost, "/request", nil, body, &resp, connectorAuthorization); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ServiceDesks はサービスデスクの一覧を返す。
func (c *Client) ServiceDesks(ctx context.Context, connectorAuthorization string) ([]ServiceDesk, error) {
	var resp valuesResponse[ServiceDesk]
	if err := c.do(ctx, http.MethodGet, "/servicedesk", nil, nil, &resp, connectorAuthorization); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// RequestTypes はserviceDeskIDのサービスデスクで作成可能なリクエストタイプの一覧を返す。
func (c *Client) RequestTypes(ctx context.Context, serviceDeskID int, connectorAuthorization string) ([]RequestType, error) {
	var resp valuesResponse[RequestType]
	path := fmt.Sprintf("/servicedesk/%d/requesttype", serviceDeskID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp, connectorAuthorization); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// do はサービスデスクAPIへのJSONリクエストを実行する共通処理。
// 非2xx応答は*BackendErrorに変換し、ボディは読み捨てる。
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, result any, connectorAuthorization string) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", connectorAuthorization)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("バックエンドへのリクエスト送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// エラーボディの中身はクライアントへ返さない
		_, _ = io.Copy(io.Discard, resp.Body)
		return &BackendError{StatusCode: resp.StatusCode}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

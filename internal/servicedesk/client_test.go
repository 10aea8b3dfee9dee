package servicedesk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// testConnectorAuthorization はテストで転送するコネクタ資格情報。
const testConnectorAuthorization = "Bearer backend-credential"

// TestPendingApprovals はPendingApprovalsを検証する。
func TestPendingApprovals(t *testing.T) {
	t.Parallel()

	t.Run("承認待ちリクエストがクエリパラメータ付きで取得できること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.URL.Path != "/request" {
				t.Errorf("リクエスト = %s %s, want GET /request", r.Method, r.URL.Path)
			}
			query := r.URL.Query()
			wantQuery := map[string]string{
				"requestOwnership": "APPROVER",
				"requestStatus":    "OPEN_REQUESTS",
				"approvalStatus":   "MY_PENDING_APPROVAL",
				"expand":           "requestType",
			}
			for key, want := range wantQuery {
				if got := query.Get(key); got != want {
					t.Errorf("クエリ %s = %q, want %q", key, got, want)
				}
			}
			if got := r.Header.Get("Authorization"); got != testConnectorAuthorization {
				t.Errorf("Authorization = %q, want %q", got, testConnectorAuthorization)
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"values":[
				{"issueId":"10001","issueKey":"X-1","currentStatus":{"status":"Waiting for approval","statusDate":{"iso8601":"2020-01-01T00:00:00+0000"}}},
				{"issueId":"10002","issueKey":"X-2","currentStatus":{"status":"Waiting for approval","statusDate":{"iso8601":"2020-01-02T00:00:00+0000"}}}
			]}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		got, err := client.PendingApprovals(context.Background(), testConnectorAuthorization)
		if err != nil {
			t.Fatalf("PendingApprovals()でエラーが発生: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("件数 = %d, want 2", len(got))
		}
		// バックエンドの応答順が保持されること
		if got[0].IssueKey != "X-1" || got[1].IssueKey != "X-2" {
			t.Errorf("順序 = [%s, %s], want [X-1, X-2]", got[0].IssueKey, got[1].IssueKey)
		}
	})

	t.Run("バックエンドが非2xxを返す場合BackendErrorになること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		_, err := client.PendingApprovals(context.Background(), testConnectorAuthorization)
		if err == nil {
			t.Fatal("PendingApprovals()がエラーを返すべき")
		}

		var backendErr *BackendError
		if !errors.As(err, &backendErr) {
			t.Fatalf("エラー型 = %T, want *BackendError", err)
		}
		if backendErr.StatusCode != http.StatusForbidden {
			t.Errorf("StatusCode = %d, want %d", backendErr.StatusCode, http.StatusForbidden)
		}
	})
}

// TestApprovalDetail はApprovalDetailを検証する。
func TestApprovalDetail(t *testing.T) {
	t.Parallel()

	t.Run("先頭の承認オブジェクトが返ること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/request/X-1/approval" {
				t.Errorf("パス = %s, want /request/X-1/approval", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"values":[{"id":"48","name":"Waiting for approval","finalDecision":"pending","canAnswerApproval":true}]}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		got, err := client.ApprovalDetail(context.Background(), "X-1", testConnectorAuthorization)
		if err != nil {
			t.Fatalf("ApprovalDetail()でエラーが発生: %v", err)
		}
		if got == nil {
			t.Fatal("ApprovalDetail()がnilを返した")
		}
		if got.ID != "48" {
			t.Errorf("ID = %q, want %q", got.ID, "48")
		}
		if got.FinalDecision != "pending" {
			t.Errorf("FinalDecision = %q, want %q", got.FinalDecision, "pending")
		}
	})

	t.Run("承認が存在しない場合nilが返ること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"values":[]}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		got, err := client.ApprovalDetail(context.Background(), "X-404", testConnectorAuthorization)
		if err != nil {
			t.Fatalf("ApprovalDetail()でエラーが発生: %v", err)
		}
		if got != nil {
			t.Errorf("ApprovalDetail() = %+v, want nil", got)
		}
	})
}

// TestPostComment はPostCommentを検証する。
func TestPostComment(t *testing.T) {
	t.Parallel()

	t.Run("公開コメントとして投稿されること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/request/X-1/comment" {
				t.Errorf("リクエスト = %s %s, want POST /request/X-1/comment", r.Method, r.URL.Path)
			}
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("リクエストボディのパースに失敗: %v", err)
			}
			if body["body"] != "looks good" {
				t.Errorf("body = %v, want %q", body["body"], "looks good")
			}
			if body["public"] != true {
				t.Errorf("public = %v, want true", body["public"])
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"100"}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		if err := client.PostComment(context.Background(), "X-1", "looks good", testConnectorAuthorization); err != nil {
			t.Fatalf("PostComment()でエラーが発生: %v", err)
		}
	})
}

// TestApplyDecision はApplyDecisionを検証する。
func TestApplyDecision(t *testing.T) {
	t.Parallel()

	t.Run("決定が適用され最終決定が返ること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/request/X-1/approval/48" {
				t.Errorf("リクエスト = %s %s, want POST /request/X-1/approval/48", r.Method, r.URL.Path)
			}
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("リクエストボディのパースに失敗: %v", err)
			}
			if body["decision"] != "approve" {
				t.Errorf("decision = %v, want %q", body["decision"], "approve")
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"48","finalDecision":"approved"}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		got, err := client.ApplyDecision(context.Background(), "approve", "X-1", "48", testConnectorAuthorization)
		if err != nil {
			t.Fatalf("ApplyDecision()でエラーが発生: %v", err)
		}
		if got != "approved" {
			t.Errorf("最終決定 = %q, want %q", got, "approved")
		}
	})

	t.Run("バックエンドが要求と異なる決定を返してもそのまま返すこと", func(t *testing.T) {
		t.Parallel()

		// 既に決定済みのケース。バックエンドが記録の正なので上書きしない。
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"48","finalDecision":"declined"}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		got, err := client.ApplyDecision(context.Background(), "approve", "X-1", "48", testConnectorAuthorization)
		if err != nil {
			t.Fatalf("ApplyDecision()でエラーが発生: %v", err)
		}
		if got != "declined" {
			t.Errorf("最終決定 = %q, want %q", got, "declined")
		}
	})
}

// TestCreateCustomerRequest はCreateCustomerRequestを検証する。
func TestCreateCustomerRequest(t *testing.T) {
	t.Parallel()

	t.Run("作成されたリクエストの識別子が返ること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/request" {
				t.Errorf("リクエスト = %s %s, want POST /request", r.Method, r.URL.Path)
			}
			var body struct {
				ServiceDeskID      int               `json:"serviceDeskId"`
				RequestTypeID      int               `json:"requestTypeId"`
				RequestFieldValues map[string]string `json:"requestFieldValues"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("リクエストボディのパースに失敗: %v", err)
			}
			if body.ServiceDeskID != 1 || body.RequestTypeID != 1 {
				t.Errorf("serviceDeskId/requestTypeId = %d/%d, want 1/1", body.ServiceDeskID, body.RequestTypeID)
			}
			if body.RequestFieldValues["summary"] != "printer is broken" {
				t.Errorf("summary = %q, want %q", body.RequestFieldValues["summary"], "printer is broken")
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"issueId":"10010","issueKey":"X-10"}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		got, err := client.CreateCustomerRequest(context.Background(), 1, 1, "printer is broken", "since monday", testConnectorAuthorization)
		if err != nil {
			t.Fatalf("CreateCustomerRequest()でエラーが発生: %v", err)
		}
		if got.IssueID != "10010" || got.IssueKey != "X-10" {
			t.Errorf("応答 = %+v, want issueId=10010, issueKey=X-10", got)
		}
	})
}

// TestListEndpoints は一覧系APIを検証する。
func TestListEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("サービスデスク一覧が取得できること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/servicedesk" {
				t.Errorf("パス = %s, want /servicedesk", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"values":[{"id":"1","projectId":"10000","projectName":"IT Support","projectKey":"X"}]}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		got, err := client.ServiceDesks(context.Background(), testConnectorAuthorization)
		if err != nil {
			t.Fatalf("ServiceDesks()でエラーが発生: %v", err)
		}
		if len(got) != 1 || got[0].ProjectKey != "X" {
			t.Errorf("ServiceDesks() = %+v, want 1件でprojectKey=X", got)
		}
	})

	t.Run("リクエストタイプ一覧が取得できること", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/servicedesk/1/requesttype" {
				t.Errorf("パス = %s, want /servicedesk/1/requesttype", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"values":[{"id":"25","name":"IT help","description":"Get IT help"}]}`)
		}))
		t.Cleanup(server.Close)

		client := New(server.URL)
		got, err := client.RequestTypes(context.Background(), 1, testConnectorAuthorization)
		if err != nil {
			t.Fatalf("RequestTypes()でエラーが発生: %v", err)
		}
		if len(got) != 1 || got[0].Name != "IT help" {
			t.Errorf("RequestTypes() = %+v, want 1件でname=IT help", got)
		}
	})
}

package servicedesk

// FieldValue はカスタマーリクエストの可変長フィールド値リストの1要素。
// どのフィールドが含まれるかはリクエストタイプに依存する。
type FieldValue struct {
	// FieldID はフィールドの識別子（例: "summary", "description"）。
	FieldID string `json:"fieldId"`
	// Label はフィールドの表示名。
	Label string `json:"label"`
	// Value はフィールドの値。
	Value string `json:"value"`
}

// StatusDate はステータス変更日時の複数表現。
type StatusDate struct {
	// ISO8601 はISO 8601形式の日時。カードのフィンガープリント計算に使う。
	ISO8601 string `json:"iso8601"`
	// Friendly は人間向けの表示形式。
	Friendly string `json:"friendly"`
}

// CurrentStatus はカスタマーリクエストの現在のステータス。
type CurrentStatus struct {
	// Status はステータス名（例: "Waiting for approval"）。
	Status string `json:"status"`
	// StatusDate はこのステータスに遷移した日時。
	StatusDate StatusDate `json:"statusDate"`
}

// Reporter はカスタマーリクエストの起票者。
type Reporter struct {
	// DisplayName は起票者の表示名。
	DisplayName string `json:"displayName"`
	// EmailAddress は起票者のメールアドレス。
	EmailAddress string `json:"emailAddress"`
}

// RequestTypeRef はカスタマーリクエストに埋め込まれるリクエストタイプ情報。
type RequestTypeRef struct {
	// ID はリクエストタイプの識別子。
	ID string `json:"id"`
	// Name はリクエストタイプ名。
	Name string `json:"name"`
}

// Links はカスタマーリクエストに付随するリンク集。
type Links struct {
	// Web はバックエンド上でリクエストを開くURL。
	Web string `json:"web"`
}

// CustomerRequest はバックエンドのカスタマーリクエスト（チケット）。
type CustomerRequest struct {
	// IssueID はリクエストの内部識別子。
	IssueID string `json:"issueId"`
	// IssueKey はリクエストの安定した外部識別子（例: "X-1"）。
	IssueKey string `json:"issueKey"`
	// RequestType はリクエストタイプ情報。expand=requestType指定時に含まれる。
	RequestType RequestTypeRef `json:"requestType"`
	// RequestFieldValues は可変長のフィールド値リスト。
	RequestFieldValues []FieldValue `json:"requestFieldValues"`
	// CurrentStatus は現在のステータス。
	CurrentStatus CurrentStatus `json:"currentStatus"`
	// CreatedDate はリクエストの作成日時。
	CreatedDate StatusDate `json:"createdDate"`
	// Reporter は起票者情報。
	Reporter Reporter `json:"reporter"`
	// Links は関連リンク。
	Links Links `json:"_links"`
}

// Approval はカスタマーリクエストに紐づく承認オブジェクト。
type Approval struct {
	// ID は承認の識別子。承認適用APIのパスに使う。
	ID string `json:"id"`
	// Name は承認ステップの名前。
	Name string `json:"name"`
	// FinalDecision は最終決定（"pending"/"approved"/"declined"）。
	FinalDecision string `json:"finalDecision"`
	// CanAnswerApproval は呼び出し元がこの承認に回答できるかどうか。
	CanAnswerApproval bool `json:"canAnswerApproval"`
}

// CreatedRequest はカスタマーリクエスト作成APIの応答のうちコネクタが使う部分。
type CreatedRequest struct {
	// IssueID は作成されたリクエストの内部識別子。
	IssueID string `json:"issueId"`
	// IssueKey は作成されたリクエストの外部識別子。
	IssueKey string `json:"issueKey"`
}

// ServiceDesk はサービスデスク（プロジェクト）の一覧項目。
type ServiceDesk struct {
	// ID はサービスデスクの識別子。
	ID string `json:"id"`
	// ProjectID は対応するプロジェクトの識別子。
	ProjectID string `json:"projectId"`
	// ProjectName はプロジェクト名。
	ProjectName string `json:"projectName"`
	// ProjectKey はプロジェクトキー。
	ProjectKey string `json:"projectKey"`
}

// RequestType はサービスデスクで作成できるリクエストタイプの一覧項目。
type RequestType struct {
	// ID はリクエストタイプの識別子。
	ID string `json:"id"`
	// Name はリクエストタイプ名。
	Name string `json:"name"`
	// Description はリクエストタイプの説明。
	Description string `json:"description"`
}

// valuesResponse はバックエンドの一覧系APIの共通エンベロープ。
type valuesResponse[T any] struct {
	Values []T `json:"values"`
}

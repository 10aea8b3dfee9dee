package connector

// Link はhref1つだけを持つリンクオブジェクト。
type Link struct {
	// Href はリンク先URL。
	Href string `json:"href"`
}

// Card はモバイルクライアントに表示する1件の作業単位のワイヤ表現。
type Card struct {
	// ID はレスポンス項目ごとに一意な不透明識別子。生成のたびに変わる。
	ID string `json:"id"`
	// BackendID は背後のバックエンドレコードの安定識別子。
	// クライアントがポーリング間の重複排除に使う。
	BackendID string `json:"backend_id"`
	// Hash はカード内容のフィンガープリント。表示に影響する
	// フィールドが変化した場合に限り変わる。
	Hash string `json:"hash"`
	// Image はカードのアイコン画像。
	Image Link `json:"image"`
	// Header はカードのタイトル部。
	Header CardHeader `json:"header"`
	// Body はカードの本文フィールド。
	Body CardBody `json:"body"`
	// Actions はカードに添付するアクションの順序付きリスト。
	Actions []CardAction `json:"actions"`
}

// CardHeader はカードのタイトルとサブタイトル。
type CardHeader struct {
	// Title はカードのタイトル。
	Title string `json:"title"`
	// Subtitle はサブタイトルの行リスト。
	Subtitle []string `json:"subtitle,omitempty"`
}

// CardBody はカード本文。
type CardBody struct {
	// Fields は表示フィールドの順序付きリスト。
	Fields []CardBodyField `json:"fields"`
	// Description は本文の説明テキスト。
	Description string `json:"description"`
}

// CardBodyField はカード本文の表示フィールド1つ。
type CardBodyField struct {
	// Type はフィールドの種別。現状は"GENERAL"のみ。
	Type string `json:"type"`
	// Title はフィールドの見出し。
	Title string `json:"title"`
	// Description はフィールドの値。
	Description string `json:"description"`
}

// CardAction はカードに埋め込むユーザー操作1つ。
type CardAction struct {
	// ActionKey は単発実行（DIRECT）かユーザー入力要求（USER_INPUT）かを示す。
	ActionKey string `json:"action_key"`
	// ID はカード内で一意な不透明識別子。
	ID string `json:"id"`
	// UserInput は実行前にユーザーへ入力を求めるフィールドのリスト。
	UserInput []UserInputField `json:"user_input"`
	// Request はアクション実行時にそのまま送り返されるパラメータのテンプレート。
	Request map[string]string `json:"request"`
	// Repeatable は同じアクションを繰り返し実行できるかどうか。
	Repeatable bool `json:"repeatable"`
	// Primary はカードの主アクションかどうか。UX上は1カードに1つまで。
	Primary bool `json:"primary"`
	// Label はアクションのボタンラベル。
	Label string `json:"label"`
	// CompletedLabel は実行完了後に表示するラベル。
	CompletedLabel string `json:"completed_label"`
	// Type はアクション実行時のHTTPメソッド。
	Type string `json:"type"`
	// URL はアクションの送信先。
	URL Link `json:"url"`
}

// UserInputField はアクション実行前にユーザーへ求める入力1つ。
type UserInputField struct {
	// ID は入力フィールドの識別子。Requestのキーとして送り返される。
	ID string `json:"id"`
	// Label は入力フィールドの表示ラベル。
	Label string `json:"label"`
	// MinLength は入力の最小文字数。
	MinLength int `json:"min_length"`
}

// cardsResponse はカード一覧エンドポイントの応答。
type cardsResponse struct {
	Objects []Card `json:"objects"`
}

// discoveryResponse はディスカバリ文書。コネクタの能力を説明する。
type discoveryResponse struct {
	Image       Link                `json:"image"`
	ObjectTypes discoveryObjectType `json:"object_types"`
}

// discoveryObjectType はディスカバリ文書のオブジェクトタイプ一覧。
type discoveryObjectType struct {
	Card discoveryCardType `json:"card"`
}

// discoveryCardType はカードオブジェクトの能力記述。
type discoveryCardType struct {
	// Pollable はクライアントがカードをポーリングできることを示す。
	Pollable bool `json:"pollable"`
	// Doc はカードスキーマのドキュメントURL。
	Doc Link `json:"doc"`
	// Endpoint はカード取得エンドポイントのURL。
	Endpoint Link `json:"endpoint"`
}

// approvalActionRequest は承認アクションエンドポイントのリクエストボディ。
type approvalActionRequest struct {
	// IssueKey は対象カスタマーリクエストの識別子。
	IssueKey string `form:"issueKey" json:"issueKey"`
	// Decision は"approve"または"decline"。
	Decision string `form:"decision" json:"decision"`
	// Comment は任意の理由コメント。
	Comment string `form:"comment" json:"comment"`
}

// createRequestBody はカスタマーリクエスト作成エンドポイントのリクエストボディ。
// 全フィールド任意で、欠けた値にはデフォルトを適用する。
type createRequestBody struct {
	// Summary はリクエストの要約。
	Summary string `form:"summary" json:"summary"`
	// Description はリクエストの詳細。
	Description string `form:"description" json:"description"`
	// ServiceDeskID は作成先サービスデスクの識別子。
	ServiceDeskID int `form:"serviceDeskId" json:"serviceDeskId"`
	// RequestTypeID は作成するリクエストタイプの識別子。
	RequestTypeID int `form:"requestTypeId" json:"requestTypeId"`
}

// listRequestTypesBody はリクエストタイプ一覧エンドポイントのリクエストボディ。
type listRequestTypesBody struct {
	// ServiceDeskID は一覧対象サービスデスクの識別子。
	ServiceDeskID int `form:"serviceDeskId" json:"serviceDeskId"`
}

// setHashRequest は作成カードのフィンガープリントシードを差し替えるリクエストボディ。
type setHashRequest struct {
	// Hash は新しいシード値。
	Hash string `form:"hash" json:"hash"`
}

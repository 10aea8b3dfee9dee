// Package servicedesk はバックエンドのサービスデスクAPIを呼び出すクライアントを提供する。
//
// カスタマーリクエストの取得・作成、承認の適用、コメント投稿など、
// コネクタが必要とする操作だけを薄くラップする。認可には呼び出し元が
// 提示したコネクタ資格情報をそのままAuthorizationヘッダーとして転送し、
// ローカルでは検証しない（認可の主体はバックエンド側にある）。
package servicedesk

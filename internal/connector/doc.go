// Package connector はモバイルカードコネクタの内部実装を提供する。
//
// モバイル集約クライアントに対して固定の「カード」HTTPインターフェースを
// 公開し、バックエンドのサービスデスクのドメインオブジェクト
// （カスタマーリクエスト、承認）をカード表現へ相互変換する。
//
// 主な機能:
//   - ディスカバリ文書の応答（コネクタの能力を説明する非認証GET）
//   - 承認待ちリクエストのカード一覧化（フィンガープリント付き）
//   - カード上のアクション（承認/却下/新規作成）のバックエンド変換
//
// 認証はpkg/middlewareのベアラートークンゲートウェイが行い、
// バックエンド呼び出しには呼び出し元が提示した別個のコネクタ資格情報を
// そのまま転送する。
package connector

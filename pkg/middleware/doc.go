// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// ベアラートークンの検証（認証ゲートウェイ）とパニックリカバリを含む。
// トークンの検証鍵はリモートのアイデンティティサービスが公開する
// 公開鍵であり、検証器はpkg/keycacheのキャッシュを注入して構築する。
package middleware

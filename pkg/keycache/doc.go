// Package keycache はトークン署名検証用の公開鍵キャッシュを提供する。
//
// 公開鍵は署名元のアイデンティティサービスがHTTPで公開しており、
// 数時間単位でローテーションされる可能性がある。リクエストごとに
// 取得するのはネットワーク往復の無駄なので、取得元URLごとに
// 1エントリだけを一定時間キャッシュし、期限切れ後の次回アクセスで
// 再取得する（先行リフレッシュは行わない）。
package keycache

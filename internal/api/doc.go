// Package api はストアフロントのHTTP APIを提供する。
//
// 認証・カタログ・カート・注文のエンドポイントを持つ。
// 保護されたルートはpkg/middlewareの認可ゲートを通過した後にだけ実行され、
// カートと注文の所有者は常にゲートが検証したユーザーIDで決まる。
// エラーからHTTPステータスへの変換はrespondErrorの1か所で行う。
package api

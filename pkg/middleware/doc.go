// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// セッショントークンによる認可ゲート、リクエストIDの付与、アクセスログ、
// パニックリカバリ、CORS設定、HTTPメトリクスの計測を含む。
package middleware

// Package store はカタログ・カート・注文のリポジトリを提供する。
//
// 各リポジトリはBackend（SupabaseのPostgRESTまたはローカルSQLite）に対する
// select/insertの薄いラッパーであり、在庫チェックなどの業務ルールは持たない。
// カートと注文の所有者は常に呼び出し元が渡す検証済みユーザーIDで決まる。
package store

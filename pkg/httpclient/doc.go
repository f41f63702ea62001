// Package httpclient は外部のJSON APIと通信するクライアントを提供する。
//
// SupabaseのAuth（GoTrue）とPostgRESTの呼び出しで共通に使用する。
// 接続先が2xx以外を返した場合は *APIError に変換し、
// 接続先のメッセージを呼び出し元がそのまま利用できるようにする。
package httpclient

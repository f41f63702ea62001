// Package supabase はSupabaseのAuth（GoTrue）とPostgRESTを呼び出すクライアントを提供する。
//
// Clientはidentity.Providerとstore.Backendの両方を実装する。
// 通信はpkg/httpclientに委譲し、Supabaseが返したエラーは *httpclient.APIError として伝播する。
package supabase

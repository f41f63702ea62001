// Package identity は外部IDプロバイダーへの認証情報の検証を提供する。
//
// パスワードの保存と照合はプロバイダー側の責務であり、このパッケージは
// 結果を一様なエラーへ変換するだけで、ローカルにハッシュを持たない。
// ログイン失敗時は「アカウントが存在しない」と「パスワードが違う」を区別しない。
package identity

// Package token はステートレスなセッショントークンの発行と検証を提供する。
//
// トークンはHS256で署名されたJWTで、subjectにIDプロバイダーが払い出したユーザーIDを持つ。
// サーバー側には何も保存しないため、失効は埋め込まれた有効期限によってのみ起こる。
package token

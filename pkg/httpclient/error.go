package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError は接続先APIが2xx以外を返した場合のエラー。
// Messageには接続先が返したメッセージをそのまま保持する。
type APIError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Code は接続先固有のエラーコード（例: PostgRESTの"22P02"）。
	Code string
	// Message は接続先が返したエラーメッセージ。
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTPエラー: status=%d, code=%s, message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTPエラー: status=%d, message=%s", e.StatusCode, e.Message)
}

// newAPIError はレスポンス本文からAPIErrorを組み立てる。
// GoTrue（msg, error_description）とPostgREST（message）の両方の形式を解釈する。
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Code             json.RawMessage `json:"code"`
		ErrorCode        string          `json:"error_code"`
		Message          string          `json:"message"`
		Msg              string          `json:"msg"`
		Error            string          `json:"error"`
		ErrorDescription string          `json:"error_description"`
	}

	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	apiErr.Code = payload.ErrorCode
	if apiErr.Code == "" {
		var code string
		if json.Unmarshal(payload.Code, &code) == nil {
			apiErr.Code = code
		}
	}
	for _, m := range []string{payload.Message, payload.Msg, payload.ErrorDescription, payload.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

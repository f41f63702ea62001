package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/storefront/pkg/httpclient"
)

var (
	// ErrInvalidCredentials はメールアドレスまたはパスワードが誤っている場合のエラー。
	// 失敗の理由に関わらず同じエラーを返す。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials はメールアドレスまたはパスワードが空の場合のエラー。
	ErrMissingCredentials = errors.New("email and password are required")
)

// RegistrationError はプロバイダーがアカウント作成を拒否した場合のエラー。
// Messageにはプロバイダーのメッセージ（例: "User already registered"）をそのまま保持する。
type RegistrationError struct {
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *RegistrationError) Error() string {
	return e.Message
}

// User はIDプロバイダーが管理するユーザー。
type User struct {
	// ID はプロバイダーが払い出した不変の識別子。
	ID string `json:"id"`
	// Email はログインに使用するメールアドレス。
	Email string `json:"email"`
	// Name は登録時に指定された表示名。
	Name string `json:"name,omitempty"`
	// CreatedAt はアカウントの作成日時。
	CreatedAt time.Time `json:"created_at"`
}

// Provider は外部IDプロバイダーの操作。*supabase.Client が実装する。
type Provider interface {
	SignUp(ctx context.Context, email, password, name string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
}

// Verifier はプロバイダーへ認証情報の検証を委譲する。
type Verifier struct {
	provider Provider
	logger   *slog.Logger
}

// NewVerifier は新しいVerifierを生成する。
func NewVerifier(provider Provider, logger *slog.Logger) *Verifier {
	return &Verifier{provider: provider, logger: logger}
}

// Verify はメールアドレスとパスワードを検証し、成功した場合はユーザーを返す。
// 失敗した場合は理由をログに記録し、常にErrInvalidCredentialsを返す。
func (v *Verifier) Verify(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := v.provider.SignIn(ctx, email, password)
	if err != nil {
		v.logger.WarnContext(ctx, "認証情報の検証に失敗しました", "error", err)
		return nil, ErrInvalidCredentials
	}
	if user == nil || user.ID == "" {
		v.logger.WarnContext(ctx, "プロバイダーがユーザーIDを返しませんでした")
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Register はプロバイダーにアカウントの作成を依頼する。
// プロバイダーが拒否した場合は *RegistrationError を返す。
func (v *Verifier) Register(ctx context.Context, email, password, name string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := v.provider.SignUp(ctx, email, password, name)
	if err != nil {
		var apiErr *httpclient.APIError
		if errors.As(err, &apiErr) {
			return nil, &RegistrationError{Message: apiErr.Message}
		}
		return nil, fmt.Errorf("アカウント作成に失敗: %w", err)
	}
	return user, nil
}

// Lookup は検証済みのIDに対応するユーザーを取得する。
func (v *Verifier) Lookup(ctx context.Context, id string) (*User, error) {
	user, err := v.provider.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザー %s の取得に失敗: %w", id, err)
	}
	return user, nil
}

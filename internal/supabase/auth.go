package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/storefront/internal/identity"
	"github.com/nao1215/storefront/pkg/httpclient"
)

var _ identity.Provider = (*Client)(nil)

// authUser はGoTrueが返すユーザー。
type authUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
}

// authResponse はサインアップとサインインの応答。
// メール確認が有効な場合、サインアップはセッションを伴わずユーザーだけを返す。
type authResponse struct {
	authUser
	AccessToken string    `json:"access_token"`
	User        *authUser `json:"user"`
}

func (r *authResponse) user() (*identity.User, error) {
	u := r.User
	if u == nil {
		u = &r.authUser
	}
	if u.ID == "" {
		return nil, errors.New("supabase: response does not contain a user")
	}
	return u.toUser(), nil
}

func (u *authUser) toUser() *identity.User {
	return &identity.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.UserMetadata.Name,
		CreatedAt: u.CreatedAt,
	}
}

// SignUp はメールアドレスとパスワードでアカウントを作成する。表示名はuser_metadata.nameに保存する。
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*identity.User, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}
	var resp authResponse
	if err := c.auth.PostJSON(ctx, "/auth/v1/signup", body, &resp); err != nil {
		return nil, err
	}
	return resp.user()
}

// SignIn はメールアドレスとパスワードを検証する。
// 発行されたSupabaseのセッションは使用せず、ユーザーだけを返す。
func (c *Client) SignIn(ctx context.Context, email, password string) (*identity.User, error) {
	req := httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/v1/token",
		Query:  url.Values{"grant_type": {"password"}},
		Body:   map[string]string{"email": email, "password": password},
	}
	var resp authResponse
	if err := c.auth.Do(ctx, req, &resp); err != nil {
		return nil, err
	}
	return resp.user()
}

// GetUser は管理APIで指定IDのユーザーを取得する。サービスロールキーが必要。
func (c *Client) GetUser(ctx context.Context, id string) (*identity.User, error) {
	if c.admin == nil {
		return nil, ErrServiceKeyRequired
	}
	var u authUser
	if err := c.admin.GetJSON(ctx, "/auth/v1/admin/users/"+url.PathEscape(id), &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, errors.New("supabase: response does not contain a user")
	}
	return u.toUser(), nil
}

package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証で返されるエラー。
// Authenticateミドルウェアはこれらを区別してログに記録するが、クライアントには返さない。
var (
	// ErrMalformedToken はトークンをパース・デコードできない場合のエラー。
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature は署名が一致しない、または想定外のアルゴリズムの場合のエラー。
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired はトークンの有効期限が切れている場合のエラー。
	ErrExpired = errors.New("token expired")
	// ErrInvalidClaims は有効期限以外のクレーム検証（発行者、iat、nbf）に失敗した場合のエラー。
	ErrInvalidClaims = errors.New("invalid token claims")
	// ErrEmptySubject は空のユーザーIDでトークンを発行しようとした場合のエラー。
	ErrEmptySubject = errors.New("token subject must not be empty")
)

// DefaultIssuer はConfig.Issuerが未指定の場合に使用する発行者名。
const DefaultIssuer = "storefront"

// Config はCodecの設定。起動時に一度だけ構築し、以降は変更しない。
type Config struct {
	// Secret はHS256署名用の共有秘密鍵。
	Secret string
	// TTL はトークンの有効期間。0の場合はexpクレームを付与しない。
	TTL time.Duration
	// Issuer はissクレームに設定する発行者名。
	Issuer string
}

// Codec はセッショントークンの発行と検証を行う。
// サーバー側に状態を持たないため、検証はトークン文字列と秘密鍵のみで決まる。
// 有効期限前にトークンを無効化する仕組みは存在しない。
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewCodec は設定を検証して新しいCodecを生成する。
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("トークン署名用の秘密鍵が設定されていません")
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("トークンの有効期間が不正です: %s", cfg.TTL)
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Codec{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// Issue は指定されたユーザーIDをsubjectとする署名済みトークンを発行する。
func (c *Codec) Issue(subject string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:  subject,
		Issuer:   c.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、subjectのユーザーIDを返す。
// 失敗時は ErrMalformedToken / ErrInvalidSignature / ErrExpired / ErrInvalidClaims のいずれかを返す。
func (c *Codec) Verify(tokenString string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return "", classify(err)
	}

	if claims.Subject == "" {
		return "", ErrMalformedToken
	}
	return claims.Subject, nil
}

// classify はjwtライブラリのエラーをパッケージのエラーに変換する。
// 署名検証はクレーム検証より先に行われるため、判定順序もそれに合わせる。
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		return fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}

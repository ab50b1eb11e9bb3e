package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/seed"
)

// ErrInvalidToken はトークンの署名や形式が不正な場合に返される。
var ErrInvalidToken = errors.New("invalid session token")

// sessionClaims はセッショントークンに含めるクレーム。
type sessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenIssuer はユーザーIDと発行時刻を束ねたセッショントークンを発行・検証する。
// 有効期限は持たない。
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer はHS256署名用のシークレットでTokenIssuerを生成する。
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue はセッショントークンを発行する。
func (i *TokenIssuer) Issue(userID string, issuedAt time.Time) (string, error) {
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Parse はトークンを検証し、セッション情報を返す。
func (i *TokenIssuer) Parse(token string) (*model.Session, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing userId", ErrInvalidToken)
	}

	session := &model.Session{UserID: claims.UserID}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}

// MatchCredential は保存済み資格情報と入力パスワードを照合する。
// 保存値がbcryptハッシュの場合はハッシュ比較、それ以外は完全一致で比較する。
func MatchCredential(stored, given string) bool {
	if seed.IsHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// Package seed は初回起動時にストアへ投入する初期データを提供する。
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/hitoshi/salesnav/internal/model"
	"github.com/hitoshi/salesnav/internal/store"
)

// DefaultUsers は組み込みの初期ユーザー（管理者と営業担当）を返す。
func DefaultUsers() []model.User {
	return []model.User{
		{
			ID:       "1",
			Email:    "admin@visionarymedia.com",
			Password: "admin123",
			Name:     "Admin User",
			Role:     model.RoleAdmin,
			Team:     "Management",
		},
		{
			ID:       "2",
			Email:    "sales@visionarymedia.com",
			Password: "sales123",
			Name:     "Sales User",
			Role:     model.RoleSales,
			Team:     "Sales Team A",
		},
	}
}

// usersFile はSEED_USERS_FILEで指定するYAMLファイルの構造。
type usersFile struct {
	Users []model.User `yaml:"users"`
}

// LoadUsersFile はYAMLファイルから初期ユーザーを読み込む。
// id・email・passwordが欠けたユーザーやemailの重複はエラーとする。
func LoadUsersFile(path string) ([]model.User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed users file: %w", err)
	}

	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed users file: %w", err)
	}

	if len(f.Users) == 0 {
		return nil, fmt.Errorf("seed users file %s contains no users", path)
	}

	emails := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if u.ID == "" || u.Email == "" || u.Password == "" {
			return nil, fmt.Errorf("seed user #%d: id, email and password are required", i+1)
		}
		if u.Role != model.RoleAdmin && u.Role != model.RoleSales {
			return nil, fmt.Errorf("seed user %s: unknown role %q", u.ID, u.Role)
		}
		if emails[u.Email] {
			return nil, fmt.Errorf("seed user %s: duplicate email %s", u.ID, u.Email)
		}
		emails[u.Email] = true
	}

	return f.Users, nil
}

// IsHashed はパスワードがbcryptハッシュ形式かどうかを返す。
func IsHashed(password string) bool {
	return strings.HasPrefix(password, "$2a$") ||
		strings.HasPrefix(password, "$2b$") ||
		strings.HasPrefix(password, "$2y$")
}

// HashPasswords は平文パスワードをbcryptハッシュに置き換えたコピーを返す。
// すでにハッシュ化されているパスワードはそのまま維持する。
func HashPasswords(users []model.User, cost int) ([]model.User, error) {
	out := make([]model.User, len(users))
	for i, u := range users {
		if !IsHashed(u.Password) {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password for user %s: %w", u.ID, err)
			}
			u.Password = string(hash)
		}
		out[i] = u
	}
	return out, nil
}

// Defaults はストアに投入する初期値を返す。
// ユーザー一覧と空の4コレクションを含む。
func Defaults(users []model.User) (map[string][]byte, error) {
	usersJSON, err := json.Marshal(users)
	if err != nil {
		return nil, fmt.Errorf("failed to encode seed users: %w", err)
	}

	empty := []byte("[]")
	return map[string][]byte{
		store.KeyUsers:     usersJSON,
		store.KeyLeads:     empty,
		store.KeyClients:   empty,
		store.KeyEvents:    empty,
		store.KeyReferrals: empty,
	}, nil
}

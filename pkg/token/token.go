package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	// keySize 是随机生成的签名密钥长度
	keySize = 32
	// macSize 是截断后的签名长度。Discord的custom id最多100个字符，
	// 16字节签名编码后只占22个字符。
	macSize = 16
	sep     = ":"
)

// ErrBadSignature 表示custom id格式错误或签名不匹配
var ErrBadSignature = errors.New("bad menu signature")

// Payload 定义了需要被签名的数据结构，它随菜单组件一起发给客户端，
// 在用户选择后原样带回。
type Payload struct {
	Kind   string
	Nonce  string
	UserID string
}

// Signer 使用HMAC-SHA256对Payload签名
type Signer struct {
	key []byte
}

// NewSigner 使用给定的密钥创建签名器；密钥为空时生成一个密码学安全的随机密钥。
func NewSigner(secret string) (*Signer, error) {
	if secret != "" {
		return &Signer{key: []byte(secret)}, nil
	}
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("无法生成安全的密钥: %w", err)
	}
	return &Signer{key: key}, nil
}

func (s *Signer) mac(p Payload) []byte {
	m := hmac.New(sha256.New, s.key)
	m.Write([]byte(p.Kind + sep + p.Nonce + sep + p.UserID))
	return m.Sum(nil)[:macSize]
}

// Encode 把Payload编码为 kind:nonce:user:signature 形式的custom id
func (s *Signer) Encode(p Payload) (string, error) {
	for _, field := range []string{p.Kind, p.Nonce, p.UserID} {
		if field == "" || strings.Contains(field, sep) {
			return "", fmt.Errorf("无法编码payload字段 %q", field)
		}
	}
	sig := base64.RawURLEncoding.EncodeToString(s.mac(p))
	return strings.Join([]string{p.Kind, p.Nonce, p.UserID, sig}, sep), nil
}

// Decode 解析custom id并验证签名
func (s *Signer) Decode(customID string) (Payload, error) {
	parts := strings.Split(customID, sep)
	if len(parts) != 4 {
		return Payload{}, ErrBadSignature
	}
	p := Payload{Kind: parts[0], Nonce: parts[1], UserID: parts[2]}

	actual, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil {
		return Payload{}, ErrBadSignature
	}
	// 使用 hmac.Equal 进行时间恒定的比较
	if !hmac.Equal(s.mac(p), actual) {
		return Payload{}, ErrBadSignature
	}
	return p, nil
}

// Kind 返回custom id的类型前缀，不做签名校验，用于交互路由
func Kind(customID string) string {
	kind, _, _ := strings.Cut(customID, sep)
	return kind
}

package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/stat-trainer-bot/pkg/token"
	"github.com/google/uuid"
)

// TrainKind 是训练菜单custom id的类型前缀
const TrainKind = "train"

// Menus 实现训练的两阶段协议："展示选项" 签发一个与发起者绑定的一次性实例，
// "应用选择" 只有在发起者本人使用该实例时才会成功。
type Menus struct {
	store  Store
	signer *token.Signer
	ttl    time.Duration
	now    func() time.Time
}

// New 创建菜单协议
func New(store Store, signer *token.Signer, ttl time.Duration) *Menus {
	return &Menus{store: store, signer: signer, ttl: ttl, now: time.Now}
}

// Present 为用户签发一个新的菜单实例，返回要放进选择菜单组件的custom id
func (m *Menus) Present(ctx context.Context, userID, channelID string) (string, error) {
	nonce, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	s := Session{
		Nonce:     nonce.String(),
		UserID:    userID,
		ChannelID: channelID,
		IssuedAt:  m.now(),
	}

	customID, err := m.signer.Encode(token.Payload{Kind: TrainKind, Nonce: s.Nonce, UserID: userID})
	if err != nil {
		return "", err
	}
	if err := m.store.Issue(ctx, s, m.ttl); err != nil {
		return "", err
	}
	return customID, nil
}

// Resolve 校验一次菜单交互并消耗对应的实例。
// actorID 是实际与菜单交互的用户；它必须与签发时的用户一致，
// 否则返回 ErrForeign 且实例保持可用。
func (m *Menus) Resolve(ctx context.Context, customID, actorID string) (Session, error) {
	p, err := m.signer.Decode(customID)
	if err != nil {
		return Session{}, err
	}
	if p.Kind != TrainKind {
		return Session{}, token.ErrBadSignature
	}
	if p.UserID != actorID {
		return Session{}, ErrForeign
	}

	s, err := m.store.Consume(ctx, p.Nonce)
	if err != nil {
		return Session{}, err
	}
	if s.UserID != p.UserID {
		return Session{}, ErrForeign
	}
	return s, nil
}

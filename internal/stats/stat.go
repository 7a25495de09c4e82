package stats

import (
	"errors"
	"fmt"
	"strings"
)

// Stat 是可训练属性的标签类型，只有三个合法取值。
// 每个取值对应一个固定的数据库列，列名从不由用户输入拼接而来。
type Stat int

const (
	Attack Stat = iota + 1
	Speed
	Defense
)

var (
	// ErrInvalidStat 表示无法识别的属性代码
	ErrInvalidStat = errors.New("invalid stat code")
	// ErrActionUnavailable 表示用户本回合已经行动过
	ErrActionUnavailable = errors.New("action already used this round")
	// ErrNoRecord 表示用户还没有任何属性记录
	ErrNoRecord = errors.New("no stats record")
)

// All 按展示顺序返回全部属性
func All() []Stat {
	return []Stat{Attack, Speed, Defense}
}

// ParseCode 把聊天中使用的属性代码 (str/sp/def) 解析为 Stat，大小写不敏感
func ParseCode(code string) (Stat, error) {
	switch strings.ToLower(code) {
	case "str":
		return Attack, nil
	case "sp":
		return Speed, nil
	case "def":
		return Defense, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStat, code)
}

// Code 返回属性在聊天命令中的代码
func (s Stat) Code() string {
	switch s {
	case Attack:
		return "str"
	case Speed:
		return "sp"
	case Defense:
		return "def"
	}
	return ""
}

// Name 返回属性的展示名
func (s Stat) Name() string {
	switch s {
	case Attack:
		return "Attack"
	case Speed:
		return "Speed"
	case Defense:
		return "Defense"
	}
	return "Unknown"
}

func (s Stat) String() string {
	return s.Name()
}

// column 返回属性对应的固定列名
func (s Stat) column() (string, error) {
	switch s {
	case Attack:
		return "attack", nil
	case Speed:
		return "speed", nil
	case Defense:
		return "defense", nil
	}
	return "", fmt.Errorf("%w: %d", ErrInvalidStat, int(s))
}

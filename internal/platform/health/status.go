package health

import (
	"sync"
)

// State 定义了系统健康状态的枚举类型
type State int

const (
	StateHealthy State = iota
	StateDegraded
)

func (s State) String() string {
	if s == StateHealthy {
		return "healthy"
	}
	return "degraded"
}

// statusManager 负责线程安全地保存最近一次检查的结果
type statusManager struct {
	mu      sync.RWMutex
	current State
	last    Report
}

// update 保存新的报告，并返回状态是否发生了变化
func (sm *statusManager) update(r Report) (changed bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	changed = sm.current != r.State
	sm.current = r.State
	sm.last = r
	return changed
}

func (sm *statusManager) snapshot() Report {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.last
}

package service

import "sync"

// sessionLocks 进程内的牌局互斥锁表，按牌局 ID 惰性创建
// 串行化同一牌局的所有变更操作；跨进程一致性由 sessions.version 乐观锁兜底
var sessionLocks sync.Map

// lockSession 锁定指定牌局，返回解锁函数
func lockSession(sessionID string) func() {
	v, _ := sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

package server

import "sync"

// Store はKVストアの基本操作を定義するインターフェース
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string) bool
	Size() int
}

// Ensure memoryStore implements Store
var _ Store = (*memoryStore)(nil)

// memoryStore はRWMutexで保護されたインメモリストア
type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		data: make(map[string][]byte),
	}
}

// Get はキーの値を返す
func (s *memoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[key]
	if !ok {
		return nil, false
	}
	// 呼び出し側の変更から守るためコピーを返す
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true
}

// Set はキーに値を設定する（上書きは最後の書き込みが勝つ）
func (s *memoryStore) Set(key string, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	s.data[key] = cp
	s.mu.Unlock()
}

// Delete はキーを削除し、存在したかどうかを返す
func (s *memoryStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	return true
}

// Size は保存されているキー数を返す
func (s *memoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

package foam

import (
	"strconv"
	"sync"
)

// MemoryState is an in-process SharedState implementation for local runs and
// tests; the real shared-state key/value backend is an external
// collaborator that this module never implements, only consumes.
type MemoryState struct {
	mu sync.RWMutex
	tables map[string]map[string]string
	subs map[string][]chan string
}

func NewMemoryState() *MemoryState {
	return &MemoryState{
		tables: make(map[string]map[string]string),
		subs: make(map[string][]chan string),
	}
}

func (m *MemoryState) Get(namespace, field string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[namespace]
	if !ok {
		return "", false
	}
	v, ok := table[field]
	return v, ok
}

func (m *MemoryState) GetAll(namespace string) (map[string]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[namespace]
	if !ok {
		return map[string]string{}, true
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[k] = v
	}
	return out, true
}

func (m *MemoryState) GetMany(namespace string, fields []string) (map[string]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	table, ok := m.tables[namespace]
	out := make(map[string]string, len(fields))
	if !ok {
		return out, true
	}
	for _, f := range fields {
		if v, present := table[f]; present {
			out[f] = v
		}
	}
	return out, true
}

// Set writes field, returning true (created) if the field was previously
// absent and false if it overwrote an existing value.
func (m *MemoryState) Set(namespace, field, value string) (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.tables[namespace]
	if !ok {
		table = make(map[string]string)
		m.tables[namespace] = table
	}
	_, existed := table[field]
	table[field] = value
	return !existed, true
}

func (m *MemoryState) IncrInt(namespace, field string, n int64) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.tableFor(namespace)
	cur, _ := strconv.ParseInt(table[field], 10, 64)
	cur += n
	table[field] = strconv.FormatInt(cur, 10)
	return cur, true
}

func (m *MemoryState) IncrFloat(namespace, field string, x float64) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.tableFor(namespace)
	cur, _ := strconv.ParseFloat(table[field], 64)
	cur += x
	table[field] = strconv.FormatFloat(cur, 'g', -1, 64)
	return cur, true
}

func (m *MemoryState) tableFor(namespace string) map[string]string {
	table, ok := m.tables[namespace]
	if !ok {
		table = make(map[string]string)
		m.tables[namespace] = table
	}
	return table
}

// Publish delivers message to every live subscriber channel on channel,
// dropping it if nobody is listening (fire-and-forget, matching a
// pub/sub backend with no durable queue).
func (m *MemoryState) Publish(channel, message string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.subs[channel] {
		select {
			case ch <- message:
			default:
		}
	}
	return true
}

// Subscribe returns a channel of messages on channel and an unsubscribe
// function.
func (m *MemoryState) Subscribe(channel string) (<-chan string, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan string, 16)
	m.subs[channel] = append(m.subs[channel], ch)
	unsub := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		peers := m.subs[channel]
		for i, c := range peers {
			if c == ch {
				m.subs[channel] = append(peers[:i], peers[i+1:]...)
				break
			}
		}
		close(ch)
	}
	return ch, unsub
}

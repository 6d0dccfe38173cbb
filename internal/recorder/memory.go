package recorder

import "sync"

// Memory keeps recorded rows in memory.
type Memory struct {
	mu   sync.Mutex
	rows []Row
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Init() error {
	return nil
}

func (m *Memory) Record(row *Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, *row)

	return nil
}

// Rows returns a copy of every recorded row
func (m *Memory) Rows() []Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]Row, len(m.rows))
	copy(rows, m.rows)

	return rows
}

func (m *Memory) Close() error {
	return nil
}

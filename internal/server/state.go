package server

import (
	"sync"
	"time"

	"bisection/internal/bisection"
)

// параметры запуска метода
type RunParams struct {
	Func      string  `json:"func"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	TolInput  float64 `json:"tolInput"`
	TolOutput float64 `json:"tolOutput"`
	MaxIter   int     `json:"maxIter"`
}

// Статусы запуска
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

// состояние одного запуска; пишет только горутина метода
type RunState struct {
	ID        string
	Params    RunParams
	CreatedAt time.Time

	f bisection.Func

	mu       sync.Mutex
	status   string
	lastIter bisection.Iter
	result   bisection.Result
	err      string
	final    string // последнее SSE-сообщение для поздних подписчиков
	done     chan struct{}
}

// RunSnapshot — копия состояния запуска для ответа клиенту
type RunSnapshot struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"createdAt"`
	Status    string            `json:"status"`
	LastIter  *bisection.Iter   `json:"lastIter,omitempty"`
	Result    *bisection.Result `json:"result,omitempty"`
	Err       string            `json:"err,omitempty"`
}

func newRunState(id string, p RunParams, f bisection.Func) *RunState {
	return &RunState{
		ID:        id,
		Params:    p,
		CreatedAt: time.Now(),
		f:         f,
		status:    StatusRunning,
		done:      make(chan struct{}),
	}
}

func (rs *RunState) step(it bisection.Iter) {
	rs.mu.Lock()
	rs.lastIter = it
	rs.mu.Unlock()
}

func (rs *RunState) finish(res bisection.Result, err error, final string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if err != nil {
		rs.status = StatusError
		rs.err = err.Error()
	} else {
		rs.status = StatusDone
		rs.result = res
	}
	rs.final = final
	close(rs.done)
}

// Done закрывается, когда запуск завершён и finalMessage уже задан
func (rs *RunState) Done() <-chan struct{} {
	return rs.done
}

func (rs *RunState) Snapshot() RunSnapshot {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	snap := RunSnapshot{ID: rs.ID, CreatedAt: rs.CreatedAt, Status: rs.status, Err: rs.err}
	switch rs.status {
	case StatusRunning:
		if rs.lastIter.K > 0 {
			it := rs.lastIter
			snap.LastIter = &it
		}
	case StatusDone:
		res := rs.result
		snap.Result = &res
	}
	return snap
}

// finalMessage — терминальное SSE-сообщение, пусто пока метод работает
func (rs *RunState) finalMessage() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.final
}

// Store — запуски по id
type Store struct {
	mu   sync.Mutex
	runs map[string]*RunState
}

func NewStore() *Store {
	return &Store{runs: map[string]*RunState{}}
}

func (s *Store) Save(rs *RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rs.ID] = rs
}

func (s *Store) Get(id string) *RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

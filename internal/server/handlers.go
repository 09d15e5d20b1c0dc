package server

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"bisection/internal/bisection"
	"bisection/internal/chart"
	"bisection/internal/config"
	"bisection/internal/metrics"
	"bisection/internal/sse"
)

// Server — HTTP-обёртка над методом бисекции
type Server struct {
	cfg     config.SolverConfig
	log     *zap.Logger
	runs    *Store
	hub     *sse.Hub
	metrics *metrics.Metrics
	reg     *prometheus.Registry

	wg sync.WaitGroup
}

func New(cfg config.SolverConfig, log *zap.Logger, reg *prometheus.Registry) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		log:     log,
		runs:    NewStore(),
		hub:     sse.NewHub(64),
		metrics: metrics.New(reg),
		reg:     reg,
	}
}

// Wait дожидается завершения всех запущенных методов
func (s *Server) Wait() {
	s.wg.Wait()
}

// Solve запускает новый процесс поиска корня
func (s *Server) Solve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}

	var p RunParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "ошибка JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := s.cfg.Options()
	if p.MaxIter <= 0 {
		p.MaxIter = opts.MaxIterations
	}
	if p.TolInput <= 0 {
		p.TolInput = opts.TolInput
	}
	if p.TolOutput <= 0 {
		p.TolOutput = opts.TolOutput
	}
	if err := bisection.CheckBounds(p.A, p.B); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := bisection.NewExprFunc(p.Func)
	if err != nil {
		http.Error(w, "ошибка в выражении функции: "+err.Error(), http.StatusBadRequest)
		return
	}

	// предварительно считаем значения функции для графика
	pts := chart.Sample(f, p.A, p.B, s.cfg.Samples)
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i], ys[i] = pt.X, pt.Y
	}

	id := uuid.NewString()
	rs := newRunState(id, p, f)
	s.runs.Save(rs)

	opts.TolInput = p.TolInput
	opts.TolOutput = p.TolOutput
	opts.MaxIterations = p.MaxIter
	opts.Logger = s.log.With(zap.String("run", id))

	s.wg.Add(1)
	go s.run(rs, opts)

	resp := map[string]any{
		"id": id,
		"xs": xs,
		"ys": ys,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// run выполняет метод и рассылает события подписчикам
func (s *Server) run(rs *RunState, opts bisection.Options) {
	defer s.wg.Done()
	s.metrics.ActiveRuns.Inc()
	defer s.metrics.ActiveRuns.Dec()

	id := rs.ID
	s.log.Info("run started",
		zap.String("run", id),
		zap.String("func", rs.Params.Func),
		zap.Float64("a", rs.Params.A),
		zap.Float64("b", rs.Params.B))

	s.publish(id, map[string]any{"type": "start", "id": id})

	opts.OnStep = func(it bisection.Iter) {
		rs.step(it)
		s.publish(id, map[string]any{"type": "iter", "iter": it})
	}

	res, err := bisection.Run(rs.f, rs.Params.A, rs.Params.B, opts)
	s.metrics.Observe(res, err)

	var final map[string]any
	if err != nil {
		s.log.Warn("run failed", zap.String("run", id), zap.Error(err))
		final = map[string]any{"type": "error", "err": err.Error()}
	} else {
		s.log.Info("run converged",
			zap.String("run", id),
			zap.Float64("root", res.Root),
			zap.Int("iterations", res.Iterations),
			zap.Int("subscribers", s.hub.Subscribers(id)))
		final = map[string]any{"type": "done", "x": res.Root, "iterations": res.Iterations}
	}

	msg := s.encode(final)
	rs.finish(res, err, msg)
	s.hub.Publish(id, msg)
}

func (s *Server) publish(id string, payload map[string]any) {
	s.hub.Publish(id, s.encode(payload))
}

func (s *Server) encode(payload map[string]any) string {
	msg, err := json.Marshal(payload)
	if err != nil {
		s.log.Error("encode event", zap.Error(err))
		return `{"type":"error","err":"encode event"}`
	}
	return string(msg)
}

// lookup достаёт запуск по ?id= или пишет ошибку клиенту
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *RunState {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return nil
	}

	rs := s.runs.Get(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return nil
	}
	return rs
}

// Result — статус запуска и результат
func (s *Server) Result(w http.ResponseWriter, r *http.Request) {
	rs := s.lookup(w, r)
	if rs == nil {
		return
	}

	snap := rs.Snapshot()
	code := http.StatusOK
	switch snap.Status {
	case StatusRunning:
		code = http.StatusAccepted
	case StatusError:
		code = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(snap)
}

// done отдаёт результат завершённого запуска или пишет ошибку клиенту
func (s *Server) done(w http.ResponseWriter, r *http.Request) (*RunState, bisection.Result, bool) {
	rs := s.lookup(w, r)
	if rs == nil {
		return nil, bisection.Result{}, false
	}
	snap := rs.Snapshot()
	switch snap.Status {
	case StatusRunning:
		http.Error(w, "запуск ещё не завершён", http.StatusConflict)
		return nil, bisection.Result{}, false
	case StatusError:
		http.Error(w, snap.Err, http.StatusUnprocessableEntity)
		return nil, bisection.Result{}, false
	}
	return rs, *snap.Result, true
}

// ExportCSV — экспорт итераций в CSV, строка 0 — исходный отрезок
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rs, res, ok := s.done(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=iterations_"+rs.ID+".csv")

	cw := csv.NewWriter(w)
	defer cw.Flush()

	_ = cw.Write([]string{"k", "a", "b", "f(a)", "f(b)", "b-a"})
	_ = cw.Write(csvRow(0, res.Initial))
	for _, it := range res.History {
		_ = cw.Write(csvRow(it.K, it.State))
	}
}

func csvRow(k int, st bisection.State) []string {
	return []string{
		strconv.Itoa(k),
		fmtFloat(st.A),
		fmtFloat(st.B),
		fmtFloat(st.FA),
		fmtFloat(st.FB),
		fmtFloat(st.Width()),
	}
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 16, 64)
}

// Plot — PNG с графиком сходимости (kind=convergence) или функции (kind=function)
func (s *Server) Plot(w http.ResponseWriter, r *http.Request) {
	rs, res, ok := s.done(w, r)
	if !ok {
		return
	}

	var write func(http.ResponseWriter) error
	switch kind := r.URL.Query().Get("kind"); kind {
	case "", "convergence":
		write = func(w http.ResponseWriter) error { return chart.WriteConvergence(w, res) }
	case "function":
		write = func(w http.ResponseWriter) error { return chart.WriteFunction(w, rs.f, res) }
	default:
		http.Error(w, fmt.Sprintf("неизвестный вид графика %q", kind), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := write(w); err != nil {
		s.log.Error("plot failed", zap.String("run", rs.ID), zap.Error(err))
	}
}

// Stream — SSE-стрим итераций
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	rs := s.lookup(w, r)
	if rs == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.hub.Subscribe(rs.ID)
	defer cancel()

	// запуск мог закончиться до подписки
	if msg := rs.finalMessage(); msg != "" {
		writeEvent(w, msg)
		flusher.Flush()
		return
	}

	// hub теряет сообщения медленного клиента, в том числе финальное,
	// поэтому конец запуска узнаём по rs.Done(), а не по каналу
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-rs.Done():
			final := rs.finalMessage()
		drain:
			for {
				select {
				case msg := <-ch:
					if msg != final {
						writeEvent(w, msg)
					}
				default:
					break drain
				}
			}
			writeEvent(w, final)
			flusher.Flush()
			return
		case msg := <-ch:
			writeEvent(w, msg)
			flusher.Flush()
			if msg == rs.finalMessage() {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, msg string) {
	fmt.Fprintf(w, "event: msg\n")
	fmt.Fprintf(w, "data: %s\n\n", msg)
}

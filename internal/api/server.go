package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"resp-bench/internal/events"
	"resp-bench/internal/harness"
	"resp-bench/internal/logger"
)

//go:embed static/*
var staticFiles embed.FS

// Server はモニタリング用APIサーバー
type Server struct {
	addr string
	base harness.Config
	bus  *events.Bus

	mu        sync.RWMutex
	engine    *harness.Engine
	runCancel context.CancelFunc
	running   bool
	runName   string
	wsClients map[*websocket.Conn]bool

	server *http.Server
}

// NewServer は新しいAPIサーバーを作成する
// baseはランのデフォルト設定（プリセット未指定時の対象アドレスなど）
func NewServer(addr string, base harness.Config) *Server {
	return &Server{
		addr:      addr,
		base:      base,
		bus:       events.NewBus(),
		wsClients: make(map[*websocket.Conn]bool),
	}
}

// routes はHTTPルーティングを構築する
func (s *Server) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/results", s.handleResults)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/run/start", s.handleRunStart)
	mux.HandleFunc("/api/run/stop", s.handleRunStop)

	// WebSocket
	mux.Handle("/ws", websocket.Handler(s.handleWebSocket))

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to get static files: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))

	return mux, nil
}

// Start はサーバーを開始する（ctxのキャンセルで停止）
func (s *Server) Start(ctx context.Context) error {
	mux, err := s.routes()
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	// バックグラウンドでイベント配信
	go s.forwardEvents(ctx)

	logger.Info("api", "monitor server starting on http://%s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StatusResponse はステータスレスポンス
type StatusResponse struct {
	Running bool   `json:"running"`
	RunName string `json:"run_name,omitempty"`
	Target  string `json:"target"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	resp := StatusResponse{
		Running: s.running,
		RunName: s.runName,
		Target:  s.base.Addr,
	}
	s.mu.RUnlock()

	s.writeJSON(w, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()

	if engine == nil || engine.LastReport() == nil {
		http.Error(w, "No completed run", http.StatusNotFound)
		return
	}

	s.writeJSON(w, engine.LastReport())
}

// PresetInfo はプリセット情報
type PresetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var presets []PresetInfo
	for _, name := range harness.ListPresets() {
		config, _ := harness.GetPreset(name)
		presets = append(presets, PresetInfo{Name: name, Description: config.Description})
	}

	s.writeJSON(w, presets)
}

// RunRequest はラン開始リクエスト
type RunRequest struct {
	Preset       string `json:"preset"`
	Addr         string `json:"addr,omitempty"`
	SingleOps    int    `json:"single_ops,omitempty"`
	Clients      int    `json:"clients,omitempty"`
	OpsPerClient int    `json:"ops_per_client,omitempty"`
	SkipChecks   bool   `json:"skip_checks,omitempty"`
}

func (s *Server) handleRunStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		http.Error(w, "Run already in progress", http.StatusConflict)
		return
	}

	// プリセット取得（未指定・不明な名前はベース設定）
	config, ok := harness.GetPreset(req.Preset)
	if !ok {
		config = s.base
	} else {
		config.Addr = s.base.Addr
	}

	// オーバーライド
	if req.Addr != "" {
		config.Addr = req.Addr
	}
	if req.SingleOps > 0 {
		config.Bench.SingleOps = req.SingleOps
	}
	if req.Clients > 0 {
		config.Bench.Clients = req.Clients
	}
	if req.OpsPerClient > 0 {
		config.Bench.OpsPerClient = req.OpsPerClient
	}
	if req.SkipChecks {
		config.SkipChecks = true
	}

	engine := harness.New(config)
	engine.SetEventBus(s.bus)

	runCtx, cancel := context.WithCancel(context.Background())
	s.engine = engine
	s.runCancel = cancel
	s.running = true
	s.runName = config.Name
	s.mu.Unlock()

	// バックグラウンドで実行
	go func() {
		defer cancel()
		report, err := engine.Run(runCtx)

		s.mu.Lock()
		s.running = false
		s.runCancel = nil
		s.mu.Unlock()

		if err != nil {
			logger.Error("api", "run failed: %v", err)
			s.broadcast(map[string]interface{}{
				"type":  "run_failed",
				"error": err.Error(),
			})
			return
		}

		logger.Info("api", "run completed: %s", report.Name)
		s.broadcast(map[string]interface{}{
			"type":   "run_complete",
			"report": report,
		})
	}()

	s.writeJSON(w, map[string]string{"status": "started", "run": config.Name})
}

func (s *Server) handleRunStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	if !s.running || s.runCancel == nil {
		s.mu.Unlock()
		http.Error(w, "No run in progress", http.StatusBadRequest)
		return
	}
	s.runCancel()
	s.mu.Unlock()

	s.writeJSON(w, map[string]string{"status": "stop requested"})
}

// WebSocket handling
func (s *Server) handleWebSocket(ws *websocket.Conn) {
	s.mu.Lock()
	s.wsClients[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.wsClients, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	// Keep connection alive
	for {
		var msg string
		if err := websocket.Message.Receive(ws, &msg); err != nil {
			break
		}
	}
}

func (s *Server) broadcast(data interface{}) {
	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.wsClients))
	for ws := range s.wsClients {
		clients = append(clients, ws)
	}
	s.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	for _, ws := range clients {
		_ = websocket.Message.Send(ws, string(jsonData))
	}
}

// forwardEvents はイベントバスの通知をWebSocketクライアントへ中継する
func (s *Server) forwardEvents(ctx context.Context) {
	ch := s.bus.Subscribe()
	defer s.bus.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(map[string]interface{}{
				"type":  "event",
				"event": ev,
			})
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("api", "failed to encode JSON: %v", err)
	}
}

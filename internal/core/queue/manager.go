package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

// 隊列錯誤
var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue manager is closed")
)

// Job 預熱工作，每個目標一個
type Job struct {
	Goal  common.Goal
	Limit int
}

// Handler 執行工作並回傳載入的食譜數
type Handler func(ctx context.Context, job Job) (int, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	Job     Job
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Job      Job
	Count    int
	Duration time.Duration
	Error    error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int  `json:"queue_length"`
	ProcessedCount int  `json:"processed_count"`
	FailedCount    int  `json:"failed_count"`
	MaxQueueSize   int  `json:"max_queue_size"`
	Workers        int  `json:"workers"`
	Running        bool `json:"running"`
}

// Manager 隊列管理器
type Manager struct {
	cfg       config.QueueConfig
	queue     chan *Request
	done      chan struct{}
	processed int64
	failed    int64
	running   atomic.Bool
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(cfg config.QueueConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = len(common.AllGoals)
	}
	return &Manager{
		cfg:   cfg,
		queue: make(chan *Request, cfg.MaxSize),
		done:  make(chan struct{}),
	}
}

// Start 啟動工作協程，只會執行一次
func (m *Manager) Start(ctx context.Context, handler Handler) {
	m.startOnce.Do(func() {
		m.running.Store(true)
		for i := 0; i < m.cfg.Workers; i++ {
			m.wg.Add(1)
			go m.worker(ctx, i, handler)
		}
		common.LogInfo("Queue workers started", zap.Int("workers", m.cfg.Workers))
	})
}

func (m *Manager) worker(ctx context.Context, id int, handler Handler) {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case <-ctx.Done():
			return
		case req := <-m.queue:
			m.process(req, id, handler)
		}
	}
}

func (m *Manager) process(req *Request, id int, handler Handler) {
	start := time.Now()
	res := Result{Job: req.Job}

	if err := req.Context.Err(); err != nil {
		res.Error = err
	} else {
		res.Count, res.Error = safeRun(req.Context, handler, req.Job)
	}
	res.Duration = time.Since(start)

	atomic.AddInt64(&m.processed, 1)
	if res.Error != nil {
		atomic.AddInt64(&m.failed, 1)
		common.LogWarn("Queue job failed",
			zap.Int("worker", id),
			zap.String("goal", string(req.Job.Goal)),
			zap.Error(res.Error),
		)
	} else {
		common.LogDebug("Queue job done",
			zap.Int("worker", id),
			zap.String("goal", string(req.Job.Goal)),
			zap.Int("count", res.Count),
			zap.Duration("duration", res.Duration),
		)
	}
	req.Result <- res
}

func safeRun(ctx context.Context, handler Handler, job Job) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return handler(ctx, job)
}

// Enqueue 將工作加入隊列
func (m *Manager) Enqueue(ctx context.Context, job Job) (chan Result, error) {
	select {
	case <-m.done:
		return nil, ErrQueueClosed
	default:
	}

	// 檢查隊列容量
	if len(m.queue) >= m.cfg.MaxSize {
		return nil, ErrQueueFull
	}

	req := &Request{
		Context: ctx,
		Job:     job,
		Result:  make(chan Result, 1),
	}

	select {
	case m.queue <- req:
		common.LogDebug("Job enqueued",
			zap.String("goal", string(job.Goal)),
			zap.Int("queue_length", len(m.queue)),
		)
		return req.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrQueueClosed
	}
}

// Warmup 每個目標一個工作，等待全部完成
func (m *Manager) Warmup(ctx context.Context, goals []common.Goal, limit int) []Result {
	start := time.Now()
	pending := make([]chan Result, 0, len(goals))
	results := make([]Result, 0, len(goals))

	for _, g := range goals {
		ch, err := m.Enqueue(ctx, Job{Goal: g, Limit: limit})
		if err != nil {
			results = append(results, Result{Job: Job{Goal: g, Limit: limit}, Error: err})
			continue
		}
		pending = append(pending, ch)
	}

	for _, ch := range pending {
		select {
		case res := <-ch:
			results = append(results, res)
		case <-ctx.Done():
			results = append(results, Result{Error: ctx.Err()})
		}
	}

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	common.LogDuration("Cache warmup finished", start,
		zap.Int("jobs", len(goals)),
		zap.Int("failed", failed),
	)
	return results
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() Status {
	return Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		FailedCount:    int(atomic.LoadInt64(&m.failed)),
		MaxQueueSize:   m.cfg.MaxSize,
		Workers:        m.cfg.Workers,
		Running:        m.running.Load(),
	}
}

// Close 關閉隊列管理器並等待工作協程結束
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		m.running.Store(false)
	})
}

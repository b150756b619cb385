// internal/service/unlock_queue.go
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fintrax_backend/internal/config"
)

// UnlockQueue はドメイン書き込み後の実績評価を非同期に実行するための
// 有界キューです。リクエスト処理をブロックしないよう Enqueue は
// バッファが一杯なら即座に false を返す (評価の取りこぼしは次回の
// 書き込みで追いつくため許容する)。
type UnlockQueue struct {
	svc     AchievementService
	jobs    chan string
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
	stopped chan struct{}
}

func NewUnlockQueue(svc AchievementService, cfg *config.Config, logger *slog.Logger) *UnlockQueue {
	size := cfg.App.UnlockQueueSize
	if size <= 0 {
		size = config.DefaultUnlockQueueSize
	}
	timeoutSeconds := cfg.App.VerifyTimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = config.DefaultVerifyTimeoutSeconds
	}
	return &UnlockQueue{
		svc:     svc,
		jobs:    make(chan string, size),
		timeout: time.Duration(timeoutSeconds) * time.Second,
		logger:  logger,
		stopped: make(chan struct{}),
	}
}

// Start はワーカーゴルーチンを起動します
func (q *UnlockQueue) Start() {
	q.wg.Add(1)
	go q.worker()
	q.logger.Info("Achievement unlock queue started", "capacity", cap(q.jobs))
}

// Enqueue は評価ジョブを積みます。キューが一杯なら false。
func (q *UnlockQueue) Enqueue(userDocument string) bool {
	select {
	case <-q.stopped:
		return false
	default:
	}
	select {
	case q.jobs <- userDocument:
		return true
	default:
		return false
	}
}

// Stop は新規受付を止め、積まれ済みジョブの完了を待ちます
func (q *UnlockQueue) Stop() {
	close(q.stopped)
	close(q.jobs)
	q.wg.Wait()
	q.logger.Info("Achievement unlock queue stopped")
}

func (q *UnlockQueue) worker() {
	defer q.wg.Done()
	for doc := range q.jobs {
		q.runVerify(doc)
	}
}

// runVerify は1件の評価を実行します。panic はワーカーを殺さずログに落とす。
func (q *UnlockQueue) runVerify(userDocument string) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Panic recovered in achievement verification worker", "panic", r, "user_document", userDocument)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	unlocked, err := q.svc.VerifyUser(ctx, userDocument)
	if err != nil {
		q.logger.Error("Background achievement verification failed", "error", err, "user_document", userDocument)
		return
	}
	if len(unlocked) > 0 {
		q.logger.Info("Background achievement verification unlocked achievements", "count", len(unlocked), "user_document", userDocument)
	}
}

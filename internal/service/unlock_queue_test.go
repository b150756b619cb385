// internal/service/unlock_queue_test.go
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"fintrax_backend/internal/config"
	"fintrax_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAchievementService はVerifyUser呼び出しを記録するテスト用実装
type fakeAchievementService struct {
	mu       sync.Mutex
	verified []string
	err      error
	panicOn  string
}

func (s *fakeAchievementService) VerifyUser(ctx context.Context, userDocument string) ([]model.UnlockedAchievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOn != "" && userDocument == s.panicOn {
		panic("boom")
	}
	s.verified = append(s.verified, userDocument)
	return nil, s.err
}

func (s *fakeAchievementService) GetUserAchievements(ctx context.Context, userDocument string) (*model.UserAchievementsResponse, error) {
	return nil, nil
}

func (s *fakeAchievementService) GetUnlockHistory(ctx context.Context, userDocument string) ([]*model.AchievementHistoryEntry, error) {
	return nil, nil
}

func (s *fakeAchievementService) verifiedDocs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.verified...)
}

func newTestQueueConfig(size int) *config.Config {
	cfg := &config.Config{}
	cfg.App.UnlockQueueSize = size
	cfg.App.VerifyTimeoutSeconds = 5
	return cfg
}

func Test_UnlockQueue_ProcessesJobs(t *testing.T) {
	svc := &fakeAchievementService{}
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	queue := NewUnlockQueue(svc, newTestQueueConfig(8), testLogger)
	queue.Start()

	assert.True(t, queue.Enqueue("111"))
	assert.True(t, queue.Enqueue("222"))

	queue.Stop() // 積まれ済みジョブの完了を待つ

	assert.Equal(t, []string{"111", "222"}, svc.verifiedDocs())
}

func Test_UnlockQueue_FullQueueDropsWithoutBlocking(t *testing.T) {
	svc := &fakeAchievementService{}
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// ワーカーを起動しないことでキューを確実に埋める
	queue := NewUnlockQueue(svc, newTestQueueConfig(2), testLogger)

	assert.True(t, queue.Enqueue("111"))
	assert.True(t, queue.Enqueue("222"))

	done := make(chan bool, 1)
	go func() {
		done <- queue.Enqueue("333")
	}()

	select {
	case accepted := <-done:
		assert.False(t, accepted, "一杯のキューはブロックせずfalseを返す")
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}

func Test_UnlockQueue_SurvivesVerifyError(t *testing.T) {
	svc := &fakeAchievementService{err: errors.New("verification failed")}
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	queue := NewUnlockQueue(svc, newTestQueueConfig(8), testLogger)
	queue.Start()

	require.True(t, queue.Enqueue("111"))
	require.True(t, queue.Enqueue("222"))

	queue.Stop()

	// エラーが起きてもワーカーは止まらず後続ジョブを処理する
	assert.Equal(t, []string{"111", "222"}, svc.verifiedDocs())
}

func Test_UnlockQueue_SurvivesPanic(t *testing.T) {
	svc := &fakeAchievementService{panicOn: "111"}
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	queue := NewUnlockQueue(svc, newTestQueueConfig(8), testLogger)
	queue.Start()

	// panicするジョブの後でも正常なジョブを処理できる
	require.True(t, queue.Enqueue("111"))
	require.True(t, queue.Enqueue("222"))

	queue.Stop()

	assert.Equal(t, []string{"222"}, svc.verifiedDocs())
}

func Test_UnlockQueue_EnqueueAfterStop(t *testing.T) {
	svc := &fakeAchievementService{}
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	queue := NewUnlockQueue(svc, newTestQueueConfig(8), testLogger)
	queue.Start()
	queue.Stop()

	assert.False(t, queue.Enqueue("111"), "停止後のEnqueueはfalseを返す")
}

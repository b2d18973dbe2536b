package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tsu-battle/internal/pkg/log"
)

type fakePublisher struct {
	batches  [][]UnifiedEvent
	accepted int // -1 表示全部接受
	err      error
}

func (f *fakePublisher) PublishBatch(ctx context.Context, events []UnifiedEvent) (int, error) {
	f.batches = append(f.batches, events)
	if f.err != nil {
		return 0, f.err
	}
	if f.accepted >= 0 {
		return f.accepted, nil
	}
	return len(events), nil
}

type fakeFlowManager struct {
	summaries []*CompletionSummary
	recycle   bool
}

func (f *fakeFlowManager) OnBattleComplete(ctx context.Context, summary *CompletionSummary) bool {
	f.summaries = append(f.summaries, summary)
	return f.recycle
}

func (f *fakeFlowManager) IsPlayerInRefresh(context.Context, string) bool { return false }
func (f *fakeFlowManager) RemainingRefreshTime(context.Context, string) time.Duration {
	return 0
}

func newTestScheduler(flow FlowManager) (*Scheduler, *Registry, *fakePublisher) {
	registry := newTestRegistry(nil, nil)
	resolver := NewResolver(deterministicTuning(), log.GetLogger())
	pub := &fakePublisher{accepted: -1}
	sched := NewScheduler(registry, resolver, pub, flow, log.GetLogger())
	return sched, registry, pub
}

func TestTickPublishesOneBatchWithPendingEvents(t *testing.T) {
	sched, registry, pub := newTestScheduler(nil)

	b, err := registry.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)
	b.Enemies[0].AttackCooldown = 100

	col := NewCollector(b.ID)
	col.AddBattleStarted()
	sched.EnqueueEvents(col.Events())

	sched.Tick(context.Background(), time.Now())

	require.Len(t, pub.batches, 1, "一个 tick 只提交一个批次")
	batch := pub.batches[0]
	require.Equal(t, EventBattleStarted, batch[0].Type, "外部入队的事件排在批次前面")

	hasTick := false
	for _, ev := range batch {
		if ev.Type == EventBattleTick {
			hasTick = true
		}
	}
	require.True(t, hasTick)

	// 入队缓冲只消费一次
	sched.Tick(context.Background(), time.Now())
	for _, ev := range pub.batches[1] {
		require.NotEqual(t, EventBattleStarted, ev.Type)
	}
}

func TestTickSkipsEmptyBatch(t *testing.T) {
	sched, _, pub := newTestScheduler(nil)
	sched.Tick(context.Background(), time.Now())
	require.Empty(t, pub.batches, "没有事件就不调用发布方")
}

func TestPanicInOneBattleDoesNotPoisonOthers(t *testing.T) {
	sched, registry, pub := newTestScheduler(nil)

	bad, err := registry.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)
	// 注入损坏状态：nil 参战单位会让结算 panic
	bad.Players = append(bad.Players, nil)

	good, err := registry.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-2",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)
	good.Enemies[0].AttackCooldown = 100
	goodEnemyHealth := good.Enemies[0].Health

	require.NotPanics(t, func() {
		sched.Tick(context.Background(), time.Now())
	})

	require.Less(t, good.Enemies[0].Health, goodEnemyHealth, "健康战斗照常结算")
	require.Equal(t, StatusActive, bad.Status(), "损坏战斗留待下个 tick，不被标记完成")
	require.NotEmpty(t, pub.batches)
}

func TestCompletedBattleFlowsAndAwaitsEviction(t *testing.T) {
	flow := &fakeFlowManager{}
	sched, registry, pub := newTestScheduler(flow)

	b, err := registry.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)
	b.Enemies[0].Health = 0

	sched.Tick(context.Background(), time.Now())

	require.Len(t, flow.summaries, 1)
	summary := flow.summaries[0]
	require.Equal(t, b.ID, summary.BattleID)
	require.True(t, summary.Victory)
	require.False(t, summary.Stopped)
	require.Equal(t, []string{"hero-1"}, summary.PlayerIDs)

	// 完成后留在注册表内供最终快照拉取，保留期满由清理任务清出
	require.Same(t, b, registry.Get(b.ID))
	require.Equal(t, StatusCompleted, b.Status())
	require.Empty(t, registry.ListActive())

	ended := false
	for _, batch := range pub.batches {
		for _, ev := range batch {
			if ev.Type == EventBattleEnded && ev.BattleID == b.ID {
				ended = true
			}
		}
	}
	require.True(t, ended)

	// 已完成的战斗不再进入后续 tick 的结算
	sched.Tick(context.Background(), time.Now())
	require.Len(t, flow.summaries, 1, "完成通知只发一次")
}

func TestNotifyStoppedSharesCompletionFlow(t *testing.T) {
	flow := &fakeFlowManager{recycle: true}
	sched, registry, _ := newTestScheduler(flow)

	b, err := registry.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
		BattleType:      BattleTypeDungeon,
		DungeonID:       "crypt-1",
	})
	require.NoError(t, err)
	require.True(t, registry.Stop(b.ID))

	sched.NotifyStopped(context.Background(), b)

	require.Len(t, flow.summaries, 1)
	require.Equal(t, b.ID, flow.summaries[0].BattleID)
	require.True(t, flow.summaries[0].Stopped, "手动停止在完成通知里带终态标记")

	sched.NotifyStopped(context.Background(), nil)
	require.Len(t, flow.summaries, 1, "nil 上下文不产生通知")
}

func TestRecycledBattleStaysRegistered(t *testing.T) {
	flow := &fakeFlowManager{recycle: true}
	sched, registry, _ := newTestScheduler(flow)

	b, err := registry.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
		BattleType:      BattleTypeDungeon,
		DungeonID:       "crypt-1",
	})
	require.NoError(t, err)
	b.Enemies[0].Health = 0

	sched.Tick(context.Background(), time.Now())

	require.Len(t, flow.summaries, 1)
	require.Same(t, b, registry.Get(b.ID), "流程方回收的战斗保留在注册表里")
}

func TestStartStopsOnContextCancel(t *testing.T) {
	sched, _, _ := newTestScheduler(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("调度器未在 ctx 取消后退出")
	}
}

package engine

import (
	"context"
	"sync"
	"time"

	"tsu-battle/internal/pkg/log"
	"tsu-battle/internal/pkg/metrics"
)

// Scheduler 固定间隔的 tick 驱动器
// 协作式循环：单 goroutine 顺序结算所有活跃战斗，下一个 tick 必然等待上一轮跑完，
// 因此一轮之内战斗结算相对自身是串行的
type Scheduler struct {
	registry  *Registry
	resolver  *Resolver
	publisher EventPublisher
	flow      FlowManager
	interval  time.Duration
	logger    log.Logger

	mu       sync.Mutex
	pending  []UnifiedEvent
	lastTick time.Time
}

// NewScheduler 创建调度器
func NewScheduler(registry *Registry, resolver *Resolver, publisher EventPublisher, flow FlowManager, logger log.Logger) *Scheduler {
	interval := resolver.Tuning().TickInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if flow == nil {
		flow = NopFlowManager{}
	}
	return &Scheduler{
		registry:  registry,
		resolver:  resolver,
		publisher: publisher,
		flow:      flow,
		interval:  interval,
		logger:    logger,
	}
}

// EnqueueEvents 追加外部指令产生的事件，随下一个 tick 的批次一起发布
// 事件批次归产生它的 tick 独占，入队后所有权交给调度器
func (s *Scheduler) EnqueueEvents(events []UnifiedEvent) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, events...)
	s.mu.Unlock()
}

func (s *Scheduler) drainPending() []UnifiedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.pending
	s.pending = nil
	return pending
}

// Start 运行调度循环直到 ctx 取消
// 宿主关停时在下一个等待点退出
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("战斗调度器启动", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.mu.Lock()
	s.lastTick = time.Now()
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("战斗调度器停止")
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick 执行一轮结算：推进所有活跃战斗、批量发布事件、处理完成流转
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	started := time.Now()

	s.mu.Lock()
	delta := now.Sub(s.lastTick).Seconds()
	if delta <= 0 || s.lastTick.IsZero() {
		delta = s.interval.Seconds()
	}
	s.lastTick = now
	s.mu.Unlock()

	batch := s.drainPending()
	var completed []*BattleContext

	active := s.registry.ListActive()
	for _, b := range active {
		col := NewCollector(b.ID)
		done, err := s.resolveOne(b, delta, col)
		if err != nil {
			// 单场战斗出错不拖垮整轮结算：记日志后跳过，状态留待下个 tick 重试
			s.logger.Error("战斗结算失败，本 tick 跳过", err, "battle_id", b.ID)
			continue
		}
		batch = append(batch, col.Events()...)
		if done {
			completed = append(completed, b)
		}
	}

	s.publish(ctx, batch)
	s.handleCompleted(ctx, completed)

	metrics.DefaultBattleMetrics.ObserveTick(time.Since(started), len(active)-len(completed))
}

// resolveOne 带 panic 隔离地结算单场战斗
func (s *Scheduler) resolveOne(b *BattleContext, delta float64, col *Collector) (done bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			done = false
			err = xpanic(r)
		}
	}()
	return s.resolver.ResolveTick(b, delta, col), nil
}

// publish 把本轮事件作为单个批次提交
// 接受数少于提交数只记警告，背压处理属于发布方，核心不重试
func (s *Scheduler) publish(ctx context.Context, batch []UnifiedEvent) {
	if len(batch) == 0 {
		return
	}
	accepted, err := s.publisher.PublishBatch(ctx, batch)
	metrics.DefaultBattleMetrics.ObservePublish(len(batch), accepted)
	if err != nil {
		s.logger.Warn("事件批次发布失败", "submitted", len(batch), "error", err)
		return
	}
	if accepted < len(batch) {
		s.logger.Warn("事件批次欠投递", "submitted", len(batch), "accepted", accepted)
	}
}

// handleCompleted 通知流程管理方
// 未被回收的战斗留在注册表内供客户端拉取最终快照，保留期满后由清理任务清出
func (s *Scheduler) handleCompleted(ctx context.Context, completed []*BattleContext) {
	for _, b := range completed {
		s.notifyFlow(ctx, summarize(b))
	}
}

// NotifyStopped 手动停止的战斗与自然完成共用一条完成流转
// 停止是终态：地城战斗也不再回收进下一波
func (s *Scheduler) NotifyStopped(ctx context.Context, b *BattleContext) {
	if b == nil {
		return
	}
	summary := summarize(b)
	summary.Stopped = true
	s.notifyFlow(ctx, summary)
}

func (s *Scheduler) notifyFlow(ctx context.Context, summary *CompletionSummary) {
	metrics.DefaultBattleMetrics.ObserveBattleEnd(summary.Victory, summary.CompletedAt.Sub(summary.StartedAt))
	s.flow.OnBattleComplete(ctx, summary)
}

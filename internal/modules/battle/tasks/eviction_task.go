package tasks

import (
	"time"

	"github.com/robfig/cron/v3"

	"tsu-battle/internal/modules/battle/engine"
	"tsu-battle/internal/pkg/log"
)

const (
	// CompletedRetention 已结束战斗在注册表中保留的时长（供客户端拉取最终快照）
	CompletedRetention = 5 * time.Minute
	// StalledThreshold 活跃战斗超过该时长没有被 tick 结算则视为卡死
	StalledThreshold = 2 * time.Minute
)

// EvictionTask 战斗注册表定时清理任务
// 清出滞留的已结束战斗，并对长时间未结算的活跃战斗告警
type EvictionTask struct {
	registry  *engine.Registry
	logger    log.Logger
	cron      *cron.Cron
	retention time.Duration
	stalled   time.Duration
}

// NewEvictionTask 创建定时清理任务实例
func NewEvictionTask(registry *engine.Registry, logger log.Logger) *EvictionTask {
	return &EvictionTask{
		registry:  registry,
		logger:    logger,
		retention: CompletedRetention,
		stalled:   StalledThreshold,
	}
}

// Start 启动定时任务
func (t *EvictionTask) Start() {
	t.cron = cron.New(cron.WithSeconds()) // 支持秒级调度（用于测试）

	// 每分钟执行一次注册表清理
	// Cron 表达式: 秒 分 时 日 月 周
	_, err := t.cron.AddFunc("0 * * * * *", func() {
		t.EvictOnce()
	})

	if err != nil {
		t.logger.Error("【定时任务】添加战斗清理任务失败", err)
		return
	}

	t.cron.Start()
	t.logger.Info("【定时任务】已启动 - 每分钟清理滞留战斗")
}

// EvictOnce 执行一轮清理
func (t *EvictionTask) EvictOnce() {
	now := time.Now()

	evicted := 0
	for _, b := range t.registry.ListCompleted() {
		if now.Sub(b.LastUpdate()) < t.retention {
			continue
		}
		if t.registry.Remove(b.ID) {
			evicted++
		}
	}

	stalled := 0
	for _, b := range t.registry.ListActive() {
		if now.Sub(b.LastUpdate()) < t.stalled {
			continue
		}
		stalled++
		t.logger.Warn("【定时任务】活跃战斗长时间未结算",
			"battle_id", b.ID,
			"last_update", b.LastUpdate().Format("2006-01-02 15:04:05"))
	}

	if evicted > 0 || stalled > 0 {
		t.logger.Info("【定时任务】战斗注册表清理完成",
			"evicted", evicted,
			"stalled", stalled,
			"remaining", t.registry.Count())
	}
}

// Stop 停止定时任务（优雅关闭）
func (t *EvictionTask) Stop() {
	if t.cron != nil {
		ctx := t.cron.Stop()
		<-ctx.Done()
		t.logger.Info("【定时任务】战斗清理任务已停止")
	}
}

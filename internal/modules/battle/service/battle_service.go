package service

import (
	"context"

	"tsu-battle/internal/modules/battle/engine"
	"tsu-battle/internal/pkg/log"
	"tsu-battle/internal/pkg/xerrors"
)

// BattleService 战斗指令编排层
// 对 HTTP/RPC 入口提供开战、手动行动、停止与状态查询；
// 所有对战斗状态的写入都经由引擎内部的锁序列化，与 tick 结算互不竞态
type BattleService struct {
	registry  *engine.Registry
	resolver  *engine.Resolver
	scheduler *engine.Scheduler
	flow      engine.FlowManager
	logger    log.Logger
}

// NewBattleService 构造函数。
func NewBattleService(registry *engine.Registry, resolver *engine.Resolver, scheduler *engine.Scheduler, flow engine.FlowManager, logger log.Logger) *BattleService {
	return &BattleService{
		registry:  registry,
		resolver:  resolver,
		scheduler: scheduler,
		flow:      flow,
		logger:    logger,
	}
}

// StartBattleInput 开战请求
type StartBattleInput struct {
	CharacterID     string
	EnemyTemplateID string
	PartyID         string
	DungeonID       string
}

// StartBattle 创建战斗并发布 battle_started 事件
func (s *BattleService) StartBattle(ctx context.Context, input *StartBattleInput) (*engine.BattleSnapshot, error) {
	if input == nil || input.CharacterID == "" {
		return nil, xerrors.New(xerrors.CodeInvalidParams, "character_id 不能为空")
	}

	battleType := engine.BattleTypeNormal
	if input.DungeonID != "" {
		battleType = engine.BattleTypeDungeon
	}

	b, err := s.registry.Create(ctx, &engine.CreateBattleRequest{
		CharacterID:     input.CharacterID,
		EnemyTemplateID: input.EnemyTemplateID,
		PartyID:         input.PartyID,
		BattleType:      battleType,
		DungeonID:       input.DungeonID,
	})
	if err != nil {
		return nil, err
	}

	col := engine.NewCollector(b.ID)
	col.AddBattleStarted()
	s.scheduler.EnqueueEvents(col.Events())

	return b.Snapshot(), nil
}

// ExecuteAction 处理玩家手动指令
// 未知战斗/玩家/目标一律返回 false，不向上抛错
func (s *BattleService) ExecuteAction(ctx context.Context, battleID, playerID string, action engine.ActionType, targetID, skillID string) bool {
	b := s.registry.Get(battleID)
	if b == nil {
		return false
	}

	col := engine.NewCollector(battleID)
	ok := s.resolver.ExecuteAction(b, playerID, action, targetID, skillID, col)
	if ok {
		// 手动指令的事件随下一个 tick 的批次一起发布
		s.scheduler.EnqueueEvents(col.Events())
	}
	return ok
}

// StopBattle 强制结束战斗；幂等，未知 ID 返回 false
func (s *BattleService) StopBattle(ctx context.Context, battleID string) bool {
	stopped := s.registry.Stop(battleID)
	if !stopped {
		return false
	}

	b := s.registry.Get(battleID)
	if b != nil {
		col := engine.NewCollector(battleID)
		col.AddBattleEnded()
		s.scheduler.EnqueueEvents(col.Events())
		// 手动停止与自然完成共用一条完成流转：落战报、结果回调、刷新冷却
		s.scheduler.NotifyStopped(ctx, b)
	}
	s.logger.InfoContext(ctx, "战斗被手动停止", "battle_id", battleID)
	return true
}

// PauseBattle 暂停战斗
func (s *BattleService) PauseBattle(ctx context.Context, battleID string) bool {
	b := s.registry.Get(battleID)
	if b == nil {
		return false
	}
	return b.Pause()
}

// ResumeBattle 恢复战斗
func (s *BattleService) ResumeBattle(ctx context.Context, battleID string) bool {
	b := s.registry.Get(battleID)
	if b == nil {
		return false
	}
	return b.Resume()
}

// GetBattleState 战斗状态快照；未知 ID 返回 nil
func (s *BattleService) GetBattleState(ctx context.Context, battleID string) *engine.BattleSnapshot {
	b := s.registry.Get(battleID)
	if b == nil {
		return nil
	}
	return b.Snapshot()
}

// ListActiveBattles 所有活跃战斗快照
func (s *BattleService) ListActiveBattles(ctx context.Context) []*engine.BattleSnapshot {
	battles := s.registry.ListActive()
	out := make([]*engine.BattleSnapshot, 0, len(battles))
	for _, b := range battles {
		out = append(out, b.Snapshot())
	}
	return out
}

// IsPlayerInRefresh 刷新冷却查询（转发给流程管理方）
func (s *BattleService) IsPlayerInRefresh(ctx context.Context, playerID string) bool {
	return s.flow.IsPlayerInRefresh(ctx, playerID)
}

// RemainingRefreshTime 剩余刷新冷却秒数（转发给流程管理方）
func (s *BattleService) RemainingRefreshTime(ctx context.Context, playerID string) float64 {
	return s.flow.RemainingRefreshTime(ctx, playerID).Seconds()
}

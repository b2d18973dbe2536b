package engine

import (
	"context"
	"time"
)

// CompletionSummary 战斗完成通知
// 击杀汇总按敌人展示名分组计数，供流程管理方决定波次推进或刷新冷却
type CompletionSummary struct {
	BattleID    string
	BattleType  BattleType
	PartyID     string
	DungeonID   string
	Wave        int
	Victory     bool
	// Stopped 为 true 表示战斗被手动停止，流程管理方不应再做波次回收
	Stopped     bool
	Kills       map[string]int
	PlayerIDs   []string
	Result      *BattleResult
	StartedAt   time.Time
	CompletedAt time.Time
}

// FlowManager 战斗流程管理边界（核心的相邻协作方）
// 核心在每次完成时通知它；刷新冷却查询也只是转发到这里
type FlowManager interface {
	// OnBattleComplete 完成回调；返回 true 表示战斗被回收复用（地城下一波），
	// 此时调度器不应将其从注册表清除
	OnBattleComplete(ctx context.Context, summary *CompletionSummary) bool

	IsPlayerInRefresh(ctx context.Context, playerID string) bool
	RemainingRefreshTime(ctx context.Context, playerID string) time.Duration
}

// NopFlowManager 空实现，测试与单机模式使用
type NopFlowManager struct{}

func (NopFlowManager) OnBattleComplete(context.Context, *CompletionSummary) bool { return false }
func (NopFlowManager) IsPlayerInRefresh(context.Context, string) bool            { return false }
func (NopFlowManager) RemainingRefreshTime(context.Context, string) time.Duration {
	return 0
}

// summarize 生成完成通知，完成后调用（无并发写，读取无需持锁）
func summarize(b *BattleContext) *CompletionSummary {
	result := b.Result()
	summary := &CompletionSummary{
		BattleID:    b.ID,
		BattleType:  b.Type,
		PartyID:     b.PartyID,
		DungeonID:   b.DungeonID,
		Wave:        b.Wave,
		Result:      result,
		StartedAt:   b.StartedAt(),
		CompletedAt: time.Now(),
	}
	if result != nil {
		summary.Victory = result.Victory
		summary.Kills = result.KillSummary
		summary.CompletedAt = result.CompletedAt
	}
	for _, p := range b.Players {
		summary.PlayerIDs = append(summary.PlayerIDs, p.ID)
	}
	return summary
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tsu-battle/internal/modules/battle/engine"
	"tsu-battle/internal/pkg/log"
	"tsu-battle/internal/pkg/notify"
	redisClient "tsu-battle/internal/pkg/redis"
	"tsu-battle/internal/repository/interfaces"
)

// MaxDungeonWaves 地城默认波次上限
const MaxDungeonWaves = 3

// refreshKey 刷新冷却的 Redis 键
func refreshKey(playerID string) string {
	return fmt.Sprintf("battle:refresh:%s", playerID)
}

// FlowService 战斗流程管理
// 消费核心的完成通知：落战报、回调 game-server、决定地城波次推进或玩家刷新冷却
type FlowService struct {
	registry         *engine.Registry
	battleReportRepo interfaces.BattleReportRepository
	redis            *redisClient.Client
	refreshCooldown  time.Duration
	maxWaves         int
	logger           log.Logger
}

// NewFlowService 构造函数。battleReportRepo 与 redis 都是可选依赖
func NewFlowService(registry *engine.Registry, battleReportRepo interfaces.BattleReportRepository, redis *redisClient.Client, refreshCooldown time.Duration, logger log.Logger) *FlowService {
	return &FlowService{
		registry:         registry,
		battleReportRepo: battleReportRepo,
		redis:            redis,
		refreshCooldown:  refreshCooldown,
		maxWaves:         MaxDungeonWaves,
		logger:           logger,
	}
}

// OnBattleComplete 实现 engine.FlowManager
// 返回 true 表示战斗被回收进入下一波，调度器不应清出注册表
func (s *FlowService) OnBattleComplete(ctx context.Context, summary *engine.CompletionSummary) bool {
	s.recordReport(ctx, summary)
	s.publishResult(ctx, summary)

	// 地城胜利且未到波次上限：同一上下文换新一波敌人继续打
	// 手动停止是终态，不参与回收
	if summary.BattleType == engine.BattleTypeDungeon && summary.Victory && !summary.Stopped && summary.Wave < s.maxWaves {
		if b := s.registry.Get(summary.BattleID); b != nil {
			s.registry.NextWave(b)
			return true
		}
	}

	s.applyRefreshCooldowns(ctx, summary)
	return false
}

// recordReport 战报落库；失败只记日志，不影响流程
func (s *FlowService) recordReport(ctx context.Context, summary *engine.CompletionSummary) {
	if s.battleReportRepo == nil {
		return
	}

	status := "defeat"
	if summary.Victory {
		status = "victory"
	}

	var lootGold int64
	var lootItems, participants, rawPayload []byte
	if summary.Result != nil {
		lootGold = summary.Result.Gold
		lootItems, _ = json.Marshal(summary.Result.Loot)
	}
	participants, _ = json.Marshal(summary.PlayerIDs)
	rawPayload, _ = json.Marshal(summary)
	kills, _ := json.Marshal(summary.Kills)

	report := &interfaces.BattleReport{
		BattleID:     summary.BattleID,
		BattleCode:   summary.DungeonID,
		TeamID:       summary.PartyID,
		DungeonID:    summary.DungeonID,
		ResultStatus: status,
		LootGold:     lootGold,
		LootItems:    lootItems,
		Participants: participants,
		Events:       kills,
		RawPayload:   rawPayload,
	}
	if err := s.battleReportRepo.Create(ctx, report); err != nil {
		s.logger.Error("战报落库失败", err, "battle_id", summary.BattleID)
	}
}

// publishResult 向 game-server 回调战斗结果（battle_result_handler 的消费格式）
func (s *FlowService) publishResult(ctx context.Context, summary *engine.CompletionSummary) {
	status := "defeat"
	if summary.Victory {
		status = "victory"
	}

	participants := make([]map[string]string, 0, len(summary.PlayerIDs))
	for _, id := range summary.PlayerIDs {
		participants = append(participants, map[string]string{
			"hero_id": id,
			"team_id": summary.PartyID,
		})
	}

	payload := map[string]interface{}{
		"battle_id":    summary.BattleID,
		"battle_code":  summary.DungeonID,
		"participants": participants,
		"result": map[string]interface{}{
			"status": status,
			"loot_context": map[string]string{
				"type":       string(summary.BattleType),
				"team_id":    summary.PartyID,
				"dungeon_id": summary.DungeonID,
			},
		},
	}
	if summary.Result != nil {
		items := make([]map[string]interface{}, 0, len(summary.Result.Loot))
		for _, item := range summary.Result.Loot {
			items = append(items, map[string]interface{}{
				"item_id":   item.ItemID,
				"item_type": item.ItemType,
				"quantity":  item.Quantity,
			})
		}
		payload["loot"] = map[string]interface{}{
			"gold":  summary.Result.Gold,
			"items": items,
		}
	}

	if err := notify.PublishBattleResult(ctx, payload); err != nil {
		s.logger.Warn("战斗结果回调发布失败", "battle_id", summary.BattleID, "error", err)
	}
}

// applyRefreshCooldowns 为参战玩家设置刷新冷却
func (s *FlowService) applyRefreshCooldowns(ctx context.Context, summary *engine.CompletionSummary) {
	if s.redis == nil || s.refreshCooldown <= 0 {
		return
	}
	for _, playerID := range summary.PlayerIDs {
		if err := s.redis.SetWithTTL(ctx, refreshKey(playerID), summary.BattleID, s.refreshCooldown); err != nil {
			s.logger.Warn("刷新冷却写入失败", "player_id", playerID, "error", err)
		}
	}
}

// IsPlayerInRefresh 实现 engine.FlowManager
func (s *FlowService) IsPlayerInRefresh(ctx context.Context, playerID string) bool {
	if s.redis == nil {
		return false
	}
	exists, err := s.redis.Exists(ctx, refreshKey(playerID))
	if err != nil {
		return false
	}
	return exists
}

// RemainingRefreshTime 实现 engine.FlowManager
func (s *FlowService) RemainingRefreshTime(ctx context.Context, playerID string) time.Duration {
	if s.redis == nil {
		return 0
	}
	ttl, err := s.redis.TTL(ctx, refreshKey(playerID))
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

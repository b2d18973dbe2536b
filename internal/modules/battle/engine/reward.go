package engine

import (
	"math/rand"
	"time"
)

// LootItem 掉落条目
type LootItem struct {
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
	Quantity int    `json:"quantity"`
}

// BattleResult 战斗结算结果
type BattleResult struct {
	Victory     bool           `json:"victory"`
	Experience  int            `json:"experience"`
	Gold        int64          `json:"gold"`
	Loot        []LootItem     `json:"loot,omitempty"`
	KillSummary map[string]int `json:"kill_summary,omitempty"`
	CompletedAt time.Time      `json:"completed_at"`
}

// lootTableEntry 简单的数据表驱动掉落
type lootTableEntry struct {
	ItemID   string
	ItemType string
	Chance   float64
	MinLevel int
}

var defaultLootTable = []lootTableEntry{
	{ItemID: "potion_minor", ItemType: "consumable", Chance: 0.30, MinLevel: 1},
	{ItemID: "potion_major", ItemType: "consumable", Chance: 0.10, MinLevel: 5},
	{ItemID: "iron_fragment", ItemType: "material", Chance: 0.20, MinLevel: 1},
	{ItemID: "rusty_blade", ItemType: "equipment", Chance: 0.05, MinLevel: 3},
}

// ComputeReward 从敌方花名册结算奖励，调用方需已持锁
// 胜利 = 至少一名玩家存活且敌方全灭；双方同时清零不算胜利
func ComputeReward(b *BattleContext) *BattleResult {
	victory := b.hasLivingPlayers() && !b.hasLivingEnemies()

	result := &BattleResult{
		Victory:     victory,
		KillSummary: make(map[string]int),
		CompletedAt: time.Now(),
	}

	for _, e := range b.Enemies {
		if e.IsAlive() {
			continue
		}
		result.KillSummary[e.Name]++
	}

	if !victory {
		return result
	}

	for _, e := range b.Enemies {
		result.Experience += e.Level*10 + e.MaxHealth/10

		// 金币区间：按敌人等级取 [5*level, 10*level]
		low := int64(5 * e.Level)
		high := int64(10 * e.Level)
		result.Gold += low + rand.Int63n(high-low+1)

		for _, entry := range defaultLootTable {
			if e.Level < entry.MinLevel {
				continue
			}
			if rand.Float64() < entry.Chance {
				result.Loot = append(result.Loot, LootItem{
					ItemID:   entry.ItemID,
					ItemType: entry.ItemType,
					Quantity: 1,
				})
			}
		}
	}

	return result
}

package interfaces

import "context"

// HeroBaseStats 战斗引擎需要的英雄基础数值投影
// 引擎侧不关心英雄的完整档案，只取开战时的快照字段
type HeroBaseStats struct {
	HeroID      string
	Name        string
	Level       int
	MaxHealth   int
	AttackPower int
	AttackSpeed float64
	Profession  string
	SkillIDs    []string
}

// HeroStatsRepository 英雄基础数值查询
type HeroStatsRepository interface {
	// GetBaseStats 查询单个英雄的基础数值；未找到返回 (nil, nil)
	GetBaseStats(ctx context.Context, heroID string) (*HeroBaseStats, error)
}

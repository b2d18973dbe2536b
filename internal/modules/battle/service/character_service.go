// Package service 聚合战斗服的业务服务实现：开战编排、角色数值接入与完成流转。
package service

import (
	"context"

	"tsu-battle/internal/modules/battle/engine"
	"tsu-battle/internal/repository/interfaces"
)

// CharacterService 角色数据接入层
// 同时充当引擎的 StatsProvider 与 PartyResolver；查询失败向上返回错误，
// 由注册表按固定默认值降级，不中止开战
type CharacterService struct {
	heroStatsRepo   interfaces.HeroStatsRepository
	partyMemberRepo interfaces.PartyMemberRepository
}

// NewCharacterService 构造函数。
func NewCharacterService(heroStatsRepo interfaces.HeroStatsRepository, partyMemberRepo interfaces.PartyMemberRepository) *CharacterService {
	return &CharacterService{
		heroStatsRepo:   heroStatsRepo,
		partyMemberRepo: partyMemberRepo,
	}
}

// CharacterStats 实现 engine.StatsProvider
func (s *CharacterService) CharacterStats(ctx context.Context, characterID string) (*engine.CharacterStats, error) {
	if s.heroStatsRepo == nil {
		return nil, nil
	}
	stats, err := s.heroStatsRepo.GetBaseStats(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, nil
	}
	return &engine.CharacterStats{
		ID:               stats.HeroID,
		Name:             stats.Name,
		Level:            stats.Level,
		Health:           stats.MaxHealth,
		AttackPower:      stats.AttackPower,
		AttacksPerSecond: stats.AttackSpeed,
		Profession:       stats.Profession,
		Skills:           stats.SkillIDs,
	}, nil
}

// PartyMembers 实现 engine.PartyResolver
func (s *CharacterService) PartyMembers(ctx context.Context, partyID string) ([]string, error) {
	if s.partyMemberRepo == nil {
		return nil, nil
	}
	return s.partyMemberRepo.ListHeroIDs(ctx, partyID)
}

package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"tsu-battle/internal/pkg/log"
	"tsu-battle/internal/pkg/xerrors"
)

// 角色数据服务不可用时的兜底默认值
const (
	DefaultHealth           = 100
	DefaultAttackPower      = 15
	DefaultAttacksPerSecond = 1.2
	DefaultProfession       = "Warrior"
)

// DefaultSkills 兜底技能配置
var DefaultSkills = []string{"power_strike", "whirlwind"}

// CharacterStats 角色基础数值（由角色数据服务提供）
type CharacterStats struct {
	ID               string
	Name             string
	Level            int
	Health           int
	AttackPower      int
	AttacksPerSecond float64
	Profession       string
	Skills           []string
}

// StatsProvider 角色基础数值查询边界
type StatsProvider interface {
	CharacterStats(ctx context.Context, characterID string) (*CharacterStats, error)
}

// PartyResolver 队伍成员解析边界
type PartyResolver interface {
	PartyMembers(ctx context.Context, partyID string) ([]string, error)
}

// EnemyTemplate 敌人模板
type EnemyTemplate struct {
	ID         string
	Name       string
	BaseHealth int // 1 级基准，随等级与人数再缩放
	BaseAttack int
	Speed      float64
	Skills     []string
}

// 内建敌人模板表；未命中时用模板 ID 兜底生成
var enemyTemplates = map[string]EnemyTemplate{
	"goblin":   {ID: "goblin", Name: "哥布林", BaseHealth: 90, BaseAttack: 8, Speed: 1.0, Skills: []string{"slash"}},
	"wolf":     {ID: "wolf", Name: "野狼", BaseHealth: 70, BaseAttack: 11, Speed: 1.4, Skills: []string{"bite"}},
	"skeleton": {ID: "skeleton", Name: "骷髅兵", BaseHealth: 110, BaseAttack: 9, Speed: 0.8, Skills: []string{"bone_throw"}},
}

// CreateBattleRequest 创建战斗请求
type CreateBattleRequest struct {
	CharacterID     string
	EnemyTemplateID string
	PartyID         string
	BattleType      BattleType
	DungeonID       string
}

// Registry 战斗注册表：battleID -> BattleContext 的内存索引
// 注册表自身的 map 是核心里唯一的跨战斗共享可变资源，由读写锁保护；
// 单场战斗内部的字段由各自 BattleContext 的锁保护
type Registry struct {
	mu      sync.RWMutex
	battles map[string]*BattleContext

	stats  StatsProvider
	party  PartyResolver
	tuning Tuning
	logger log.Logger
}

// NewRegistry 创建注册表
func NewRegistry(stats StatsProvider, party PartyResolver, tuning Tuning, logger log.Logger) *Registry {
	return &Registry{
		battles: make(map[string]*BattleContext),
		stats:   stats,
		party:   party,
		tuning:  tuning,
		logger:  logger,
	}
}

// Create 创建一场战斗：解析花名册、实例化参战单位、按人数缩放敌方
func (r *Registry) Create(ctx context.Context, req *CreateBattleRequest) (*BattleContext, error) {
	if req == nil || req.CharacterID == "" {
		return nil, xerrors.New(xerrors.CodeInvalidParams, "character_id 不能为空")
	}

	battleType := req.BattleType
	if battleType == "" {
		battleType = BattleTypeNormal
	}

	memberIDs := r.resolveRoster(ctx, req)

	b := newBattleContext(uuid.NewString(), battleType)
	b.PartyID = req.PartyID
	b.DungeonID = req.DungeonID
	b.EnemyTemplateID = req.EnemyTemplateID
	// 地城战固定允许自动复活
	b.AllowAutoRevive = battleType == BattleTypeDungeon

	for _, memberID := range memberIDs {
		b.Players = append(b.Players, r.buildPlayer(ctx, memberID))
	}
	b.Enemies = r.buildEnemies(req.EnemyTemplateID, b.Players, 1)

	r.mu.Lock()
	r.battles[b.ID] = b
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "战斗已创建",
		"battle_id", b.ID,
		"battle_type", string(battleType),
		"players", len(b.Players),
		"enemies", len(b.Enemies))
	return b, nil
}

// resolveRoster 解析参战玩家列表
// 队伍查询失败降级为单人开战，而不是中止创建
func (r *Registry) resolveRoster(ctx context.Context, req *CreateBattleRequest) []string {
	if req.PartyID == "" {
		return []string{req.CharacterID}
	}

	members, err := r.party.PartyMembers(ctx, req.PartyID)
	if err != nil || len(members) == 0 {
		if err != nil {
			r.logger.Warn("队伍成员查询失败，降级为单人战斗", "party_id", req.PartyID, "error", err)
		}
		return []string{req.CharacterID}
	}

	for _, id := range members {
		if id == req.CharacterID {
			return members
		}
	}
	return append([]string{req.CharacterID}, members...)
}

// buildPlayer 从角色数据构造玩家单位，查询失败用固定默认值兜底
func (r *Registry) buildPlayer(ctx context.Context, characterID string) *PlayerCombatant {
	stats, err := r.stats.CharacterStats(ctx, characterID)
	if err != nil || stats == nil {
		if err != nil {
			r.logger.Warn("角色数值查询失败，使用默认值", "character_id", characterID, "error", err)
		}
		stats = &CharacterStats{
			ID:               characterID,
			Name:             characterID,
			Level:            1,
			Health:           DefaultHealth,
			AttackPower:      DefaultAttackPower,
			AttacksPerSecond: DefaultAttacksPerSecond,
			Profession:       DefaultProfession,
			Skills:           DefaultSkills,
		}
	}

	skills := stats.Skills
	if len(skills) == 0 {
		skills = DefaultSkills
	}
	cooldowns := make(map[string]float64, len(skills))
	for _, skillID := range skills {
		cooldowns[skillID] = 0
	}

	health := stats.Health
	if health <= 0 {
		health = DefaultHealth
	}
	attack := stats.AttackPower
	if attack <= 0 {
		attack = DefaultAttackPower
	}
	speed := stats.AttacksPerSecond
	if speed <= 0 {
		speed = DefaultAttacksPerSecond
	}
	level := stats.Level
	if level <= 0 {
		level = 1
	}
	profession := stats.Profession
	if profession == "" {
		profession = DefaultProfession
	}
	name := stats.Name
	if name == "" {
		name = characterID
	}

	return &PlayerCombatant{
		ID:               characterID,
		Name:             name,
		Level:            level,
		Profession:       profession,
		Health:           health,
		MaxHealth:        health,
		BaseAttackPower:  attack,
		AttacksPerSecond: speed,
		EquippedSkills:   append([]string(nil), skills...),
		SkillCooldowns:   cooldowns,
	}
}

// buildEnemies 按参战人数缩放敌方阵容
// 数量 = max(1, 人数/2)；血量与攻击随人数和等级基准线性上调，wave 再乘每波增幅
func (r *Registry) buildEnemies(templateID string, players []*PlayerCombatant, wave int) []*EnemyCombatant {
	tpl, ok := enemyTemplates[templateID]
	if !ok {
		tpl = EnemyTemplate{
			ID:         templateID,
			Name:       templateID,
			BaseHealth: 90,
			BaseAttack: 8,
			Speed:      1.0,
			Skills:     []string{"slash"},
		}
	}

	participants := len(players)
	if participants < 1 {
		participants = 1
	}
	count := participants / 2
	if count < 1 {
		count = 1
	}

	level := 1
	for _, p := range players {
		if p.Level > level {
			level = p.Level
		}
	}

	// 等级基准 + 人数线性缩放
	health := tpl.BaseHealth + (level-1)*tpl.BaseHealth/4
	attack := tpl.BaseAttack + (level-1)*2
	health += health * (participants - 1) / 2
	attack += attack * (participants - 1) / 4

	// 地城逐波增幅 10%
	for w := 1; w < wave; w++ {
		health += health / 10
		attack += attack / 20
	}

	enemies := make([]*EnemyCombatant, 0, count)
	for i := 0; i < count; i++ {
		cooldowns := make(map[string]float64, len(tpl.Skills))
		for _, skillID := range tpl.Skills {
			cooldowns[skillID] = 0
		}
		enemies = append(enemies, &EnemyCombatant{
			ID:               uuid.NewString(),
			Name:             tpl.Name,
			Level:            level,
			Health:           health,
			MaxHealth:        health,
			BaseAttackPower:  attack,
			AttacksPerSecond: tpl.Speed,
			Skills:           append([]string(nil), tpl.Skills...),
			SkillCooldowns:   cooldowns,
		})
	}
	return enemies
}

// Get 按 ID 查找战斗，未知 ID 返回 nil
func (r *Registry) Get(battleID string) *BattleContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.battles[battleID]
}

// ListActive 所有活跃战斗
func (r *Registry) ListActive() []*BattleContext {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*BattleContext, 0, len(r.battles))
	for _, b := range r.battles {
		if b.IsActive() {
			out = append(out, b)
		}
	}
	return out
}

// ListCompleted 所有已完成但尚未清出的战斗
func (r *Registry) ListCompleted() []*BattleContext {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*BattleContext, 0)
	for _, b := range r.battles {
		if b.Status() == StatusCompleted {
			out = append(out, b)
		}
	}
	return out
}

// Count 当前注册的战斗数
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.battles)
}

// Stop 强制结束一场战斗
// 幂等：首次返回 true，未知或已完成返回 false，任何情况下不抛错
func (r *Registry) Stop(battleID string) bool {
	b := r.Get(battleID)
	if b == nil {
		return false
	}

	b.Lock()
	defer b.Unlock()
	if b.status == StatusCompleted {
		return false
	}
	b.markCompleted(ComputeReward(b))
	return true
}

// Remove 从注册表移除战斗
func (r *Registry) Remove(battleID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.battles[battleID]; !ok {
		return false
	}
	delete(r.battles, battleID)
	return true
}

// NextWave 地城波次推进：同一个上下文换上新一波敌人并回到 Active
// 玩家血量与冷却延续上一波
func (r *Registry) NextWave(b *BattleContext) {
	b.Lock()
	defer b.Unlock()

	b.Wave++
	b.Enemies = r.buildEnemies(b.EnemyTemplateID, b.Players, b.Wave)
	b.result = nil
	b.setStatus(StatusActive)
	r.logger.Info("地城进入下一波", "battle_id", b.ID, "wave", b.Wave)
}

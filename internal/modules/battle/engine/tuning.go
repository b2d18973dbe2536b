package engine

import (
	"strconv"
	"time"

	"tsu-battle/internal/pkg/config"
)

// Tuning 战斗数值调参
// 技能触发概率与冷却表属于策划调参项，不是引擎不变量，因此做成可配置字段
type Tuning struct {
	// TickInterval 调度器固定间隔
	TickInterval time.Duration

	// PlayerSkillChance 玩家每 tick 释放技能的概率（要求至少有一个技能冷却完毕）
	PlayerSkillChance float64
	// EnemySkillChance 敌方每 tick 释放技能的概率
	EnemySkillChance float64

	// SkillDamageMultiplier 技能伤害 = 基础攻击 * 倍率
	SkillDamageMultiplier float64

	// PlayerSkillCooldown 玩家技能冷却（按技能 ID 查表，缺省用 Default）
	PlayerSkillCooldowns map[string]float64
	// EnemySkillCooldowns 敌方技能冷却表
	EnemySkillCooldowns        map[string]float64
	DefaultPlayerSkillCooldown float64
	DefaultEnemySkillCooldown  float64

	// ReviveDelayMs 自动复活所需累计死亡时长（毫秒）
	ReviveDelayMs float64

	// DefendDodgeBonus 每次防御增加的闪避，DodgeCap 为上限
	DefendDodgeBonus float64
	DodgeCap         float64

	// AttackVariance 普攻伤害浮动范围 [-AttackVariance, +AttackVariance]
	AttackVariance int

	// RefreshCooldown 战斗结束后的刷新冷却时长
	RefreshCooldown time.Duration
}

// DefaultTuning 参考实现的默认数值
func DefaultTuning() Tuning {
	return Tuning{
		TickInterval:               500 * time.Millisecond,
		PlayerSkillChance:          0.30,
		EnemySkillChance:           0.20,
		SkillDamageMultiplier:      1.5,
		PlayerSkillCooldowns:       map[string]float64{},
		EnemySkillCooldowns:        map[string]float64{},
		DefaultPlayerSkillCooldown: 3.0,
		DefaultEnemySkillCooldown:  4.0,
		ReviveDelayMs:              5000,
		DefendDodgeBonus:           0.3,
		DodgeCap:                   0.8,
		AttackVariance:             2,
		RefreshCooldown:            30 * time.Second,
	}
}

// TuningFromEnv 从环境变量加载调参覆盖，未设置的项保留默认值
func TuningFromEnv() Tuning {
	t := DefaultTuning()
	if v := config.GetEnvOrDefault("BATTLE_TICK_INTERVAL_MS", ""); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			t.TickInterval = time.Duration(ms) * time.Millisecond
		}
	}
	if v := config.GetEnvOrDefault("BATTLE_PLAYER_SKILL_CHANCE", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			t.PlayerSkillChance = f
		}
	}
	if v := config.GetEnvOrDefault("BATTLE_ENEMY_SKILL_CHANCE", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			t.EnemySkillChance = f
		}
	}
	if v := config.GetEnvOrDefault("BATTLE_REVIVE_DELAY_MS", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			t.ReviveDelayMs = f
		}
	}
	if v := config.GetEnvOrDefault("BATTLE_REFRESH_COOLDOWN_S", ""); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s >= 0 {
			t.RefreshCooldown = time.Duration(s) * time.Second
		}
	}
	return t
}

// playerSkillCooldown 查玩家技能冷却
func (t Tuning) playerSkillCooldown(skillID string) float64 {
	if cd, ok := t.PlayerSkillCooldowns[skillID]; ok {
		return cd
	}
	return t.DefaultPlayerSkillCooldown
}

// enemySkillCooldown 查敌方技能冷却
func (t Tuning) enemySkillCooldown(skillID string) float64 {
	if cd, ok := t.EnemySkillCooldowns[skillID]; ok {
		return cd
	}
	return t.DefaultEnemySkillCooldown
}

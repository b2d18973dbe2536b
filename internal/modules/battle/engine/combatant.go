package engine

import "time"

// ActionType 战斗行动类型
type ActionType string

const (
	ActionAttack   ActionType = "attack"
	ActionUseSkill ActionType = "use_skill"
	ActionDefend   ActionType = "defend"
	ActionRevive   ActionType = "revive"
)

// PlayerCombatant 玩家侧参战单位
// 与 EnemyCombatant 分为两个具体类型：奖励结算与目标选择对两侧并不对称
type PlayerCombatant struct {
	ID               string
	Name             string
	Level            int
	Profession       string
	Health           int
	MaxHealth        int
	BaseAttackPower  int
	AttacksPerSecond float64
	AttackCooldown   float64 // 距下次普攻可用的剩余秒数
	EquippedSkills   []string
	SkillCooldowns   map[string]float64
	DodgeChance      float64

	// RevivalTimerMs 复活计时器（毫秒）
	// 仅在允许自动复活的战斗中累计；替代旧版开放式 attributes 字典
	RevivalTimerMs float64
}

// IsAlive 是否存活
func (p *PlayerCombatant) IsAlive() bool {
	return p.Health > 0
}

// ApplyDamage 结算伤害并返回实际扣血量
// 实际伤害恒为 min(raw, 当前血量)，血量钳制在 [0, MaxHealth]
func (p *PlayerCombatant) ApplyDamage(raw int) int {
	if raw < 0 {
		raw = 0
	}
	actual := raw
	if actual > p.Health {
		actual = p.Health
	}
	p.Health -= actual
	return actual
}

// ResetAttackCooldown 重置普攻冷却为 1/攻速
func (p *PlayerCombatant) ResetAttackCooldown() {
	if p.AttacksPerSecond <= 0 {
		p.AttacksPerSecond = 1
	}
	p.AttackCooldown = 1 / p.AttacksPerSecond
}

// EnemyCombatant 敌方参战单位
type EnemyCombatant struct {
	ID               string
	Name             string
	Level            int
	Health           int
	MaxHealth        int
	BaseAttackPower  int
	AttacksPerSecond float64
	AttackCooldown   float64
	Skills           []string
	SkillCooldowns   map[string]float64
	DodgeChance      float64
}

// IsAlive 是否存活
func (e *EnemyCombatant) IsAlive() bool {
	return e.Health > 0
}

// ApplyDamage 结算伤害并返回实际扣血量
func (e *EnemyCombatant) ApplyDamage(raw int) int {
	if raw < 0 {
		raw = 0
	}
	actual := raw
	if actual > e.Health {
		actual = e.Health
	}
	e.Health -= actual
	return actual
}

// ResetAttackCooldown 重置普攻冷却为 1/攻速
func (e *EnemyCombatant) ResetAttackCooldown() {
	if e.AttacksPerSecond <= 0 {
		e.AttacksPerSecond = 1
	}
	e.AttackCooldown = 1 / e.AttacksPerSecond
}

// ActionRecord 行动日志条目（不可变快照）
type ActionRecord struct {
	ActorID    string     `json:"actor_id"`
	ActorName  string     `json:"actor_name"`
	TargetID   string     `json:"target_id,omitempty"`
	TargetName string     `json:"target_name,omitempty"`
	Action     ActionType `json:"action"`
	Damage     int        `json:"damage"`
	SkillID    string     `json:"skill_id,omitempty"`
	Critical   bool       `json:"critical"`
	Timestamp  time.Time  `json:"timestamp"`
}

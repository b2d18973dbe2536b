package engine

import (
	"math/rand"
	"time"

	"tsu-battle/internal/pkg/log"
)

// Resolver 战斗结算器
// 每 tick 对单场战斗执行一次状态机推进；结算过程同步、不挂起，
// 持有 BattleContext 锁期间完成全部变更
type Resolver struct {
	tuning Tuning
	logger log.Logger
}

// NewResolver 创建结算器
func NewResolver(tuning Tuning, logger log.Logger) *Resolver {
	return &Resolver{tuning: tuning, logger: logger}
}

// Tuning 当前调参
func (r *Resolver) Tuning() Tuning {
	return r.tuning
}

// ResolveTick 推进一场战斗 delta 秒
// 返回 true 表示本 tick 内战斗转入 Completed
func (r *Resolver) ResolveTick(b *BattleContext, delta float64, col *Collector) bool {
	b.Lock()
	defer b.Unlock()

	if b.status != StatusActive {
		return false
	}

	// 敌方全灭、或玩家全灭且无法自动复活时，本 tick 只做完成转移；
	// 允许自动复活的战斗里玩家团灭不算败，复活计时继续走
	if !b.hasLivingEnemies() || (!b.hasLivingPlayers() && !b.AllowAutoRevive) {
		r.completeLocked(b, col)
		return true
	}

	col.AddTick()

	if b.AllowAutoRevive {
		r.advanceRevivals(b, delta, col)
	}

	r.resolvePlayers(b, delta, col)
	r.resolveEnemies(b, delta, col)

	b.lastUpdate = time.Now()
	return false
}

// advanceRevivals 推进死亡玩家的复活计时，调用方需已持锁
func (r *Resolver) advanceRevivals(b *BattleContext, delta float64, col *Collector) {
	for _, p := range b.Players {
		if p.IsAlive() {
			continue
		}
		p.RevivalTimerMs += delta * 1000
		if p.RevivalTimerMs < r.tuning.ReviveDelayMs {
			continue
		}
		p.Health = p.MaxHealth / 2
		p.RevivalTimerMs = 0
		b.recordAction(ActionRecord{
			ActorID:   p.ID,
			ActorName: p.Name,
			Action:    ActionRevive,
			Timestamp: time.Now(),
		})
		col.AddPlayerRevived(p.ID)
	}
}

// resolvePlayers 玩家侧自动行动，调用方需已持锁
func (r *Resolver) resolvePlayers(b *BattleContext, delta float64, col *Collector) {
	for _, p := range b.Players {
		if !p.IsAlive() {
			continue
		}

		for skillID, cd := range p.SkillCooldowns {
			cd -= delta
			if cd < 0 {
				cd = 0
			}
			p.SkillCooldowns[skillID] = cd
		}

		// 对面清场时把冷却钉在重置值上，不让攻击浪费在空场上
		if !b.hasLivingEnemies() {
			p.ResetAttackCooldown()
			continue
		}

		if skillID, ok := r.readyPlayerSkill(p); ok && rand.Float64() < r.tuning.PlayerSkillChance {
			r.playerUseSkill(b, p, b.targetEnemyFor(p.ID), skillID, col)
			continue
		}

		if p.AttackCooldown > 0 {
			p.AttackCooldown -= delta
			if p.AttackCooldown < 0 {
				p.AttackCooldown = 0
			}
			continue
		}

		// 自动攻击沿用玩家的粘性目标，无粘性目标时退回花名册首个存活敌人
		r.playerAttack(b, p, b.targetEnemyFor(p.ID), col)
	}
}

// resolveEnemies 敌方侧自动行动，调用方需已持锁
func (r *Resolver) resolveEnemies(b *BattleContext, delta float64, col *Collector) {
	for _, e := range b.Enemies {
		if !e.IsAlive() {
			continue
		}

		for skillID, cd := range e.SkillCooldowns {
			cd -= delta
			if cd < 0 {
				cd = 0
			}
			e.SkillCooldowns[skillID] = cd
		}

		if !b.hasLivingPlayers() {
			e.ResetAttackCooldown()
			continue
		}

		if skillID, ok := r.readyEnemySkill(e); ok && rand.Float64() < r.tuning.EnemySkillChance {
			r.enemyUseSkill(b, e, b.firstLivingPlayer(), skillID, col)
			continue
		}

		if e.AttackCooldown > 0 {
			e.AttackCooldown -= delta
			if e.AttackCooldown < 0 {
				e.AttackCooldown = 0
			}
			continue
		}

		r.enemyAttack(b, e, b.firstLivingPlayer(), col)
	}
}

// readyPlayerSkill 随机挑一个冷却完毕的已装备技能
func (r *Resolver) readyPlayerSkill(p *PlayerCombatant) (string, bool) {
	ready := make([]string, 0, len(p.EquippedSkills))
	for _, skillID := range p.EquippedSkills {
		if p.SkillCooldowns[skillID] <= 0 {
			ready = append(ready, skillID)
		}
	}
	if len(ready) == 0 {
		return "", false
	}
	return ready[rand.Intn(len(ready))], true
}

// readyEnemySkill 随机挑一个冷却完毕的敌方技能
func (r *Resolver) readyEnemySkill(e *EnemyCombatant) (string, bool) {
	ready := make([]string, 0, len(e.Skills))
	for _, skillID := range e.Skills {
		if e.SkillCooldowns[skillID] <= 0 {
			ready = append(ready, skillID)
		}
	}
	if len(ready) == 0 {
		return "", false
	}
	return ready[rand.Intn(len(ready))], true
}

// attackDamage 普攻伤害 = 基础攻击 + [-variance, +variance] 浮动，整数
func (r *Resolver) attackDamage(base int) int {
	v := r.tuning.AttackVariance
	dmg := base
	if v > 0 {
		dmg += rand.Intn(2*v+1) - v
	}
	if dmg < 0 {
		dmg = 0
	}
	return dmg
}

// skillDamage 技能伤害 = 基础攻击 * 倍率，整数
func (r *Resolver) skillDamage(base int) int {
	return int(float64(base) * r.tuning.SkillDamageMultiplier)
}

func (r *Resolver) playerAttack(b *BattleContext, p *PlayerCombatant, target *EnemyCombatant, col *Collector) {
	if target == nil {
		return
	}
	raw := r.attackDamage(p.BaseAttackPower)
	actual := 0
	if rand.Float64() >= target.DodgeChance {
		actual = target.ApplyDamage(raw)
	}
	p.ResetAttackCooldown()
	b.recordAction(ActionRecord{
		ActorID:    p.ID,
		ActorName:  p.Name,
		TargetID:   target.ID,
		TargetName: target.Name,
		Action:     ActionAttack,
		Damage:     actual,
		Timestamp:  time.Now(),
	})
	col.AddDamage(p.ID, target.ID, raw, actual, false, "physical")
	if !target.IsAlive() {
		col.AddEnemyKilled(p.ID, target.ID)
	}
}

func (r *Resolver) playerUseSkill(b *BattleContext, p *PlayerCombatant, target *EnemyCombatant, skillID string, col *Collector) {
	if target == nil {
		return
	}
	raw := r.skillDamage(p.BaseAttackPower)
	actual := target.ApplyDamage(raw)
	p.SkillCooldowns[skillID] = r.tuning.playerSkillCooldown(skillID)
	b.recordAction(ActionRecord{
		ActorID:    p.ID,
		ActorName:  p.Name,
		TargetID:   target.ID,
		TargetName: target.Name,
		Action:     ActionUseSkill,
		Damage:     actual,
		SkillID:    skillID,
		Timestamp:  time.Now(),
	})
	col.AddSkillUsed(p.ID, target.ID, skillID, raw, actual)
	if !target.IsAlive() {
		col.AddEnemyKilled(p.ID, target.ID)
	}
}

func (r *Resolver) enemyAttack(b *BattleContext, e *EnemyCombatant, target *PlayerCombatant, col *Collector) {
	if target == nil {
		return
	}
	raw := r.attackDamage(e.BaseAttackPower)
	actual := 0
	if rand.Float64() >= target.DodgeChance {
		actual = target.ApplyDamage(raw)
	}
	e.ResetAttackCooldown()
	b.recordAction(ActionRecord{
		ActorID:    e.ID,
		ActorName:  e.Name,
		TargetID:   target.ID,
		TargetName: target.Name,
		Action:     ActionAttack,
		Damage:     actual,
		Timestamp:  time.Now(),
	})
	col.AddDamage(e.ID, target.ID, raw, actual, false, "physical")
}

func (r *Resolver) enemyUseSkill(b *BattleContext, e *EnemyCombatant, target *PlayerCombatant, skillID string, col *Collector) {
	if target == nil {
		return
	}
	raw := r.skillDamage(e.BaseAttackPower)
	actual := target.ApplyDamage(raw)
	e.SkillCooldowns[skillID] = r.tuning.enemySkillCooldown(skillID)
	b.recordAction(ActionRecord{
		ActorID:    e.ID,
		ActorName:  e.Name,
		TargetID:   target.ID,
		TargetName: target.Name,
		Action:     ActionUseSkill,
		Damage:     actual,
		SkillID:    skillID,
		Timestamp:  time.Now(),
	})
	col.AddSkillUsed(e.ID, target.ID, skillID, raw, actual)
}

// completeLocked 执行完成转移：结算奖励、写快照结果、发结束事件，调用方需已持锁
// 胜利定义为至少一名玩家存活且敌方全灭；同时团灭不算胜利
func (r *Resolver) completeLocked(b *BattleContext, col *Collector) {
	result := ComputeReward(b)
	b.markCompleted(result)
	col.AddBattleEnded()
}

// ExecuteAction 处理玩家手动指令，绕过自动行动选择
// 查找失败（战斗/玩家/目标不存在、冷却未到）一律返回 false，不抛错
func (r *Resolver) ExecuteAction(b *BattleContext, playerID string, action ActionType, targetID, skillID string, col *Collector) bool {
	b.Lock()
	defer b.Unlock()

	if b.status != StatusActive {
		return false
	}
	p := b.findPlayer(playerID)
	if p == nil || !p.IsAlive() {
		return false
	}

	switch action {
	case ActionAttack:
		if p.AttackCooldown > 0 {
			return false
		}
		target := r.manualTarget(b, playerID, targetID)
		if target == nil {
			return false
		}
		r.playerAttack(b, p, target, col)
		return true

	case ActionUseSkill:
		if skillID == "" {
			return false
		}
		if p.SkillCooldowns[skillID] > 0 {
			return false
		}
		target := r.manualTarget(b, playerID, targetID)
		if target == nil {
			return false
		}
		r.playerUseSkill(b, p, target, skillID, col)
		return true

	case ActionDefend:
		p.DodgeChance += r.tuning.DefendDodgeBonus
		if p.DodgeChance > r.tuning.DodgeCap {
			p.DodgeChance = r.tuning.DodgeCap
		}
		b.recordAction(ActionRecord{
			ActorID:   p.ID,
			ActorName: p.Name,
			Action:    ActionDefend,
			Timestamp: time.Now(),
		})
		return true

	default:
		return false
	}
}

// manualTarget 手动指令的目标解析：显式目标须存活，否则回退粘性目标/首个存活敌人
// 显式指定目标时同步更新粘性目标表，调用方需已持锁
func (r *Resolver) manualTarget(b *BattleContext, playerID, targetID string) *EnemyCombatant {
	if targetID != "" {
		target := b.findEnemy(targetID)
		if target == nil || !target.IsAlive() {
			return nil
		}
		b.setPlayerTarget(playerID, targetID)
		return target
	}
	return b.targetEnemyFor(playerID)
}

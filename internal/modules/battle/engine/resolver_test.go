package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tsu-battle/internal/pkg/log"
)

// deterministicTuning 把所有随机项钉死，便于断言具体数值
func deterministicTuning() Tuning {
	t := DefaultTuning()
	t.PlayerSkillChance = 0
	t.EnemySkillChance = 0
	t.AttackVariance = 0
	return t
}

func testPlayer(id string, health, attack int, aps float64) *PlayerCombatant {
	return &PlayerCombatant{
		ID:               id,
		Name:             id,
		Level:            1,
		Profession:       DefaultProfession,
		Health:           health,
		MaxHealth:        health,
		BaseAttackPower:  attack,
		AttacksPerSecond: aps,
		EquippedSkills:   append([]string(nil), DefaultSkills...),
		SkillCooldowns:   map[string]float64{"power_strike": 0, "whirlwind": 0},
	}
}

func testEnemy(id string, health, attack int, aps float64) *EnemyCombatant {
	return &EnemyCombatant{
		ID:               id,
		Name:             id,
		Level:            1,
		Health:           health,
		MaxHealth:        health,
		BaseAttackPower:  attack,
		AttacksPerSecond: aps,
		Skills:           []string{"slash"},
		SkillCooldowns:   map[string]float64{"slash": 0},
	}
}

func testBattle(players []*PlayerCombatant, enemies []*EnemyCombatant) *BattleContext {
	b := newBattleContext("battle-test", BattleTypeNormal)
	b.Players = players
	b.Enemies = enemies
	return b
}

func TestResolveTickAutoAttackResetsCooldown(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 2.0)
	e := testEnemy("e1", 200, 8, 1.0)
	e.AttackCooldown = 100 // 敌方本 tick 不出手
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	col := NewCollector(b.ID)
	done := r.ResolveTick(b, 0.5, col)

	require.False(t, done)
	require.Equal(t, 185, e.Health, "variance=0 时普攻伤害恒为基础攻击")
	require.InDelta(t, 0.5, p.AttackCooldown, 1e-9, "普攻冷却重置为 1/攻速")
}

func TestResolveTickHoldsCooldownWhenAttackPending(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 1.0)
	p.AttackCooldown = 0.8
	e := testEnemy("e1", 200, 8, 1.0)
	e.AttackCooldown = 100
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	r.ResolveTick(b, 0.5, NewCollector(b.ID))

	require.Equal(t, 200, e.Health, "冷却未到不出手")
	require.InDelta(t, 0.3, p.AttackCooldown, 1e-9)
}

func TestActualDamageClampedToRemainingHealth(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 2.0)
	e := testEnemy("e1", 5, 8, 1.0)
	e.AttackCooldown = 100
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	col := NewCollector(b.ID)
	r.ResolveTick(b, 0.5, col)

	require.Equal(t, 0, e.Health, "血量不出现负数")
	require.False(t, e.IsAlive())

	var damage, killed *UnifiedEvent
	for i := range col.Events() {
		ev := &col.Events()[i]
		switch ev.Type {
		case EventDamageDealt:
			damage = ev
		case EventEnemyKilled:
			killed = ev
		}
	}
	require.NotNil(t, damage)
	require.Equal(t, 15, damage.Payload.RawDamage)
	require.Equal(t, 5, damage.Payload.ActualDamage, "实际伤害 = min(原始伤害, 命中前血量)")
	require.NotNil(t, killed, "击杀敌人要有 enemy_killed 事件")
	require.Equal(t, HashID("p1"), killed.ActorHash)
	require.Equal(t, HashID("e1"), killed.TargetHash)
}

func TestSkillDamageUsesMultiplierAndCooldownTable(t *testing.T) {
	tuning := deterministicTuning()
	tuning.PlayerSkillChance = 1.0 // 有可用技能必放
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 20, 1.0)
	p.EquippedSkills = []string{"power_strike"}
	p.SkillCooldowns = map[string]float64{"power_strike": 0}
	e := testEnemy("e1", 200, 8, 1.0)
	e.AttackCooldown = 100
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	col := NewCollector(b.ID)
	r.ResolveTick(b, 0.5, col)

	require.Equal(t, 170, e.Health, "技能伤害 = 基础攻击 * 1.5，技能无视闪避")
	require.InDelta(t, tuning.DefaultPlayerSkillCooldown, p.SkillCooldowns["power_strike"], 1e-9)

	found := false
	for _, ev := range col.Events() {
		if ev.Type == EventSkillUsed {
			found = true
			require.Equal(t, "power_strike", ev.SkillID)
			require.Equal(t, 30, ev.Payload.RawDamage)
		}
	}
	require.True(t, found)
}

func TestDodgeAvoidsAutoAttackDamage(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 2.0)
	e := testEnemy("e1", 200, 8, 1.0)
	e.DodgeChance = 1.0 // rand.Float64() < 1 恒成立，必闪避
	e.AttackCooldown = 100
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	col := NewCollector(b.ID)
	r.ResolveTick(b, 0.5, col)

	require.Equal(t, 200, e.Health)
	for _, ev := range col.Events() {
		if ev.Type == EventDamageDealt {
			require.Equal(t, 15, ev.Payload.RawDamage)
			require.Equal(t, 0, ev.Payload.ActualDamage, "闪避时事件仍发出，实际伤害为 0")
		}
	}
}

func TestResolveTickCompletesWhenEnemiesDead(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 40, 15, 1.0)
	e := testEnemy("e1", 100, 8, 1.0)
	e.Health = 0
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	col := NewCollector(b.ID)
	done := r.ResolveTick(b, 0.5, col)

	require.True(t, done)
	require.Equal(t, StatusCompleted, b.Status())
	require.NotNil(t, b.Result())
	require.True(t, b.Result().Victory, "至少一名玩家存活且敌方全灭才算胜利")
	require.Equal(t, 1, b.Result().KillSummary["e1"])

	last := col.Events()[col.Len()-1]
	require.Equal(t, EventBattleEnded, last.Type)
	require.Equal(t, PriorityCritical, last.Priority)
}

func TestMutualWipeIsNotVictory(t *testing.T) {
	p := testPlayer("p1", 100, 15, 1.0)
	p.Health = 0
	e := testEnemy("e1", 100, 8, 1.0)
	e.Health = 0
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	result := ComputeReward(b)
	require.False(t, result.Victory, "双方同时清零不算胜利")
	require.Zero(t, result.Experience)
	require.Zero(t, result.Gold)
	require.Equal(t, 1, result.KillSummary["e1"], "击杀汇总照常统计")
}

func TestPlayerWipeWithoutRevivalCompletesAsDefeat(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 1.0)
	p.Health = 0
	e := testEnemy("e1", 100, 8, 1.0)
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	done := r.ResolveTick(b, 0.5, NewCollector(b.ID))

	require.True(t, done)
	require.False(t, b.Result().Victory)
}

func TestRevivalAtThresholdRestoresHalfHealth(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 1.0)
	p.Health = 0
	p.RevivalTimerMs = 4500
	e := testEnemy("e1", 200, 8, 1.0)
	e.AttackCooldown = 100
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})
	b.AllowAutoRevive = true

	col := NewCollector(b.ID)
	done := r.ResolveTick(b, 0.5, col)

	require.False(t, done)
	require.Equal(t, 50, p.Health, "复活回到半血")
	require.Zero(t, p.RevivalTimerMs, "复活后计时器清零")

	found := false
	for _, ev := range col.Events() {
		if ev.Type == EventPlayerRevived {
			found = true
			require.Equal(t, "p1", ev.ActorID)
		}
	}
	require.True(t, found)
}

func TestRevivalBelowThresholdKeepsCounting(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 1.0)
	p.Health = 0
	e := testEnemy("e1", 200, 8, 1.0)
	e.AttackCooldown = 100
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})
	b.AllowAutoRevive = true

	r.ResolveTick(b, 0.5, NewCollector(b.ID))

	require.Equal(t, 0, p.Health)
	require.InDelta(t, 500, p.RevivalTimerMs, 1e-9)
}

func TestAllDeadPartyKeepsRevivingWhileEnemiesHold(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 1.0)
	p.Health = 0
	e := testEnemy("e1", 200, 8, 1.0)
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})
	b.AllowAutoRevive = true

	done := r.ResolveTick(b, 0.5, NewCollector(b.ID))

	require.False(t, done, "允许自动复活时玩家团灭不结束战斗")
	require.Equal(t, StatusActive, b.Status())
	require.InDelta(t, 500, p.RevivalTimerMs, 1e-9)
	require.InDelta(t, 1.0, e.AttackCooldown, 1e-9, "空场时敌方冷却钉在重置值")
}

func TestPausedBattleDoesNotAdvance(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 2.0)
	e := testEnemy("e1", 200, 8, 1.0)
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})
	require.True(t, b.Pause())

	col := NewCollector(b.ID)
	done := r.ResolveTick(b, 0.5, col)

	require.False(t, done)
	require.Equal(t, 200, e.Health)
	require.Zero(t, col.Len())

	require.True(t, b.Resume())
	require.False(t, b.Resume(), "重复恢复返回 false")
}

func TestManualAttackRespectsCooldown(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 2.0)
	p.AttackCooldown = 0.4
	e := testEnemy("e1", 200, 8, 1.0)
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	require.False(t, r.ExecuteAction(b, "p1", ActionAttack, "", "", NewCollector(b.ID)))

	p.AttackCooldown = 0
	col := NewCollector(b.ID)
	require.True(t, r.ExecuteAction(b, "p1", ActionAttack, "", "", col))
	require.Equal(t, 185, e.Health)
	require.InDelta(t, 0.5, p.AttackCooldown, 1e-9)
}

func TestManualActionUnknownActorsReturnFalse(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 2.0)
	e := testEnemy("e1", 200, 8, 1.0)
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	require.False(t, r.ExecuteAction(b, "ghost", ActionAttack, "", "", NewCollector(b.ID)))
	require.False(t, r.ExecuteAction(b, "p1", ActionAttack, "no-such-enemy", "", NewCollector(b.ID)))
	require.False(t, r.ExecuteAction(b, "p1", ActionUseSkill, "", "", NewCollector(b.ID)), "缺 skill_id 的技能指令无效")
	require.False(t, r.ExecuteAction(b, "p1", "taunt", "", "", NewCollector(b.ID)), "未知行动类型无效")
}

func TestManualSkillRespectsCooldown(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 20, 1.0)
	p.SkillCooldowns["power_strike"] = 2.0
	e := testEnemy("e1", 200, 8, 1.0)
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	require.False(t, r.ExecuteAction(b, "p1", ActionUseSkill, "", "power_strike", NewCollector(b.ID)))

	p.SkillCooldowns["power_strike"] = 0
	require.True(t, r.ExecuteAction(b, "p1", ActionUseSkill, "", "power_strike", NewCollector(b.ID)))
	require.Equal(t, 170, e.Health)
}

func TestDefendStacksAndCapsDodge(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 1.0)
	e := testEnemy("e1", 200, 8, 1.0)
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	require.True(t, r.ExecuteAction(b, "p1", ActionDefend, "", "", NewCollector(b.ID)))
	require.InDelta(t, 0.3, p.DodgeChance, 1e-9)
	require.True(t, r.ExecuteAction(b, "p1", ActionDefend, "", "", NewCollector(b.ID)))
	require.InDelta(t, 0.6, p.DodgeChance, 1e-9)
	require.True(t, r.ExecuteAction(b, "p1", ActionDefend, "", "", NewCollector(b.ID)))
	require.InDelta(t, 0.8, p.DodgeChance, 1e-9, "闪避封顶 0.8")
}

func TestManualExplicitTargetBecomesSticky(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 2.0)
	e1 := testEnemy("e1", 200, 8, 1.0)
	e2 := testEnemy("e2", 200, 8, 1.0)
	e1.AttackCooldown = 100
	e2.AttackCooldown = 100
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e1, e2})

	require.True(t, r.ExecuteAction(b, "p1", ActionAttack, "e2", "", NewCollector(b.ID)))
	require.Equal(t, 185, e2.Health)
	require.Equal(t, "e2", b.Snapshot().PlayerTargets["p1"])

	// 后续自动攻击沿用粘性目标而不是花名册首个敌人
	p.AttackCooldown = 0
	r.ResolveTick(b, 0.5, NewCollector(b.ID))
	require.Equal(t, 200, e1.Health)
	require.Equal(t, 170, e2.Health)
}

func TestStickyTargetFallsBackWhenDead(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 2.0)
	e1 := testEnemy("e1", 200, 8, 1.0)
	e2 := testEnemy("e2", 200, 8, 1.0)
	e1.AttackCooldown = 100
	e2.AttackCooldown = 100
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e1, e2})

	require.True(t, r.ExecuteAction(b, "p1", ActionAttack, "e2", "", NewCollector(b.ID)))
	e2.Health = 0

	p.AttackCooldown = 0
	require.True(t, r.ExecuteAction(b, "p1", ActionAttack, "", "", NewCollector(b.ID)))
	require.Equal(t, 185, e1.Health, "粘性目标死亡后回退到首个存活敌人")
}

func TestRecentActionsExposeLastTen(t *testing.T) {
	tuning := deterministicTuning()
	r := NewResolver(tuning, log.GetLogger())

	p := testPlayer("p1", 100, 15, 1.0)
	e := testEnemy("e1", 10000, 8, 1.0)
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e})

	for i := 0; i < 15; i++ {
		p.AttackCooldown = 0
		require.True(t, r.ExecuteAction(b, "p1", ActionAttack, "", "", NewCollector(b.ID)))
	}

	actions := b.Snapshot().RecentActions
	require.Len(t, actions, RecentActionLimit)
	for _, rec := range actions {
		require.Equal(t, ActionAttack, rec.Action)
		require.Equal(t, "p1", rec.ActorID)
	}
}

func TestVictoryRewardScalesWithEnemies(t *testing.T) {
	p := testPlayer("p1", 100, 15, 1.0)
	e1 := testEnemy("goblin", 100, 8, 1.0)
	e1.Level = 3
	e1.Health = 0
	e2 := testEnemy("goblin", 100, 8, 1.0)
	e2.Level = 3
	e2.Health = 0
	b := testBattle([]*PlayerCombatant{p}, []*EnemyCombatant{e1, e2})

	result := ComputeReward(b)
	require.True(t, result.Victory)
	require.Equal(t, 2, result.KillSummary["goblin"])
	require.Equal(t, 2*(3*10+100/10), result.Experience)
	require.GreaterOrEqual(t, result.Gold, int64(2*5*3))
	require.LessOrEqual(t, result.Gold, int64(2*10*3))
}

package engine

import (
	"sync"
	"time"
)

// BattleType 战斗类型
type BattleType string

const (
	BattleTypeNormal  BattleType = "normal"
	BattleTypeDungeon BattleType = "dungeon"
)

// BattleStatus 战斗状态
type BattleStatus string

const (
	StatusActive    BattleStatus = "active"
	StatusPaused    BattleStatus = "paused"
	StatusCompleted BattleStatus = "completed"
)

// RecentActionLimit 对外暴露的行动日志条数上限
const RecentActionLimit = 10

// BattleContext 单场战斗的完整可变状态
// 每个实例持有自己的互斥锁：tick 结算与外部指令（手动攻击/停止）可能并发写同一场战斗，
// 所有公开入口都必须先取锁
type BattleContext struct {
	mu sync.Mutex

	ID              string
	Type            BattleType
	DungeonID       string
	PartyID         string
	EnemyTemplateID string
	AllowAutoRevive bool
	Wave            int

	Players []*PlayerCombatant
	Enemies []*EnemyCombatant

	actionHistory []ActionRecord
	playerTargets map[string]string

	status     BattleStatus
	isActive   bool
	lastUpdate time.Time
	startedAt  time.Time

	result *BattleResult
}

func newBattleContext(id string, battleType BattleType) *BattleContext {
	now := time.Now()
	return &BattleContext{
		ID:            id,
		Type:          battleType,
		playerTargets: make(map[string]string),
		status:        StatusActive,
		isActive:      true,
		lastUpdate:    now,
		startedAt:     now,
		Wave:          1,
	}
}

// Lock 加锁（tick 与指令写入方共用）
func (b *BattleContext) Lock() { b.mu.Lock() }

// Unlock 解锁
func (b *BattleContext) Unlock() { b.mu.Unlock() }

// Status 当前状态（加锁读取）
func (b *BattleContext) Status() BattleStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// IsActive 是否活跃（status 的缓存镜像，用于快速过滤）
func (b *BattleContext) IsActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isActive
}

// setStatus 更新状态并同步 isActive 镜像，调用方需已持锁
func (b *BattleContext) setStatus(status BattleStatus) {
	b.status = status
	b.isActive = status == StatusActive
}

// markCompleted 标记战斗完成并写入结算结果，调用方需已持锁
func (b *BattleContext) markCompleted(result *BattleResult) {
	b.setStatus(StatusCompleted)
	b.result = result
	b.lastUpdate = time.Now()
}

// Pause 暂停战斗；仅 Active 可暂停
func (b *BattleContext) Pause() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != StatusActive {
		return false
	}
	b.setStatus(StatusPaused)
	return true
}

// Resume 恢复战斗；仅 Paused 可恢复
func (b *BattleContext) Resume() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status != StatusPaused {
		return false
	}
	b.setStatus(StatusActive)
	return true
}

// Result 结算结果，未完成时为 nil
func (b *BattleContext) Result() *BattleResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}

// StartedAt 战斗开始时间
func (b *BattleContext) StartedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.startedAt
}

// LastUpdate 最近一次结算时间
func (b *BattleContext) LastUpdate() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastUpdate
}

// recordAction 追加行动日志，调用方需已持锁
// 日志本身不截断，只在对外快照时裁剪到最近 RecentActionLimit 条
func (b *BattleContext) recordAction(rec ActionRecord) {
	b.actionHistory = append(b.actionHistory, rec)
}

// recentActions 最近 N 条行动日志副本，调用方需已持锁
func (b *BattleContext) recentActions() []ActionRecord {
	start := 0
	if len(b.actionHistory) > RecentActionLimit {
		start = len(b.actionHistory) - RecentActionLimit
	}
	out := make([]ActionRecord, len(b.actionHistory)-start)
	copy(out, b.actionHistory[start:])
	return out
}

// firstLivingEnemy 花名册顺序下第一个存活敌人，调用方需已持锁
func (b *BattleContext) firstLivingEnemy() *EnemyCombatant {
	for _, e := range b.Enemies {
		if e.IsAlive() {
			return e
		}
	}
	return nil
}

// firstLivingPlayer 花名册顺序下第一个存活玩家，调用方需已持锁
func (b *BattleContext) firstLivingPlayer() *PlayerCombatant {
	for _, p := range b.Players {
		if p.IsAlive() {
			return p
		}
	}
	return nil
}

// findPlayer 按 ID 查找玩家，调用方需已持锁
func (b *BattleContext) findPlayer(id string) *PlayerCombatant {
	for _, p := range b.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// findEnemy 按 ID 查找敌人，调用方需已持锁
func (b *BattleContext) findEnemy(id string) *EnemyCombatant {
	for _, e := range b.Enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// hasLivingPlayers 玩家侧是否还有存活单位，调用方需已持锁
func (b *BattleContext) hasLivingPlayers() bool {
	return b.firstLivingPlayer() != nil
}

// hasLivingEnemies 敌方侧是否还有存活单位，调用方需已持锁
func (b *BattleContext) hasLivingEnemies() bool {
	return b.firstLivingEnemy() != nil
}

// targetEnemyFor 玩家的粘性目标：已选且存活则沿用，否则退回花名册首个存活敌人
// 调用方需已持锁
func (b *BattleContext) targetEnemyFor(playerID string) *EnemyCombatant {
	if targetID, ok := b.playerTargets[playerID]; ok {
		if enemy := b.findEnemy(targetID); enemy != nil && enemy.IsAlive() {
			return enemy
		}
	}
	return b.firstLivingEnemy()
}

// setPlayerTarget 更新玩家粘性目标，调用方需已持锁
func (b *BattleContext) setPlayerTarget(playerID, enemyID string) {
	b.playerTargets[playerID] = enemyID
}

// CombatantSnapshot 参战单位对外快照
type CombatantSnapshot struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Level            int                `json:"level"`
	Health           int                `json:"health"`
	MaxHealth        int                `json:"max_health"`
	AttackCooldown   float64            `json:"attack_cooldown"`
	SkillCooldowns   map[string]float64 `json:"skill_cooldowns,omitempty"`
	DodgeChance      float64            `json:"dodge_chance,omitempty"`
	IsAlive          bool               `json:"is_alive"`
	AttacksPerSecond float64            `json:"attacks_per_second"`
}

// BattleSnapshot 战斗对外快照（每 tick 结算后保证最新）
type BattleSnapshot struct {
	BattleID      string              `json:"battle_id"`
	BattleType    BattleType          `json:"battle_type"`
	DungeonID     string              `json:"dungeon_id,omitempty"`
	PartyID       string              `json:"party_id,omitempty"`
	Wave          int                 `json:"wave"`
	Status        BattleStatus        `json:"status"`
	IsActive      bool                `json:"is_active"`
	Players       []CombatantSnapshot `json:"players"`
	Enemies       []CombatantSnapshot `json:"enemies"`
	RecentActions []ActionRecord      `json:"recent_actions"`
	PlayerTargets map[string]string   `json:"player_targets"`
	Result        *BattleResult       `json:"result,omitempty"`
	LastUpdate    time.Time           `json:"last_update"`
}

// Snapshot 生成对外状态快照
func (b *BattleContext) Snapshot() *BattleSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := &BattleSnapshot{
		BattleID:      b.ID,
		BattleType:    b.Type,
		DungeonID:     b.DungeonID,
		PartyID:       b.PartyID,
		Wave:          b.Wave,
		Status:        b.status,
		IsActive:      b.isActive,
		Players:       make([]CombatantSnapshot, 0, len(b.Players)),
		Enemies:       make([]CombatantSnapshot, 0, len(b.Enemies)),
		RecentActions: b.recentActions(),
		PlayerTargets: make(map[string]string, len(b.playerTargets)),
		Result:        b.result,
		LastUpdate:    b.lastUpdate,
	}
	for _, p := range b.Players {
		cooldowns := make(map[string]float64, len(p.SkillCooldowns))
		for k, v := range p.SkillCooldowns {
			cooldowns[k] = v
		}
		snap.Players = append(snap.Players, CombatantSnapshot{
			ID:               p.ID,
			Name:             p.Name,
			Level:            p.Level,
			Health:           p.Health,
			MaxHealth:        p.MaxHealth,
			AttackCooldown:   p.AttackCooldown,
			SkillCooldowns:   cooldowns,
			DodgeChance:      p.DodgeChance,
			IsAlive:          p.IsAlive(),
			AttacksPerSecond: p.AttacksPerSecond,
		})
	}
	for _, e := range b.Enemies {
		snap.Enemies = append(snap.Enemies, CombatantSnapshot{
			ID:               e.ID,
			Name:             e.Name,
			Level:            e.Level,
			Health:           e.Health,
			MaxHealth:        e.MaxHealth,
			AttackCooldown:   e.AttackCooldown,
			DodgeChance:      e.DodgeChance,
			IsAlive:          e.IsAlive(),
			AttacksPerSecond: e.AttacksPerSecond,
		})
	}
	for k, v := range b.playerTargets {
		snap.PlayerTargets[k] = v
	}
	return snap
}

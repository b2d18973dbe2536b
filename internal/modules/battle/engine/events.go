package engine

import (
	"context"
	"hash/fnv"
	"time"
)

// EventType 领域事件类型
type EventType string

const (
	EventBattleStarted EventType = "battle_started"
	EventBattleTick    EventType = "battle_tick"
	EventDamageDealt   EventType = "damage_dealt"
	EventSkillUsed     EventType = "skill_used"
	EventEnemyKilled   EventType = "enemy_killed"
	EventPlayerRevived EventType = "player_revived"
	EventBattleEnded   EventType = "battle_ended"
)

// EventPriority 事件优先级档位
type EventPriority int

const (
	PriorityLow EventPriority = iota
	PriorityGameplay
	PriorityCritical
)

// DamagePayload 伤害类事件负载
type DamagePayload struct {
	RawDamage    int    `json:"raw_damage"`
	ActualDamage int    `json:"actual_damage"`
	Critical     bool   `json:"critical"`
	DamageType   string `json:"damage_type"`
}

// UnifiedEvent 统一领域事件（值对象，构造后不再修改）
// Actor/Target 同时携带 FNV-1a 64 位哈希和原始 ID：
// 哈希保证负载定宽，原始 ID 供下游在意精确身份时使用（哈希碰撞会静默合并实体）
type UnifiedEvent struct {
	Type       EventType      `json:"type"`
	Priority   EventPriority  `json:"priority"`
	BattleID   string         `json:"battle_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	ActorHash  uint64         `json:"actor_hash,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
	TargetHash uint64         `json:"target_hash,omitempty"`
	SkillID    string         `json:"skill_id,omitempty"`
	Payload    *DamagePayload `json:"payload,omitempty"`
	Timestamp  int64          `json:"timestamp"`
}

// HashID 对领域 ID 求 FNV-1a 64 位哈希
func HashID(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

// EventPublisher 批量事件出口
// 每 tick 只调用一次，返回实际接受的事件数；欠投递由调用方记警告，不在核心重试
type EventPublisher interface {
	PublishBatch(ctx context.Context, events []UnifiedEvent) (int, error)
}

// Collector 把一次结算的副作用收敛为事件列表，而不是边改状态边推送通知
type Collector struct {
	battleID string
	events   []UnifiedEvent
}

// NewCollector 创建指定战斗的事件收集器
func NewCollector(battleID string) *Collector {
	return &Collector{battleID: battleID}
}

func (c *Collector) add(ev UnifiedEvent) {
	ev.BattleID = c.battleID
	ev.Timestamp = time.Now().UnixMilli()
	c.events = append(c.events, ev)
}

// AddBattleStarted 战斗创建事件
func (c *Collector) AddBattleStarted() {
	c.add(UnifiedEvent{Type: EventBattleStarted, Priority: PriorityGameplay})
}

// AddTick 心跳事件
func (c *Collector) AddTick() {
	c.add(UnifiedEvent{Type: EventBattleTick, Priority: PriorityLow})
}

// AddDamage 伤害事件
func (c *Collector) AddDamage(actorID, targetID string, raw, actual int, critical bool, damageType string) {
	c.add(UnifiedEvent{
		Type:       EventDamageDealt,
		Priority:   PriorityGameplay,
		ActorID:    actorID,
		ActorHash:  HashID(actorID),
		TargetID:   targetID,
		TargetHash: HashID(targetID),
		Payload: &DamagePayload{
			RawDamage:    raw,
			ActualDamage: actual,
			Critical:     critical,
			DamageType:   damageType,
		},
	})
}

// AddSkillUsed 技能释放事件
func (c *Collector) AddSkillUsed(actorID, targetID, skillID string, raw, actual int) {
	c.add(UnifiedEvent{
		Type:       EventSkillUsed,
		Priority:   PriorityGameplay,
		ActorID:    actorID,
		ActorHash:  HashID(actorID),
		TargetID:   targetID,
		TargetHash: HashID(targetID),
		SkillID:    skillID,
		Payload: &DamagePayload{
			RawDamage:    raw,
			ActualDamage: actual,
			DamageType:   "skill",
		},
	})
}

// AddEnemyKilled 击杀事件
func (c *Collector) AddEnemyKilled(actorID, targetID string) {
	c.add(UnifiedEvent{
		Type:       EventEnemyKilled,
		Priority:   PriorityGameplay,
		ActorID:    actorID,
		ActorHash:  HashID(actorID),
		TargetID:   targetID,
		TargetHash: HashID(targetID),
	})
}

// AddPlayerRevived 复活事件
func (c *Collector) AddPlayerRevived(playerID string) {
	c.add(UnifiedEvent{
		Type:      EventPlayerRevived,
		Priority:  PriorityGameplay,
		ActorID:   playerID,
		ActorHash: HashID(playerID),
	})
}

// AddBattleEnded 战斗结束事件
func (c *Collector) AddBattleEnded() {
	c.add(UnifiedEvent{Type: EventBattleEnded, Priority: PriorityCritical})
}

// Events 当前已收集的事件
func (c *Collector) Events() []UnifiedEvent {
	return c.events
}

// Len 已收集事件数
func (c *Collector) Len() int {
	return len(c.events)
}

package engine

import (
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashIDIsFNV1a64(t *testing.T) {
	require.Equal(t, uint64(14695981039346656037), HashID(""), "空串等于 FNV-1a 偏移基准")

	h := fnv.New64a()
	_, _ = h.Write([]byte("hero-1"))
	require.Equal(t, h.Sum64(), HashID("hero-1"))

	require.Equal(t, HashID("hero-1"), HashID("hero-1"), "同一 ID 哈希稳定")
	require.NotEqual(t, HashID("hero-1"), HashID("hero-2"))
}

func TestCollectorStampsBattleIDAndTimestamp(t *testing.T) {
	col := NewCollector("battle-9")
	col.AddBattleStarted()
	col.AddTick()
	col.AddDamage("p1", "e1", 15, 5, false, "physical")
	col.AddSkillUsed("p1", "e1", "power_strike", 30, 30)
	col.AddEnemyKilled("p1", "e1")
	col.AddPlayerRevived("p1")
	col.AddBattleEnded()

	require.Equal(t, 7, col.Len())
	for _, ev := range col.Events() {
		require.Equal(t, "battle-9", ev.BattleID)
		require.Positive(t, ev.Timestamp)
	}
}

func TestEventsCarryBothRawIDAndHash(t *testing.T) {
	col := NewCollector("battle-9")
	col.AddDamage("p1", "e1", 15, 5, false, "physical")

	ev := col.Events()[0]
	require.Equal(t, EventDamageDealt, ev.Type)
	require.Equal(t, "p1", ev.ActorID)
	require.Equal(t, HashID("p1"), ev.ActorHash)
	require.Equal(t, "e1", ev.TargetID)
	require.Equal(t, HashID("e1"), ev.TargetHash)
	require.Equal(t, 15, ev.Payload.RawDamage)
	require.Equal(t, 5, ev.Payload.ActualDamage)
}

func TestEventPriorities(t *testing.T) {
	col := NewCollector("battle-9")
	col.AddTick()
	col.AddDamage("p1", "e1", 15, 5, false, "physical")
	col.AddBattleEnded()

	events := col.Events()
	require.Equal(t, PriorityLow, events[0].Priority)
	require.Equal(t, PriorityGameplay, events[1].Priority)
	require.Equal(t, PriorityCritical, events[2].Priority)
}

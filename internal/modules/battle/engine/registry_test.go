package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"tsu-battle/internal/pkg/log"
)

type fakeStatsProvider struct {
	stats map[string]*CharacterStats
	err   error
}

func (f *fakeStatsProvider) CharacterStats(ctx context.Context, characterID string) (*CharacterStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats[characterID], nil
}

type fakePartyResolver struct {
	members map[string][]string
	err     error
}

func (f *fakePartyResolver) PartyMembers(ctx context.Context, partyID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members[partyID], nil
}

func newTestRegistry(stats *fakeStatsProvider, party *fakePartyResolver) *Registry {
	if stats == nil {
		stats = &fakeStatsProvider{}
	}
	if party == nil {
		party = &fakePartyResolver{}
	}
	return NewRegistry(stats, party, DefaultTuning(), log.GetLogger())
}

func TestCreateRejectsEmptyCharacterID(t *testing.T) {
	r := newTestRegistry(nil, nil)
	_, err := r.Create(context.Background(), &CreateBattleRequest{})
	require.Error(t, err)
	_, err = r.Create(context.Background(), nil)
	require.Error(t, err)
}

func TestCreateFallsBackToDefaultStats(t *testing.T) {
	r := newTestRegistry(&fakeStatsProvider{err: errors.New("db down")}, nil)

	b, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)
	require.Len(t, b.Players, 1)

	p := b.Players[0]
	require.Equal(t, DefaultHealth, p.Health)
	require.Equal(t, DefaultHealth, p.MaxHealth)
	require.Equal(t, DefaultAttackPower, p.BaseAttackPower)
	require.InDelta(t, DefaultAttacksPerSecond, p.AttacksPerSecond, 1e-9)
	require.Equal(t, DefaultProfession, p.Profession)
	require.Equal(t, DefaultSkills, p.EquippedSkills)
	require.Equal(t, 1, p.Level)
}

func TestCreateUsesProvidedStats(t *testing.T) {
	stats := &fakeStatsProvider{stats: map[string]*CharacterStats{
		"hero-1": {
			ID:               "hero-1",
			Name:             "阿尔文",
			Level:            4,
			Health:           180,
			AttackPower:      22,
			AttacksPerSecond: 1.6,
			Profession:       "Mage",
			Skills:           []string{"fireball"},
		},
	}}
	r := newTestRegistry(stats, nil)

	b, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)

	p := b.Players[0]
	require.Equal(t, "阿尔文", p.Name)
	require.Equal(t, 180, p.MaxHealth)
	require.Equal(t, 22, p.BaseAttackPower)
	require.Equal(t, []string{"fireball"}, p.EquippedSkills)
	require.Contains(t, p.SkillCooldowns, "fireball")
}

func TestEnemyCountScalesWithParticipants(t *testing.T) {
	party := &fakePartyResolver{members: map[string][]string{
		"team-1": {"hero-1", "hero-2", "hero-3", "hero-4"},
	}}
	r := newTestRegistry(nil, party)

	solo, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)
	require.Len(t, solo.Enemies, 1, "单人也至少刷一个敌人")

	group, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
		PartyID:         "team-1",
	})
	require.NoError(t, err)
	require.Len(t, group.Players, 4)
	require.Len(t, group.Enemies, 2, "敌人数量 = max(1, 参战人数/2)")

	// 4 人战的敌人要比单人战更硬
	require.Greater(t, group.Enemies[0].MaxHealth, solo.Enemies[0].MaxHealth)
	require.Greater(t, group.Enemies[0].BaseAttackPower, solo.Enemies[0].BaseAttackPower)
}

func TestPartyLookupFailureDegradesToSolo(t *testing.T) {
	r := newTestRegistry(nil, &fakePartyResolver{err: errors.New("party service down")})

	b, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
		PartyID:         "team-1",
	})
	require.NoError(t, err, "队伍查询失败不中止开战")
	require.Len(t, b.Players, 1)
	require.Equal(t, "hero-1", b.Players[0].ID)
}

func TestRosterAlwaysIncludesInitiator(t *testing.T) {
	party := &fakePartyResolver{members: map[string][]string{
		"team-1": {"hero-2", "hero-3"},
	}}
	r := newTestRegistry(nil, party)

	b, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
		PartyID:         "team-1",
	})
	require.NoError(t, err)
	require.Len(t, b.Players, 3)
	require.Equal(t, "hero-1", b.Players[0].ID, "发起人不在队伍名单里时补到首位")
}

func TestUnknownEnemyTemplateGetsFallback(t *testing.T) {
	r := newTestRegistry(nil, nil)

	b, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "void_horror",
	})
	require.NoError(t, err)
	require.Len(t, b.Enemies, 1)
	require.Equal(t, "void_horror", b.Enemies[0].Name)
	require.Positive(t, b.Enemies[0].MaxHealth)
}

func TestDungeonBattleAllowsAutoRevive(t *testing.T) {
	r := newTestRegistry(nil, nil)

	normal, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)
	require.False(t, normal.AllowAutoRevive)

	dungeon, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
		BattleType:      BattleTypeDungeon,
		DungeonID:       "crypt-1",
	})
	require.NoError(t, err)
	require.True(t, dungeon.AllowAutoRevive)
}

func TestStopIsIdempotent(t *testing.T) {
	r := newTestRegistry(nil, nil)

	b, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)

	require.True(t, r.Stop(b.ID), "首次停止返回 true")
	require.Equal(t, StatusCompleted, b.Status())
	require.False(t, r.Stop(b.ID), "重复停止返回 false")
	require.False(t, r.Stop("no-such-battle"))
}

func TestRegistryLookupAndRemove(t *testing.T) {
	r := newTestRegistry(nil, nil)

	b, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)

	require.Same(t, b, r.Get(b.ID))
	require.Nil(t, r.Get("no-such-battle"))
	require.Len(t, r.ListActive(), 1)
	require.Empty(t, r.ListCompleted())
	require.Equal(t, 1, r.Count())

	r.Stop(b.ID)
	require.Empty(t, r.ListActive())
	require.Len(t, r.ListCompleted(), 1)

	require.True(t, r.Remove(b.ID))
	require.False(t, r.Remove(b.ID))
	require.Zero(t, r.Count())
}

func TestNextWaveReplacesEnemiesAndKeepsPlayers(t *testing.T) {
	r := newTestRegistry(nil, nil)

	b, err := r.Create(context.Background(), &CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
		BattleType:      BattleTypeDungeon,
		DungeonID:       "crypt-1",
	})
	require.NoError(t, err)

	b.Players[0].Health = 37 // 跨波延续血量
	firstWaveHealth := b.Enemies[0].MaxHealth
	b.Enemies[0].Health = 0
	r.Stop(b.ID)

	r.NextWave(b)

	require.Equal(t, 2, b.Wave)
	require.Equal(t, StatusActive, b.Status())
	require.Nil(t, b.Result(), "进入下一波后清除上一波结果")
	require.Equal(t, 37, b.Players[0].Health)
	require.Greater(t, b.Enemies[0].MaxHealth, firstWaveHealth, "每波敌人血量上调")
	require.True(t, b.Enemies[0].IsAlive())
}

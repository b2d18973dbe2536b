package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tsu-battle/internal/modules/battle/engine"
	"tsu-battle/internal/pkg/log"
	"tsu-battle/internal/repository/interfaces"
)

type fakeBattleReportRepo struct {
	reports []*interfaces.BattleReport
	err     error
}

func (f *fakeBattleReportRepo) Create(ctx context.Context, report *interfaces.BattleReport) error {
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, report)
	return nil
}

func newFlowFixture(t *testing.T, repo interfaces.BattleReportRepository) (*FlowService, *engine.Registry, *engine.BattleContext) {
	t.Helper()

	svc := NewCharacterService(nil, nil)
	registry := engine.NewRegistry(svc, svc, engine.DefaultTuning(), log.GetLogger())
	flow := NewFlowService(registry, repo, nil, 30*time.Second, log.GetLogger())

	b, err := registry.Create(context.Background(), &engine.CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
		PartyID:         "team-1",
		BattleType:      engine.BattleTypeDungeon,
		DungeonID:       "crypt-1",
	})
	require.NoError(t, err)
	return flow, registry, b
}

func completeAsVictory(b *engine.BattleContext) *engine.CompletionSummary {
	for _, e := range b.Enemies {
		e.Health = 0
	}
	return &engine.CompletionSummary{
		BattleID:   b.ID,
		BattleType: b.Type,
		PartyID:    b.PartyID,
		DungeonID:  b.DungeonID,
		Wave:       b.Wave,
		Victory:    true,
		PlayerIDs:  []string{"hero-1"},
		Result: &engine.BattleResult{
			Victory:     true,
			Gold:        12,
			Loot:        []engine.LootItem{{ItemID: "potion_minor", ItemType: "consumable", Quantity: 1}},
			KillSummary: map[string]int{"哥布林": 1},
			CompletedAt: time.Now(),
		},
		StartedAt:   b.StartedAt(),
		CompletedAt: time.Now(),
	}
}

func TestDungeonVictoryAdvancesWave(t *testing.T) {
	repo := &fakeBattleReportRepo{}
	flow, _, b := newFlowFixture(t, repo)

	recycled := flow.OnBattleComplete(context.Background(), completeAsVictory(b))

	require.True(t, recycled, "地城胜利且未到波次上限时回收战斗")
	require.Equal(t, 2, b.Wave)
	require.Equal(t, engine.StatusActive, b.Status())
	require.True(t, b.Enemies[0].IsAlive(), "新一波敌人已就位")
	require.Len(t, repo.reports, 1, "每波完成都落一条战报")
}

func TestDungeonStopsRecyclingAtWaveLimit(t *testing.T) {
	repo := &fakeBattleReportRepo{}
	flow, _, b := newFlowFixture(t, repo)

	summary := completeAsVictory(b)
	summary.Wave = MaxDungeonWaves

	recycled := flow.OnBattleComplete(context.Background(), summary)
	require.False(t, recycled, "到达波次上限后不再回收")
}

func TestStoppedDungeonVictoryDoesNotRecycle(t *testing.T) {
	repo := &fakeBattleReportRepo{}
	flow, _, b := newFlowFixture(t, repo)

	summary := completeAsVictory(b)
	summary.Stopped = true

	recycled := flow.OnBattleComplete(context.Background(), summary)
	require.False(t, recycled, "手动停止是终态，不做波次回收")
	require.Equal(t, 1, b.Wave)
	require.Len(t, repo.reports, 1, "停止的战斗照常落战报")
}

func TestDefeatDoesNotAdvanceWave(t *testing.T) {
	repo := &fakeBattleReportRepo{}
	flow, _, b := newFlowFixture(t, repo)

	summary := completeAsVictory(b)
	summary.Victory = false
	summary.Result.Victory = false

	recycled := flow.OnBattleComplete(context.Background(), summary)
	require.False(t, recycled)
	require.Equal(t, 1, b.Wave)
	require.Len(t, repo.reports, 1)
	require.Equal(t, "defeat", repo.reports[0].ResultStatus)
}

func TestNormalBattleNeverRecycles(t *testing.T) {
	repo := &fakeBattleReportRepo{}
	svc := NewCharacterService(nil, nil)
	registry := engine.NewRegistry(svc, svc, engine.DefaultTuning(), log.GetLogger())
	flow := NewFlowService(registry, repo, nil, 30*time.Second, log.GetLogger())

	b, err := registry.Create(context.Background(), &engine.CreateBattleRequest{
		CharacterID:     "hero-1",
		EnemyTemplateID: "goblin",
	})
	require.NoError(t, err)

	summary := completeAsVictory(b)
	recycled := flow.OnBattleComplete(context.Background(), summary)
	require.False(t, recycled, "普通战斗胜利也不回收")
}

func TestReportCarriesLootAndParticipants(t *testing.T) {
	repo := &fakeBattleReportRepo{}
	flow, _, b := newFlowFixture(t, repo)

	flow.OnBattleComplete(context.Background(), completeAsVictory(b))

	require.Len(t, repo.reports, 1)
	report := repo.reports[0]
	require.Equal(t, b.ID, report.BattleID)
	require.Equal(t, "team-1", report.TeamID)
	require.Equal(t, "crypt-1", report.DungeonID)
	require.Equal(t, "victory", report.ResultStatus)
	require.EqualValues(t, 12, report.LootGold)
	require.JSONEq(t, `[{"item_id":"potion_minor","item_type":"consumable","quantity":1}]`, string(report.LootItems))
	require.JSONEq(t, `["hero-1"]`, string(report.Participants))
}

func TestReportFailureDoesNotBreakFlow(t *testing.T) {
	repo := &fakeBattleReportRepo{err: context.DeadlineExceeded}
	flow, _, b := newFlowFixture(t, repo)

	require.NotPanics(t, func() {
		flow.OnBattleComplete(context.Background(), completeAsVictory(b))
	})
}

func TestRefreshQueriesDegradeWithoutRedis(t *testing.T) {
	flow, _, _ := newFlowFixture(t, nil)

	require.False(t, flow.IsPlayerInRefresh(context.Background(), "hero-1"))
	require.Zero(t, flow.RemainingRefreshTime(context.Background(), "hero-1"))
}

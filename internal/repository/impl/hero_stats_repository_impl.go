package impl

import (
	"context"
	"database/sql"
	"fmt"

	"tsu-battle/internal/repository/interfaces"
)

type heroStatsRepositoryImpl struct {
	db *sql.DB
}

// NewHeroStatsRepository 创建英雄基础数值仓储实例。
func NewHeroStatsRepository(db *sql.DB) interfaces.HeroStatsRepository {
	return &heroStatsRepositoryImpl{db: db}
}

func (r *heroStatsRepositoryImpl) GetBaseStats(ctx context.Context, heroID string) (*interfaces.HeroBaseStats, error) {
	query := `
		SELECT id, name, level, max_health, attack_power, attack_speed, profession
		FROM game_runtime.heroes
		WHERE id = $1 AND deleted_at IS NULL
	`

	stats := &interfaces.HeroBaseStats{}
	err := r.db.QueryRowContext(ctx, query, heroID).Scan(
		&stats.HeroID,
		&stats.Name,
		&stats.Level,
		&stats.MaxHealth,
		&stats.AttackPower,
		&stats.AttackSpeed,
		&stats.Profession,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询英雄基础数值失败: %w", err)
	}

	skills, err := r.listSkillIDs(ctx, heroID)
	if err != nil {
		return nil, err
	}
	stats.SkillIDs = skills
	return stats, nil
}

func (r *heroStatsRepositoryImpl) listSkillIDs(ctx context.Context, heroID string) ([]string, error) {
	query := `
		SELECT skill_id
		FROM game_runtime.hero_skills
		WHERE hero_id = $1 AND equipped = TRUE
		ORDER BY slot_index
	`

	rows, err := r.db.QueryContext(ctx, query, heroID)
	if err != nil {
		return nil, fmt.Errorf("查询英雄技能失败: %w", err)
	}
	defer rows.Close()

	var skillIDs []string
	for rows.Next() {
		var skillID string
		if err := rows.Scan(&skillID); err != nil {
			return nil, fmt.Errorf("扫描技能 ID 失败: %w", err)
		}
		skillIDs = append(skillIDs, skillID)
	}
	return skillIDs, rows.Err()
}

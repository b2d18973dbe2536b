package impl

import (
	"context"
	"database/sql"
	"fmt"

	"tsu-battle/internal/repository/interfaces"
)

type partyMemberRepositoryImpl struct {
	db *sql.DB
}

// NewPartyMemberRepository 创建队伍成员仓储实例。
func NewPartyMemberRepository(db *sql.DB) interfaces.PartyMemberRepository {
	return &partyMemberRepositoryImpl{db: db}
}

func (r *partyMemberRepositoryImpl) ListHeroIDs(ctx context.Context, teamID string) ([]string, error) {
	query := `
		SELECT hero_id
		FROM game_runtime.team_members
		WHERE team_id = $1 AND status = 'active'
		ORDER BY joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("查询队伍成员失败: %w", err)
	}
	defer rows.Close()

	var heroIDs []string
	for rows.Next() {
		var heroID string
		if err := rows.Scan(&heroID); err != nil {
			return nil, fmt.Errorf("扫描队伍成员失败: %w", err)
		}
		heroIDs = append(heroIDs, heroID)
	}
	return heroIDs, rows.Err()
}

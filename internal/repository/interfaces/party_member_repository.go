package interfaces

import "context"

// PartyMemberRepository 队伍成员查询
// 战斗引擎只需要成员英雄 ID 列表，完整的队伍管理在 game-server 侧
type PartyMemberRepository interface {
	// ListHeroIDs 查询队伍的活跃成员英雄 ID，按入队顺序返回
	ListHeroIDs(ctx context.Context, teamID string) ([]string, error)
}

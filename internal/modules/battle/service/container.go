package service

import (
	"database/sql"

	"tsu-battle/internal/modules/battle/engine"
	"tsu-battle/internal/pkg/log"
	redisClient "tsu-battle/internal/pkg/redis"
	"tsu-battle/internal/repository/impl"
	"tsu-battle/internal/repository/interfaces"
)

// ServiceContainer 战斗服务容器 - 统一管理 Repository、引擎组件与 Service
// 目的：避免重复创建，简化依赖注入
type ServiceContainer struct {
	// Repository（共享实例；db 缺失时为 nil，走默认值降级）
	heroStatsRepo    interfaces.HeroStatsRepository
	partyMemberRepo  interfaces.PartyMemberRepository
	battleReportRepo interfaces.BattleReportRepository

	// 引擎组件（共享实例）
	Registry  *engine.Registry
	Resolver  *engine.Resolver
	Scheduler *engine.Scheduler

	// Service（共享实例）
	CharacterService *CharacterService
	FlowService      *FlowService
	BattleService    *BattleService
}

// NewServiceContainer 创建服务容器
// db 与 redis 都是可选依赖：缺 db 用固定默认数值开战，缺 redis 刷新冷却退化为关闭
func NewServiceContainer(db *sql.DB, redis *redisClient.Client, publisher engine.EventPublisher, tuning engine.Tuning, logger log.Logger) *ServiceContainer {
	c := &ServiceContainer{}

	if db != nil {
		c.heroStatsRepo = impl.NewHeroStatsRepository(db)
		c.partyMemberRepo = impl.NewPartyMemberRepository(db)
		c.battleReportRepo = impl.NewBattleReportRepository(db)
	}

	c.CharacterService = NewCharacterService(c.heroStatsRepo, c.partyMemberRepo)

	c.Registry = engine.NewRegistry(c.CharacterService, c.CharacterService, tuning, logger)
	c.Resolver = engine.NewResolver(tuning, logger)

	c.FlowService = NewFlowService(c.Registry, c.battleReportRepo, redis, tuning.RefreshCooldown, logger)
	c.Scheduler = engine.NewScheduler(c.Registry, c.Resolver, publisher, c.FlowService, logger)

	c.BattleService = NewBattleService(c.Registry, c.Resolver, c.Scheduler, c.FlowService, logger)
	return c
}

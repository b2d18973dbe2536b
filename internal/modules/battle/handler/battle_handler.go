// Package handler 战斗服的 HTTP Handler。
package handler

import (
	"tsu-battle/internal/modules/battle/engine"
	"tsu-battle/internal/modules/battle/service"
	"tsu-battle/internal/pkg/response"

	"github.com/labstack/echo/v4"
)

// BattleHandler 战斗指令 HTTP Handler
type BattleHandler struct {
	battleService *service.BattleService
	respWriter    response.Writer
}

// NewBattleHandler 创建 Handler
func NewBattleHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *BattleHandler {
	return &BattleHandler{
		battleService: serviceContainer.BattleService,
		respWriter:    respWriter,
	}
}

// ==================== 请求/响应模型 ====================

type startBattleRequest struct {
	CharacterID     string `json:"character_id" validate:"required"`
	EnemyTemplateID string `json:"enemy_template_id" validate:"required"`
	PartyID         string `json:"party_id,omitempty"`
	DungeonID       string `json:"dungeon_id,omitempty"`
}

type battleActionRequest struct {
	PlayerID   string `json:"player_id" validate:"required"`
	ActionType string `json:"action_type" validate:"required,oneof=attack use_skill defend"`
	TargetID   string `json:"target_id,omitempty"`
	SkillID    string `json:"skill_id,omitempty"`
}

type actionResultResponse struct {
	Executed bool `json:"executed"`
}

type stopResultResponse struct {
	Stopped bool `json:"stopped"`
}

type refreshStateResponse struct {
	InRefresh        bool    `json:"in_refresh"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// ==================== Handlers ====================

// StartBattle 开始战斗
func (h *BattleHandler) StartBattle(c echo.Context) error {
	var req startBattleRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	snapshot, err := h.battleService.StartBattle(c.Request().Context(), &service.StartBattleInput{
		CharacterID:     req.CharacterID,
		EnemyTemplateID: req.EnemyTemplateID,
		PartyID:         req.PartyID,
		DungeonID:       req.DungeonID,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, snapshot)
}

// ExecuteAction 手动战斗指令
// 查找失败（未知战斗/玩家/目标、冷却未到）返回 executed=false，不是错误
func (h *BattleHandler) ExecuteAction(c echo.Context) error {
	battleID := c.Param("battle_id")
	var req battleActionRequest
	if err := c.Bind(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, "请求格式错误")
	}
	if err := c.Validate(&req); err != nil {
		return response.EchoBadRequest(c, h.respWriter, err.Error())
	}

	executed := h.battleService.ExecuteAction(
		c.Request().Context(),
		battleID,
		req.PlayerID,
		engine.ActionType(req.ActionType),
		req.TargetID,
		req.SkillID,
	)
	return response.EchoOK(c, h.respWriter, actionResultResponse{Executed: executed})
}

// GetBattleState 查询战斗状态快照
func (h *BattleHandler) GetBattleState(c echo.Context) error {
	battleID := c.Param("battle_id")
	snapshot := h.battleService.GetBattleState(c.Request().Context(), battleID)
	if snapshot == nil {
		return response.EchoNotFound(c, h.respWriter, "battle", battleID)
	}
	return response.EchoOK(c, h.respWriter, snapshot)
}

// ListActiveBattles 列出所有活跃战斗
func (h *BattleHandler) ListActiveBattles(c echo.Context) error {
	return response.EchoOK(c, h.respWriter, h.battleService.ListActiveBattles(c.Request().Context()))
}

// StopBattle 停止战斗（幂等）
func (h *BattleHandler) StopBattle(c echo.Context) error {
	battleID := c.Param("battle_id")
	stopped := h.battleService.StopBattle(c.Request().Context(), battleID)
	return response.EchoOK(c, h.respWriter, stopResultResponse{Stopped: stopped})
}

// PauseBattle 暂停战斗
func (h *BattleHandler) PauseBattle(c echo.Context) error {
	battleID := c.Param("battle_id")
	paused := h.battleService.PauseBattle(c.Request().Context(), battleID)
	return response.EchoOK(c, h.respWriter, actionResultResponse{Executed: paused})
}

// ResumeBattle 恢复战斗
func (h *BattleHandler) ResumeBattle(c echo.Context) error {
	battleID := c.Param("battle_id")
	resumed := h.battleService.ResumeBattle(c.Request().Context(), battleID)
	return response.EchoOK(c, h.respWriter, actionResultResponse{Executed: resumed})
}

// GetRefreshState 查询玩家刷新冷却
func (h *BattleHandler) GetRefreshState(c echo.Context) error {
	playerID := c.Param("player_id")
	ctx := c.Request().Context()
	return response.EchoOK(c, h.respWriter, refreshStateResponse{
		InRefresh:        h.battleService.IsPlayerInRefresh(ctx, playerID),
		RemainingSeconds: h.battleService.RemainingRefreshTime(ctx, playerID),
	})
}

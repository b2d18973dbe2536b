package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"tsu-battle/internal/modules/battle/engine"
)

var (
	ncMu sync.RWMutex
	nc   *nats.Conn
)

// SetNatsConn 设置全局 NATS 连接（由 main 提供）
func SetNatsConn(conn *nats.Conn) {
	ncMu.Lock()
	defer ncMu.Unlock()
	nc = conn
}

func conn() *nats.Conn {
	ncMu.RLock()
	defer ncMu.RUnlock()
	return nc
}

// Default subjects
const (
	SubjectBattleEvents = "battle.events"
	SubjectBattleResult = "battle.result"
)

// eventBatchChunk 单条 NATS 消息最多携带的事件数，超过则拆块提交
const eventBatchChunk = 512

// BattleEventPublisher 基于 NATS 的批量事件出口
// 整批按块发布；返回实际被接受（成功发出）的事件数，欠投递交由调用方记警告
type BattleEventPublisher struct{}

// NewBattleEventPublisher 构造函数
func NewBattleEventPublisher() *BattleEventPublisher {
	return &BattleEventPublisher{}
}

// PublishBatch 实现 engine.EventPublisher
func (p *BattleEventPublisher) PublishBatch(ctx context.Context, events []engine.UnifiedEvent) (int, error) {
	c := conn()
	if c == nil {
		// 没有连接时静默降级：单机/测试模式下核心照常运转
		return len(events), nil
	}

	accepted := 0
	for start := 0; start < len(events); start += eventBatchChunk {
		end := start + eventBatchChunk
		if end > len(events) {
			end = len(events)
		}
		chunk := events[start:end]

		data, err := json.Marshal(chunk)
		if err != nil {
			return accepted, fmt.Errorf("marshal battle event batch failed: %w", err)
		}
		if err := c.Publish(SubjectBattleEvents, data); err != nil {
			return accepted, fmt.Errorf("publish battle event batch failed: %w", err)
		}
		accepted += len(chunk)
	}
	return accepted, nil
}

// PublishBattleResult 发布战斗结果回调（game-server 的 battle_result_handler 消费）
func PublishBattleResult(ctx context.Context, payload interface{}) error {
	c := conn()
	if c == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal battle result failed: %w", err)
	}
	return c.Publish(SubjectBattleResult, data)
}

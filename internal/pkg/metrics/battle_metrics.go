// File: internal/pkg/metrics/battle_metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BattleMetrics 战斗引擎指标收集器
type BattleMetrics struct {
	// 当前活跃战斗数（Gauge 类型，可增可减）
	ActiveBattles *prometheus.GaugeVec

	// 战斗次数（按结果分组：victory/defeat）
	BattlesTotal *prometheus.CounterVec

	// 战斗耗时直方图
	BattleDuration *prometheus.HistogramVec

	// tick 总数与单 tick 耗时
	TicksTotal   *prometheus.CounterVec
	TickDuration *prometheus.HistogramVec

	// 事件批次：提交数与实际被接受数
	EventsSubmittedTotal *prometheus.CounterVec
	EventsAcceptedTotal  *prometheus.CounterVec
}

var (
	// DefaultBattleMetrics 默认的战斗指标实例
	DefaultBattleMetrics *BattleMetrics
)

// TickBuckets 针对 tick 耗时优化的 buckets
// 500ms 间隔下单 tick 预期在个位毫秒级，超过 100ms 说明结算在拖后腿
// 单位：秒
var TickBuckets = []float64{
	0.001,
	0.005,
	0.01,
	0.025,
	0.05,
	0.1,
	0.25,
	0.5,
}

// init 初始化默认指标
func init() {
	DefaultBattleMetrics = NewBattleMetrics("tsu")
}

// NewBattleMetrics 创建新的战斗指标收集器
func NewBattleMetrics(namespace string) *BattleMetrics {
	return NewBattleMetricsWithRegistry(namespace, GetRegisterer())
}

// NewBattleMetricsWithRegistry 创建新的战斗指标收集器（使用自定义注册表）
func NewBattleMetricsWithRegistry(namespace string, registerer prometheus.Registerer) *BattleMetrics {
	factory := promauto.With(registerer)

	return &BattleMetrics{
		ActiveBattles: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "active_battles",
				Help:      "Current number of active battles",
			},
			[]string{"service"},
		),

		BattlesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "battles_total",
				Help:      "Total number of finished battles by result (victory/defeat)",
			},
			[]string{"result", "service"},
		),

		BattleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "battle_duration_seconds",
				Help:      "Battle duration in seconds",
				Buckets:   BattleBuckets,
			},
			[]string{"service"},
		),

		TicksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "ticks_total",
				Help:      "Total number of scheduler ticks",
			},
			[]string{"service"},
		),

		TickDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "tick_duration_seconds",
				Help:      "Time spent resolving one scheduler tick",
				Buckets:   TickBuckets,
			},
			[]string{"service"},
		),

		EventsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "events_submitted_total",
				Help:      "Total number of events submitted to the publisher",
			},
			[]string{"service"},
		),

		EventsAcceptedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "battle",
				Name:      "events_accepted_total",
				Help:      "Total number of events accepted by the publisher",
			},
			[]string{"service"},
		),
	}
}

// BattleBuckets 是针对战斗时长优化的 buckets
// 增量玩法下战斗预期时长: 5 秒到数分钟
// 单位：秒
var BattleBuckets = []float64{
	1,
	5,
	10,
	30,
	60,
	120,
	300,
	600,
}

// ObserveTick 记录一次 tick：耗时与当前活跃战斗数
func (m *BattleMetrics) ObserveTick(duration time.Duration, activeBattles int) {
	service := GetServiceName()
	m.TicksTotal.WithLabelValues(service).Inc()
	m.TickDuration.WithLabelValues(service).Observe(duration.Seconds())
	m.ActiveBattles.WithLabelValues(service).Set(float64(activeBattles))
}

// ObservePublish 记录一次事件批次发布
func (m *BattleMetrics) ObservePublish(submitted, accepted int) {
	service := GetServiceName()
	m.EventsSubmittedTotal.WithLabelValues(service).Add(float64(submitted))
	if accepted > 0 {
		m.EventsAcceptedTotal.WithLabelValues(service).Add(float64(accepted))
	}
}

// ObserveBattleEnd 记录一场战斗的结束
func (m *BattleMetrics) ObserveBattleEnd(victory bool, duration time.Duration) {
	service := GetServiceName()
	result := "defeat"
	if victory {
		result = "victory"
	}
	m.BattlesTotal.WithLabelValues(result, service).Inc()
	m.BattleDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// File: internal/pkg/metrics/middleware.go
package metrics

import (
	"net/http"
	"time"

	"tsu-battle/internal/pkg/ctxkey"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// pathLimitTracker 全局路径基数追踪器
// 超出上限的路由统一归入 "other" 标签，防止 Prometheus 标签基数爆炸
var pathLimitTracker = NewPathLimitTracker(200)

// Middleware Echo 中间件 - 记录 HTTP 请求指标
// 使用路由模板（如 /api/v1/battles/:battle_id）而非具体路径作为标签；
// 健康检查端点跳过记录，避免指标噪音
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// 将 HTTP 方法存储到 context
			ctx := c.Request().Context()
			ctx = ctxkey.WithValue(ctx, ctxkey.HTTPMethod, c.Request().Method)
			c.SetRequest(c.Request().WithContext(ctx))

			if IsHealthCheckEndpoint(c.Request().URL.Path) {
				return next(c)
			}

			route := pathLimitTracker.TrackPath(NormalizeRoute(c.Path()))
			c.Response().Header().Set("X-Route-Pattern", route)

			service := GetServiceName()
			DefaultHTTPMetrics.IncInProgress(service)
			started := time.Now()

			err := next(c)

			DefaultHTTPMetrics.DecInProgress(service)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			DefaultHTTPMetrics.RecordRequest(service, route, c.Request().Method, status, time.Since(started))

			return err
		}
	}
}

// Handler 返回 Prometheus metrics HTTP 处理器
// 用于暴露 /metrics 端点
func Handler() http.Handler {
	return promhttp.Handler()
}

// EchoHandler Echo 框架的 Prometheus metrics 处理器
func EchoHandler() echo.HandlerFunc {
	h := promhttp.Handler()
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response().Writer, c.Request())
		return nil
	}
}

package middleware

import (
	"strconv"

	"tsu-battle/internal/pkg/config"
	"tsu-battle/internal/pkg/xerrors"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware 限流中间件
// 战斗指令接口可能被客户端高频轮询，按客户端 IP 做内存限流
func RateLimitMiddleware() echo.MiddlewareFunc {
	// 每秒请求上限，默认 100，可通过环境变量覆盖
	limit := 100
	if v, err := strconv.Atoi(config.GetEnvOrDefault("BATTLE_HTTP_RATE_LIMIT", "100")); err == nil && v > 0 {
		limit = v
	}

	cfg := middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(limit)),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			// 使用客户端 IP 作为标识符
			return c.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			appErr := xerrors.FromCode(xerrors.CodeRateLimitExceeded).
				WithService("echo-middleware", "rate_limiter").
				WithMetadata("client_ip", context.RealIP())

			return appErr
		},
	}

	return middleware.RateLimiterWithConfig(cfg)
}

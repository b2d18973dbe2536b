// File: internal/pkg/response/writer.go
package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tsu-battle/internal/pkg/log"
	"tsu-battle/internal/pkg/metrics"
	"tsu-battle/internal/pkg/trace"
	"tsu-battle/internal/pkg/xerrors"
)

// Writer 统一的响应写出接口（在消费端定义）
type Writer interface {
	WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error
	WriteError(ctx context.Context, w http.ResponseWriter, err error) error
	WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error
}

// ResponseHandler Writer 的默认实现
// development 环境透出错误详情，production 只给出错误码和消息
type ResponseHandler struct {
	logger      log.Logger
	environment string
}

// NewResponseHandler 创建响应处理器
func NewResponseHandler(logger log.Logger, environment string) *ResponseHandler {
	if environment == "" {
		environment = "development"
	}
	return &ResponseHandler{
		logger:      logger,
		environment: environment,
	}
}

// WriteSuccess 写出成功响应
func (h *ResponseHandler) WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error {
	resp := &ResponseResult[any]{
		Code:      xerrors.CodeSuccess.ToInt(),
		Message:   xerrors.CodeSuccess.Message(),
		Timestamp: time.Now().Unix(),
		TraceId:   trace.GetTraceID(ctx),
	}
	if data != nil {
		resp.Data = &data
	}
	return h.write(ctx, w, http.StatusOK, resp)
}

// WriteError 写出错误响应
// 非 AppError 一律按内部错误处理，避免把底层细节泄漏给客户端
func (h *ResponseHandler) WriteError(ctx context.Context, w http.ResponseWriter, err error) error {
	var appErr *xerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = xerrors.Wrap(err, xerrors.CodeInternalError, xerrors.CodeInternalError.Message())
	}

	statusCode := xerrors.GetHTTPStatus(appErr.Code)

	resp := &ResponseResult[any]{
		Code:      appErr.Code.ToInt(),
		Message:   appErr.Message,
		Timestamp: time.Now().Unix(),
		TraceId:   trace.GetTraceID(ctx),
	}
	// 错误详情只在开发环境透出
	if h.environment != "production" && appErr.Err != nil {
		resp.Error = appErr.Err.Error()
	}

	if h.logger != nil {
		if appErr.IsCritical() || statusCode >= http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "请求处理失败", "error", appErr)
		} else {
			h.logger.WarnContext(ctx, "请求被拒绝", "error", appErr)
		}
	}
	metrics.DefaultErrorMetrics.RecordError(appErr, statusCode, "", metrics.GetServiceName(), 0)

	return h.write(ctx, w, statusCode, resp)
}

// WriteJSON 直接写出 JSON（跳过 APIResponse 包装）
func (h *ResponseHandler) WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func (h *ResponseHandler) write(ctx context.Context, w http.ResponseWriter, statusCode int, resp *ResponseResult[any]) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		if h.logger != nil {
			h.logger.ErrorContext(ctx, "写入JSON响应失败", "error", err)
		}
		return err
	}
	return nil
}

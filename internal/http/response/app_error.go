package response

// AppError 接口层错误：业务码 + 文案键 + 已本地化文案 + 原始错误
type AppError struct {
	Code    int
	Key     string // 文案键（例如 error.self_vote），便于日志检索
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ServerSide 是否属于服务端故障（5xx），决定日志级别
func (e *AppError) ServerSide() bool {
	return e != nil && e.Code >= CodeInternal
}

// WrapError 包装错误
func WrapError(code int, key, message string, err error) *AppError {
	if message == "" {
		message = key
	}
	return &AppError{
		Code:    code,
		Key:     key,
		Message: message,
		Err:     err,
	}
}

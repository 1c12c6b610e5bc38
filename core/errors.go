package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - Dataset 错误：DATA_SOURCE_NOT_FOUND, SCHEMA_ERROR
//   - 请求参数错误：INVALID_ARGUMENT
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "SCHEMA_ERROR", "INVALID_ARGUMENT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "dataset", "store", "service"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误

	ErrorCodeDataSourceNotFound = "DATA_SOURCE_NOT_FOUND" // 数据集文件不存在
	ErrorCodeSchemaError        = "SCHEMA_ERROR"          // 数据集缺少必需列或行格式错误
	ErrorCodeInvalidArgument    = "INVALID_ARGUMENT"      // 调用方参数违约（top_n / alpha）
)

// 模块名称常量
const (
	ModuleDataset = "dataset"
	ModuleModel   = "model"
	ModuleStore   = "store"
	ModuleService = "service"
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsDataSourceNotFound 检查错误是否为数据源不存在
func IsDataSourceNotFound(err error) bool {
	return hasCode(err, ErrorCodeDataSourceNotFound)
}

// IsSchemaError 检查错误是否为数据集结构错误
func IsSchemaError(err error) bool {
	return hasCode(err, ErrorCodeSchemaError)
}

// IsInvalidArgument 检查错误是否为参数违约
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrorCodeInvalidArgument)
}

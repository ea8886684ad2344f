// Package apperr 定义了查询层对外暴露的错误分类，调用方通过 errors.Is 判断。
package apperr

import "errors"

var (
	// ErrNotInitialized 在连接句柄初始化之前调用查询方法时返回。
	ErrNotInitialized = errors.New("neo4j handle is not initialized")
	// ErrAlreadyInitialized 在句柄已经初始化后再次调用 Init 时返回。
	ErrAlreadyInitialized = errors.New("neo4j handle is already initialized")
	// ErrClosed 在句柄关闭之后继续使用时返回。
	ErrClosed = errors.New("neo4j handle is closed")
	// ErrMalformedTemplate 表示查询模板没有且仅有一个顶层 RETURN 子句。
	ErrMalformedTemplate = errors.New("malformed query template")
	// ErrSerialization 表示结果集无法编码为 JSON。
	ErrSerialization = errors.New("result serialization failed")
	// ErrBackendUnavailable 表示图数据库不可达，原始驱动错误会被一并包装。
	ErrBackendUnavailable = errors.New("graph backend unavailable")
	// ErrInvalidParameter 表示查询参数在组装查询之前校验失败。
	ErrInvalidParameter = errors.New("invalid parameter")
)

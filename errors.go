package rmseq

import "errors"

// 公共错误定义
var (
	// ErrNotStarted 端点未启动
	ErrNotStarted = errors.New("endpoint not started")

	// ErrAlreadyStarted 端点已启动
	ErrAlreadyStarted = errors.New("endpoint already started")

	// ErrEndpointClosed 端点已关闭
	ErrEndpointClosed = errors.New("endpoint closed")
)

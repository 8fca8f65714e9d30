// Copyright (c) Headerflow Authors.
// Licensed under the MIT License.

/*
Package types 提供 headerflow 的全局共享类型定义。

types 是最底层的公共包，不依赖任何内部包，为 dimension、jimeng、
tools 等上层模块提供统一的错误契约。

  - Error / ErrorCode — 结构化错误体系，含 HTTP 状态码、Retryable、Provider 标记
  - 错误工具链：IsRetryable / GetErrorCode / IsErrorCode
*/
package types

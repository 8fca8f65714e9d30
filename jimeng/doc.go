// Copyright (c) Headerflow Authors.
// Licensed under the MIT License.

/*
Package jimeng 封装火山引擎即梦 AI 4.0 文生图 API 客户端。

即梦的生成流程是异步的：CVSync2AsyncSubmitTask 提交任务返回 task_id，
CVSync2AsyncGetResult 轮询直至 status 变为 done。本包实现：

  - 火山引擎 V4 签名（HMAC-SHA256，region cn-north-1，service cv）
  - SubmitTask / GetResult 两个底层调用与 Generate 完整轮询周期
  - 出站限流（golang.org/x/time/rate）与已完成结果的 TTL 缓存

任务状态完全由供应商持有，客户端除结果缓存外不保存任何状态。
尺寸参数必须先经 dimension 包归一化，客户端原样透传。
*/
package jimeng

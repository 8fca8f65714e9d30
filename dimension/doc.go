// Copyright (c) Headerflow Authors.
// Licensed under the MIT License.

/*
Package dimension 负责出站图像尺寸的归一化与标准预设表。

即梦 t2i 4.0 对自由尺寸有两条硬约束：面积 1024×1024 ~ 4096×4096，
宽高比 1/3 ~ 3。Normalize 将任意请求修正到约束内（先面积、后比例，
面积修正按比例缩放两边），Resolve 将命名预设（square、wechat_header
等，各含 1K/2K/4K 档位）映射为具体像素尺寸。

两者都是纯函数，预设表为进程级只读常量。
*/
package dimension

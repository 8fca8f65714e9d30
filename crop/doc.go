// Package crop 实现智能居中裁剪: 把任意比例的生成图片裁剪到
// 微信头图等目标宽高比, 并按需缩小、压缩为 JPEG data URI。
package crop

// Package testutil 提供测试辅助：内存传输、固定数据与等待工具
package testutil

// Package signature 实现事件签名服务
//
// 曲线运算委托给 interfaces.Signer 能力，本包负责协议层面的约定：
//
//   - 签名对象是 32 字节事件 id 本身（不再二次哈希）
//   - 签名输出统一为 low-S：若 S > n/2，则替换为 n - S
//   - R、S 各 32 字节大端左补零，拼接为 64 字节
//   - 事件只存储 32 字节 x-only 公钥，验证时先尝试 0x02 前缀，
//     失败再尝试 0x03 前缀，任一成功即通过
//
// 验证失败返回 false 而不是错误；只有输入本身格式错误
// （十六进制非法）或曲线库报错时才返回错误。
package signature

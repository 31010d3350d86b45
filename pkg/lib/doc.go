// Package lib 包含与协议无关的基础设施工具库
//
//   - crypto: secp256k1 签名能力的默认实现
package lib

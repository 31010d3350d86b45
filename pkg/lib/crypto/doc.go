// Package crypto 提供 nostrkit 的密码学工具
//
// 本包提供 Signer 能力的默认实现：基于 decred secp256k1 的确定性 ECDSA
// （RFC6979 nonce 派生，无随机数）。曲线运算全部委托给 secp256k1 库，
// 本包只负责原始字节的输入输出，不感知事件或协议。
//
// # 快速开始
//
//	signer := crypto.NewSecp256k1Signer()
//	pub, err := signer.DerivePublicKey(priv)       // 33 字节压缩公钥
//	sig, err := signer.Sign(hash, priv)            // 64 字节 R || S
//	ok := signer.Verify(pub, hash, sig)
//
// 生成新私钥：
//
//	priv, err := crypto.GenerateSecp256k1Key(rand.Reader)
package crypto

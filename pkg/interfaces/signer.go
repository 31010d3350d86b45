package interfaces

// Signer 椭圆曲线签名能力
//
// 只处理原始字节，不感知协议。实现必须是确定性的：
// 同一私钥对同一消息哈希重复签名得到相同结果。
type Signer interface {
	// Sign 对 32 字节消息哈希签名，返回 64 字节 R || S
	//
	// S 不要求已规范化，规范化由上层签名服务完成。
	Sign(hash []byte, privateKey []byte) ([]byte, error)

	// Verify 使用完整公钥（33 字节压缩格式）验证 64 字节签名
	Verify(publicKey []byte, hash []byte, sig []byte) bool

	// DerivePublicKey 从 32 字节私钥派生 33 字节压缩公钥
	DerivePublicKey(privateKey []byte) ([]byte, error)
}

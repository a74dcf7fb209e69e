package consts

// GrpcAccountInclude 用于 gRPC 区块订阅过滤器的默认账户集合。
// 圆环 swap 检测只关心 Token 转账，所以默认只订阅 Token 相关 Program。
var GrpcAccountInclude = []string{
	TokenProgramStr,
	TokenProgram2022Str,
}

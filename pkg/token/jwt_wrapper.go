package token

// 這些變數會在測試時被覆蓋，換成可控的假實作
var (
	GenerateJWTFunc = GenerateJWT
	ParseJWTFunc    = ParseJWT
)

package types

// RegisterRequest 用户注册请求.
type RegisterRequest struct {
	Username string `binding:"required" json:"username" rule:"min=3,max=64"`
	Password string `binding:"required" json:"password" rule:"min=8,max=128"`
}

// RegisterResponse 用户注册结果.
type RegisterResponse struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	// Active 首个注册用户自动激活并获得管理员角色，其余等待管理员激活
	Active bool `json:"active"`
}

// LoginRequest 登录请求.
type LoginRequest struct {
	Username string `binding:"required" json:"username"`
	Password string `binding:"required" json:"password"`
}

// LoginResponse 登录结果，Token 为不透明 Bearer 令牌.
type LoginResponse struct {
	Token     string `json:"token"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	ExpiresIn int    `json:"expires_in"` // 秒
}

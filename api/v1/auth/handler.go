package auth

import (
	"time"

	"github.com/gin-gonic/gin"

	"vhostmgr/internal/httpx"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	Token    string `json:"token"`
	ExpireAt string `json:"expireAt"`
	Username string `json:"username"`
}

// Verifier checks administrator credentials
type Verifier interface {
	Verify(username, password string) error
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Generate(username string) (string, time.Time, error)
}

// LoginHandler exchanges admin credentials for a JWT
func LoginHandler(admin Verifier, tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
			return
		}

		if err := admin.Verify(req.Username, req.Password); err != nil {
			httpx.FailErr(c, httpx.ErrBadLogin())
			return
		}

		token, expireAt, err := tokens.Generate(req.Username)
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to generate token", err))
			return
		}

		httpx.OK(c, LoginResponse{
			Token:    token,
			ExpireAt: expireAt.Format(time.RFC3339),
			Username: req.Username,
		})
	}
}

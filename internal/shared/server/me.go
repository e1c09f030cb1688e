package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coverage-backend/internal/shared/server/middleware"
	"coverage-backend/internal/shared/server/respond"
)

type identityView struct {
	UserID  string `json:"userId"`
	IsGuest bool   `json:"isGuest"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	// Guests can finish assessments but cannot list past ones.
	CanListHistory bool `json:"canListHistory"`
}

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		guest := middleware.IsGuest(c)
		respond.OK(c, identityView{
			UserID:         userID,
			IsGuest:        guest,
			Email:          middleware.UserEmailFromContext(c),
			Name:           middleware.UserNameFromContext(c),
			CanListHistory: !guest,
		})
	})
}

package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"gala_server/internal/domain"
	"gala_server/internal/service"

	"github.com/gin-gonic/gin"
)

// Login exchanges the admin password for a JWT.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.AdminPassword)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}
	token, err := service.GenerateAdminJWT()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Status is the read-only game status endpoint.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.Manager.Status())
}

// StartWarmup switches the game into the sensor-authorization phase.
func (h *Handler) StartWarmup(c *gin.Context) {
	h.reply(c, h.Manager.StartWarmup())
}

// StartRound starts a race round.
func (h *Handler) StartRound(c *gin.Context) {
	var req struct {
		Round int `json:"round" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "round required"})
		return
	}
	h.reply(c, h.Manager.StartRound(req.Round))
}

// EndRound forces early termination of the running round.
func (h *Handler) EndRound(c *gin.Context) {
	h.reply(c, h.Manager.EndRound())
}

// StartQuiz begins the question/answer segment, optionally with a
// custom deck.
func (h *Handler) StartQuiz(c *gin.Context) {
	var req struct {
		Questions []domain.Question `json:"questions"`
	}
	// body is optional
	_ = c.ShouldBindJSON(&req)
	h.reply(c, h.Manager.StartQuiz(req.Questions))
}

// NextQuestion deals the next quiz question, or a custom one.
func (h *Handler) NextQuestion(c *gin.Context) {
	var req struct {
		Question *domain.Question `json:"question"`
	}
	_ = c.ShouldBindJSON(&req)
	h.reply(c, h.Manager.NextQuestion(req.Question))
}

// UpdateSettings applies a partial settings patch.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var patch domain.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed settings patch"})
		return
	}
	h.reply(c, h.Manager.UpdateSettings(patch))
}

// ShowLeaderboard pushes the last round's leaderboard to the screens.
func (h *Handler) ShowLeaderboard(c *gin.Context) {
	h.reply(c, h.Manager.ShowLeaderboard())
}

// Reset wipes the game and mints a new game id.
func (h *Handler) Reset(c *gin.Context) {
	h.reply(c, h.Manager.Reset())
}

func (h *Handler) reply(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, domain.ErrSettingsLocked),
		errors.Is(err, domain.ErrAlreadyRunning),
		errors.Is(err, domain.ErrNotRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnknownRound),
		errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

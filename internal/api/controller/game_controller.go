package controller

import (
	"context"
	"net/http"

	"ctchen222/tictactoe-bot/internal/api/models"
	"ctchen222/tictactoe-bot/internal/api/response"
	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionService is the part of session.Service the controller drives.
type SessionService interface {
	Start(ctx context.Context, human game.PlayerMark, difficulty bot.Difficulty) (*game.Session, error)
	Get(ctx context.Context, id string) (*game.Session, error)
	Play(ctx context.Context, id string, index int) (*game.Session, error)
	Restart(ctx context.Context, id string) (*game.Session, error)
	Delete(ctx context.Context, id string) error
}

// GameController handles move and session HTTP requests.
type GameController struct {
	sessions          SessionService
	calculator        session.MoveCalculator
	defaultDifficulty bot.Difficulty
}

// NewGameController creates a new GameController. Requests without a difficulty use defaultDifficulty.
func NewGameController(sessions SessionService, calculator session.MoveCalculator, defaultDifficulty bot.Difficulty) *GameController {
	return &GameController{
		sessions:          sessions,
		calculator:        calculator,
		defaultDifficulty: defaultDifficulty,
	}
}

func (gc *GameController) difficulty(requested string) bot.Difficulty {
	if requested == "" {
		return gc.defaultDifficulty
	}
	return bot.Difficulty(requested)
}

// NextMove computes the computer's move for a board sent by the client.
func (gc *GameController) NextMove(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	board, err := game.ParseBoard(req.Board)
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}

	decision, err := gc.calculator.CalculateNextMove(c.Request.Context(), board, req.Player, gc.difficulty(req.Difficulty))
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}

	response.SuccessResponse(c, models.MoveResponse{Index: decision.Index, Rule: decision.Rule})
}

// StartGame opens a new session against the computer.
func (gc *GameController) StartGame(c *gin.Context) {
	var req models.StartGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := gc.sessions.Start(c.Request.Context(), req.Mark, gc.difficulty(req.Difficulty))
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}

	response.CreatedResponse(c, sess)
}

// GetGame returns a session.
func (gc *GameController) GetGame(c *gin.Context) {
	sess, err := gc.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}

	response.SuccessResponse(c, sess)
}

// Play applies the human's move and the computer's reply.
func (gc *GameController) Play(c *gin.Context) {
	var req models.PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := gc.sessions.Play(c.Request.Context(), c.Param("id"), *req.Index)
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}

	response.SuccessResponse(c, sess)
}

// RestartGame clears the board of a session.
func (gc *GameController) RestartGame(c *gin.Context) {
	sess, err := gc.sessions.Restart(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.DomainErrorResponse(c, err)
		return
	}

	response.SuccessResponse(c, sess)
}

// DeleteGame ends a session.
func (gc *GameController) DeleteGame(c *gin.Context) {
	if err := gc.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.DomainErrorResponse(c, err)
		return
	}

	response.SuccessResponse(c, gin.H{"message": "Session deleted"})
}

package server

import (
	"log/slog"
	"net/http"
	"time"

	"ctchen222/tictactoe-bot/internal/api/controller"
	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("server")

type Server struct {
	engine            *gin.Engine
	sessions          controller.SessionService
	upgrader          websocket.Upgrader
	defaultDifficulty bot.Difficulty
}

func NewServer(sessions controller.SessionService, gameController *controller.GameController, defaultDifficulty bot.Difficulty) *Server {
	if err := validator.RegisterBindingValidations(); err != nil {
		slog.Error("Failed to register request validations", "error", err)
	}

	s := &Server{
		engine:   gin.New(),
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		defaultDifficulty: defaultDifficulty,
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.registerRoutes(gameController)
	return s
}

func (s *Server) registerRoutes(gc *controller.GameController) {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/ws", s.handleWebSocket)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/move", gc.NextMove)

		games := v1.Group("/games")
		games.POST("", gc.StartGame)
		games.GET("/:id", gc.GetGame)
		games.POST("/:id/moves", gc.Play)
		games.POST("/:id/restart", gc.RestartGame)
		games.DELETE("/:id", gc.DeleteGame)
	}
}

// Engine returns the HTTP handler serving every route.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.DebugContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

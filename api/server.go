package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"snowball/config"
)

// Server HTTP服务器
type Server struct {
	engine *gin.Engine
	server *http.Server
	cfg    *config.Config
}

// NewServer 创建服务器
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(loggerMiddleware())

	s := &Server{
		engine: engine,
		cfg:    cfg,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: engine,
		},
	}

	s.setupRoutes()
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	handler := NewHandler(s.cfg)

	api := s.engine.Group("/api")
	{
		// 结构参数
		api.GET("/structures", handler.GetStructures)
		api.POST("/validate", handler.Validate)
		api.POST("/schedule/simulated", handler.SimulatedSchedule)

		// 蒙特卡洛
		api.POST("/montecarlo", handler.MonteCarlo)

		// 历史回测
		api.POST("/backtest", handler.Backtest)
		api.POST("/backtest/schedule", handler.BacktestSchedule)
	}

	// 健康检查
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler 返回路由处理器
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 启动服务器
func (s *Server) Start() error {
	log.Printf("[API] 服务启动在 http://localhost%s\n", s.server.Addr)
	log.Println("[API] 可用接口:")
	log.Println("  GET  /api/structures          - 结构类型与字段要求")
	log.Println("  POST /api/validate            - 校验结构参数")
	log.Println("  POST /api/schedule/simulated  - 模拟路径敲出观察表")
	log.Println("  POST /api/montecarlo          - 蒙特卡洛路径统计")
	log.Println("  POST /api/backtest            - 历史滚动回测")
	log.Println("  POST /api/backtest/schedule   - 回测起始日敲出观察表")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// loggerMiddleware 日志中间件
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log.Printf("[API] %s %s %d %v\n", c.Request.Method, path, status, latency)
	}
}

// corsMiddleware CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"snowball/backtest"
	"snowball/config"
	"snowball/loader"
	"snowball/montecarlo"
	"snowball/structure"
	"snowball/trading"
)

// Handler API处理器
type Handler struct {
	cfg *config.Config
}

// NewHandler 创建处理器
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

type scheduleRequest struct {
	Params  structure.Params `json:"params"`
	Horizon int              `json:"horizon" binding:"gte=0"`
}

type backtestScheduleQuery struct {
	Start string `form:"start" binding:"required"`
}

// GetStructures 获取结构类型及字段要求
func (h *Handler) GetStructures(c *gin.Context) {
	result := make([]gin.H, 0, len(structure.Types))
	for _, t := range structure.Types {
		req := structure.Requirements[t]
		result = append(result, gin.H{
			"structure":    t,
			"required":     req.Required,
			"optional":     req.Optional,
			"has_knock_in": t.HasKnockIn(),
			"step_down":    t.IsStepDown(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":  0,
		"count": len(result),
		"data":  result,
	})
}

// Validate 校验结构参数
func (h *Handler) Validate(c *gin.Context) {
	var p structure.Params
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误: " + err.Error()})
		return
	}
	if err := normalizeType(&p); err != nil {
		respondError(c, err)
		return
	}

	var ve *structure.ValidationError
	if err := p.Validate(); errors.As(err, &ve) {
		c.JSON(http.StatusOK, gin.H{
			"code": 0,
			"data": gin.H{"valid": false, "issues": ve.Issues},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{"valid": true, "params": p},
	})
}

// SimulatedSchedule 模拟路径敲出观察表
func (h *Handler) SimulatedSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数格式错误: " + err.Error()})
		return
	}
	if err := normalizeType(&req.Params); err != nil {
		respondError(c, err)
		return
	}
	if err := req.Params.Validate(); err != nil {
		respondError(c, err)
		return
	}

	sess := structure.NewSession(req.Params)
	sess.BlockSize = h.cfg.BlockSize
	horizon := req.Horizon
	if horizon == 0 {
		horizon = req.Params.Duration * sess.BlockSize
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": gin.H{
			"horizon":  horizon,
			"schedule": sess.SimulatedSchedule(horizon),
		},
	})
}

// MonteCarlo 蒙特卡洛路径统计
func (h *Handler) MonteCarlo(c *gin.Context) {
	doc, err := loader.ReadMonteCarlo(c.Request.Body, h.loaderOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}

	rep, err := montecarlo.Run(doc, montecarlo.Options{
		BlockSize:    h.cfg.BlockSize,
		IncludePaths: h.cfg.IncludePaths || c.Query("paths") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "data": rep})
}

// Backtest 历史滚动回测
func (h *Handler) Backtest(c *gin.Context) {
	runner, ok := h.runner(c)
	if !ok {
		return
	}
	doc, err := loader.ReadBacktest(c.Request.Body, h.loaderOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}

	rep, err := runner.Run(doc)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "data": rep})
}

// BacktestSchedule 回测某起始日的敲出观察表、到期日与诊断信息
func (h *Handler) BacktestSchedule(c *gin.Context) {
	var q backtestScheduleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "起始日不能为空"})
		return
	}
	start, err := time.Parse(trading.DateLayout, q.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "起始日格式错误", "start": q.Start})
		return
	}

	runner, ok := h.runner(c)
	if !ok {
		return
	}
	doc, err := loader.ReadBacktest(c.Request.Body, h.loaderOptions(c))
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := runner.Schedule(doc, start)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 0, "data": view})
}

func (h *Handler) runner(c *gin.Context) (*backtest.Runner, bool) {
	opts, err := backtest.OptionsFromConfig(h.cfg)
	if err != nil {
		log.Printf("[ERROR] 回测配置错误: %v\n", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return backtest.NewRunner(opts), true
}

func (h *Handler) loaderOptions(c *gin.Context) loader.Options {
	enc := c.Query("encoding")
	if enc == "" {
		enc = h.cfg.Encoding
	}
	return loader.Options{Encoding: enc}
}

func normalizeType(p *structure.Params) error {
	t, err := structure.ParseType(string(p.Type))
	if err != nil {
		return err
	}
	p.Type = t
	return nil
}

func respondError(c *gin.Context, err error) {
	var ve *structure.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "结构参数无效",
			"issues": ve.Issues,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

package router

import (
	"net/http"

	"github.com/blues/quirklr/internal/config"
	"github.com/blues/quirklr/internal/handler"
	"github.com/blues/quirklr/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps 路由依赖：anchor/proof为接口，便于测试替换
type Deps struct {
	DB     *gorm.DB
	Anchor logic.ChainAnchor
	Proof  logic.ProofService
	Config *config.Config
}

func Setup(deps Deps) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(deps.Config.Cors.Origin))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "quirklr",
		})
	})

	projectLogic := logic.NewProjectLogic(deps.DB, deps.Anchor)
	paymentLogic := logic.NewPaymentLogic(deps.DB)
	recorderLogic := logic.NewRecorderLogic(deps.DB, deps.Proof, deps.Config.Chain.ChainType)
	authLogic := logic.NewAuthLogic(deps.DB)

	api := r.Group("/api")
	{
		// 项目相关路由
		projectHandler := handler.NewProjectHandler(projectLogic)
		projects := api.Group("/projects")
		{
			projects.POST("/create_project", projectHandler.CreateProject)
			projects.GET("/get_all", projectHandler.GetProjects)
			projects.GET("/get_project/:projectId", projectHandler.GetProject)
			projects.POST("/delete", projectHandler.DeleteProject)
			projects.POST("/withdraw", projectHandler.Withdraw)
		}

		// 支付查询路由
		paymentHandler := handler.NewPaymentHandler(paymentLogic, recorderLogic)
		payments := api.Group("/payments")
		{
			payments.GET("/get_payments", paymentHandler.GetPayments)
			payments.GET("/receipt/:receiptId", paymentHandler.GetReceipt)
			payments.GET("/fundraising_progress/:projectId", paymentHandler.GetProjectProgress)
			payments.POST("/check", paymentHandler.CheckPayment)
			payments.GET("/:projectId", paymentHandler.GetPaymentsByProject)
		}

		// 支付登记路由，链上确认后由付款方调用
		proofrailsHandler := handler.NewProofrailsHandler(recorderLogic)
		api.POST("/proofrails/add_payment", proofrailsHandler.AddPayment)

		// API密钥路由
		authHandler := handler.NewAuthHandler(authLogic)
		auth := api.Group("/auth")
		{
			auth.GET("/check-key", authHandler.CheckKey)
			auth.GET("/generate-key", authHandler.GenerateKey)
		}

		// 公开验证路由，需要X-API-KEY
		apiHandler := handler.NewApiHandler(paymentLogic, projectLogic)
		public := api.Group("/public")
		public.Use(handler.ApiKeyAuth(authLogic))
		{
			public.GET("/verify", apiHandler.Verify)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-API-KEY, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

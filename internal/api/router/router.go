package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chip-ledger/backend/config"
	"chip-ledger/backend/internal/api/handler"
	"chip-ledger/backend/internal/api/middleware"
	"chip-ledger/backend/internal/model"
	"chip-ledger/backend/pkg/jwt"
	"chip-ledger/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	adminOnly := middleware.RoleAuth(model.RoleSuperadmin, model.RoleTableAdmin)
	superadminOnly := middleware.RoleAuth(model.RoleSuperadmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，登录接口限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users", superadminOnly)
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
			}

			// 桌台模块
			tables := authorized.Group("/tables")
			{
				tables.GET("", h.Table.ListTables)
				tables.GET("/:id", h.Table.GetTable)
				tables.POST("", superadminOnly, h.Table.CreateTable)
				tables.PUT("/:id", adminOnly, h.Table.UpdateTable)
				tables.DELETE("/:id", superadminOnly, h.Table.DeleteTable)
				tables.GET("/:id/open-session", h.Session.GetOpenSession)
				tables.GET("/:id/closed-sessions", adminOnly, h.Session.ListClosedSessions)
			}

			// 牌局模块
			sessions := authorized.Group("/sessions")
			{
				sessions.POST("", adminOnly, h.Session.OpenSession)
				sessions.GET("/:id", h.Session.GetSession)
				sessions.POST("/:id/close", adminOnly, h.Session.CloseSession)
				sessions.GET("/:id/non-cash-exposure", h.Session.GetNonCashExposure)

				// 座位台账
				sessions.GET("/:id/seats", h.Seat.ListSeats)
				sessions.PUT("/:id/seats/player", h.Seat.AssignPlayer)
				sessions.POST("/:id/seats/:seat_no/clear", h.Seat.ClearSeat)
				sessions.GET("/:id/seats/:seat_no/history", h.Seat.GetSeatHistory)
				sessions.POST("/:id/chips", h.Seat.ApplyChipMovement)
				sessions.POST("/:id/chips/undo", h.Seat.UndoLastMovement)

				// 值班
				sessions.POST("/:id/dealers", adminOnly, h.Staff.AddDealer)
				sessions.POST("/:id/dealers/replace", adminOnly, h.Staff.ReplaceDealer)
				sessions.POST("/:id/dealers/remove", adminOnly, h.Staff.RemoveDealer)
				sessions.POST("/:id/waiters", adminOnly, h.Staff.AddWaiter)
				sessions.POST("/:id/waiters/remove", adminOnly, h.Staff.RemoveWaiter)
			}

			// 抽水流水
			authorized.POST("/rake-entries", h.Staff.AddRakeEntry)

			// 员工选项
			staff := authorized.Group("/staff", adminOnly)
			{
				staff.GET("/available-dealers", h.Staff.ListAvailableDealers)
				staff.GET("/available-waiters", h.Staff.ListAvailableWaiters)
			}

			// 日报模块
			reports := authorized.Group("/reports", adminOnly)
			{
				reports.GET("/day-summary", h.Report.GetDaySummary)
				reports.GET("/preselected-date", h.Report.GetPreselectedDate)
			}

			// 余额调整模块
			balance := authorized.Group("/balance-adjustments", adminOnly)
			{
				balance.GET("", h.Balance.ListAdjustments)
				balance.POST("", h.Balance.CreateAdjustment)
				balance.POST("/close-credit", h.Balance.CloseCredit)
			}

			// 导出模块
			export := authorized.Group("/export", adminOnly)
			{
				export.GET("/day-report", h.Export.ExportDayReport)
			}
		}
	}

	return r
}

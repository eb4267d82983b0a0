package main

import (
	"github.com/gin-gonic/gin"
	"github.com/threepillars/storefront/internal/middleware"
	"github.com/threepillars/storefront/internal/models"
	"github.com/threepillars/storefront/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Rate limiter for auth and webhook routes
	authLimiter := middleware.NewRateLimiter(5, 10)
	webhookLimiter := middleware.NewRateLimiter(10, 20)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/ping", svc.healthHandler.Ping)

	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/register", svc.authHandler.Register)
		}

		authed := api.Group("/auth")
		authed.Use(middleware.AuthRequired())
		{
			authed.GET("/me", svc.authHandler.GetCurrentUser)
			authed.POST("/logout", svc.authHandler.Logout)
			authed.POST("/change-password", svc.authHandler.ChangePassword)
		}

		// Payment gateway webhook (public, signature verified per company)
		api.POST("/webhooks/yoco", webhookLimiter.Middleware(), svc.yocoHandler.Webhook)

		// Public storefront routes, scoped by explicit company identifier
		shop := api.Group("/shop")
		shop.Use(middleware.OptionalAuth(), middleware.StorefrontCompany(db))
		{
			shop.GET("/products", svc.catalogHandler.ListStorefrontProducts)
			shop.GET("/products/:id", svc.catalogHandler.GetProduct)
			shop.GET("/categories", svc.catalogHandler.ListCategories)

			shop.GET("/cart", svc.cartHandler.GetCart)
			shop.GET("/cart/totals", svc.cartHandler.GetTotals)
			shop.POST("/cart/items", svc.cartHandler.AddItem)
			shop.PUT("/cart/items/:product_id", svc.cartHandler.UpdateItem)
			shop.DELETE("/cart/items/:product_id", svc.cartHandler.RemoveItem)
			shop.DELETE("/cart", svc.cartHandler.Clear)

			shop.POST("/checkout", svc.orderHandler.Checkout)
			shop.GET("/orders/:number", svc.orderHandler.LookupOrder)
			shop.POST("/orders/:number/pay", svc.yocoHandler.CreateCheckout)

			shop.GET("/pudo/locations", svc.courierHandler.SearchPudoLocations)

			shop.POST("/push/devices", svc.pushHandler.RegisterDevice)
			shop.DELETE("/push/devices/:token", svc.pushHandler.UnregisterDevice)

			shop.GET("/news", svc.newsHandler.ListPublishedArticles)
			shop.GET("/news/:id", svc.newsHandler.GetArticle)
		}

		// Company registration and listing need only a login: a fresh
		// account owns nothing yet, so these cannot sit behind company
		// resolution
		companies := api.Group("/companies")
		companies.Use(middleware.AuthRequired(), middleware.Audit())
		{
			companies.GET("", svc.companyHandler.List)
			companies.POST("", svc.companyHandler.Create)
		}

		// Company management routes: authenticated, company resolved from
		// header, query param or ownership, writes audited
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.CompanyContext(db), middleware.Audit())
		{
			protected.GET("/company", svc.companyHandler.GetCurrent)
			protected.PUT("/company", svc.companyHandler.Update)
			protected.POST("/company/members", svc.companyHandler.AddMember)
			protected.DELETE("/company/members/:user_id", svc.companyHandler.RemoveMember)

			protected.GET("/company/integrations", svc.settingsHandler.GetCompanySettings)
			protected.PUT("/company/integrations", svc.settingsHandler.UpdateCompanySettings)
			protected.GET("/company/integrations/:integration/resolve", svc.settingsHandler.ResolveIntegration)

			protected.GET("/categories", svc.catalogHandler.ListCategories)
			protected.POST("/categories", svc.catalogHandler.CreateCategory)
			protected.DELETE("/categories/:id", svc.catalogHandler.DeleteCategory)

			protected.GET("/products", svc.catalogHandler.ListProducts)
			protected.GET("/products/:id", svc.catalogHandler.GetProduct)
			protected.POST("/products", svc.catalogHandler.CreateProduct)
			protected.PUT("/products/:id", svc.catalogHandler.UpdateProduct)
			protected.PUT("/products/:id/status", svc.catalogHandler.SetProductStatus)
			protected.POST("/products/:id/stock", svc.catalogHandler.AdjustStock)
			protected.DELETE("/products/:id", svc.catalogHandler.DeleteProduct)

			protected.GET("/orders", svc.orderHandler.List)
			protected.GET("/orders/:id", svc.orderHandler.Get)
			protected.PUT("/orders/:id/status", svc.orderHandler.SetStatus)
			protected.PUT("/orders/:id/tracking", svc.orderHandler.SetTracking)
			protected.GET("/orders/:id/payment", svc.yocoHandler.GetPaymentStatus)
			protected.POST("/orders/:id/shipment", svc.courierHandler.CreateShipment)
			protected.GET("/orders/:id/tracking", svc.courierHandler.TrackShipment)

			protected.GET("/push/devices", svc.pushHandler.ListDevices)
			protected.GET("/push/messages", svc.pushHandler.ListMessages)
			protected.POST("/push/messages", svc.pushHandler.SendMessage)

			protected.GET("/news", svc.newsHandler.ListArticles)
			protected.GET("/news/:id", svc.newsHandler.GetArticle)
			protected.POST("/news", svc.newsHandler.CreateArticle)
			protected.PUT("/news/:id", svc.newsHandler.UpdateArticle)
			protected.POST("/news/:id/publish", svc.newsHandler.PublishArticle)
			protected.POST("/news/:id/unpublish", svc.newsHandler.UnpublishArticle)
			protected.DELETE("/news/:id", svc.newsHandler.DeleteArticle)
			protected.GET("/news-categories", svc.newsHandler.ListCategories)
			protected.POST("/news-categories", svc.newsHandler.CreateCategory)
		}

		// Platform administration: superusers only
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.Audit())
		{
			admin.GET("/integrations", svc.settingsHandler.GetGlobalSettings)
			admin.PUT("/integrations", svc.settingsHandler.UpdateGlobalSettings)
			admin.GET("/audit-logs", svc.auditHandler.List)
			admin.GET("/audit-logs/retention", svc.auditHandler.GetRetentionDays)
			admin.PUT("/audit-logs/retention", svc.auditHandler.SetRetentionDays)
			admin.POST("/audit-logs/cleanup", svc.auditHandler.Cleanup)
			admin.GET("/config/:group", svc.configHandler.GetGroup)
			admin.PUT("/config", svc.configHandler.Update)
		}
	}
}

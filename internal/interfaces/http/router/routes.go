package router

import (
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers is every HTTP handler the back office serves
type Handlers struct {
	Pricing     *handler.PricingHandler
	Commission  *handler.CommissionHandler
	Integration *handler.IntegrationHandler
	Storefront  *handler.StorefrontHandler
	Message     *handler.MessageHandler
	Webhook     *handler.WebhookHandler
	Tracking    *handler.TrackingHandler
	System      *handler.SystemHandler
}

// Guards are the per-group middleware. Any of them may be nil.
type Guards struct {
	// Finance protects payouts, payment links and commission configs
	Finance gin.HandlerFunc
	// Admin protects provider connections, sync triggers and job history
	Admin gin.HandlerFunc
	// Webhooks throttles provider callbacks
	Webhooks gin.HandlerFunc
	// Tracking throttles the pixel and click endpoints
	Tracking gin.HandlerFunc
}

// RegisterAll mounts the public routes at the root and everything else under
// the versioned API prefix.
func RegisterAll(r *Router, h Handlers, g Guards) {
	health := NewDomainGroup("health", "")
	health.GET("/health", h.System.Health)
	r.RegisterPublic(health)

	webhooks := NewDomainGroup("webhooks", "/webhooks").Use(g.Webhooks)
	webhooks.POST("/shopify", h.Webhook.Shopify)
	webhooks.POST("/mercadopago", h.Webhook.MercadoPago)
	r.RegisterPublic(webhooks)

	tracking := NewDomainGroup("tracking", "/t").Use(g.Tracking)
	tracking.GET("/o/:file", h.Tracking.Open)
	tracking.GET("/c/:id", h.Tracking.Click)
	r.RegisterPublic(tracking)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)
	system.Group("jobs", "").Use(g.Admin).GET("/jobs", h.System.JobHistory)
	r.Register(system)

	pricing := NewDomainGroup("pricing", "/pricing")
	pricing.POST("/quote", h.Pricing.Quote)
	pricing.GET("/classify", h.Pricing.Classify)
	r.Register(pricing)

	clients := NewDomainGroup("clients", "/clients")
	clients.GET("", h.Pricing.ListProfiles)
	clients.GET("/:id/profile", h.Pricing.GetProfile)
	clients.PUT("/:id/profile", h.Pricing.SaveProfile)
	clients.PUT("/:id/category-discounts", h.Pricing.SetCategoryDiscounts)
	r.Register(clients)

	registerCommission(r, h.Commission, g)
	registerIntegrations(r, h, g)

	storefront := NewDomainGroup("storefront", "/storefront")
	storefront.GET("/products", h.Storefront.ListProducts)
	storefront.POST("/cart", h.Storefront.CreateCart)
	r.Register(storefront)

	messages := NewDomainGroup("messages", "/messages")
	messages.POST("/email", h.Message.SendEmail)
	messages.POST("/whatsapp", h.Message.SendWhatsApp)
	messages.GET("/:id", h.Message.GetMessage)
	r.Register(messages)
}

func registerCommission(r *Router, h *handler.CommissionHandler, g Guards) {
	configs := NewDomainGroup("commission", "/commission").Use(g.Finance)
	configs.POST("/configs", h.SaveConfig)
	r.Register(configs)

	sales := NewDomainGroup("sales", "/sales")
	sales.POST("", h.RecordSale)
	sales.GET("", h.ListSales)
	sales.GET("/:id", h.GetSale)
	sales.Group("sale-links", "").Use(g.Finance).POST("/:id/payment-link", h.AttachPaymentLink)
	r.Register(sales)

	beneficiaries := NewDomainGroup("beneficiaries", "/beneficiaries")
	beneficiaries.GET("/:id/balance", h.Balance)
	r.Register(beneficiaries)

	payouts := NewDomainGroup("payouts", "/payouts").Use(g.Finance)
	payouts.POST("", h.CreatePayout)
	payouts.GET("/:id", h.GetPayout)
	payouts.POST("/:id/approve", h.ApprovePayout)
	payouts.POST("/:id/pay", h.PayPayout)
	payouts.POST("/:id/cancel", h.CancelPayout)
	r.Register(payouts)
}

func registerIntegrations(r *Router, h Handlers, g Guards) {
	integrations := NewDomainGroup("integrations", "/integrations")
	integrations.GET("/orders", h.Integration.ListOrders)
	integrations.GET("/bling/invoices/:id/xml", h.Integration.InvoiceXML)
	integrations.GET("/shopify/orders/:id", h.Integration.ShopifyOrder)

	admin := integrations.Group("integrations-admin", "").Use(g.Admin)
	admin.POST("/bling/connect", h.Integration.ConnectBling)
	admin.POST("/bling/orders/sync", h.Integration.SyncOrders)
	admin.POST("/bling/invoices/sync", h.Integration.SyncInvoices)
	admin.POST("/mercadopago/payments/sync", h.Integration.SyncPayments)
	admin.POST("/sync/:kind", h.System.ScheduleSync)

	r.Register(integrations)
}

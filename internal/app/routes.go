package app

import "github.com/skyjet/reconciliation-service/internal/handlers"

func (a *App) RegisterRoutes(webhooks *handlers.WebhookHandler, refunds *handlers.RefundHandler, alerts *handlers.AlertHandler, events *handlers.EventHandler) {
	hooks := a.Router.Group("/webhooks")
	hooks.POST("/card", webhooks.HandleCard)
	hooks.POST("/wallet", webhooks.HandleWallet)
	hooks.POST("/sms", webhooks.HandleSMS)
	hooks.POST("/email", webhooks.HandleEmail)

	refundGroup := a.Router.Group("/refunds")
	refundGroup.POST("", refunds.Create)
	refundGroup.GET("", refunds.List)
	refundGroup.GET("/stats", refunds.Stats)
	refundGroup.GET("/requester/:requesterId", refunds.ListByRequester)
	refundGroup.GET("/:id", refunds.Get)
	refundGroup.GET("/:id/actions", refunds.ActionLog)
	refundGroup.POST("/:id/approve", refunds.Approve)
	refundGroup.POST("/:id/reject", refunds.Reject)
	refundGroup.POST("/:id/process", refunds.Process)

	alertGroup := a.Router.Group("/alerts")
	alertGroup.GET("", alerts.ListPending)
	alertGroup.POST("/:id/ack", alerts.Acknowledge)

	eventGroup := a.Router.Group("/events")
	eventGroup.GET("/:id", events.Get)
	eventGroup.GET("/:id/dead-letter", events.GetDeadLetter)
}

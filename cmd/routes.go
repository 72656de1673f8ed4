package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("admin"))

	mux := pat.New()

	// LINE platform calls this; auth is the channel signature, not JWT
	mux.Post("/webhook/line", standardMiddleware.ThenFunc(app.webhookHandler.HandleWebhook))

	// Remarketing
	mux.Post("/remarketing/run", adminAuthMiddleware.ThenFunc(app.remarketingHandler.RunNow))
	mux.Post("/remarketing/rules", adminAuthMiddleware.ThenFunc(app.ruleHandler.CreateRule))
	mux.Get("/remarketing/rules", adminAuthMiddleware.ThenFunc(app.ruleHandler.GetRules))
	mux.Get("/remarketing/rules/:id", adminAuthMiddleware.ThenFunc(app.ruleHandler.GetRuleByID))
	mux.Put("/remarketing/rules/:id", adminAuthMiddleware.ThenFunc(app.ruleHandler.UpdateRule))
	mux.Del("/remarketing/rules/:id", adminAuthMiddleware.ThenFunc(app.ruleHandler.DeleteRule))

	// LINE users (CRM)
	mux.Get("/line_users", adminAuthMiddleware.ThenFunc(app.lineUserHandler.GetUsers))
	mux.Get("/line_users/:id", adminAuthMiddleware.ThenFunc(app.lineUserHandler.GetUserByID))
	mux.Put("/line_users/:id", adminAuthMiddleware.ThenFunc(app.lineUserHandler.UpdateUser))
	mux.Post("/line_users/:id/confirm_payment", adminAuthMiddleware.ThenFunc(app.lineUserHandler.ConfirmPayment))
	mux.Post("/line_users/:id/push", adminAuthMiddleware.ThenFunc(app.lineUserHandler.PushMessage))

	// Bot settings
	mux.Get("/settings", adminAuthMiddleware.ThenFunc(app.botSettingsHandler.GetSettings))
	mux.Put("/settings", adminAuthMiddleware.ThenFunc(app.botSettingsHandler.UpdateSettings))

	// Admin live feed
	mux.Get("/ws", adminAuthMiddleware.ThenFunc(app.WebSocketHandler))

	mux.Get("/healthz", standardMiddleware.ThenFunc(app.healthz))

	return standardMiddleware.Then(mux)
}

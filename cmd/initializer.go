package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/redis/go-redis/v9"

	"salonBack/internal/config"
	"salonBack/internal/handlers"
	"salonBack/internal/line"
	"salonBack/internal/repositories"
	"salonBack/internal/services"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	cfg      config.Config
	db       *sql.DB

	wsManager *WebSocketManager

	lineUserRepo    *repositories.LineUserRepository
	ruleRepo        *repositories.RemarketingRuleRepository
	sendLogRepo     *repositories.SendLogRepository
	botSettingsRepo *repositories.BotSettingsRepository

	remarketingService *services.RemarketingService

	webhookHandler     *handlers.LineWebhookHandler
	remarketingHandler *handlers.RemarketingHandler
	ruleHandler        *handlers.RemarketingRuleHandler
	lineUserHandler    *handlers.LineUserHandler
	botSettingsHandler *handlers.BotSettingsHandler
}

func initializeApp(cfg config.Config, db *sql.DB, rdb *redis.Client, errorLog, infoLog *log.Logger) *application {
	// Repositories
	lineUserRepo := &repositories.LineUserRepository{DB: db}
	ruleRepo := &repositories.RemarketingRuleRepository{DB: db}
	sendLogRepo := &repositories.SendLogRepository{DB: db}
	botSettingsRepo := &repositories.BotSettingsRepository{DB: db}

	lineClient := line.NewClient(nil, cfg.Line.ChannelToken)

	wsManager := NewWebSocketManager()

	// Services
	conversationService := &services.ConversationService{
		Users:    lineUserRepo,
		Sender:   lineClient,
		Profiles: lineClient,
		Settings: botSettingsRepo,
		Feed:     wsManager,
		InfoLog:  infoLog,
		ErrorLog: errorLog,
	}
	remarketingService := &services.RemarketingService{
		Rules:    ruleRepo,
		Users:    lineUserRepo,
		SendLog:  sendLogRepo,
		Sender:   lineClient,
		Redis:    rdb,
		InfoLog:  infoLog,
		ErrorLog: errorLog,
	}
	ruleService := &services.RemarketingRuleService{RuleRepo: ruleRepo}
	lineUserService := &services.LineUserService{UserRepo: lineUserRepo, Sender: lineClient}
	botSettingsService := &services.BotSettingsService{SettingsRepo: botSettingsRepo}

	// Handlers
	webhookHandler := &handlers.LineWebhookHandler{
		Conversation:  conversationService,
		ChannelSecret: cfg.Line.ChannelSecret,
		InfoLog:       infoLog,
		ErrorLog:      errorLog,
	}
	remarketingHandler := &handlers.RemarketingHandler{Service: remarketingService, ErrorLog: errorLog}
	ruleHandler := &handlers.RemarketingRuleHandler{Service: ruleService}
	lineUserHandler := &handlers.LineUserHandler{Service: lineUserService}
	botSettingsHandler := &handlers.BotSettingsHandler{Service: botSettingsService}

	return &application{
		errorLog:           errorLog,
		infoLog:            infoLog,
		cfg:                cfg,
		db:                 db,
		wsManager:          wsManager,
		lineUserRepo:       lineUserRepo,
		ruleRepo:           ruleRepo,
		sendLogRepo:        sendLogRepo,
		botSettingsRepo:    botSettingsRepo,
		remarketingService: remarketingService,
		webhookHandler:     webhookHandler,
		remarketingHandler: remarketingHandler,
		ruleHandler:        ruleHandler,
		lineUserHandler:    lineUserHandler,
		botSettingsHandler: botSettingsHandler,
	}
}

func (app *application) healthz(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		app.errorLog.Printf("healthcheck: %v", err)
		http.Error(w, `{"error": "database unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte(`{"status": "ok"}`))
}

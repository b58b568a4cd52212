package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"salonchat_backend/internal/config"
	"salonchat_backend/internal/handlers"
	"salonchat_backend/internal/logger"
	"salonchat_backend/internal/middleware"
	"salonchat_backend/internal/models"
	modelChat "salonchat_backend/internal/models/chat"
	"salonchat_backend/internal/repositories"
	repoChat "salonchat_backend/internal/repositories/chat"
	"salonchat_backend/internal/routes"
	"salonchat_backend/internal/services"
	chat "salonchat_backend/internal/services/chat"
	"salonchat_backend/internal/validator"
	"salonchat_backend/ws"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := Migrate(gormDB); err != nil {
		logger.Fatal("Auto-migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB); err != nil {
		// Без администратора сервер не стартуем
		logger.Fatal("Failed to seed first admin", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// Migrate прогоняет автомиграцию лога сообщений и таблиц идентичности
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Customer{},
		&models.Staff{},
		&models.Admin{},
		&modelChat.Message{},
	)
}

// SetupRouter собирает все зависимости и возвращает готовый *gin.Engine.
// Вынесено из Run, чтобы тесты могли поднять сервер на своей БД.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	// Репозитории
	identityRepo := repositories.NewIdentityRepository(gormDB)
	messageRepo := repoChat.NewMessageRepository(gormDB)

	// Сервисы
	identityService := services.NewIdentityService(identityRepo)
	chatService := chat.NewChatService(messageRepo, identityService)

	// WebSocket
	wsManager := ws.NewManager()
	go wsManager.Run()
	wsHandler := ws.NewHandler(
		wsManager,
		chatService,
		identityService,
		time.Duration(cfg.WS.HandshakeTimeout)*time.Second,
		cfg.WS.SendBuffer,
	)

	// Хэндлеры
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)
	chatHandler := handlers.NewChatHandler(baseHandler, chatService, wsManager)

	// Gin
	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestLogger())

	routes.RegisterRoutes(ginRouter, chatHandler, wsHandler)

	return ginRouter
}

// seedFirstAdmin создает первого администратора платформы, если таблица
// admins пуста. Email/пароль берутся из .env.
func seedFirstAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("FIRST_ADMIN_EMAIL")
	adminPassword := os.Getenv("FIRST_ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var existing models.Admin
	result := db.Where("email = ?", adminEmail).First(&existing)
	if result.Error == nil {
		logger.Info("Admin already exists. Skipping creation.", "email", adminEmail)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin: %w", result.Error)
	}

	logger.Warn("No admin found with specified email. Creating first admin...", "email", adminEmail)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.Admin{
		Name:         "Platform Administrator",
		Email:        adminEmail,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin in database: %w", err)
	}

	logger.Info("Successfully created first admin", "email", adminEmail)
	return nil
}

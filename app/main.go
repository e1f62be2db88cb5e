package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hazelmoss/inkpost/internal/blogservice"
	"github.com/hazelmoss/inkpost/internal/common"
	"github.com/hazelmoss/inkpost/internal/mailservice"
	"github.com/hazelmoss/inkpost/internal/userservice"

	_ "github.com/lib/pq"
)

type application struct {
	config      *Config
	logger      *slog.Logger
	userService *userservice.UserService
	blogService *blogservice.BlogService
	mailService *mailservice.MailService
	broker      *common.MessageBroker
	limiters    *common.Cache
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitUser, cfg.RabbitPassword, cfg.RabbitHost, cfg.RabbitPort)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupUserExchange(broker)
	if err != nil {
		logger.Error("failed to setup the user exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokens := userservice.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)

	app := &application{
		config:      cfg,
		logger:      logger,
		userService: userservice.NewUserService(userservice.NewPostgresUserStore(db), tokens, broker),
		blogService: blogservice.NewBlogService(blogservice.NewPostgresBlogStore(db)),
		mailService: mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger),
		broker:      broker,
		limiters:    common.NewCache(3*time.Minute, 10*time.Minute),
	}

	go app.mailService.SendWelcomeEmail()

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

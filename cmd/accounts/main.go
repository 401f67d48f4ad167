package main

import (
	"lcr/internal/accounts/handler"
	"lcr/internal/accounts/repository"
	"lcr/internal/accounts/service"
	"lcr/internal/accounts/validator"
	"lcr/pkg/app"
	"lcr/pkg/config"
)

const ServiceName = "accounts"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Accounts service")
	accountService := initServices(cfg)
	serverApp := app.NewApplication(cfg)

	// Register, login and refresh are reachable without a bearer token.
	serverApp.SetApp(handler.NewAccountHandler(accountService, cfg.Log), "/api/v1/accounts")
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AccountService {
	accountValidator := validator.NewAccountValidator(cfg.Log)
	userRepo := repository.NewMongoUserRepository(cfg)
	accountService := service.NewAccountService(userRepo, accountValidator, cfg)

	cfg.Log.Info("Account service initialized", "database", cfg.MongoDatabaseName)
	return accountService
}

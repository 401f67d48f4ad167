package main

import (
	"lcr/internal/fleet/handler"
	"lcr/internal/fleet/repository"
	"lcr/internal/fleet/service"
	"lcr/internal/fleet/validator"
	"lcr/pkg/app"
	"lcr/pkg/config"
)

const ServiceName = "fleet"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Fleet service")
	vehicleService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewVehicleHandler(vehicleService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.VehicleService {
	vehicleValidator := validator.NewVehicleValidator(cfg.Log)
	vehicleRepo := repository.NewMongoVehicleRepository(cfg)
	vehicleService := service.NewVehicleService(vehicleRepo, vehicleValidator, cfg)

	cfg.Log.Info("Vehicle service initialized", "database", cfg.MongoDatabaseName)
	return vehicleService
}

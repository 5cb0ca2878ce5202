package main

import (
	"log"

	"github.com/gsinghjay/gpt-character-gen/config"
	"github.com/gsinghjay/gpt-character-gen/controllers"
	"github.com/gsinghjay/gpt-character-gen/routes"
	"github.com/gsinghjay/gpt-character-gen/services"
	"github.com/gsinghjay/gpt-character-gen/storage"
	"github.com/gsinghjay/gpt-character-gen/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := utils.InitLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	store, err := storage.New(cfg, sugar)
	if err != nil {
		sugar.Fatalf("init store: %v", err)
	}

	images, err := services.NewImageStore(cfg.StaticDir)
	if err != nil {
		sugar.Fatalf("init image store: %v", err)
	}

	provider := services.NewOpenAIImageClient(
		cfg.OpenAIBaseURL,
		cfg.OpenAIAPIKey,
		cfg.ImageModel,
		cfg.ImageSize,
		cfg.ImageQuality,
		cfg.ProviderTimeout(),
	)
	generator := services.NewGenerator(provider, images, cfg.DownloadTimeout(), sugar)

	characterController := controllers.NewCharacterController(store, generator, images, sugar)
	r := routes.SetupRouter(cfg, characterController)

	sugar.Infof("starting %s on port %s (graceful)", cfg.AppName, cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r, sugar); err != nil {
		sugar.Fatalf("server stopped with error: %v", err)
	}
}

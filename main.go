package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/stellark/stellark-go/config"
	"github.com/stellark/stellark-go/contract"
	"github.com/stellark/stellark-go/handlers"
	"github.com/stellark/stellark-go/models"
	"github.com/stellark/stellark-go/services"
	"github.com/stellark/stellark-go/session"
	"github.com/stellark/stellark-go/soroban"
	"github.com/stellark/stellark-go/storage"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	db, err := storage.Connect(ctx, cfg.DatabaseURL(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to metadata database")
	}
	defer db.Close()

	client := soroban.NewClient(soroban.Options{
		RPCURL:            cfg.RPCURL,
		HorizonURL:        cfg.HorizonURL,
		NetworkPassphrase: cfg.NetworkPassphrase,
	}, log)

	tokens := func(contractAddress string) (services.TokenClient, error) {
		return contract.NewEquityToken(client, contractAddress, cfg.XLMTokenAddress)
	}
	market := services.NewMarketService(db, tokens, log)

	// The operator session signs deploys and the developer-facing trade
	// flow when a request carries no seed of its own.
	var operator *session.Session
	if cfg.DeployerSeed != "" {
		signer, err := soroban.NewKeypairSigner(cfg.DeployerSeed)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid deployer seed")
		}
		operator = session.Open(ctx, client, signer, 30*time.Second, log)
		defer operator.Close()
	}

	resolveSigner := func(secretSeed string) (soroban.Signer, error) {
		if secretSeed != "" {
			return soroban.NewKeypairSigner(secretSeed)
		}
		if operator != nil {
			return operator.Signer(), nil
		}
		return nil, soroban.ErrSigningUnavailable
	}

	network := models.NetworkConfig{
		NetworkPassphrase: cfg.NetworkPassphrase,
		RPCURL:            cfg.RPCURL,
		HorizonURL:        cfg.HorizonURL,
		XLMTokenAddress:   cfg.XLMTokenAddress,
		ContractID:        cfg.ContractID,
	}

	systemHandler := handlers.NewSystemHandler(client, network, cfg.DeployCommand, operator, log)
	companyHandler := handlers.NewCompanyHandler(market, resolveSigner, log)
	resaleHandler := handlers.NewResaleHandler(market, resolveSigner, log)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", systemHandler.Health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/deploy-contract", systemHandler.DeployContract)
		r.Get("/deployment-info", systemHandler.DeploymentInfo)

		r.Route("/companies", func(r chi.Router) {
			r.Post("/", companyHandler.Create)
			r.Get("/", companyHandler.List)
			r.Get("/{contractAddress}", companyHandler.Overview)
			r.Post("/{contractAddress}/buy", companyHandler.Buy)
		})

		r.Route("/resale-listings", func(r chi.Router) {
			r.Post("/", resaleHandler.Create)
			r.Get("/", resaleHandler.List)
			r.Post("/{id}/purchase", resaleHandler.Purchase)
		})

		r.Get("/portfolio/{address}", companyHandler.Portfolio)
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("stellark backend listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

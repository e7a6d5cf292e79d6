package main

import (
	"fmt"
	"os"

	"github.com/dkravt/eventops-payments/internal/auth"
	"github.com/dkravt/eventops-payments/internal/config"
	"github.com/dkravt/eventops-payments/internal/db"
	"github.com/dkravt/eventops-payments/internal/excel"
	httphandler "github.com/dkravt/eventops-payments/internal/http"
	"github.com/dkravt/eventops-payments/internal/http/middleware"
	"github.com/dkravt/eventops-payments/internal/logger"
	"github.com/dkravt/eventops-payments/internal/pdf"
	"github.com/dkravt/eventops-payments/internal/repository"
	"github.com/dkravt/eventops-payments/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	personnelRepo := repository.NewPersonnelRepository(database)
	estimateRepo := repository.NewEstimateRepository(database)
	workReportRepo := repository.NewWorkReportRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	ledgerService := service.NewLedgerService(paymentRepo, cfg.Ledger.GraceDays, log)
	estimateService := service.NewEstimateService(estimateRepo, pdfGenerator, log)
	workReportService := service.NewWorkReportService(workReportRepo, ledgerService, log)
	allocationService := service.NewAllocationService(workReportRepo, log)
	reportService := service.NewReportService(paymentRepo, personnelRepo, excelGenerator)
	personnelService := service.NewPersonnelService(personnelRepo, log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		estimateService,
		workReportService,
		allocationService,
		ledgerService,
		reportService,
		personnelService,
		log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting payments service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/devadigapratham/zpl2pdf/api"
	"github.com/devadigapratham/zpl2pdf/api/handlers"
	"github.com/devadigapratham/zpl2pdf/config"
	"github.com/devadigapratham/zpl2pdf/gateway"
	"github.com/devadigapratham/zpl2pdf/i18n"
	"github.com/devadigapratham/zpl2pdf/pdfproxy"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serve starts the web front end together with the two API endpoints:

  POST /api/convert     forwards ZPL to ZPL_API_URL
  GET  /api/pdf-proxy   relays PDFs hosted on ALLOWED_PDF_DOMAIN

Either endpoint answers 503 while its setting is missing.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("http-addr", "", "HTTP listen address (default \""+config.DefaultHTTPAddr+"\")")
	serveCmd.Flags().String("zpl-api-url", "", "external ZPL conversion endpoint (env ZPL_API_URL)")
	serveCmd.Flags().String("allowed-pdf-domain", "", "only host the PDF proxy may fetch from (env ALLOWED_PDF_DOMAIN)")
	serveCmd.Flags().String("locale", "", "default message locale: pt-BR or en")
	serveCmd.Flags().Duration("upstream-timeout", 0, "timeout for upstream calls, 0 disables it")

	_ = viper.BindPFlag(config.KeyHTTPAddr, serveCmd.Flags().Lookup("http-addr"))
	_ = viper.BindPFlag(config.KeyZPLAPIURL, serveCmd.Flags().Lookup("zpl-api-url"))
	_ = viper.BindPFlag(config.KeyAllowedPDFDomain, serveCmd.Flags().Lookup("allowed-pdf-domain"))
	_ = viper.BindPFlag(config.KeyLocale, serveCmd.Flags().Lookup("locale"))
	_ = viper.BindPFlag(config.KeyUpstreamTimeout, serveCmd.Flags().Lookup("upstream-timeout"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Locale was validated by config.Load
	locale, _ := i18n.ParseLocale(cfg.Locale)

	client := &http.Client{Timeout: cfg.UpstreamTimeout}
	gw := gateway.New(cfg.ZPLAPIURL, client, logger)
	proxy := pdfproxy.New(cfg.AllowedPDFDomain, client, logger)

	if !gw.Configured() {
		logger.Warn("ZPL_API_URL is not set, /api/convert will answer 503")
	}
	if !proxy.Configured() {
		logger.Warn("ALLOWED_PDF_DOMAIN is not set, /api/pdf-proxy will answer 503")
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(handlers.NewHandler(gw, proxy, locale, logger))

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

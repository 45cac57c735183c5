// Package server wires the HTTP transport: gin engine, middleware, and
// the REST routes for customers, settings, quotes, invoices, and the
// dashboard.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/offertehq/offerte/internal/config"
	"github.com/offertehq/offerte/internal/customer"
	customerdomain "github.com/offertehq/offerte/internal/customer/domain"
	"github.com/offertehq/offerte/internal/dashboard"
	dashboarddomain "github.com/offertehq/offerte/internal/dashboard/domain"
	"github.com/offertehq/offerte/internal/invoice"
	invoicedomain "github.com/offertehq/offerte/internal/invoice/domain"
	"github.com/offertehq/offerte/internal/providers/pdf"
	"github.com/offertehq/offerte/internal/quote"
	quotedomain "github.com/offertehq/offerte/internal/quote/domain"
	"github.com/offertehq/offerte/internal/settings"
	settingsdomain "github.com/offertehq/offerte/internal/settings/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(registerGin),
	pdf.Module,
	customer.Module,
	settings.Module,
	quote.Module,
	invoice.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	customerSvc  customerdomain.Service
	settingsSvc  settingsdomain.Service
	quoteSvc     quotedomain.Service
	invoiceSvc   invoicedomain.Service
	dashboardSvc dashboarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	CustomerSvc  customerdomain.Service
	SettingsSvc  settingsdomain.Service
	QuoteSvc     quotedomain.Service
	InvoiceSvc   invoicedomain.Service
	DashboardSvc dashboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		customerSvc:  p.CustomerSvc,
		settingsSvc:  p.SettingsSvc,
		quoteSvc:     p.QuoteSvc,
		invoiceSvc:   p.InvoiceSvc,
		dashboardSvc: p.DashboardSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(AccountMiddleware(s.cfg))

	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers", s.ListCustomers)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)

	api.GET("/settings", s.GetSettings)
	api.PATCH("/settings", s.UpdateSettings)

	api.POST("/quotes", s.CreateQuote)
	api.GET("/quotes", s.ListQuotes)
	api.GET("/quotes/:id", s.GetQuoteByID)
	api.PATCH("/quotes/:id", s.UpdateQuote)
	api.DELETE("/quotes/:id", s.DeleteQuote)
	api.POST("/quotes/:id/convert", s.ConvertQuote)
	api.GET("/quotes/:id/pdf", s.QuotePDF)

	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.PATCH("/invoices/:id", s.UpdateInvoice)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.GET("/invoices/:id/pdf", s.InvoicePDF)

	api.GET("/dashboard/summary", s.DashboardSummary)
}

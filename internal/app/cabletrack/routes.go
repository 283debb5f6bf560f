package cabletrack

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	authlogin "github.com/cabletrack/cabletrack/internal/http/handlers/auth/login"
	authregister "github.com/cabletrack/cabletrack/internal/http/handlers/auth/register"
	billinghistory "github.com/cabletrack/cabletrack/internal/http/handlers/billing/history"
	billingrun "github.com/cabletrack/cabletrack/internal/http/handlers/billing/run"
	complaintcreate "github.com/cabletrack/cabletrack/internal/http/handlers/complaint/create"
	complaintlist "github.com/cabletrack/cabletrack/internal/http/handlers/complaint/list"
	complaintstatus "github.com/cabletrack/cabletrack/internal/http/handlers/complaint/status"
	exportbackup "github.com/cabletrack/cabletrack/internal/http/handlers/export/backup"
	exportcsv "github.com/cabletrack/cabletrack/internal/http/handlers/export/csv"
	"github.com/cabletrack/cabletrack/internal/http/handlers/health"
	packcreate "github.com/cabletrack/cabletrack/internal/http/handlers/pack/create"
	packlist "github.com/cabletrack/cabletrack/internal/http/handlers/pack/list"
	packremove "github.com/cabletrack/cabletrack/internal/http/handlers/pack/remove"
	packupdate "github.com/cabletrack/cabletrack/internal/http/handlers/pack/update"
	stbcreate "github.com/cabletrack/cabletrack/internal/http/handlers/stb/create"
	stblist "github.com/cabletrack/cabletrack/internal/http/handlers/stb/list"
	stbstatus "github.com/cabletrack/cabletrack/internal/http/handlers/stb/status"
	subscribercreate "github.com/cabletrack/cabletrack/internal/http/handlers/subscriber/create"
	subscriberlist "github.com/cabletrack/cabletrack/internal/http/handlers/subscriber/list"
	subscriberread "github.com/cabletrack/cabletrack/internal/http/handlers/subscriber/read"
	subscriberremove "github.com/cabletrack/cabletrack/internal/http/handlers/subscriber/remove"
	subscriberupdate "github.com/cabletrack/cabletrack/internal/http/handlers/subscriber/update"
	subscriptionadd "github.com/cabletrack/cabletrack/internal/http/handlers/subscription/add"
	subscriptioncancel "github.com/cabletrack/cabletrack/internal/http/handlers/subscription/cancel"
	subscriptionhistory "github.com/cabletrack/cabletrack/internal/http/handlers/subscription/history"
	subscriptionquote "github.com/cabletrack/cabletrack/internal/http/handlers/subscription/refundquote"
	transactionlist "github.com/cabletrack/cabletrack/internal/http/handlers/transaction/list"
	transactionrecord "github.com/cabletrack/cabletrack/internal/http/handlers/transaction/record"
	transactionupdate "github.com/cabletrack/cabletrack/internal/http/handlers/transaction/update"
	"github.com/cabletrack/cabletrack/internal/http/middlewarectx"
	authservice "github.com/cabletrack/cabletrack/internal/services/auth"
	billingservice "github.com/cabletrack/cabletrack/internal/services/billing"
	complaintservice "github.com/cabletrack/cabletrack/internal/services/complaint"
	exportservice "github.com/cabletrack/cabletrack/internal/services/export"
	inventoryservice "github.com/cabletrack/cabletrack/internal/services/inventory"
	packservice "github.com/cabletrack/cabletrack/internal/services/pack"
	schedulerservice "github.com/cabletrack/cabletrack/internal/services/scheduler"
	subscriberservice "github.com/cabletrack/cabletrack/internal/services/subscriber"
	subscriptionservice "github.com/cabletrack/cabletrack/internal/services/subscription"
)

const (
	rateLimitRPS   = 20
	rateLimitBurst = 40
)

// Services bundles everything the router needs.
type Services struct {
	Auth         *authservice.Service
	Billing      *billingservice.Service
	Pack         *packservice.Service
	Subscriber   *subscriberservice.Service
	Subscription *subscriptionservice.Service
	Scheduler    *schedulerservice.Service
	Inventory    *inventoryservice.Service
	Complaint    *complaintservice.Service
	Export       *exportservice.Service
	Health       health.Checker
}

// RegisterRoutes mounts all application routes.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints.
		r.Post("/register", authregister.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", authlogin.New(logger, s.Auth).ServeHTTP)

		// JWT-protected API.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, rateLimitRPS, rateLimitBurst))

			r.Post("/subscribers", subscribercreate.New(logger, s.Subscriber).ServeHTTP)
			r.Get("/subscribers/list", subscriberlist.New(logger, s.Subscriber).ServeHTTP)
			r.Get("/subscribers/{id}", subscriberread.New(logger, s.Subscriber).ServeHTTP)
			r.Put("/subscribers/{id}", subscriberupdate.New(logger, s.Subscriber).ServeHTTP)
			r.Delete("/subscribers/{id}", subscriberremove.New(logger, s.Subscriber).ServeHTTP)

			r.Post("/subscribers/{id}/subscription", subscriptionadd.New(logger, s.Subscription).ServeHTTP)
			r.Delete("/subscribers/{id}/subscription", subscriptioncancel.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscribers/{id}/subscription/refund-quote", subscriptionquote.New(logger, s.Subscription).ServeHTTP)
			r.Get("/subscribers/{id}/subscription/history", subscriptionhistory.New(logger, s.Subscription).ServeHTTP)

			r.Post("/subscribers/{id}/transactions", transactionrecord.New(logger, s.Billing).ServeHTTP)
			r.Get("/subscribers/{id}/transactions", transactionlist.New(logger, s.Billing).ServeHTTP)
			r.Put("/transactions/{id}", transactionupdate.New(logger, s.Billing).ServeHTTP)

			r.Post("/billing/run", billingrun.New(logger, s.Scheduler).ServeHTTP)
			r.Get("/subscribers/{id}/billing-history", billinghistory.New(logger, s.Billing).ServeHTTP)

			r.Post("/packs", packcreate.New(logger, s.Pack).ServeHTTP)
			r.Get("/packs/list", packlist.New(logger, s.Pack).ServeHTTP)
			r.Put("/packs/{id}", packupdate.New(logger, s.Pack).ServeHTTP)
			r.Delete("/packs/{id}", packremove.New(logger, s.Pack).ServeHTTP)

			r.Post("/complaints", complaintcreate.New(logger, s.Complaint).ServeHTTP)
			r.Get("/complaints/list", complaintlist.New(logger, s.Complaint).ServeHTTP)
			r.Put("/complaints/{id}/status", complaintstatus.New(logger, s.Complaint).ServeHTTP)

			r.Post("/stbs", stbcreate.New(logger, s.Inventory).ServeHTTP)
			r.Get("/stbs/list", stblist.New(logger, s.Inventory).ServeHTTP)
			r.Put("/stbs/{id}/status", stbstatus.New(logger, s.Inventory).ServeHTTP)

			csvHandler := exportcsv.New(logger, s.Export)
			r.Get("/export/subscribers.csv", csvHandler.Subscribers)
			r.Get("/export/transactions.csv", csvHandler.Transactions)
			r.Get("/export/subscriptions.csv", csvHandler.Subscriptions)
			r.Get("/export/billing-history.csv", csvHandler.BillingHistory)

			backupHandler := exportbackup.New(logger, s.Export)
			r.Get("/export/backup", backupHandler.Backup)
			r.Post("/export/restore", backupHandler.Restore)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

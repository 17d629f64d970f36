package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"crm-backend/internal/handlers"
	"crm-backend/internal/middleware"
)

func NewRouter(
	userHandler *handlers.UserHandler,
	clientHandler *handlers.ClientHandler,
	projectHandler *handlers.ProjectHandler,
	taskHandler *handlers.TaskHandler,
	invoiceHandler *handlers.InvoiceHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	realtimeHandler *handlers.RealtimeHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	log logrus.FieldLogger,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequestLogger(log))
	api.Use(authMiddleware.Authenticate)

	// Signed-in user
	api.HandleFunc("/me", userHandler.GetProfile).Methods("GET")
	api.HandleFunc("/me", userHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/me", userHandler.DeleteAccount).Methods("DELETE")

	// Clients
	api.HandleFunc("/clients", clientHandler.ListClients).Methods("GET")
	api.HandleFunc("/clients", clientHandler.CreateClient).Methods("POST")
	api.HandleFunc("/clients/{id}", clientHandler.GetClient).Methods("GET")
	api.HandleFunc("/clients/{id}", clientHandler.UpdateClient).Methods("PUT")
	api.HandleFunc("/clients/{id}", clientHandler.DeleteClient).Methods("DELETE")

	// Projects and their task boards
	api.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET")
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods("POST")
	api.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods("GET")
	api.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods("PATCH")
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods("DELETE")
	api.HandleFunc("/projects/{id}/tasks", taskHandler.ListTasks).Methods("GET")
	api.HandleFunc("/projects/{id}/tasks", taskHandler.CreateTask).Methods("POST")
	api.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods("PATCH")
	api.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")

	// Invoices
	api.HandleFunc("/invoices", invoiceHandler.ListInvoices).Methods("GET")
	api.HandleFunc("/invoices", invoiceHandler.CreateInvoice).Methods("POST")
	api.HandleFunc("/invoices/preview-totals", invoiceHandler.PreviewTotals).Methods("POST")
	api.HandleFunc("/invoices/{id}", invoiceHandler.GetInvoice).Methods("GET")
	api.HandleFunc("/invoices/{id}", invoiceHandler.UpdateInvoice).Methods("PATCH")
	api.HandleFunc("/invoices/{id}", invoiceHandler.DeleteInvoice).Methods("DELETE")
	api.HandleFunc("/invoices/{id}/status", invoiceHandler.UpdateInvoiceStatus).Methods("PUT")
	api.HandleFunc("/invoices/{id}/pdf", invoiceHandler.DownloadPDF).Methods("GET")
	api.HandleFunc("/invoices/{id}/send", invoiceHandler.SendInvoice).Methods("POST")

	// Analytics
	api.HandleFunc("/analytics", analyticsHandler.GetAnalytics).Methods("GET")

	// Live revalidation events; browsers pass the token as ?token=
	r.Handle("/ws", authMiddleware.Authenticate(http.HandlerFunc(realtimeHandler.Connect))).Methods("GET")

	// Health check endpoints
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}

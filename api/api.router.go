package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/smartboa/sbsbs/api/middleware"
	"github.com/smartboa/sbsbs/api/resources"
	_ "github.com/smartboa/sbsbs/docs"
	"github.com/smartboa/sbsbs/internal/report"
	"github.com/smartboa/sbsbs/internal/stationservice"
	"github.com/swaggo/swag"
	nuts "github.com/vaudience/go-nuts"
)

type Config struct {
	Twilio  middleware.TwilioConfig
	DataURL string
	Metrics http.Handler
}

type Router struct {
	router    *mux.Router
	handler   http.Handler
	twilio    *middleware.TwilioMiddleware
	resources *resources.Resources
}

func NewRouter(svc *stationservice.StationService, renderer *report.Renderer, cfg Config) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		twilio:    middleware.NewTwilioMiddleware(cfg.Twilio),
		resources: resources.NewResources(svc, renderer, cfg.DataURL),
	}
	if cfg.Metrics != nil {
		r.resources.SetMetrics(cfg.Metrics)
	}

	r.setupRoutes()
	r.handler = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.CombinedLoggingHandler(os.Stdout, r.router),
	)
	return r
}

func (r *Router) setupRoutes() {
	// Report page and feeds
	r.router.HandleFunc("/", r.resources.Report.GetReportPage).Methods(http.MethodGet)
	reports := r.router.PathPrefix("/report").Subrouter()
	reports.HandleFunc("/data.json", r.resources.Report.GetReportData).Methods(http.MethodGet)
	reports.HandleFunc("/config.json", r.resources.Report.GetReportConfig).Methods(http.MethodGet)
	reports.HandleFunc("/export.csv", r.resources.Report.ExportReport).Methods(http.MethodGet)
	reports.HandleFunc("/upload", r.resources.Report.UploadReport).Methods(http.MethodPost)
	r.router.PathPrefix("/assets/").Handler(http.StripPrefix("/assets/", report.Assets())).Methods(http.MethodGet)

	// Twilio webhook
	sms := r.router.PathPrefix("/sms").Subrouter()
	sms.Use(r.twilio.Verify)
	sms.HandleFunc("", r.resources.SMS.ReceiveSMS).Methods(http.MethodPost)

	// System
	r.router.Handle("/metrics", r.resources.Metrics).Methods(http.MethodGet)
	r.router.HandleFunc("/swagger/doc.json", serveSwaggerDoc).Methods(http.MethodGet)

	v1 := r.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	v1.HandleFunc("/detections/count", r.resources.Detections.CountDetections).Methods(http.MethodGet)
	v1.HandleFunc("/detections/{id}", r.resources.Detections.GetDetection).Methods(http.MethodGet)

	if r.twilio.Enabled() {
		nuts.L.Infof("[API] Twilio signature verification enabled for /sms")
	}
}

func serveSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(doc))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"venuedesk/internal/domain/auth"
	"venuedesk/internal/domain/billing"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/customer"
	"venuedesk/internal/domain/holiday"
	"venuedesk/internal/domain/operations"
	"venuedesk/internal/domain/revenue"
	"venuedesk/internal/domain/room"
	"venuedesk/internal/domain/tariff"
	"venuedesk/internal/infrastructure/http/v1/handlers"
	"venuedesk/internal/infrastructure/http/v1/middleware"
	"venuedesk/internal/infrastructure/numerator"
	"venuedesk/internal/infrastructure/objectstore"
	"venuedesk/internal/infrastructure/storage/postgres"
	"venuedesk/internal/infrastructure/storage/postgres/catalog_repo"
	"venuedesk/internal/infrastructure/storage/postgres/document_repo"
	"venuedesk/internal/infrastructure/storage/postgres/report_repo"
	"venuedesk/pkg/logger"
)

// RouterConfig holds everything the API needs. It is assembled once in main.
type RouterConfig struct {
	// Pool backs the readiness probe.
	Pool *postgres.Pool

	// TxManager is shared by every repository.
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication and staff endpoints
	AuthService *auth.Service

	Location      *time.Location
	TaxRate       decimal.Decimal
	RoomSet       room.RoomSet
	FixedServices catalog.FixedServiceIDs
	BusinessHours tariff.BusinessHours

	// HolidayCalendar answers booking holiday checks. Nil falls back to
	// querying the holidays table.
	HolidayCalendar booking.Holidays

	// Archiver receives every exported workbook. Nil disables archiving.
	Archiver objectstore.Archiver

	// IdempotencyTTL is how long a completed key is replayed.
	IdempotencyTTL time.Duration

	// CORSOrigins enables CORS for the front office. Empty disables it.
	CORSOrigins []string

	// Debug switches gin to debug mode.
	Debug bool
}

// services are the domain services behind the routes.
type services struct {
	rooms     *room.Service
	catalog   *catalog.Manager
	customers *customer.Service
	holidays  *holiday.Service
	bookings  *booking.Service
	billing   *billing.Service
	revenue   *revenue.Service
	daySheets *operations.Service
}

func buildServices(cfg RouterConfig) (*services, error) {
	txm := cfg.TxManager
	loc := cfg.Location

	publisher := postgres.NewOutboxPublisher(txm)
	auditLog, err := postgres.NewAuditService(txm)
	if err != nil {
		return nil, fmt.Errorf("audit service: %w", err)
	}

	roomRepo := catalog_repo.NewRoomRepo(txm)
	chargeRepo := catalog_repo.NewChargeRepo(txm)
	bookingRepo := document_repo.NewBookingRepo(txm)
	itemRepo := document_repo.NewItemRepo(txm)

	svc := &services{
		rooms:     room.NewService(roomRepo, chargeRepo, txm, publisher, loc),
		catalog:   catalog.NewManager(catalog_repo.NewServiceRepo(txm), txm, loc),
		customers: customer.NewService(catalog_repo.NewCustomerRepo(txm), txm, loc),
		holidays:  holiday.NewService(catalog_repo.NewHolidayRepo(txm), txm, loc),
		revenue:   revenue.NewService(report_repo.NewRevenueRepo(txm, loc), loc),
		daySheets: operations.NewService(report_repo.NewOperationsRepo(txm), loc),
	}

	var closedDays booking.Holidays = svc.holidays
	if cfg.HolidayCalendar != nil {
		closedDays = cfg.HolidayCalendar
	}

	svc.bookings = booking.NewService(booking.Dependencies{
		Repo:       bookingRepo,
		Items:      itemRepo,
		Rooms:      svc.rooms,
		Holidays:   closedDays,
		Catalog:    svc.catalog,
		Customers:  svc.customers,
		Staff:      cfg.AuthService,
		Calculator: tariff.NewCalculator(cfg.BusinessHours, cfg.FixedServices),
		TxManager:  txm,
		Publisher:  publisher,
		Audit:      auditLog,
	}, booking.Config{
		Location:      loc,
		TaxRate:       cfg.TaxRate,
		RoomSet:       cfg.RoomSet,
		FixedServices: cfg.FixedServices,
	})

	svc.billing = billing.NewService(billing.Dependencies{
		Invoices:  document_repo.NewInvoiceRepo(txm),
		Items:     itemRepo,
		Bookings:  bookingRepo,
		Catalog:   svc.catalog,
		Staff:     cfg.AuthService,
		Numerator: numerator.New(txm),
		TxManager: txm,
		Publisher: publisher,
		Audit:     auditLog,
	}, loc, cfg.TaxRate)

	return svc, nil
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc, err := buildServices(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	if len(cfg.CORSOrigins) > 0 {
		router.Use(middleware.CORS(cfg.CORSOrigins))
	}
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler(cfg.Location)
	workbooks := handlers.NewWorkbookSender(cfg.Archiver)
	idem := middleware.Idempotency(postgres.NewIdempotencyStore(cfg.TxManager, cfg.IdempotencyTTL))

	api := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		public := api.Group("/auth")
		public.POST("/login", authHandler.Login)
		public.POST("/refresh", authHandler.Refresh)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator)) // 1. Validate JWT
		protected.Use(middleware.StaffContext())         // 2. Staff id on the request logger

		registerStaffRoutes(protected, authHandler)
		registerMasterDataRoutes(protected, base, svc, workbooks)
		registerBookingRoutes(protected, base, svc, idem)
		registerInvoiceRoutes(protected, base, svc, idem)
		registerReportRoutes(protected, base, svc, workbooks)
	}

	return router, nil
}

func registerStaffRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler) {
	rg.POST("/auth/logout", h.Logout)
	rg.GET("/me", h.Me)

	staffs := rg.Group("/staffs")
	staffs.GET("", h.ListStaff)
	staffs.POST("", h.CreateStaff)
	staffs.GET("/:id", h.GetStaff)
	staffs.PATCH("/:id", h.UpdateStaff)
}

// registerMasterDataRoutes registers rooms, tariffs, calendar, services and customers.
func registerMasterDataRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *services, workbooks *handlers.WorkbookSender) {
	// --- ROOMS ---
	{
		h := handlers.NewRoomHandler(base, svc.rooms, svc.bookings)
		RegisterMasterRoutes(rg.Group("/rooms"), h)

		charges := rg.Group("/room-charges")
		charges.GET("", h.ListCharges)
		charges.POST("", h.CreateCharge)
		charges.DELETE("/:id", h.DeleteCharge)

		rg.GET("/room-schedules", h.Schedules)
	}

	// --- HOLIDAYS ---
	{
		h := handlers.NewHolidayHandler(base, svc.holidays)
		holidays := rg.Group("/holidays")
		holidays.GET("", h.List)
		holidays.POST("", h.Register)
		holidays.POST("/delete", h.Delete)
		holidays.GET("/check", h.Check)
	}

	// --- SERVICES ---
	{
		h := handlers.NewServiceHandler(base, svc.catalog)
		RegisterMasterRoutes(rg.Group("/services"), h)
		rg.GET("/booking-detail-services", h.Availability)
	}

	// --- CUSTOMERS ---
	{
		h := handlers.NewCustomerHandler(base, svc.customers, workbooks)
		customers := rg.Group("/customers")
		RegisterMasterRoutes(customers, h)
		customers.POST("/export", h.Export)
	}
}

func registerBookingRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *services, idem gin.HandlerFunc) {
	h := handlers.NewBookingHandler(base, svc.bookings)

	bookings := rg.Group("/bookings")
	bookings.GET("", h.List)
	bookings.POST("", h.Save)
	bookings.GET("/:id", h.Get)

	details := rg.Group("/booking-details")
	details.POST("/validate", h.ValidateDetail)
	details.PATCH("", h.ChangeStatuses)
	details.GET("/:id", h.GetDetail)
	details.PATCH("/:id", h.EditDetail)
	details.POST("/:id/cancel", idem, h.Cancel)
	details.GET("/:id/price", h.Price)
}

func registerInvoiceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *services, idem gin.HandlerFunc) {
	h := handlers.NewInvoiceHandler(base, svc.billing)

	rg.POST("/invoice-items", h.ReconcileItems)
	rg.POST("/invoice-amounts", h.Amounts)
	rg.POST("/lobby-invoices", idem, h.CreateLobby)

	invoices := rg.Group("/invoices")
	invoices.GET("", h.List)
	invoices.POST("", idem, h.Create)
	invoices.GET("/:id", h.Get)
	invoices.PATCH("/:id", h.Update)
	invoices.DELETE("/:id", h.Delete)
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, svc *services, workbooks *handlers.WorkbookSender) {
	h := handlers.NewReportHandler(base, svc.revenue, workbooks)

	reports := rg.Group("/reports")
	reports.GET("/day-revenue", h.DayRevenue)
	reports.GET("/monthly-revenue", h.MonthlyRevenue)
	reports.GET("/month-revenue", h.MonthRevenue)
	reports.GET("/revenue-between-months", h.RevenueBetweenMonths)
	reports.GET("/services", h.ServiceSales)

	sheets := handlers.NewOperationsHandler(base, svc.daySheets, workbooks)
	reports.GET("/daily-business", sheets.DailyBusiness)
	rg.GET("/service-schedules", sheets.ServiceSchedules)
}

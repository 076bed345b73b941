// Package main provides a CLI tool for seeding the database with initial
// data: the first staff account and the fixed services whose ids the
// server expects in FIXED_SERVICE_*_ID.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/domain/auth"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/infrastructure/storage/postgres"
	"venuedesk/internal/infrastructure/storage/postgres/auth_repo"
	"venuedesk/internal/infrastructure/storage/postgres/catalog_repo"
	"venuedesk/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")
	txm := postgres.NewTxManager(pool)

	authService := auth.NewService(
		auth_repo.NewStaffRepo(txm),
		auth_repo.NewTokenRepo(txm),
		txm,
		nil,
		auth.DefaultServiceConfig(),
	)
	if err := seedAdminStaff(ctx, authService, log); err != nil {
		log.Fatalw("failed to seed admin staff", "error", err)
	}

	if os.Getenv("SEED_FIXED_SERVICES") == "true" {
		loc, err := time.LoadLocation(getEnv("TIMEZONE", "Asia/Tokyo"))
		if err != nil {
			log.Fatalw("invalid TIMEZONE", "error", err)
		}
		manager := catalog.NewManager(catalog_repo.NewServiceRepo(txm), txm, loc)
		ids, err := seedFixedServices(ctx, manager, time.Now())
		if err != nil {
			log.Fatalw("failed to seed fixed services", "error", err)
		}
		printFixedServiceEnv(ids)
	}

	log.Info("seeding completed successfully")
}

func seedAdminStaff(ctx context.Context, svc *auth.Service, log *logger.Logger) error {
	in := auth.StaffInput{
		Email:    getEnv("ADMIN_EMAIL", "admin@venuedesk.local"),
		Name:     getEnv("ADMIN_NAME", "管理者"),
		Password: getEnv("ADMIN_PASSWORD", "Admin123!"),
	}

	staff, err := svc.CreateStaff(ctx, in)
	if apperror.HasCode(err, apperror.CodeDuplicate) {
		log.Infow("admin staff already exists", "email", in.Email)
		return nil
	}
	if err != nil {
		return err
	}

	log.Infow("admin staff created", "email", staff.Email, "staff_id", staff.ID)
	return nil
}

// ServiceCreator stores a catalog service.
type ServiceCreator interface {
	Create(ctx context.Context, s *catalog.Service) error
}

// fixedServices are the services the booking workflow generates items for.
func fixedServices(now time.Time) (catalog.FixedServiceIDs, []*catalog.Service) {
	room := func(name string, typ catalog.ServiceType) *catalog.Service {
		return catalog.NewService(name, typ, catalog.SubtotalServiceFee, catalog.LocationMeetingRoom, decimal.Zero, now)
	}
	basic := room("基本料金", catalog.TypeBasicFee)
	extension := room("延長料金", catalog.TypeOvertimeFee)
	allDay := room("終日料金", catalog.TypeBasicFee)
	incurred := room("時間外料金", catalog.TypeOvertimeFee)
	cancel := catalog.NewService("キャンセル料", catalog.TypeCancelFee, catalog.SubtotalNonTaxable, catalog.LocationMeetingRoom, decimal.Zero, now)

	ids := catalog.FixedServiceIDs{
		BasicFee:     basic.ID,
		ExtensionFee: extension.ID,
		AllDayFee:    allDay.ID,
		IncurredFee:  incurred.ID,
		CancelFee:    cancel.ID,
	}
	return ids, []*catalog.Service{basic, extension, allDay, incurred, cancel}
}

func seedFixedServices(ctx context.Context, creator ServiceCreator, now time.Time) (catalog.FixedServiceIDs, error) {
	ids, services := fixedServices(now)
	for _, s := range services {
		if err := creator.Create(ctx, s); err != nil {
			return ids, fmt.Errorf("create %s: %w", s.Name, err)
		}
	}
	return ids, nil
}

func printFixedServiceEnv(ids catalog.FixedServiceIDs) {
	fmt.Printf("FIXED_SERVICE_BASIC_FEE_ID=%s\n", ids.BasicFee)
	fmt.Printf("FIXED_SERVICE_EXTENSION_FEE_ID=%s\n", ids.ExtensionFee)
	fmt.Printf("FIXED_SERVICE_ALL_DAY_FEE_ID=%s\n", ids.AllDayFee)
	fmt.Printf("FIXED_SERVICE_INCURRED_FEE_ID=%s\n", ids.IncurredFee)
	fmt.Printf("FIXED_SERVICE_CANCEL_FEE_ID=%s\n", ids.CancelFee)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/infrastructures"
	"github.com/safatanc/feastly-core/pkg/loyalty"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	coupons *CouponService
	points  *PointsService
	rewards *RewardService
	audit   *AuditService
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:feastly_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := infrastructures.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	validator := infrastructures.NewValidator()
	metrics := infrastructures.NewMetricsWithRegisterer(prometheus.NewRegistry())
	audit := NewAuditService(db)
	points := NewPointsService(db, validator, loyalty.DefaultLadder(), metrics)

	return &testEnv{
		db:      db,
		coupons: NewCouponService(db, validator, audit, metrics),
		points:  points,
		rewards: NewRewardService(db, validator, audit, points),
		audit:   audit,
	}
}

func (e *testEnv) setClock(now time.Time) {
	e.coupons.clock = func() time.Time { return now }
}

func (e *testEnv) createCoupon(t *testing.T, req models.CouponCreateRequest) *models.Coupon {
	t.Helper()
	if req.Title == "" {
		req.Title = "Test coupon"
	}
	coupon, err := e.coupons.CreateCoupon(context.Background(), &req)
	if err != nil {
		t.Fatalf("create coupon: %v", err)
	}
	return coupon
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newUserID() string {
	return uuid.NewString()
}

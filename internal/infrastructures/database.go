package infrastructures

import (
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase() *gorm.DB {
	db, err := gorm.Open(postgres.Open(Config.DATABASE_URL), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	if Config.AUTO_MIGRATE {
		if err := Migrate(db); err != nil {
			logrus.Fatalf("failed to migrate database: %v", err)
		}
	}

	return db
}

// Migrate creates or updates every table owned by the service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Coupon{},
		&models.UserCoupon{},
		&models.CouponUsage{},
		&models.UserPoints{},
		&models.PointTransaction{},
		&models.Reward{},
		&models.AuditLog{},
	)
}

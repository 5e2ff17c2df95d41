package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/db"
	"gorm.io/gorm"
)

type pricingRepository struct {
	db *gorm.DB
}

// NewPricingRepository 创建并返回一个新的 pricingRepository 实例。
func NewPricingRepository(db *gorm.DB) domain.PricingRepository {
	return &pricingRepository{db: db}
}

// AutoMigrate 建表
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&PricingResultModel{})
}

func (r *pricingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, r.db, fn)
}

func (r *pricingRepository) Save(ctx context.Context, res *domain.PricingResult) error {
	model := toPricingResultModel(res)
	if model == nil {
		return nil
	}
	if err := db.Conn(ctx, r.db).Create(model).Error; err != nil {
		return err
	}
	res.ID = model.ID
	res.CreatedAt = model.CreatedAt
	return nil
}

func (r *pricingRepository) GetLatest(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	var m PricingResultModel
	err := db.Conn(ctx, r.db).
		Where("symbol = ?", symbol).
		Order("calculated_at desc, id desc").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return toPricingResult(&m), nil
}

func (r *pricingRepository) GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error) {
	var models []PricingResultModel
	if err := db.Conn(ctx, r.db).
		Where("symbol = ?", symbol).
		Order("calculated_at desc, id desc").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.PricingResult, len(models))
	for i := range models {
		res[i] = toPricingResult(&models[i])
	}
	return res, nil
}

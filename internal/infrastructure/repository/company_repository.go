package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
	"github.com/ramindav/outreach-crm/internal/infrastructure/db/models"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) FindByDomain(ctx context.Context, companyDomain string) (*domain.Company, error) {
	var row models.Company
	err := r.db.WithContext(ctx).
		First(&row, "LOWER(domain) = ?", strings.ToLower(companyDomain)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find company by domain: %w", err)
	}
	c := toDomainCompany(row)
	return &c, nil
}

func (r *CompanyRepository) FindByName(ctx context.Context, name string) (*domain.Company, error) {
	var row models.Company
	err := r.db.WithContext(ctx).
		First(&row, "LOWER(name) = ?", strings.ToLower(name)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find company by name: %w", err)
	}
	c := toDomainCompany(row)
	return &c, nil
}

func (r *CompanyRepository) Create(ctx context.Context, company domain.Company) (domain.Company, error) {
	row := models.Company{
		ID:       uuid.NewString(),
		Name:     company.Name,
		Domain:   strings.ToLower(company.Domain),
		Industry: company.Industry,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Company{}, fmt.Errorf("create company: %w", err)
	}
	return toDomainCompany(row), nil
}

func (r *CompanyRepository) List(ctx context.Context, limit, offset int) ([]domain.Company, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Company{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	var rows []models.Company
	err := r.db.WithContext(ctx).
		Order("name").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}

	out := make([]domain.Company, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainCompany(row))
	}
	return out, total, nil
}

func toDomainCompany(row models.Company) domain.Company {
	return domain.Company{
		ID:        row.ID,
		Name:      row.Name,
		Domain:    row.Domain,
		Industry:  row.Industry,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

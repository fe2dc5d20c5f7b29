package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
	"github.com/ramindav/outreach-crm/internal/infrastructure/db/models"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) FindByNormalizedEmail(ctx context.Context, email string) (*domain.Contact, error) {
	return r.findOne(ctx, "normalized_email = ?", email)
}

func (r *ContactRepository) FindByNormalizedPhone(ctx context.Context, phone string) (*domain.Contact, error) {
	return r.findOne(ctx, "normalized_phone = ?", phone)
}

func (r *ContactRepository) findOne(ctx context.Context, condition string, value string) (*domain.Contact, error) {
	var row models.Contact
	err := r.db.WithContext(ctx).First(&row, condition, value).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find contact: %w", err)
	}
	c := toDomainContact(row)
	return &c, nil
}

func (r *ContactRepository) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	row := toContactModel(c)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return toDomainContact(row), nil
}

func (r *ContactRepository) Update(ctx context.Context, c domain.Contact) error {
	row := toContactModel(c)
	result := r.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", c.ID).Updates(&row)
	if result.Error != nil {
		return fmt.Errorf("update contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	var row models.Contact
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	c := toDomainContact(row)
	return &c, nil
}

func (r *ContactRepository) List(ctx context.Context, query string, limit, offset int) ([]domain.Contact, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Contact{})
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR normalized_email LIKE ? OR LOWER(company_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	var rows []models.Contact
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}

	out := make([]domain.Contact, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainContact(row))
	}
	return out, total, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("delete contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}

func toContactModel(c domain.Contact) models.Contact {
	return models.Contact{
		ID:              c.ID,
		CompanyID:       c.CompanyID,
		Name:            c.Name,
		Role:            c.Role,
		Email:           c.Email,
		Phone:           c.Phone,
		NormalizedEmail: c.NormalizedEmail,
		NormalizedPhone: c.NormalizedPhone,
		LinkedIn:        c.LinkedIn,
		LeadSource:      c.LeadSource,
		CompanyName:     c.CompanyName,
		City:            c.City,
		Industry:        c.Industry,
		Sheet:           c.Sheet,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toDomainContact(row models.Contact) domain.Contact {
	return domain.Contact{
		ID:              row.ID,
		CompanyID:       row.CompanyID,
		Name:            row.Name,
		Role:            row.Role,
		Email:           row.Email,
		Phone:           row.Phone,
		NormalizedEmail: row.NormalizedEmail,
		NormalizedPhone: row.NormalizedPhone,
		LinkedIn:        row.LinkedIn,
		LeadSource:      row.LeadSource,
		CompanyName:     row.CompanyName,
		City:            row.City,
		Industry:        row.Industry,
		Sheet:           row.Sheet,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

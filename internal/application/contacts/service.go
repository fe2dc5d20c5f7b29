package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
)

type contactStore interface {
	contactWriter
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	List(ctx context.Context, query string, limit, offset int) ([]domain.Contact, int64, error)
	Delete(ctx context.Context, id string) error
}

type companyLister interface {
	List(ctx context.Context, limit, offset int) ([]domain.Company, int64, error)
}

// Service is the thin CRUD layer over the contact store. Writes go through
// the same normalization the import pipeline uses, so a hand-entered contact
// dedups against imported ones.
type Service struct {
	store     contactStore
	companies companyLister
	resolver  companyResolver
	policy    domain.PhonePolicy
}

func NewService(store contactStore, companies companyLister, resolver companyResolver, policy domain.PhonePolicy) *Service {
	return &Service{store: store, companies: companies, resolver: resolver, policy: policy}
}

type ContactInput struct {
	Name       string
	Role       string
	Email      string
	Phone      string
	LinkedIn   string
	LeadSource string
	Company    string
	City       string
	Industry   string
}

func (s *Service) Create(ctx context.Context, in ContactInput) (domain.Contact, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Contact{}, ErrMissingName
	}

	row := domain.NormalizeRow(domain.RawRow{
		Index: 1,
		Sheet: "manual",
		Fields: map[string]string{
			"name":        in.Name,
			"role":        in.Role,
			"email":       in.Email,
			"phone":       in.Phone,
			"linkedin":    in.LinkedIn,
			"lead_source": in.LeadSource,
			"company":     in.Company,
			"city":        in.City,
			"industry":    in.Industry,
		},
	}, s.policy)

	if row.CompanyName != "" || row.Domain != "" {
		companyID, err := s.resolver.Resolve(ctx, row.CompanyName, row.Domain, row.Industry)
		if err != nil {
			return domain.Contact{}, err
		}
		row.CompanyID = companyID
	}

	created, err := s.store.Create(ctx, contactFromRow(row))
	if err != nil {
		return domain.Contact{}, fmt.Errorf("create contact: %w", err)
	}
	return created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Contact, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			return domain.Contact{}, ErrContactNotFound
		}
		return domain.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return *c, nil
}

func (s *Service) List(ctx context.Context, query string, limit, offset int) ([]domain.Contact, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.List(ctx, strings.TrimSpace(query), limit, offset)
}

func (s *Service) Update(ctx context.Context, id string, in ContactInput) (domain.Contact, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			return domain.Contact{}, ErrContactNotFound
		}
		return domain.Contact{}, fmt.Errorf("get contact: %w", err)
	}

	row := domain.NormalizeRow(domain.RawRow{
		Index: 1,
		Sheet: existing.Sheet,
		Fields: map[string]string{
			"name":        in.Name,
			"role":        in.Role,
			"email":       in.Email,
			"phone":       in.Phone,
			"linkedin":    in.LinkedIn,
			"lead_source": in.LeadSource,
			"company":     in.Company,
			"city":        in.City,
			"industry":    in.Industry,
		},
	}, s.policy)

	merged := mergeContact(*existing, row)
	if err := s.store.Update(ctx, merged); err != nil {
		return domain.Contact{}, fmt.Errorf("update contact: %w", err)
	}
	return merged, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			return ErrContactNotFound
		}
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

func (s *Service) ListCompanies(ctx context.Context, limit, offset int) ([]domain.Company, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.companies.List(ctx, limit, offset)
}

package contacts

import (
	"context"
	"fmt"

	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
)

type companyStore interface {
	FindByDomain(ctx context.Context, companyDomain string) (*domain.Company, error)
	FindByName(ctx context.Context, name string) (*domain.Company, error)
	Create(ctx context.Context, company domain.Company) (domain.Company, error)
}

// CompanyResolver finds or creates the company a contact belongs to.
// Domain is the stronger signal and is tried first; the name lookup is a
// fallback for rows whose email domain is unknown. The check-then-create
// window means two concurrent imports can still create the same company
// twice; that duplicate is accepted rather than serialized.
type CompanyResolver struct {
	store companyStore
}

func NewCompanyResolver(store companyStore) *CompanyResolver {
	return &CompanyResolver{store: store}
}

// Resolve returns the id of the matching or newly created company, or nil
// when the row carries neither a name nor a domain.
func (r *CompanyResolver) Resolve(ctx context.Context, name, companyDomain, industry string) (*string, error) {
	if name == "" && companyDomain == "" {
		return nil, nil
	}

	if companyDomain != "" {
		existing, err := r.store.FindByDomain(ctx, companyDomain)
		if err != nil {
			return nil, fmt.Errorf("find company by domain: %w", err)
		}
		if existing != nil {
			return &existing.ID, nil
		}
	}

	if name != "" {
		existing, err := r.store.FindByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("find company by name: %w", err)
		}
		if existing != nil {
			return &existing.ID, nil
		}
	}

	created, err := r.store.Create(ctx, domain.Company{
		Name:     name,
		Domain:   companyDomain,
		Industry: industry,
	})
	if err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return &created.ID, nil
}

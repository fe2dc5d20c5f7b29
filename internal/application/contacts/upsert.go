package contacts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
	"github.com/ramindav/outreach-crm/internal/domain/imports"
)

type contactWriter interface {
	FindByNormalizedEmail(ctx context.Context, email string) (*domain.Contact, error)
	FindByNormalizedPhone(ctx context.Context, phone string) (*domain.Contact, error)
	Create(ctx context.Context, c domain.Contact) (domain.Contact, error)
	Update(ctx context.Context, c domain.Contact) error
}

type companyResolver interface {
	Resolve(ctx context.Context, name, companyDomain, industry string) (*string, error)
}

type UpsertOptions struct {
	UpdateExisting bool
}

// UpsertResult is the per-call accounting of a batch (or batch slice).
// Report holds exactly one entry per processed row, in input order.
type UpsertResult struct {
	Imported int64
	Skipped  int64
	Failed   int64
	Errors   []string
	Contacts []domain.Contact
	Report   []imports.ReportEntry
}

// UpsertEngine writes normalized rows into the contact store, one row at a
// time so a failing row never takes its neighbors down with it.
type UpsertEngine struct {
	store    contactWriter
	resolver companyResolver
}

func NewUpsertEngine(store contactWriter, resolver companyResolver) *UpsertEngine {
	return &UpsertEngine{store: store, resolver: resolver}
}

// UpsertContacts processes the whole batch in one call.
func (e *UpsertEngine) UpsertContacts(ctx context.Context, rows []domain.NormalizedRow, opts UpsertOptions) UpsertResult {
	return e.NewBatch(opts).Process(ctx, rows)
}

// Batch is one import run's write session. Rows written earlier in the same
// batch are indexed here so a later row with the same key is recognized as a
// duplicate of the in-flight insert, not written a second time. A Batch is
// owned by a single goroutine.
type Batch struct {
	engine    *UpsertEngine
	opts      UpsertOptions
	seenEmail map[string]*domain.Contact
	seenPhone map[string]*domain.Contact
}

func (e *UpsertEngine) NewBatch(opts UpsertOptions) *Batch {
	return &Batch{
		engine:    e,
		opts:      opts,
		seenEmail: make(map[string]*domain.Contact),
		seenPhone: make(map[string]*domain.Contact),
	}
}

// Process writes the given rows and returns the outcome for exactly those
// rows. A worker feeding the batch in slices accumulates results itself.
func (b *Batch) Process(ctx context.Context, rows []domain.NormalizedRow) UpsertResult {
	var result UpsertResult
	for _, row := range rows {
		entry := b.processRow(ctx, row, &result)
		result.Report = append(result.Report, entry)
	}
	return result
}

func (b *Batch) processRow(ctx context.Context, row domain.NormalizedRow, result *UpsertResult) imports.ReportEntry {
	entry := imports.ReportEntry{
		Index: row.Raw.Index,
		Name:  row.Name,
		Email: row.Email,
	}

	if !row.HasIdentifier() {
		result.Skipped++
		entry.Status = imports.ReportNotOK
		entry.Message = "missing email and phone"
		return entry
	}

	if row.CompanyID == nil && (row.CompanyName != "" || row.Domain != "") {
		companyID, err := b.engine.resolver.Resolve(ctx, row.CompanyName, row.Domain, row.Industry)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.Raw.Index, err))
			entry.Status = imports.ReportNotOK
			entry.Message = err.Error()
			return entry
		}
		row.CompanyID = companyID
	}

	// Authoritative re-check at write time: preview-time classification may
	// be stale, and rows written earlier in this batch must be visible.
	existing, err := b.findExisting(ctx, row)
	if err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.Raw.Index, err))
		entry.Status = imports.ReportNotOK
		entry.Message = err.Error()
		return entry
	}

	if existing != nil {
		if !b.opts.UpdateExisting {
			result.Skipped++
			entry.Status = imports.ReportNotOK
			entry.Message = "duplicate, not updated"
			return entry
		}

		updated := mergeContact(*existing, row)
		if err := b.engine.store.Update(ctx, updated); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.Raw.Index, err))
			entry.Status = imports.ReportNotOK
			entry.Message = err.Error()
			return entry
		}
		b.remember(&updated)
		result.Imported++
		result.Contacts = append(result.Contacts, updated)
		entry.Status = imports.ReportOK
		entry.Message = "updated"
		return entry
	}

	created, err := b.engine.store.Create(ctx, contactFromRow(row))
	if err != nil {
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.Raw.Index, err))
		entry.Status = imports.ReportNotOK
		entry.Message = err.Error()
		return entry
	}
	b.remember(&created)
	result.Imported++
	result.Contacts = append(result.Contacts, created)
	entry.Status = imports.ReportOK
	entry.Message = "imported"
	return entry
}

func (b *Batch) findExisting(ctx context.Context, row domain.NormalizedRow) (*domain.Contact, error) {
	if row.NormalizedEmail != "" {
		if c, ok := b.seenEmail[row.NormalizedEmail]; ok {
			return c, nil
		}
		c, err := b.engine.store.FindByNormalizedEmail(ctx, row.NormalizedEmail)
		if err != nil {
			return nil, fmt.Errorf("find contact by email: %w", err)
		}
		if c != nil {
			return c, nil
		}
	}
	if row.NormalizedPhone != "" {
		if c, ok := b.seenPhone[row.NormalizedPhone]; ok {
			return c, nil
		}
		c, err := b.engine.store.FindByNormalizedPhone(ctx, row.NormalizedPhone)
		if err != nil {
			return nil, fmt.Errorf("find contact by phone: %w", err)
		}
		if c != nil {
			return c, nil
		}
	}
	return nil, nil
}

func (b *Batch) remember(c *domain.Contact) {
	if c.NormalizedEmail != "" {
		b.seenEmail[c.NormalizedEmail] = c
	}
	if c.NormalizedPhone != "" {
		b.seenPhone[c.NormalizedPhone] = c
	}
}

func contactFromRow(row domain.NormalizedRow) domain.Contact {
	return domain.Contact{
		ID:              uuid.NewString(),
		CompanyID:       row.CompanyID,
		Name:            row.Name,
		Role:            row.Role,
		Email:           row.NormalizedEmail,
		Phone:           row.Phone,
		NormalizedEmail: row.NormalizedEmail,
		NormalizedPhone: row.NormalizedPhone,
		LinkedIn:        row.LinkedIn,
		LeadSource:      row.LeadSource,
		CompanyName:     row.CompanyName,
		City:            row.City,
		Industry:        row.Industry,
		Sheet:           row.Raw.Sheet,
	}
}

// mergeContact overlays the row's non-empty fields on the stored record.
// Fields the row does not carry keep their stored values.
func mergeContact(existing domain.Contact, row domain.NormalizedRow) domain.Contact {
	merged := existing
	if row.Name != "" {
		merged.Name = row.Name
	}
	if row.Role != "" {
		merged.Role = row.Role
	}
	if row.NormalizedEmail != "" {
		merged.Email = row.NormalizedEmail
		merged.NormalizedEmail = row.NormalizedEmail
	}
	if row.Phone != "" {
		merged.Phone = row.Phone
		merged.NormalizedPhone = row.NormalizedPhone
	}
	if row.LinkedIn != "" {
		merged.LinkedIn = row.LinkedIn
	}
	if row.LeadSource != "" {
		merged.LeadSource = row.LeadSource
	}
	if row.CompanyName != "" {
		merged.CompanyName = row.CompanyName
	}
	if row.City != "" {
		merged.City = row.City
	}
	if row.Industry != "" {
		merged.Industry = row.Industry
	}
	if row.CompanyID != nil {
		merged.CompanyID = row.CompanyID
	}
	if row.Raw.Sheet != "" {
		merged.Sheet = row.Raw.Sheet
	}
	return merged
}

package contacts

import (
	"context"
	"fmt"

	domain "github.com/ramindav/outreach-crm/internal/domain/contact"
)

type matchLookup interface {
	FindIDsByNormalizedEmails(ctx context.Context, emails []string) (map[string]string, error)
	FindIDsByNormalizedPhones(ctx context.Context, phones []string) (map[string]string, error)
}

// Matcher classifies incoming rows as duplicates of stored contacts or
// uniques. Lookups are batched: one round trip per key set, not per row.
type Matcher struct {
	store matchLookup
}

func NewMatcher(store matchLookup) *Matcher {
	return &Matcher{store: store}
}

// FindDuplicates splits rows into duplicates (with match reason and the
// matched contact id) and uniques. An email hit wins outright; the phone key
// is only consulted when the email key is absent or missed. Rows without any
// identifier are always unique.
func (m *Matcher) FindDuplicates(ctx context.Context, rows []domain.NormalizedRow) ([]domain.MatchResult, []domain.NormalizedRow, error) {
	emailSet := make(map[string]struct{})
	phoneSet := make(map[string]struct{})
	for _, row := range rows {
		if row.NormalizedEmail != "" {
			emailSet[row.NormalizedEmail] = struct{}{}
		}
		if row.NormalizedPhone != "" {
			phoneSet[row.NormalizedPhone] = struct{}{}
		}
	}

	byEmail, err := m.lookupEmails(ctx, emailSet)
	if err != nil {
		return nil, nil, err
	}
	byPhone, err := m.lookupPhones(ctx, phoneSet)
	if err != nil {
		return nil, nil, err
	}

	var duplicates []domain.MatchResult
	var uniques []domain.NormalizedRow
	for _, row := range rows {
		if row.NormalizedEmail != "" {
			if id, ok := byEmail[row.NormalizedEmail]; ok {
				duplicates = append(duplicates, domain.MatchResult{
					Row:              row,
					IsDuplicate:      true,
					MatchType:        domain.MatchEmail,
					MatchedContactID: id,
				})
				continue
			}
		}
		if row.NormalizedPhone != "" {
			if id, ok := byPhone[row.NormalizedPhone]; ok {
				duplicates = append(duplicates, domain.MatchResult{
					Row:              row,
					IsDuplicate:      true,
					MatchType:        domain.MatchPhone,
					MatchedContactID: id,
				})
				continue
			}
		}
		uniques = append(uniques, row)
	}

	return duplicates, uniques, nil
}

func (m *Matcher) lookupEmails(ctx context.Context, set map[string]struct{}) (map[string]string, error) {
	if len(set) == 0 {
		return map[string]string{}, nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	found, err := m.store.FindIDsByNormalizedEmails(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("lookup contacts by email: %w", err)
	}
	return found, nil
}

func (m *Matcher) lookupPhones(ctx context.Context, set map[string]struct{}) (map[string]string, error) {
	if len(set) == 0 {
		return map[string]string{}, nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	found, err := m.store.FindIDsByNormalizedPhones(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("lookup contacts by phone: %w", err)
	}
	return found, nil
}

package networth

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/folio/internal/domain"
)

// Repository persists the net-worth history.
type Repository interface {
	List() ([]domain.NetWorthEntry, error)
	Replace(entries []domain.NetWorthEntry) error
}

// Service records and reads net-worth history.
type Service struct {
	repo Repository
}

// NewService creates a net-worth Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// utcDate normalizes a timestamp to midnight UTC.
func utcDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Record captures the allocation's totals for the given day. Recording twice
// on the same day replaces that day's entry.
func (s *Service) Record(date time.Time, alloc domain.PortfolioAllocation) (domain.NetWorthEntry, error) {
	entry := domain.NetWorthEntry{
		Date:         utcDate(date),
		TotalValue:   alloc.TotalValue,
		NonCashValue: alloc.NonCashValue,
		ByClass:      map[domain.AssetClass]decimal.Decimal{},
	}
	for _, cs := range alloc.ClassSummaries {
		entry.ByClass[cs.AssetClass] = cs.CurrentValue
	}

	entries, err := s.repo.List()
	if err != nil {
		return domain.NetWorthEntry{}, fmt.Errorf("loading net-worth history: %w", err)
	}

	replaced := false
	for i := range entries {
		if entries[i].Date.Equal(entry.Date) {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	sortEntries(entries)

	if err := s.repo.Replace(entries); err != nil {
		return domain.NetWorthEntry{}, fmt.Errorf("saving net-worth history: %w", err)
	}
	return entry, nil
}

// History returns all entries, oldest first.
func (s *Service) History() ([]domain.NetWorthEntry, error) {
	entries, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("loading net-worth history: %w", err)
	}
	sortEntries(entries)
	return entries, nil
}

// Change returns the absolute and percentage change between the two most
// recent entries. ok is false with fewer than two entries.
func (s *Service) Change() (delta, percent decimal.Decimal, ok bool, err error) {
	entries, err := s.History()
	if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}
	if len(entries) < 2 {
		return decimal.Zero, decimal.Zero, false, nil
	}

	prev := entries[len(entries)-2]
	last := entries[len(entries)-1]
	delta = last.TotalValue.Sub(prev.TotalValue)
	percent = domain.PercentOf(delta, prev.TotalValue)
	return delta, percent, true, nil
}

func sortEntries(entries []domain.NetWorthEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}

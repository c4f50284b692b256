// Package service is the form boundary: it normalizes and validates input,
// rejects duplicates, and only then calls the repository adapters.
package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"linkdesk/internal/domain"
	"linkdesk/internal/matching"
	"linkdesk/internal/validation"
)

// Repository is the adapter contract the services depend on.
type Repository[T any] interface {
	FetchAll(ctx context.Context, forceRefresh bool) ([]T, error)
	Add(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id string) error
}

// DomainService manages client domains.
type DomainService struct {
	repo Repository[domain.Domain]
	log  logrus.FieldLogger
}

// NewDomainService wraps repo.
func NewDomainService(repo Repository[domain.Domain], logger logrus.FieldLogger) *DomainService {
	return &DomainService{
		repo: repo,
		log:  logger.WithFields(logrus.Fields{"component": "service", "entity": "domain"}),
	}
}

// List returns the domains passing f.
func (s *DomainService) List(ctx context.Context, f matching.DomainFilter, refresh bool) ([]domain.Domain, error) {
	all, err := s.repo.FetchAll(ctx, refresh)
	if err != nil {
		return nil, err
	}
	return matching.FilterDomains(all, f), nil
}

// Get returns the domain with id, archived or not.
func (s *DomainService) Get(ctx context.Context, id string) (domain.Domain, error) {
	all, err := s.repo.FetchAll(ctx, false)
	if err != nil {
		return domain.Domain{}, err
	}
	for _, d := range all {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.Domain{}, domain.ErrNotFound
}

// Facets returns the filter options for the domain list, archived domains excluded.
func (s *DomainService) Facets(ctx context.Context) (matching.DomainFacets, error) {
	all, err := s.repo.FetchAll(ctx, false)
	if err != nil {
		return matching.DomainFacets{}, err
	}
	return matching.FacetsForDomains(matching.FilterDomains(all, matching.DomainFilter{})), nil
}

// Create adds a new domain.
func (s *DomainService) Create(ctx context.Context, d domain.Domain) (domain.Domain, error) {
	d.ID = ""
	if err := s.check(ctx, &d); err != nil {
		return domain.Domain{}, err
	}
	return s.repo.Add(ctx, d)
}

// Update replaces the domain with id.
func (s *DomainService) Update(ctx context.Context, id string, d domain.Domain) (domain.Domain, error) {
	d.ID = id
	if err := s.check(ctx, &d); err != nil {
		return domain.Domain{}, err
	}
	return s.repo.Update(ctx, d)
}

// SetArchived toggles whether the domain is hidden from lists and matching.
func (s *DomainService) SetArchived(ctx context.Context, id string, archived bool) (domain.Domain, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return domain.Domain{}, err
	}
	d.Archived = archived
	s.log.WithFields(logrus.Fields{"id": id, "archived": archived}).Info("Changing archive state")
	return s.repo.Update(ctx, d)
}

// Delete removes the domain with id.
func (s *DomainService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// check normalizes d in place, validates it and runs the duplicate pre-flight.
func (s *DomainService) check(ctx context.Context, d *domain.Domain) error {
	d.Normalize()
	d.Notes = strings.TrimSpace(d.Notes)
	if err := validation.Domain(*d).Err(); err != nil {
		s.log.WithError(err).Debug("Rejected domain input")
		return err
	}

	all, err := s.repo.FetchAll(ctx, false)
	if err != nil {
		return err
	}
	for _, existing := range all {
		if existing.ID != d.ID && strings.EqualFold(existing.Name, d.Name) {
			s.log.WithField("name", d.Name).Warn("Duplicate domain name")
			return &domain.DuplicateError{Field: "name", Value: d.Name}
		}
	}
	return nil
}

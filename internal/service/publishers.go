package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"linkdesk/internal/domain"
	"linkdesk/internal/matching"
	"linkdesk/internal/validation"
)

// PublisherService manages publishers and matches them against domains.
type PublisherService struct {
	repo    Repository[domain.Publisher]
	domains *DomainService
	log     logrus.FieldLogger
}

// NewPublisherService wraps repo. domains resolves match targets.
func NewPublisherService(repo Repository[domain.Publisher], domains *DomainService, logger logrus.FieldLogger) *PublisherService {
	return &PublisherService{
		repo:    repo,
		domains: domains,
		log:     logger.WithFields(logrus.Fields{"component": "service", "entity": "publisher"}),
	}
}

// Search returns the publishers satisfying c, in store order.
func (s *PublisherService) Search(ctx context.Context, c matching.Criteria, refresh bool) ([]domain.Publisher, error) {
	all, err := s.repo.FetchAll(ctx, refresh)
	if err != nil {
		return nil, err
	}
	return matching.FilterPublishers(all, c), nil
}

// Get returns the publisher with id.
func (s *PublisherService) Get(ctx context.Context, id string) (domain.Publisher, error) {
	all, err := s.repo.FetchAll(ctx, false)
	if err != nil {
		return domain.Publisher{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Publisher{}, domain.ErrNotFound
}

// Facets returns the filter options for the publisher list.
func (s *PublisherService) Facets(ctx context.Context) (matching.PublisherFacets, error) {
	all, err := s.repo.FetchAll(ctx, false)
	if err != nil {
		return matching.PublisherFacets{}, err
	}
	return matching.FacetsForPublishers(all), nil
}

// MatchDomain returns the domain with domainID and the publishers meeting its
// derived criteria after applying o. Archived domains cannot be matched.
func (s *PublisherService) MatchDomain(ctx context.Context, domainID string, o matching.Overrides) (domain.Domain, []domain.Publisher, error) {
	d, err := s.domains.Get(ctx, domainID)
	if err != nil {
		return domain.Domain{}, nil, err
	}
	if d.Archived {
		return domain.Domain{}, nil, &domain.ValidationError{Fields: map[string]string{"domainId": "refers to an archived domain"}}
	}

	criteria := o.Apply(matching.ForDomain(d))
	matches, err := s.Search(ctx, criteria, false)
	if err != nil {
		return domain.Domain{}, nil, err
	}
	s.log.WithFields(logrus.Fields{"domain": d.Name, "matches": len(matches)}).Info("Matched publishers")
	return d, matches, nil
}

// MatchDomainName is MatchDomain keyed by host name instead of id.
func (s *PublisherService) MatchDomainName(ctx context.Context, name string, o matching.Overrides) (domain.Domain, []domain.Publisher, error) {
	host := domain.NormalizeHost(name)
	active, err := s.domains.List(ctx, matching.DomainFilter{}, false)
	if err != nil {
		return domain.Domain{}, nil, err
	}
	for _, d := range active {
		if strings.EqualFold(d.Name, host) {
			return s.MatchDomain(ctx, d.ID, o)
		}
	}
	return domain.Domain{}, nil, domain.ErrNotFound
}

// Create adds a new publisher.
func (s *PublisherService) Create(ctx context.Context, p domain.Publisher) (domain.Publisher, error) {
	p.ID = ""
	if err := s.check(ctx, &p); err != nil {
		return domain.Publisher{}, err
	}
	return s.repo.Add(ctx, p)
}

// Update replaces the publisher with id.
func (s *PublisherService) Update(ctx context.Context, id string, p domain.Publisher) (domain.Publisher, error) {
	p.ID = id
	if err := s.check(ctx, &p); err != nil {
		return domain.Publisher{}, err
	}
	return s.repo.Update(ctx, p)
}

// Delete removes the publisher with id.
func (s *PublisherService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *PublisherService) check(ctx context.Context, p *domain.Publisher) error {
	p.Normalize()
	if err := validation.Publisher(*p).Err(); err != nil {
		s.log.WithError(err).Debug("Rejected publisher input")
		return err
	}

	all, err := s.repo.FetchAll(ctx, false)
	if err != nil {
		return err
	}
	for _, existing := range all {
		if existing.ID != p.ID && strings.EqualFold(existing.DomainName, p.DomainName) {
			s.log.WithField("domainName", p.DomainName).Warn("Duplicate publisher domain")
			return &domain.DuplicateError{Field: "domainName", Value: p.DomainName}
		}
	}
	return nil
}

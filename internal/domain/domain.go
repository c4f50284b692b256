package domain

// Domain is a client website with link-building requirements.
type Domain struct {
	// ID is assigned by the store on insert.
	ID string `json:"id"`

	// Name is the normalized host name (no scheme, www or trailing slash).
	Name string `json:"name" validate:"required,hostname_shape"`

	Niches   Set `json:"niches" validate:"required,min=1,dive,required"`
	Keywords Set `json:"keywords" validate:"required,min=1,dive,required"`

	// Archived domains are hidden from lists and from matching, not deleted.
	Archived bool   `json:"archived"`
	Notes    string `json:"notes"`

	SEO *SEORequirements `json:"seoMetricsRequirements,omitempty" validate:"omitempty"`
}

// SEORequirements are the minimum metrics a publisher must meet for a domain.
// Nil thresholds mean "no minimum".
type SEORequirements struct {
	MinDomainRating    *float64 `json:"minDomainRating,omitempty" validate:"omitempty,min=0,max=100"`
	MinDomainAuthority *float64 `json:"minDomainAuthority,omitempty" validate:"omitempty,min=0,max=100"`
	MinDomainTraffic   *float64 `json:"minDomainTraffic,omitempty" validate:"omitempty,min=0"`
	OtherRequirements  string   `json:"otherRequirements,omitempty"`
}

// EntityID returns the store id.
func (d Domain) EntityID() string { return d.ID }

// Normalize canonicalizes the name and label sets in place.
func (d *Domain) Normalize() {
	d.Name = NormalizeHost(d.Name)
	d.Niches = NewSet(d.Niches...)
	d.Keywords = NewSet(d.Keywords...)
}

// Float returns a pointer to v, for optional thresholds.
func Float(v float64) *float64 { return &v }

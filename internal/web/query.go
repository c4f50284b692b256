package web

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"linkdesk/internal/domain"
	"linkdesk/internal/matching"
)

const dateLayout = "2006-01-02"

// queryParser collects malformed query parameters as field errors.
type queryParser struct {
	c      *gin.Context
	fields map[string]string
}

func newQueryParser(c *gin.Context) *queryParser {
	return &queryParser{c: c, fields: make(map[string]string)}
}

func (q *queryParser) err() error {
	if len(q.fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: q.fields}
}

// float returns the parameter as a number, or nil when absent.
func (q *queryParser) float(name string) *float64 {
	raw := strings.TrimSpace(q.c.Query(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		q.fields[name] = "must be a number"
		return nil
	}
	return &v
}

// rangeOf builds a range when either bound is present; the missing bound
// takes the default.
func (q *queryParser) rangeOf(minName, maxName string, def matching.Range) *matching.Range {
	lo, hi := q.float(minName), q.float(maxName)
	if lo == nil && hi == nil {
		return nil
	}
	r := def
	if lo != nil {
		r.Min = *lo
	}
	if hi != nil {
		r.Max = *hi
	}
	return &r
}

// set merges repeated and comma-separated values of name.
func (q *queryParser) set(name string) domain.Set {
	var items domain.Set
	for _, raw := range q.c.QueryArray(name) {
		items = append(items, domain.ParseSet(raw)...)
	}
	if len(items) == 0 {
		return nil
	}
	return domain.NewSet(items...)
}

func (q *queryParser) bool(name string) bool {
	v, _ := strconv.ParseBool(q.c.Query(name))
	return v
}

// date parses YYYY-MM-DD or RFC 3339. A bare end date covers the whole day.
func (q *queryParser) date(name string, endOfDay bool) time.Time {
	raw := strings.TrimSpace(q.c.Query(name))
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		if endOfDay {
			return t.Add(24*time.Hour - time.Nanosecond)
		}
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	q.fields[name] = "must be a date (YYYY-MM-DD)"
	return time.Time{}
}

// publisherCriteria reads the publisher list filters.
func publisherCriteria(c *gin.Context) (matching.Criteria, error) {
	q := newQueryParser(c)
	criteria := matching.Criteria{
		Niches:           q.set("niches"),
		DomainRating:     q.rangeOf("drMin", "drMax", matching.ScoreRange()),
		DomainAuthority:  q.rangeOf("daMin", "daMax", matching.ScoreRange()),
		SpamScore:        q.rangeOf("spamScoreMin", "spamScoreMax", matching.ScoreRange()),
		Traffic:          q.rangeOf("trafficMin", "trafficMax", matching.TrafficRange()),
		IsReseller:       matching.ParseTriState(c.Query("isReseller")),
		TrafficLocations: q.set("trafficLocation"),
		MetricsUpdated: matching.DateRange{
			Start: q.date("metricsLastUpdateStart", false),
			End:   q.date("metricsLastUpdateEnd", true),
		},
	}
	return criteria, q.err()
}

// matchOverrides reads the manual adjustments to a domain's derived criteria.
func matchOverrides(c *gin.Context) (matching.Overrides, error) {
	q := newQueryParser(c)
	o := matching.Overrides{
		MinDomainRating:    q.float("minDomainRating"),
		MinDomainAuthority: q.float("minDomainAuthority"),
		MinDomainTraffic:   q.float("minDomainTraffic"),
		Niches:             q.set("niches"),
	}
	return o, q.err()
}

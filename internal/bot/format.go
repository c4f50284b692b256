package bot

import (
	"fmt"
	"strings"

	"linkdesk/internal/domain"
)

// MaxMatchLines caps the publishers listed in one /match reply.
const MaxMatchLines = 20

const usageText = "Commands: /domains lists active client domains, /match <domain> finds publishers for one."

var welcomeText = "Welcome to linkdesk! " + usageText

// FormatDomains renders the active domain list.
func FormatDomains(domains []domain.Domain) string {
	if len(domains) == 0 {
		return "No active domains."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d active domains:\n", len(domains))
	for _, d := range domains {
		fmt.Fprintf(&sb, "• %s (%s)\n", d.Name, d.Niches.String())
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatMatches renders up to limit matching publishers for d.
func FormatMatches(d domain.Domain, matches []domain.Publisher, limit int) string {
	if len(matches) == 0 {
		return fmt.Sprintf("No publishers match %s.", d.Name)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d publishers match %s:\n", len(matches), d.Name)
	for i, p := range matches {
		if i == limit {
			fmt.Fprintf(&sb, "…and %d more\n", len(matches)-limit)
			break
		}
		fmt.Fprintf(&sb, "• %s DR %.0f DA %.0f traffic %.0f%s\n",
			p.DomainName, p.DomainRating, p.DomainAuthority, p.DomainTraffic, priceSuffix(p))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func priceSuffix(p domain.Publisher) string {
	if !p.Priced() {
		return ""
	}
	var parts []string
	if p.GuestPostPrice > 0 {
		parts = append(parts, fmt.Sprintf("GP %.0f %s", p.GuestPostPrice, p.Currency))
	}
	if p.LinkInsertionPrice > 0 {
		parts = append(parts, fmt.Sprintf("LI %.0f %s", p.LinkInsertionPrice, p.Currency))
	}
	return ", " + strings.Join(parts, ", ")
}

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkdesk/internal/domain"
	"linkdesk/internal/matching"
)

func (h *handlers) listPublishers(c *gin.Context) {
	criteria, err := publisherCriteria(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	publishers, err := h.Publishers.Search(c.Request.Context(), criteria, newQueryParser(c).bool("refresh"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"publishers": publishers, "count": len(publishers)})
}

func (h *handlers) publisherFacets(c *gin.Context) {
	facets, err := h.Publishers.Facets(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, facets)
}

func (h *handlers) getPublisher(c *gin.Context) {
	p, err := h.Publishers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) createPublisher(c *gin.Context) {
	var p domain.Publisher
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	created, err := h.Publishers.Create(c.Request.Context(), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handlers) updatePublisher(c *gin.Context) {
	var p domain.Publisher
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	updated, err := h.Publishers.Update(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *handlers) deletePublisher(c *gin.Context) {
	if err := h.Publishers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listDomains(c *gin.Context) {
	q := newQueryParser(c)
	filter := matching.DomainFilter{
		IncludeArchived: q.bool("archived"),
		Niches:          q.set("niches"),
	}
	domains, err := h.Domains.List(c.Request.Context(), filter, q.bool("refresh"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domains": domains, "count": len(domains)})
}

func (h *handlers) domainFacets(c *gin.Context) {
	facets, err := h.Domains.Facets(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, facets)
}

func (h *handlers) getDomain(c *gin.Context) {
	d, err := h.Domains.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handlers) createDomain(c *gin.Context) {
	var d domain.Domain
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	created, err := h.Domains.Create(c.Request.Context(), d)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handlers) updateDomain(c *gin.Context) {
	var d domain.Domain
	if err := c.ShouldBindJSON(&d); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	updated, err := h.Domains.Update(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *handlers) archiveDomain(archived bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := h.Domains.SetArchived(c.Request.Context(), c.Param("id"), archived)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

func (h *handlers) deleteDomain(c *gin.Context) {
	if err := h.Domains.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) findPublishers(c *gin.Context) {
	domainID := c.Query("domainId")
	if domainID == "" {
		h.writeError(c, &domain.ValidationError{Fields: map[string]string{"domainId": "is required"}})
		return
	}
	overrides, err := matchOverrides(c)
	if err != nil {
		h.writeError(c, err)
		return
	}
	d, matches, err := h.Publishers.MatchDomain(c.Request.Context(), domainID, overrides)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"domain": d, "publishers": matches, "count": len(matches)})
}

func (h *handlers) preview(c *gin.Context) {
	if h.Previewer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "preview disabled"})
		return
	}
	p, err := h.Previewer.Preview(c.Request.Context(), c.Param("host"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

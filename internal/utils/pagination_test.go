package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paramsFor(t *testing.T, query string) *PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/bookings?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	p := paramsFor(t, "")

	if p.Page != 1 || p.PageSize != DefaultPageSize {
		t.Errorf("defaults = page %d size %d", p.Page, p.PageSize)
	}
	if p.Sort != "created_at" || p.Order != "desc" {
		t.Errorf("default sort = %s %s, want created_at desc", p.Sort, p.Order)
	}
}

func TestGetPaginationParamsClampsWindow(t *testing.T) {
	p := paramsFor(t, "page=0&page_size=9999&order=sideways")

	if p.Page != 1 {
		t.Errorf("page = %d, want clamped to 1", p.Page)
	}
	if p.PageSize != MaxPageSize {
		t.Errorf("page_size = %d, want clamped to %d", p.PageSize, MaxPageSize)
	}
	if p.Order != "desc" {
		t.Errorf("order = %s, want desc fallback", p.Order)
	}
}

func TestCreatePaginationMeta(t *testing.T) {
	meta := CreatePaginationMeta(&PaginationParams{Page: 2, PageSize: 10}, 25)

	if meta.TotalPages != 3 {
		t.Errorf("total pages = %d, want 3", meta.TotalPages)
	}
	if !meta.HasNext || !meta.HasPrevious {
		t.Error("middle page should have neighbours both ways")
	}
	if meta.NextPage == nil || *meta.NextPage != 3 {
		t.Error("next page should be 3")
	}
	if meta.PreviousPage == nil || *meta.PreviousPage != 1 {
		t.Error("previous page should be 1")
	}
}

package listutil

import (
	"net/url"
	"testing"
)

// TestParsePageParams_OptIn verifies paging is off unless requested.
func TestParsePageParams_OptIn(t *testing.T) {
	if _, ok := ParsePageParams(url.Values{"role": {"coach"}}); ok {
		t.Error("expected paging to be off without page or per_page")
	}
	p, ok := ParsePageParams(url.Values{"page": {"2"}})
	if !ok || p.Page != 2 || p.PerPage != DefaultPerPage {
		t.Errorf("got %+v ok=%v, want page 2 with default per_page", p, ok)
	}
}

// TestParsePageParams_Clamping verifies bad values fall back to defaults.
func TestParsePageParams_Clamping(t *testing.T) {
	tests := []struct {
		name        string
		q           url.Values
		wantPage    int
		wantPerPage int
	}{
		{"valid", url.Values{"page": {"3"}, "per_page": {"50"}}, 3, 50},
		{"per_page not offered", url.Values{"per_page": {"25"}}, 1, DefaultPerPage},
		{"negative page", url.Values{"page": {"-1"}}, 1, DefaultPerPage},
		{"garbage", url.Values{"page": {"x"}, "per_page": {"y"}}, 1, DefaultPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ParsePageParams(tt.q)
			if !ok {
				t.Fatal("expected paging on")
			}
			if p.Page != tt.wantPage || p.PerPage != tt.wantPerPage {
				t.Errorf("got %+v, want page %d per_page %d", p, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

// TestNewPageInfo verifies page count and clamping.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name                 string
		page, perPage, total int
		wantPage, wantPages  int
		wantOffset, wantEnd  int
	}{
		{"first page", 1, 10, 25, 1, 3, 0, 10},
		{"last partial page", 3, 10, 25, 3, 3, 20, 25},
		{"past the end", 9, 10, 25, 3, 3, 20, 25},
		{"empty", 1, 10, 0, 1, 1, 0, 0},
		{"zero per page", 1, 0, 5, 1, 1, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewPageInfo(tt.page, tt.perPage, tt.total)
			if info.Page != tt.wantPage || info.TotalPages != tt.wantPages {
				t.Errorf("page=%d pages=%d, want %d/%d", info.Page, info.TotalPages, tt.wantPage, tt.wantPages)
			}
			if info.Offset() != tt.wantOffset || info.End() != tt.wantEnd {
				t.Errorf("offset=%d end=%d, want %d/%d", info.Offset(), info.End(), tt.wantOffset, tt.wantEnd)
			}
		})
	}
}

// TestPaginate verifies the returned window and metadata.
func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	page, info := Paginate(items, PageParams{Page: 2, PerPage: 10})
	if len(page) != 2 || page[0] != 11 || page[1] != 12 {
		t.Errorf("page 2 = %v, want [11 12]", page)
	}
	if info.Total != 12 || info.TotalPages != 2 {
		t.Errorf("info = %+v", info)
	}

	empty, _ := Paginate([]int(nil), PageParams{Page: 1, PerPage: 10})
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty result should be a non-nil empty slice, got %#v", empty)
	}
}

package dto

import "github.com/cesargomez89/cratedigger/internal/domain"

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasPrev     bool `json:"has_prev"`
	PrevPage    int  `json:"prev_page,omitempty"`
	HasNext     bool `json:"has_next"`
	NextPage    int  `json:"next_page,omitempty"`
}

func NewPagination(page, totalPages int) *Pagination {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	p := &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasPrev:     page > 1,
		HasNext:     page < totalPages,
	}
	if p.HasPrev {
		p.PrevPage = page - 1
	}
	if p.HasNext {
		p.NextPage = page + 1
	}
	return p
}

type WantlistResponse struct {
	Pagination *Pagination           `json:"pagination"`
	Items      []domain.WantlistItem `json:"items"`
}

func NewWantlistResponse(p *domain.WantlistPage) WantlistResponse {
	items := p.Items
	if items == nil {
		items = []domain.WantlistItem{}
	}
	return WantlistResponse{
		Items:      items,
		Pagination: NewPagination(p.Page, p.Pages),
	}
}

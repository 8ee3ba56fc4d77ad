package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-ledger/app/features/query/itemdetail"
	"github.com/AntonStoeckl/lending-ledger/app/features/query/userdetail"
	"github.com/AntonStoeckl/lending-ledger/ledger"
)

const (
	availabilityAvailable = "available"
	availabilityBorrowed  = "borrowed"
)

type nameRequest struct {
	Name string `json:"name"`
}

type returnRequest struct {
	Score *float64 `json:"score"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type namedResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type itemDetailResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Score string    `json:"score"`
}

type pastLoanResponse struct {
	Name       string    `json:"name"`
	UserScore  float64   `json:"userScore"`
	BorrowedAt time.Time `json:"borrowedAt"`
	ReturnedAt time.Time `json:"returnedAt"`
}

type currentLoanResponse struct {
	Name       string    `json:"name"`
	BorrowedAt time.Time `json:"borrowedAt"`
}

type loansResponse struct {
	Past    []pastLoanResponse    `json:"past"`
	Present []currentLoanResponse `json:"present"`
}

type userDetailResponse struct {
	ID    uuid.UUID     `json:"id"`
	Name  string        `json:"name"`
	Books loansResponse `json:"books"`
}

type holderResponse struct {
	Status string     `json:"status"`
	Holder *uuid.UUID `json:"holder,omitempty"`
	Since  *time.Time `json:"since,omitempty"`
}

func toNamedUsers(users []ledger.User) []namedResponse {
	out := make([]namedResponse, 0, len(users))
	for _, u := range users {
		out = append(out, namedResponse{ID: u.ID, Name: u.Name})
	}

	return out
}

func toNamedItems(items []ledger.Item) []namedResponse {
	out := make([]namedResponse, 0, len(items))
	for _, i := range items {
		out = append(out, namedResponse{ID: i.ID, Name: i.Name})
	}

	return out
}

func toUserDetail(detail userdetail.UserDetail) userDetailResponse {
	resp := userDetailResponse{
		ID:   detail.User.ID,
		Name: detail.User.Name,
		Books: loansResponse{
			Past:    make([]pastLoanResponse, 0, len(detail.PastLoans)),
			Present: make([]currentLoanResponse, 0, len(detail.CurrentLoans)),
		},
	}

	for _, l := range detail.PastLoans {
		resp.Books.Past = append(resp.Books.Past, pastLoanResponse{
			Name:       l.ItemName,
			UserScore:  l.Score,
			BorrowedAt: l.BorrowedAt,
			ReturnedAt: l.ReturnedAt,
		})
	}

	for _, l := range detail.CurrentLoans {
		resp.Books.Present = append(resp.Books.Present, currentLoanResponse{
			Name:       l.ItemName,
			BorrowedAt: l.BorrowedAt,
		})
	}

	return resp
}

func toItemDetail(detail itemdetail.ItemDetail) itemDetailResponse {
	return itemDetailResponse{
		ID:    detail.Item.ID,
		Name:  detail.Item.Name,
		Score: detail.Rating.String(),
	}
}

func toHolder(a ledger.Availability) holderResponse {
	holder, ok := a.Holder()
	if !ok {
		return holderResponse{Status: availabilityAvailable}
	}

	since, _ := a.Since()

	return holderResponse{Status: availabilityBorrowed, Holder: &holder, Since: &since}
}

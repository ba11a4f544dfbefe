package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"

	"github.com/chingu-voyages/demographics-api/internal/app/chingus"
	"github.com/chingu-voyages/demographics-api/internal/domain"
)

type memberDTO struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	YearJoined      int       `json:"yearJoined"`
	Gender          string    `json:"gender"`
	CountryCode     string    `json:"countryCode"`
	CountryName     string    `json:"countryName"`
	Goal            string    `json:"goal"`
	Source          string    `json:"source"`
	RoleType        string    `json:"roleType"`
	VoyageRole      string    `json:"voyageRole"`
	SoloProjectTier string    `json:"soloProjectTier"`
	VoyageTier      string    `json:"voyageTier"`
	Voyage          string    `json:"voyage"`
}

type listChingusResponse struct {
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
	Data       []memberDTO `json:"data"`
}

type coordinatesDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type countryCountDTO struct {
	CountryCode string                            `json:"countryCode"`
	CountryName nullable.Nullable[string]         `json:"countryName"`
	Count       int64                             `json:"count"`
	Coordinates nullable.Nullable[coordinatesDTO] `json:"coordinates"`
}

type userDTO struct {
	ID          string                    `json:"id"`
	Email       string                    `json:"email"`
	Name        string                    `json:"name"`
	Image       nullable.Nullable[string] `json:"image"`
	HasGoogle   bool                      `json:"hasGoogle"`
	HasPassword bool                      `json:"hasPassword"`
	CreatedAt   time.Time                 `json:"createdAt"`
}

type userResponse struct {
	Success bool    `json:"success"`
	User    userDTO `json:"user"`
}

type loginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      userDTO   `json:"user"`
}

func memberFromDomain(m domain.Member) memberDTO {
	return memberDTO{
		ID:              string(m.ID),
		Timestamp:       m.Timestamp.UTC(),
		YearJoined:      m.YearJoined,
		Gender:          string(m.Gender),
		CountryCode:     m.CountryCode,
		CountryName:     m.CountryName,
		Goal:            m.Goal,
		Source:          m.Source,
		RoleType:        m.RoleType,
		VoyageRole:      m.VoyageRole,
		SoloProjectTier: m.SoloProjectTier,
		VoyageTier:      m.VoyageTier,
		Voyage:          m.Voyage,
	}
}

func listResponseFromResult(res chingus.ListResult) listChingusResponse {
	out := listChingusResponse{
		Page:       res.Page,
		Limit:      res.Limit,
		Total:      res.Total,
		TotalPages: res.TotalPages,
		Data:       make([]memberDTO, 0, len(res.Data)),
	}
	for _, m := range res.Data {
		out.Data = append(out.Data, memberFromDomain(m))
	}
	return out
}

func countryCountFromResult(c chingus.CountryCount) countryCountDTO {
	out := countryCountDTO{
		CountryCode: c.CountryCode,
		CountryName: nullableString(c.CountryName),
		Count:       c.Count,
		Coordinates: nullable.NewNullNullable[coordinatesDTO](),
	}
	if c.Coordinates != nil {
		out.Coordinates = nullable.NewNullableWithValue(coordinatesDTO{Lat: c.Coordinates.Lat, Lng: c.Coordinates.Lng})
	}
	return out
}

func userFromDomain(u domain.User) userDTO {
	return userDTO{
		ID:          string(u.ID),
		Email:       u.Email,
		Name:        u.Name,
		Image:       nullableString(u.Image),
		HasGoogle:   u.GoogleID != nil && *u.GoogleID != "",
		HasPassword: u.HasPassword(),
		CreatedAt:   u.CreatedAt.UTC(),
	}
}

func nullableString(p *string) nullable.Nullable[string] {
	if p == nil {
		return nullable.NewNullNullable[string]()
	}
	return nullable.NewNullableWithValue(*p)
}

package http

import (
	"time"

	"github.com/example/shortly/internal/models"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

type createLinkRequest struct {
	URL         string     `json:"url" validate:"required,url"`
	CustomAlias string     `json:"custom_alias" validate:"omitempty,min=3,max=20"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Password    string     `json:"password"`
}

type modifyLinkRequest struct {
	URL         *string    `json:"url" validate:"omitempty,url"`
	IsActive    *bool      `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClearExpiry bool       `json:"clear_expiry"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Plan:      user.Plan,
		CreatedAt: user.CreatedAt,
	}
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type linkResponse struct {
	ID             int64      `json:"id"`
	ShortCode      string     `json:"short_code"`
	ShortURL       string     `json:"short_url"`
	URL            string     `json:"url"`
	IsCustomAlias  bool       `json:"is_custom_alias"`
	IsActive       bool       `json:"is_active"`
	Protected      bool       `json:"protected"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	Clicks         int64      `json:"clicks"`
	UniqueVisitors int64      `json:"unique_visitors"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toLinkResponse(baseURL string, link *models.ShortLink) linkResponse {
	return linkResponse{
		ID:             link.ID,
		ShortCode:      link.ShortCode,
		ShortURL:       baseURL + "/" + link.ShortCode,
		URL:            link.OriginalURL,
		IsCustomAlias:  link.IsCustomAlias,
		IsActive:       link.IsActive,
		Protected:      link.PasswordHash != nil,
		ExpiresAt:      link.ExpiresAt,
		Clicks:         link.Clicks,
		UniqueVisitors: link.UniqueVisitors,
		LastAccessedAt: link.LastAccessedAt,
		CreatedAt:      link.CreatedAt,
		UpdatedAt:      link.UpdatedAt,
	}
}

type linkListResponse struct {
	Links []linkResponse `json:"links"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type bucketResponse struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

func toBucketResponses(buckets []models.BucketCount) []bucketResponse {
	out := make([]bucketResponse, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, bucketResponse{Key: b.Key, Count: b.Count})
	}
	return out
}

type reportResponse struct {
	Timeframe   string           `json:"timeframe"`
	TotalClicks int64            `json:"total_clicks"`
	UniqueIPs   int64            `json:"unique_ips"`
	ByDate      []bucketResponse `json:"by_date"`
	ByCountry   []bucketResponse `json:"by_country"`
	ByReferrer  []bucketResponse `json:"by_referrer"`
	ByDevice    []bucketResponse `json:"by_device"`
}

func toReportResponse(report *models.AggregateReport) reportResponse {
	return reportResponse{
		Timeframe:   string(report.Timeframe),
		TotalClicks: report.TotalClicks,
		UniqueIPs:   report.UniqueIPs,
		ByDate:      toBucketResponses(report.ByDate),
		ByCountry:   toBucketResponses(report.ByCountry),
		ByReferrer:  toBucketResponses(report.ByReferrer),
		ByDevice:    toBucketResponses(report.ByDevice),
	}
}

type topLinkResponse struct {
	ShortCode string `json:"short_code"`
	Clicks    int64  `json:"clicks"`
}

type ownerStatsResponse struct {
	reportResponse
	TotalLinks int64             `json:"total_links"`
	TopLinks   []topLinkResponse `json:"top_links"`
}

func toOwnerStatsResponse(stats *models.OwnerStats) ownerStatsResponse {
	top := make([]topLinkResponse, 0, len(stats.TopLinks))
	for _, l := range stats.TopLinks {
		top = append(top, topLinkResponse{ShortCode: l.ShortCode, Clicks: l.Clicks})
	}

	return ownerStatsResponse{
		reportResponse: toReportResponse(&stats.AggregateReport),
		TotalLinks:     stats.TotalLinks,
		TopLinks:       top,
	}
}

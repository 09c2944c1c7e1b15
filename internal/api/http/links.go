package http

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/example/shortly/internal/database"
	"github.com/example/shortly/internal/models"
	"github.com/example/shortly/internal/service"
	"github.com/example/shortly/pkg/response"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func handleCreateLink(svc LinkService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleCreateLink"
	const successMsg = "The URL has been shortened successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		if !decodeBody(w, r, validate, &req) {
			return
		}

		params := service.ShortenParams{
			OriginalURL: req.URL,
			CustomAlias: req.CustomAlias,
			ExpiresAt:   req.ExpiresAt,
			Password:    req.Password,
		}
		if userID, ok := callerID(r); ok {
			params.OwnerID = &userID
		}

		link, err := svc.Shorten(r.Context(), params)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidURL):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ErrorResponse("Invalid URL", "The destination must be a valid http or https URL."))
			case errors.Is(err, service.ErrInvalidAlias):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ErrorResponse("Invalid Alias", "Custom aliases are 3-20 characters of letters, digits, hyphen or underscore."))
			case errors.Is(err, service.ErrAliasTaken):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.AliasTakenResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(baseURL, link)))
	}
}

func handleListLinks(svc LinkService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleListLinks"
	const successMsg = "The links retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := callerID(r)

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))
		if size < 1 || size > maxPageSize {
			size = defaultPageSize
		}

		links, total, err := svc.List(r.Context(), userID, size, (page-1)*size)
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		resp := linkListResponse{
			Links: make([]linkResponse, 0, len(links)),
			Total: total,
			Page:  page,
			Size:  size,
		}
		for i := range links {
			resp.Links = append(resp.Links, toLinkResponse(baseURL, &links[i]))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, resp))
	}
}

// renderLinkAccessError maps ownership and existence failures shared by
// the owner-facing link endpoints.
func renderLinkAccessError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, database.ErrLinkNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.ResourceNotFoundResponse)
	case errors.Is(err, service.ErrNotOwner):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, response.ForbiddenResponse)
	default:
		httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.ServerErrorResponse)
	}
}

func handleGetLink(svc LinkService, baseURL string) http.HandlerFunc {
	const op = "api.http.handleGetLink"
	const successMsg = "The link retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := callerID(r)
		shortCode := chi.URLParam(r, "shortCode")

		link, err := svc.Get(r.Context(), userID, shortCode)
		if err != nil {
			renderLinkAccessError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(baseURL, link)))
	}
}

func handleModifyLink(svc LinkService, validate *validator.Validate, baseURL string) http.HandlerFunc {
	const op = "api.http.handleModifyLink"
	const successMsg = "The link was successfully modified."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := callerID(r)
		shortCode := chi.URLParam(r, "shortCode")

		var req modifyLinkRequest
		if !decodeBody(w, r, validate, &req) {
			return
		}

		link, err := svc.Modify(r.Context(), userID, shortCode, service.LinkChanges{
			OriginalURL: req.URL,
			IsActive:    req.IsActive,
			ExpiresAt:   req.ExpiresAt,
			ClearExpiry: req.ClearExpiry,
		})
		if err != nil {
			if errors.Is(err, service.ErrInvalidURL) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ErrorResponse("Invalid URL", "The destination must be a valid http or https URL."))
				return
			}

			renderLinkAccessError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toLinkResponse(baseURL, link)))
	}
}

func handleDeactivateLink(svc LinkService) http.HandlerFunc {
	const op = "api.http.handleDeactivateLink"
	const successMsg = "The link was successfully deactivated."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := callerID(r)
		shortCode := chi.URLParam(r, "shortCode")

		if err := svc.Deactivate(r.Context(), userID, shortCode); err != nil {
			renderLinkAccessError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg))
	}
}

// handleRedirect gates access to the destination and hands the visit to
// the click recorder. Recording is detached: the redirect is issued
// unconditionally once the resolver approves, and a recording failure
// never reaches the visitor.
func handleRedirect(svc LinkService, recorder ClickRecorder) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")
		password := r.URL.Query().Get("password")

		link, err := svc.Resolve(r.Context(), shortCode, password)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrLinkNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
			case errors.Is(err, service.ErrLinkInactive), errors.Is(err, service.ErrLinkExpired):
				render.Status(r, http.StatusGone)
				render.JSON(w, r, response.LinkGoneResponse)
			case errors.Is(err, service.ErrPasswordRequired):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.PasswordRequiredResponse)
			case errors.Is(err, service.ErrPasswordInvalid):
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.PasswordInvalidResponse)
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		recorder.RecordDetached(link, models.Visit{
			IP:        clientIP(r),
			UserAgent: r.UserAgent(),
			Referrer:  r.Referer(),
		})

		http.Redirect(w, r, link.OriginalURL, http.StatusFound)
	}
}

// clientIP relies on the RealIP middleware having already applied the
// proxy trust chain to RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

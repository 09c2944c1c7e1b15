package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/example/shortly/internal/database"
	"github.com/example/shortly/internal/service"
	"github.com/example/shortly/pkg/response"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// decodeBody decodes and validates the JSON request body, rendering the
// appropriate error response itself. Returns false when the handler
// should stop.
func decodeBody(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.EmptyRequestBodyResponse)
			return false
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.BadRequestResponse)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationErrorResponse(err))
		return false
	}

	return true
}

func handleRegister(svc AuthService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleRegister"
	const successMsg = "The user has been registered successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decodeBody(w, r, validate, &req) {
			return
		}

		user, err := svc.Register(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, database.ErrUserExists) {
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ErrorResponse("User Exists", "The username or email is already registered."))
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.SuccessResponse(successMsg, toUserResponse(user)))
	}
}

func handleLogin(svc AuthService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleLogin"
	const successMsg = "Logged in successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeBody(w, r, validate, &req) {
			return
		}

		token, user, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorResponse("Invalid Credentials", "The username or password is incorrect."))
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, tokenResponse{
			Token: token,
			User:  toUserResponse(user),
		}))
	}
}

func handleGetProfile(svc AuthService) http.HandlerFunc {
	const op = "api.http.handleGetProfile"
	const successMsg = "The profile retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := callerID(r)

		user, err := svc.Profile(r.Context(), userID)
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toUserResponse(user)))
	}
}

func handleUpdateProfile(svc AuthService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleUpdateProfile"
	const successMsg = "The profile was successfully updated."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := callerID(r)

		var req updateProfileRequest
		if !decodeBody(w, r, validate, &req) {
			return
		}

		user, err := svc.UpdateProfile(r.Context(), userID, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrUserNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
			case errors.Is(err, database.ErrUserExists):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.ErrorResponse("Email In Use", "The email is already registered."))
			default:
				httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.ServerErrorResponse)
			}
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toUserResponse(user)))
	}
}

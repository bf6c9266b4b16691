package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/kennelhq/kennel"
)

// AuthService is the credential surface the handler needs.
type AuthService interface {
	Register(ctx context.Context, username, password string) (kennel.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// ImageService is the image lifecycle surface the handler needs.
type ImageService interface {
	Upload(ctx context.Context, ident kennel.Identity, in kennel.NewImage, content io.Reader) (kennel.Image, error)
	Get(ctx context.Context, ident kennel.Identity, id string) (kennel.Image, io.ReadSeekCloser, error)
	List(ctx context.Context, ident kennel.Identity, q kennel.ListQuery) (kennel.ListResult, error)
	Update(ctx context.Context, ident kennel.Identity, id string, in kennel.NewImage, content io.Reader) (kennel.Image, error)
	Delete(ctx context.Context, ident kennel.Identity, id string) error
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Verifier      TokenVerifier
	MaxUploadSize int64
	AuthRate      RateLimitConfig
	CORS          CORSConfig
}

// Handler provides the HTTP handlers for authentication and image routes.
type Handler struct {
	config HandlerConfig
	auth   AuthService
	images ImageService
}

// NewHandler creates a new Handler with the given configuration and services.
func NewHandler(config *HandlerConfig, auth AuthService, images ImageService) *Handler {
	return &Handler{
		config: *config,
		auth:   auth,
		images: images,
	}
}

// Router returns the configured http.Handler. The auth middleware wraps
// every /api/dogs route, so no handler there runs without a verified
// identity in context.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		if h.config.AuthRate.Enabled {
			r.Use(RateLimit(h.config.AuthRate))
		}
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
	})

	r.Route("/api/dogs", func(r chi.Router) {
		r.Use(Auth(h.config.Verifier))
		r.Post("/", h.handleUpload)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})

	return r
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type uploadResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Request body must be JSON with username and password.")
		return
	}

	_, err := h.auth.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, kennel.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input",
			"Username and password are required, and password must be between 6 and 20 characters.")
	case errors.Is(err, kennel.ErrDuplicateUsername):
		WriteError(w, http.StatusConflict, "duplicate_username", "Username already exists.")
	case err != nil:
		HandleError(w, err)
	default:
		_ = WriteJSON(w, http.StatusCreated, MessageResponse{Message: "User registered successfully."})
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "Request body must be JSON with username and password.")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, kennel.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", "Username and password are required.")
	case errors.Is(err, kennel.ErrNotFound):
		WriteError(w, http.StatusUnauthorized, "not_found", "User not found.")
	case errors.Is(err, kennel.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials.")
	case err != nil:
		HandleError(w, err)
	default:
		_ = WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ident, file, header, ok := h.multipartImage(w, r)
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()

	img, err := h.images.Upload(r.Context(), ident, kennel.NewImage{
		Name:        header.filename,
		ContentType: header.contentType,
	}, file)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusCreated, uploadResponse{Message: "Dog image uploaded", ID: img.ID.String()})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ident, err := IdentityFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "Please log in first.")
		return
	}

	// Absent or non-numeric values read as zero; the service applies
	// the documented defaults.
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.images.List(r.Context(), ident, kennel.ListQuery{Page: page, Limit: limit})
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ident, err := IdentityFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "Please log in first.")
		return
	}

	img, content, err := h.images.Get(r.Context(), ident, chi.URLParam(r, "id"))
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = content.Close() }()

	w.Header().Set("Content-Type", img.ContentType)
	http.ServeContent(w, r, img.Name, img.UpdatedAt, content)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ident, file, header, ok := h.multipartImage(w, r)
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()

	_, err := h.images.Update(r.Context(), ident, chi.URLParam(r, "id"), kennel.NewImage{
		Name:        header.filename,
		ContentType: header.contentType,
	}, file)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, MessageResponse{Message: "Dog image updated"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ident, err := IdentityFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "Please log in first.")
		return
	}

	if err := h.images.Delete(r.Context(), ident, chi.URLParam(r, "id")); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, MessageResponse{Message: "Dog image deleted"})
}

type fileHeader struct {
	filename    string
	contentType string
}

// multipartImage pulls the identity and the "image" form file out of the
// request, writing the error response itself when either is missing.
func (h *Handler) multipartImage(w http.ResponseWriter, r *http.Request) (kennel.Identity, io.ReadCloser, fileHeader, bool) {
	ident, err := IdentityFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "unauthenticated", "Please log in first.")
		return kennel.Identity{}, nil, fileHeader{}, false
	}

	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing_file", "An image file is required.")
		return kennel.Identity{}, nil, fileHeader{}, false
	}

	contentType := header.Header.Get("Content-Type")

	return ident, file, fileHeader{filename: header.Filename, contentType: contentType}, true
}

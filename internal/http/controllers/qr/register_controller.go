package qr

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
	dto "github.com/dropDatabas3/qrcall/internal/http/dto/qr"
	httperrors "github.com/dropDatabas3/qrcall/internal/http/errors"
	"github.com/dropDatabas3/qrcall/internal/http/helpers"
	"github.com/dropDatabas3/qrcall/internal/http/middlewares"
	svc "github.com/dropDatabas3/qrcall/internal/http/services/qr"
)

// RegisterController handles POST /qr/register/{token}.
type RegisterController struct {
	registry *svc.RegistryService
}

func NewRegisterController(registry *svc.RegistryService) *RegisterController {
	return &RegisterController{registry: registry}
}

// Register binds the authenticated caller to the code behind the token.
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	token := chi.URLParam(r, "token")
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrInvalidCode)
		return
	}

	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !helpers.ValidateStruct(w, req) {
		return
	}

	url, err := c.registry.Claim(ctx, token, userID, repository.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromRepository(err))
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.RegisterResponse{
		QRCodeURL: url,
		Message:   "QR code registered to your account.",
	})
}

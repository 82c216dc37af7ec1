package qr

import (
	"net/http"

	"github.com/dropDatabas3/qrcall/internal/domain/repository"
	dto "github.com/dropDatabas3/qrcall/internal/http/dto/qr"
	httperrors "github.com/dropDatabas3/qrcall/internal/http/errors"
	"github.com/dropDatabas3/qrcall/internal/http/helpers"
	"github.com/dropDatabas3/qrcall/internal/http/middlewares"
	svc "github.com/dropDatabas3/qrcall/internal/http/services/qr"
	"github.com/dropDatabas3/qrcall/internal/observability/logger"
)

// GenerateController handles code issuance.
type GenerateController struct {
	registry *svc.RegistryService
}

func NewGenerateController(registry *svc.RegistryService) *GenerateController {
	return &GenerateController{registry: registry}
}

// Generate handles POST /qr/generate. The caller gets a code bound to their
// account; the profile fields are required and stored first.
func (c *GenerateController) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("GenerateController.Generate"))

	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.GenerateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !helpers.ValidateStruct(w, req) {
		return
	}

	out, err := c.registry.CreateSelfIssued(ctx, userID, repository.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		httperrors.WriteError(w, httperrors.FromRepository(err))
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.GenerateResponse{
		QRCodeURL:   out.QRCodeURL,
		QRCodeImage: out.QRCodeImage,
		Message:     "QR code generated successfully.",
	})
	log.Debug("self-issued code returned")
}

// AdminGenerate handles POST /qr/admin/generate. Issues an unbound code for
// pre-printing.
func (c *GenerateController) AdminGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("GenerateController.AdminGenerate"))

	out, err := c.registry.CreateAdminIssued(ctx)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromRepository(err))
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, dto.GenerateResponse{
		QRCodeURL:   out.QRCodeURL,
		QRCodeImage: out.QRCodeImage,
		Message:     "QR code generated successfully.",
	})
	log.Debug("admin-issued code returned")
}

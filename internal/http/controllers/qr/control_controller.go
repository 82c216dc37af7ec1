package qr

import (
	"net/http"

	httperrors "github.com/dropDatabas3/qrcall/internal/http/errors"
	dto "github.com/dropDatabas3/qrcall/internal/http/dto/qr"
	"github.com/dropDatabas3/qrcall/internal/http/helpers"
	"github.com/dropDatabas3/qrcall/internal/http/middlewares"
	svc "github.com/dropDatabas3/qrcall/internal/http/services/qr"
)

// ControlController handles POST /qr/control.
type ControlController struct {
	registry *svc.RegistryService
}

func NewControlController(registry *svc.RegistryService) *ControlController {
	return &ControlController{registry: registry}
}

// Control toggles the caller's code on or off. Idempotent.
func (c *ControlController) Control(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.ControlRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if !helpers.ValidateStruct(w, req) {
		return
	}

	code, err := c.registry.SetActive(ctx, userID, *req.IsActive)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromRepository(err))
		return
	}

	msg := "QR code deactivated."
	if code.IsActive {
		msg = "QR code activated."
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ControlResponse{
		IsActive: code.IsActive,
		Message:  msg,
	})
}

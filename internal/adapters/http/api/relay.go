package api

import (
	"context"
	"errors"
	"mime"
	"net/http"

	service "github.com/okian/montpellier/internal/app"
	"github.com/okian/montpellier/internal/domain/contact"
	"github.com/okian/montpellier/internal/domain/model"
	"github.com/okian/montpellier/pkg/logger"
)

const (
	maxFormBytes      = 1 << 20
	maxMultipartInMem = 256 << 10

	msgMethodNotAllowed = "Method not allowed"
)

// Relayer accepts contact submissions.
type Relayer interface {
	Relay(ctx context.Context, sub model.ContactSubmission) (service.Result, error)
}

type submissionData struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Telefono string `json:"telefono"`
}

type relayResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *submissionData `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// RelayHandler serves the contact relay endpoint.
type RelayHandler struct {
	relay  Relayer
	logger logger.Logger
}

// NewRelayHandler creates a relay handler.
func NewRelayHandler(relay Relayer, log logger.Logger) *RelayHandler {
	if log == nil {
		log = logger.Get().Named("api")
	}
	return &RelayHandler{relay: relay, logger: log}
}

// HandleContact handles POST /server/contact.php with a form-encoded or
// multipart body.
func (h *RelayHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", http.MethodPost)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, relayResponse{Message: msgMethodNotAllowed})
		return
	}

	sub := h.readSubmission(w, r)
	res, err := h.relay.Relay(r.Context(), sub)
	switch {
	case errors.Is(err, contact.ErrMissingFields):
		writeJSON(w, http.StatusBadRequest, relayResponse{Message: contact.MsgRelayMissingFields})
	case errors.Is(err, contact.ErrInvalidEmail):
		writeJSON(w, http.StatusBadRequest, relayResponse{Message: contact.MsgRelayInvalidEmail})
	case err != nil:
		h.logger.Error(r.Context(), "contact relay failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, relayResponse{
			Message: service.MsgSendFailed,
			Error:   service.MsgTechnical,
		})
	default:
		writeJSON(w, http.StatusOK, relayResponse{
			Success: true,
			Message: res.Message(),
			Data: &submissionData{
				Nombre:   res.Submission.Nombre,
				Email:    res.Submission.Email,
				Telefono: res.Submission.Telefono,
			},
		})
	}
}

// readSubmission extracts the four form fields. An unreadable body yields
// empty fields, which the relay rejects as incomplete.
func (h *RelayHandler) readSubmission(w http.ResponseWriter, r *http.Request) model.ContactSubmission {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	var err error
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxMultipartInMem)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		h.logger.Warn(r.Context(), "unreadable contact form", logger.Error(err))
		return model.ContactSubmission{}
	}

	return model.ContactSubmission{
		Nombre:      r.PostFormValue("nombre"),
		Email:       r.PostFormValue("email"),
		Telefono:    r.PostFormValue("telefono"),
		Comentarios: r.PostFormValue("comentarios"),
	}
}

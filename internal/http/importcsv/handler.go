package importcsv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/gestobra/internal/importer"
	"github.com/MrJamesThe3rd/gestobra/internal/matching"
	"github.com/MrJamesThe3rd/gestobra/internal/transaction"
)

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
	matchSvc  *matching.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
		matchSvc:  matchSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type transactionResponse struct {
	ID            uuid.UUID                 `json:"id"`
	ProjectID     *uuid.UUID                `json:"project_id,omitempty"`
	Date          time.Time                 `json:"date"`
	Value         decimal.Decimal           `json:"value"`
	Type          transaction.Type          `json:"type"`
	Category      string                    `json:"category"`
	Description   string                    `json:"description"`
	PaymentStatus transaction.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time                 `json:"created_at"`
}

type importSuccessResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
}

type createParamsDTO struct {
	ProjectID     *uuid.UUID                `json:"project_id,omitempty"`
	Date          time.Time                 `json:"date"`
	Value         decimal.Decimal           `json:"value"`
	Type          transaction.Type          `json:"type"`
	Category      string                    `json:"category"`
	Description   string                    `json:"description"`
	PaymentStatus transaction.PaymentStatus `json:"payment_status"`
}

type conflictDTO struct {
	Incoming createParamsDTO     `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	var projectID *uuid.UUID

	if s := r.FormValue("project_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid project_id", http.StatusBadRequest)
			return
		}

		projectID = &id
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Layout(r.FormValue("layout")), file, projectID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.matchSvc.Classify(r.Context(), params)

	result, err := h.txSvc.ImportBatch(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(result.Imported)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// confirmImport stores the lines the user kept after reviewing the conflicts.
func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, transaction.CreateParams{
			ProjectID:     p.ProjectID,
			Date:          p.Date,
			Value:         p.Value,
			Type:          p.Type,
			Category:      p.Category,
			Description:   p.Description,
			PaymentStatus: p.PaymentStatus,
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(txs)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrNegativeValue),
		errors.Is(err, transaction.ErrInvalidType),
		errors.Is(err, transaction.ErrInvalidPaymentStatus),
		errors.Is(err, transaction.ErrProjectNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("statement import failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		ProjectID:     tx.ProjectID,
		Date:          tx.Date,
		Value:         tx.Value,
		Type:          tx.Type,
		Category:      tx.Category,
		Description:   tx.Description,
		PaymentStatus: tx.PaymentStatus,
		CreatedAt:     tx.CreatedAt,
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		ProjectID:     p.ProjectID,
		Date:          p.Date,
		Value:         p.Value,
		Type:          p.Type,
		Category:      p.Category,
		Description:   p.Description,
		PaymentStatus: p.PaymentStatus,
	}
}

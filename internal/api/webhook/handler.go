package webhook

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"treinorun-backend/internal/domain/webhooklog"
	"treinorun-backend/internal/infra/mercadopago"
	"treinorun-backend/internal/logger"
	"treinorun-backend/internal/repository"
	"treinorun-backend/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

const maxBodyBytes = 65536

// Enqueuer hands an acknowledged delivery to the background workers.
type Enqueuer interface {
	Enqueue(job worker.Job)
}

type Handler struct {
	store    repository.Store
	verifier *mercadopago.SignatureVerifier
	pool     Enqueuer
	log      *logger.Logger
}

func NewHandler(store repository.Store, verifier *mercadopago.SignatureVerifier, pool Enqueuer, log *logger.Logger) *Handler {
	return &Handler{store: store, verifier: verifier, pool: pool, log: log}
}

// Probe answers the provider's GET liveness check. No authentication.
func (h *Handler) Probe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Receive is the inbound notification endpoint. Only a bad signature may
// produce a non-success status once the body is non-empty; every other
// failure is absorbed, logged and acknowledged so the provider's redelivery
// cannot be weaponized by a permanently broken payload.
func (h *Handler) Receive(c *gin.Context) {
	raw, err := readBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("{}")) {
		h.log.Warnf("webhook with empty body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty body"})
		return
	}

	ev, normErr := mercadopago.Normalize(raw)

	// Dashboard test notifications are acknowledged before signature
	// verification; they are fired ad hoc and carry no state.
	if ev.Type == mercadopago.EventTest {
		h.appendLog(c, raw, webhooklog.StatusTest)
		c.JSON(http.StatusOK, gin.H{"status": "test notification received"})
		return
	}

	if !h.verifier.Verify(raw, c.GetHeader("X-Signature")) {
		h.log.Warnf("webhook signature verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry := h.appendLog(c, raw, webhooklog.StatusReceived)
	if entry == nil {
		// Log write failed; acknowledged anyway, the provider will redeliver.
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	if normErr != nil || ev.Type == mercadopago.EventUnhandled {
		var msg *string
		if normErr != nil {
			m := normErr.Error()
			msg = &m
		}
		if err := h.store.WebhookLogs().MarkOutcome(c.Request.Context(), entry.ID, webhooklog.StatusIgnored, msg); err != nil {
			h.log.Errorf("webhook %s: failed to mark ignored: %v", entry.ID, err)
		}
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	// The log entry is durable before dispatch; a crash mid-task leaves a
	// visible non-terminal "recebido" row for the operator.
	h.pool.Enqueue(worker.Job{EntryID: entry.ID, Event: ev})
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (h *Handler) appendLog(c *gin.Context, raw []byte, status string) *webhooklog.Entry {
	entry := &webhooklog.Entry{
		Payload: payloadJSON(raw),
		Status:  status,
	}
	if err := h.store.WebhookLogs().Append(c.Request.Context(), entry); err != nil {
		h.log.Errorf("failed to append webhook log: %v", err)
		return nil
	}
	return entry
}

// payloadJSON stores the body as-is when it is valid JSON and as a JSON
// string otherwise, so the jsonb column never rejects a delivery.
func payloadJSON(raw []byte) datatypes.JSON {
	if json.Valid(raw) {
		return datatypes.JSON(raw)
	}
	quoted, _ := json.Marshal(string(raw))
	return datatypes.JSON(quoted)
}

func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}

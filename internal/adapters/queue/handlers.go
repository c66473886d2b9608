package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"guestbook/internal/domain"
)

// Handlers runs queued tasks against the email service and object storage.
type Handlers struct {
	Email   domain.EmailService
	Storage domain.ObjectStorage
	Logger  *slog.Logger
}

// Register wires every task type into mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeLoginCodeEmail, h.HandleLoginCodeEmail)
	mux.HandleFunc(TypeWelcomeEmail, h.HandleWelcomeEmail)
	mux.HandleFunc(TypeRSVPConfirmationEmail, h.HandleRSVPConfirmationEmail)
	mux.HandleFunc(TypeInvitationEmail, h.HandleInvitationEmail)
	mux.HandleFunc(TypeDeleteObject, h.HandleDeleteObject)
}

// decode rejects malformed payloads without retrying them.
func decode(t *asynq.Task, dest any) error {
	if err := json.Unmarshal(t.Payload(), dest); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

func (h *Handlers) HandleLoginCodeEmail(ctx context.Context, t *asynq.Task) error {
	var data domain.LoginCodeEmailData
	if err := decode(t, &data); err != nil {
		return err
	}
	return h.Email.SendLoginCode(ctx, &data)
}

func (h *Handlers) HandleWelcomeEmail(ctx context.Context, t *asynq.Task) error {
	var data domain.WelcomeMessageEmailData
	if err := decode(t, &data); err != nil {
		return err
	}
	return h.Email.SendWelcomeMessage(ctx, &data)
}

func (h *Handlers) HandleRSVPConfirmationEmail(ctx context.Context, t *asynq.Task) error {
	var data domain.RSVPConfirmationEmailData
	if err := decode(t, &data); err != nil {
		return err
	}
	return h.Email.SendRSVPConfirmation(ctx, &data)
}

func (h *Handlers) HandleInvitationEmail(ctx context.Context, t *asynq.Task) error {
	var data domain.InvitationEmailData
	if err := decode(t, &data); err != nil {
		return err
	}
	return h.Email.SendInvitation(ctx, &data)
}

func (h *Handlers) HandleDeleteObject(ctx context.Context, t *asynq.Task) error {
	var p deleteObjectPayload
	if err := decode(t, &p); err != nil {
		return err
	}
	if p.Key == "" {
		return fmt.Errorf("empty object key: %w", asynq.SkipRetry)
	}
	if err := h.Storage.Delete(ctx, p.Key); err != nil {
		return err
	}
	h.Logger.InfoContext(ctx, "object deleted", "key", p.Key)
	return nil
}

package worker

// alerta_stock_worker.go
// Processes low-stock alert jobs from QueueAlertaStock: when a sale or manual
// adjustment leaves a product at or below its minimum, supervisors get an
// email. Delivery goes through the SMTP circuit breaker so a dead mail server
// never piles up goroutines.

import (
	"context"
	"encoding/json"
	"fmt"

	"comerciopos/internal/infra"
	"comerciopos/internal/repository"

	"github.com/rs/zerolog/log"
)

type AlertaStockWorker struct {
	mailer      *infra.Mailer
	cb          *infra.CircuitBreaker
	usuarioRepo repository.UsuarioRepository
}

func NewAlertaStockWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, usuarioRepo repository.UsuarioRepository) *AlertaStockWorker {
	return &AlertaStockWorker{mailer: mailer, cb: cb, usuarioRepo: usuarioRepo}
}

// Process emails every active supervisor and administrator that has a mailbox
// configured. An SMTP failure returns an error so the pool can retry.
func (w *AlertaStockWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alerta_stock_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}

	destinatarios, err := w.destinatarios(ctx)
	if err != nil {
		return fmt.Errorf("alerta_stock_worker: resolving recipients: %w", err)
	}
	if len(destinatarios) == 0 {
		log.Warn().Str("producto", payload.Nombre).Msg("alerta_stock_worker: no recipients configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("Stock bajo: %s", payload.Nombre)
	body := fmt.Sprintf(
		"El producto %q quedó con %d unidades (mínimo configurado: %d).\nProducto: %s\n",
		payload.Nombre, payload.Cantidad, payload.MinimoStock, payload.ProductoID,
	)

	err = w.cb.Execute(func() error {
		return w.mailer.SendAlerta(destinatarios, subject, body)
	})
	if err != nil {
		log.Error().Err(err).Str("producto", payload.Nombre).Msg("alerta_stock_worker: failed to send alert")
		return err
	}
	log.Info().Str("producto", payload.Nombre).Int("cantidad", payload.Cantidad).Msg("alerta_stock_worker: alert sent")
	return nil
}

func (w *AlertaStockWorker) destinatarios(ctx context.Context) ([]string, error) {
	usuarios, err := w.usuarioRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, u := range usuarios {
		if u.Gmail == nil || *u.Gmail == "" {
			continue
		}
		if u.Rol == "supervisor" || u.Rol == "administrador" {
			out = append(out, *u.Gmail)
		}
	}
	return out, nil
}

package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/contact-log-api/internal/models"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// recordAudit is best effort: a failed audit write never fails the business operation.
func recordAudit(ctx context.Context, w auditWriter, logger *zap.Logger, log *models.AuditLog) {
	if w == nil {
		return
	}
	if err := w.CreateAuditLog(ctx, log); err != nil {
		logger.Warn("failed to record audit log",
			zap.String("action", log.Action),
			zap.String("resource", log.Resource),
			zap.Error(err))
	}
}

func auditPayload(v interface{}) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

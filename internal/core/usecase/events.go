package usecase

import (
	"context"
	"log/slog"

	"github.com/kirillkom/document-hub/internal/core/domain"
	"github.com/kirillkom/document-hub/internal/core/ports"
)

// publishEvent is fire-and-forget. A nil publisher disables events.
func publishEvent(ctx context.Context, events ports.EventPublisher, event domain.DocumentEvent) {
	if events == nil {
		return
	}
	if err := events.PublishDocumentEvent(ctx, event); err != nil {
		slog.WarnContext(ctx, "document_event_publish_failed",
			"event_type", string(event.Type),
			"document_id", event.DocumentID,
			"error", err.Error(),
		)
	}
}

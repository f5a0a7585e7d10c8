package notify

import (
	"context"
	"errors"

	"github.com/Freeeeeet/coach_scheduler/internal/service"
)

// Multi рассылает событие всем получателям и собирает их ошибки
type Multi []service.EventPublisher

func (m Multi) Publish(ctx context.Context, event service.SlotEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

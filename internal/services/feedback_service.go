// Package services – FeedbackService
//
// FeedbackService lets students rate tutor replies (-1 or +1). It enforces
// ownership, the assistant-only restriction and one rating per message,
// and returns service-level errors for each predictable case so handlers
// can map them consistently.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/repo"
)

// FeedbackService implements the use-cases around message feedback.
type FeedbackService struct {
	DB *gorm.DB
}

// Leave records a rating of messageID by userID.
//
//   - value must be -1 or 1; otherwise ErrInvalidFeedback.
//   - the message must exist in a conversation owned by userID; otherwise
//     ErrMessageNotFound.
//   - only assistant messages can be rated; otherwise ErrForbiddenFeedback.
//   - a second rating of the same message yields ErrDuplicateFeedback.
func (s *FeedbackService) Leave(ctx context.Context, userID, messageID string, value int) error {
	ctx, span := otel.Tracer("services/FeedbackService").Start(ctx, "Leave",
		trace.WithAttributes(attribute.String("message.id", messageID), attribute.Int("value", value)),
	)
	defer span.End()

	if value != -1 && value != 1 {
		return ErrInvalidFeedback
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msg, err := repo.GetMessageForUser(ctx, tx, messageID, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrMessageNotFound
			}
			return err
		}
		if msg.Role != domain.RoleAssistant {
			return ErrForbiddenFeedback
		}
		if err := repo.CreateFeedback(ctx, tx, messageID, userID, value); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrDuplicateFeedback
			}
			return err
		}
		return nil
	})
}

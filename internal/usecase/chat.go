package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/V4T54L/winloss/internal/domain"
)

const chatReplyTemplate = `Based on your question about "%s", I've analyzed the data. The top loss reason is "Missing Feature", and the most mentioned competitor is "Competitor X". Would you like me to generate a detailed report on this?`

// ChatUseCase produces the canned assistant reply.
type ChatUseCase struct {
	delay time.Duration
}

// NewChatUseCase creates a chat use case that waits delay before replying.
func NewChatUseCase(delay time.Duration) *ChatUseCase {
	return &ChatUseCase{delay: delay}
}

// Reply waits for the configured delay and echoes message into the reply
// template. It returns early with ctx.Err() if the caller goes away.
func (uc *ChatUseCase) Reply(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", domain.BadRequest("Message is required")
	}
	if uc.delay > 0 {
		timer := time.NewTimer(uc.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return fmt.Sprintf(chatReplyTemplate, message), nil
}

package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/mosala/cashdesk_backend/internal/core/domain"
)

// GenerateReference builds the business reference printed on receipts:
// operation type, UTC second-resolution timestamp, and a short random suffix
// to disambiguate same-second operations at busy desks.
func GenerateReference(op domain.OperationType, at time.Time) (string, error) {
	suffix, err := GenerateSecureRandomString(3)
	if err != nil {
		return "", fmt.Errorf("failed to generate reference suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s", op, at.UTC().Format("20060102T150405Z"), strings.ToUpper(suffix)), nil
}

package interfaces

import (
	"context"

	"github.com/ternarybob/titulus/internal/models"
)

// TitleParser - interface over the extraction pipeline. A parse always
// yields a result; per-title failures surface inside the record.
type TitleParser interface {
	Parse(ctx context.Context, title string) *models.ParseResult
}

package ports

import (
	"context"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// OutlineParser builds an outline from authored markdown without a provider
type OutlineParser interface {
	Parse(ctx context.Context, content []byte) (*entities.Outline, error)
}

package ports

import "github.com/fredcamaral/deckgen/internal/domain/entities"

// EventPublisher receives generation progress events
type EventPublisher interface {
	Publish(event entities.GenerationEvent)
}

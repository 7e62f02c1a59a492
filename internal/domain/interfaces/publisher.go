package interfaces

import "coin-dashboard-service/internal/domain/entities"

// StatePublisher receives every state a family publishes.
type StatePublisher interface {
	Publish(family entities.Family, state any)
}

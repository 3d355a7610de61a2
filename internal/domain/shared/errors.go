package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Scheduling errors

// InvariantViolationError signals a programming error detected inside the
// scheduler. The update that detected it is aborted.
type InvariantViolationError struct {
	*DomainError
	Invariant string
}

func NewInvariantViolationError(invariant, detail string) *InvariantViolationError {
	return &InvariantViolationError{
		DomainError: &DomainError{Message: fmt.Sprintf("invariant %s violated: %s", invariant, detail)},
		Invariant:   invariant,
	}
}

type UnknownShipError struct {
	*DomainError
	Ship ShipID
}

func NewUnknownShipError(ship ShipID) *UnknownShipError {
	return &UnknownShipError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s is not part of the fleet", ship)},
		Ship:        ship,
	}
}

type UnknownPortError struct {
	*DomainError
	Port PortID
}

func NewUnknownPortError(port PortID) *UnknownPortError {
	return &UnknownPortError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s is not part of the fleet", port)},
		Port:        port,
	}
}

// Persistence errors

// UnknownFormatVersionError is fatal for the snapshot being loaded
type UnknownFormatVersionError struct {
	*DomainError
	Version uint16
}

func NewUnknownFormatVersionError(version uint16) *UnknownFormatVersionError {
	return &UnknownFormatVersionError{
		DomainError: &DomainError{Message: fmt.Sprintf("unknown schedule format version %d", version)},
		Version:     version,
	}
}

// UnresolvedReferenceError reports a persisted id that is not alive anymore
type UnresolvedReferenceError struct {
	*DomainError
	Kind string
	ID   uint32
}

func NewUnresolvedReferenceError(kind string, id uint32) *UnresolvedReferenceError {
	return &UnresolvedReferenceError{
		DomainError: &DomainError{Message: fmt.Sprintf("persisted %s %d does not resolve to a live object", kind, id)},
		Kind:        kind,
		ID:          id,
	}
}

package store

// --------------------------------------------------------------------------
// Status Codes
// --------------------------------------------------------------------------

// Status is the outcome of a store operation. The HTTP layer is solely
// responsible for translating these into response codes.
type Status int

const (
	StatusOK       Status = iota // operation applied
	StatusNotFound               // no entity with the given id
	StatusConflict               // create with an already existing id
	StatusBadInput               // validation failed or a reference is missing
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "NotFound"
	case StatusConflict:
		return "Conflict"
	case StatusBadInput:
		return "BadInput"
	default:
		return "Unknown"
	}
}

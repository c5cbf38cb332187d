package domain

// SlotStatus tracks one position of a generation batch through its state
// machine: Pending -> InFlight -> Succeeded | Failed.
type SlotStatus string

const (
	SlotPending   SlotStatus = "PENDING"
	SlotInFlight  SlotStatus = "IN_FLIGHT"
	SlotSucceeded SlotStatus = "SUCCEEDED"
	SlotFailed    SlotStatus = "FAILED"
)

// GenerationResult is the terminal record for one slot. ImageDataURI is set
// only on success, ErrorMessage only on failure.
type GenerationResult struct {
	Slot         int        `json:"slot"`
	Status       SlotStatus `json:"status"`
	ImageDataURI string     `json:"image_data_uri,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
}

// Terminal reports whether the slot has resolved one way or the other.
func (r GenerationResult) Terminal() bool {
	return r.Status == SlotSucceeded || r.Status == SlotFailed
}

package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex is returned when a table index is outside [0, FanOut).
	ErrInvalidIndex = errors.New("invalid page table index")

	// ErrPageFault is returned when a page walk reaches an unmapped entry.
	ErrPageFault = errors.New("page fault")
)

// A PageFaultError tells where a page walk stopped.
type PageFaultError struct {
	VAddr VAddr
	Level int
	Table Frame
	Index int
}

func (e *PageFaultError) Error() string {
	return fmt.Sprintf("page fault at %s: level %d table %d has no entry %03d",
		e.VAddr, NumLevels-e.Level, e.Table, e.Index)
}

// Is makes errors.Is(err, ErrPageFault) hold for every PageFaultError.
func (e *PageFaultError) Is(target error) bool {
	return target == ErrPageFault
}

package panoramax

import (
	"errors"
	"fmt"
)

// ErrInvariant is wrapped by every InvariantError.
var ErrInvariant = errors.New("panoramax: invariant violated")

// InvariantError reports a payload that cannot form a valid domain value.
type InvariantError struct {
	Type   string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("panoramax: invalid %s: %s", e.Type, e.Reason)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// InteriorOrientation describes the camera that took a perspective image.
type InteriorOrientation struct {
	CameraModel           string
	CameraManufacturer    string
	FocalLength           float64
	SensorArrayDimensions [2]int
}

// NewInteriorOrientation builds an InteriorOrientation. The sensor array
// must have exactly two dimensions; anything else is rejected rather than
// truncated or padded.
func NewInteriorOrientation(model string, focalLength float64, manufacturer string, sensor []int) (InteriorOrientation, error) {
	if len(sensor) != 2 {
		return InteriorOrientation{}, &InvariantError{
			Type:   "interior orientation",
			Reason: fmt.Sprintf("sensor array must have 2 dimensions, got %d", len(sensor)),
		}
	}
	return InteriorOrientation{
		CameraModel:           model,
		CameraManufacturer:    manufacturer,
		FocalLength:           focalLength,
		SensorArrayDimensions: [2]int{sensor[0], sensor[1]},
	}, nil
}

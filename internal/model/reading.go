package model

import "time"

// Reading is one sample returned by the gate controller.
// The JSON names match the controller's payload.
type Reading struct {
	Distance1  float64   `json:"sensor1"`
	Distance2  float64   `json:"sensor2"`
	Light      float64   `json:"ldr"`
	ReceivedAt time.Time `json:"received_at"`
}

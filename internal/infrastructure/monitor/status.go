package monitor

import "time"

// Status reports the last observed health of each configured dependency.
// Dependencies not configured for the selected storage driver stay nil
// in the Monitor and report false here.
type Status struct {
	Postgres  bool      `json:"postgresql"`
	Redis     bool      `json:"redis"`
	Bolt      bool      `json:"boltdb"`
	LastCheck time.Time `json:"last_check"`
}

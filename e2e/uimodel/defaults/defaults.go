package defaults

import "time"

const (
	// HeaderTimeout specifies the amount of time a page header has to become visible
	HeaderTimeout = 5 * time.Second
)

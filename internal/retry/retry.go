// Package retry holds the shared retry strategies for outbound calls.
package retry

import (
	"time"

	"github.com/wb-go/wbf/retry"
)

// DefaultStrategy backs database and bus operations.
var DefaultStrategy = retry.Strategy{
	Attempts: 3,
	Delay:    2 * time.Second,
	Backoff:  2.0,
}

// FetchStrategy is the bounded retry for downloading a source image by
// URL: three attempts with a fixed delay, no backoff.
var FetchStrategy = retry.Strategy{
	Attempts: 3,
	Delay:    2 * time.Second,
	Backoff:  1.0,
}

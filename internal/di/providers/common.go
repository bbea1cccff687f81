package providers

import "time"

// shutdownTimeout is the maximum time to wait for graceful shutdown operations.
const shutdownTimeout = 30 * time.Second

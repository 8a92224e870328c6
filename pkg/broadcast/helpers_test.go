package broadcast_test

import "errors"

// errTest is a generic listener/deactivation failure used across tests.
var errTest = errors.New("boom")

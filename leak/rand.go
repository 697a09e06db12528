package leak

import "math/rand/v2"

// randInt draws a uniform int in [0, n). It is a variable so tests can swap
// in a deterministic source.
var randInt = rand.IntN

package errutil

// GoerrContext is exported for testing
var GoerrContext = goerrContext

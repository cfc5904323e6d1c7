package agora

import _ "embed"

// Version is the released version of agora, read from the VERSION file.
//
//go:embed VERSION
var Version string

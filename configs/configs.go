// Package configs holds data files compiled into the binaries.
package configs

import _ "embed"

// Templates is the default orchestration template library.
//
//go:embed templates.yaml
var Templates []byte

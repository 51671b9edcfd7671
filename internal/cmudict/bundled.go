package cmudict

import (
	"bytes"
	_ "embed"
	"sync"
)

//go:embed data/bundled.dict
var bundledData []byte

var bundled = sync.OnceValue(func() *Dict {
	d, err := Parse(bytes.NewReader(bundledData))
	if err != nil {
		panic("cmudict: bundled dictionary: " + err.Error())
	}
	return d
})

// Bundled returns the small dictionary compiled into the binary. It covers
// common English words only; point dictionary.path at a full cmudict file
// for real use.
func Bundled() *Dict {
	return bundled()
}

// Command libpgoexample builds the profiling library as a C shared object so
// a host application can load it by name and bind its entry points:
//
//	go build -buildmode=c-shared -o libpgoexample.so ./cmd/libpgoexample
//
// Strings returned by startProfiling are owned by the caller and must be
// released with freeString. The config file is taken from PGOEXAMPLE_CONFIG
// when set.
package main

/*
#include <stdlib.h>
*/
import "C"

import "unsafe"

//export startProfiling
func startProfiling(profileFile *C.char) *C.char {
	return C.CString(defaultLoader.start(C.GoString(profileFile)))
}

//export stopProfiling
func stopProfiling() {
	defaultLoader.stop()
}

//export freeString
func freeString(s *C.char) {
	C.free(unsafe.Pointer(s))
}

func main() {}

package fmtt

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// PrintErrChain walks an error chain and prints each layer with its type,
// for the fatal-startup-error path where no zap.Logger is guaranteed to be
// flushed yet (e.g. the listener failed before run() could log anything).
func PrintErrChain(err error) {
	if err == nil {
		fmt.Println("<nil>")
		return
	}

	i := 0
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Printf("[%d] %T: %v\n", i, e, e)
		i++
	}
}

// PrintErrChainDebug is PrintErrChain plus a full spew.Dump of each layer,
// for diagnosing a fatal startup error whose wrapped cause (e.g. an
// os.SyscallError from a failed listen) doesn't show enough detail in its
// Error() string alone. Gated behind LLM_SHELL_DEBUG_ERRORS since spew's
// output is verbose and irrelevant to normal operation.
func PrintErrChainDebug(err error) {
	i := 0
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Printf("[%d] %T: %v\n", i, e, e)
		spew.Dump(e)
		i++
	}
}

// Package errors provides the classified error type used across docnotion.
//
// A ClassifiedError carries a category (config, network, remote, integrity...),
// a severity and a retry strategy. The remote client uses the retry strategy to
// decide whether a failure is transient; the CLI adapter uses the category to pick
// an exit code.
//
//	err := errors.NewError(errors.CategoryRemote, "fetch page failed").
//		WithCause(cause).
//		WithContext("page_id", id).
//		Build()
package errors

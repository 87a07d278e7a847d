//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// AnalysisResponse is the downstream analysis service reply, relayed to the caller as-is.
type AnalysisResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

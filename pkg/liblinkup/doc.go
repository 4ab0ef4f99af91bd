// Package liblinkup implements a client of the LibreLinkUp sharing API, the
// cloud service behind Abbott's FreeStyle Libre continuous glucose monitors.
//
// The API is undocumented and regionalized. An account lives on exactly one
// regional endpoint; contacting the wrong one yields a redirect response
// carrying the target region, which the caller must follow by switching
// endpoints and logging in again. Payload shapes drift between sensor
// hardware generations and app versions, so besides the strictly typed
// decode the package exposes ProbeSensorInfo, a best-effort extraction that
// works on the raw payload.
//
// The package performs no retries, no persistence and no logging; those
// policies belong to the application layer.
package liblinkup

// Package exchangerates is a client for the exchangeratesapi.io HTTP API.
//
// Every call is a single GET. Non-200 responses come back as *Error whose
// Kind is one of ErrRequest, ErrServer, ErrAuthentication or ErrRateLimit:
//
//	resp, err := client.Latest(ctx, "USD", "EUR")
//	switch {
//	case errors.Is(err, exchangerates.ErrAuthentication):
//		// bad or missing access key
//	case errors.Is(err, exchangerates.ErrRateLimit):
//		// back off, the library never retries
//	case err != nil:
//		// transport failure or other API error
//	}
//
// Successful responses are wrapped in *Payload. Fields the API adds later are
// reachable through Payload.Get.
package exchangerates

// Package resilience provides reliability and fault tolerance patterns for the application.
// Its subpackages implement circuit breakers and retry logic to keep the
// system resilient in the face of failures.
//
// The package supports:
//   - Circuit breakers for outbound HTTP calls (feed fetches, web scraping)
//   - Retry logic with exponential backoff and jitter
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.WebScraperConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callExternalService()
//	})
//
//	retryConfig := retry.DefaultConfig()
//	err = retry.WithBackoff(ctx, retryConfig, func() error {
//	    return performOperation()
//	})
package resilience

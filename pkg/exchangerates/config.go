package exchangerates

import (
	"os"
	"strings"
)

const (
	DefaultBaseURL      = "https://api.exchangeratesapi.io/v1"
	DefaultBaseCurrency = "EUR"

	EnvAPIKey  = "EXCHANGE_RATE_API_KEY"
	EnvBaseURL = "EXCHANGE_RATE_API_BASE"
)

// LookupEnvFunc has the signature of os.LookupEnv.
type LookupEnvFunc func(key string) (string, bool)

// Credentials are resolved once and never change for the life of a Client.
// An empty APIKey means requests go out without access_key.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// Resolve returns explicit if set, else the environment value under key, else fallback.
// Blank values count as unset.
func Resolve(explicit string, lookup LookupEnvFunc, key, fallback string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if lookup != nil {
		if v, ok := lookup(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return fallback
}

func ResolveCredentials(apiKey, baseURL string, lookup LookupEnvFunc) Credentials {
	return Credentials{
		APIKey:  Resolve(apiKey, lookup, EnvAPIKey, ""),
		BaseURL: strings.TrimRight(Resolve(baseURL, lookup, EnvBaseURL, DefaultBaseURL), "/"),
	}
}

// CredentialsFromEnv resolves against the process environment.
func CredentialsFromEnv(apiKey, baseURL string) Credentials {
	return ResolveCredentials(apiKey, baseURL, os.LookupEnv)
}

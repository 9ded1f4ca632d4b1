// Package config loads call guard configuration from YAML files.
//
// A .env file in the working directory is loaded first, then environment
// variable references in the YAML content are expanded, so credentials
// never need to live in the config file itself:
//
//	transport:
//	  api_key: ${CALLGUARD_API_KEY}
//
// Durations are written in Go notation ("2s", "1m30s"); bare numbers are
// interpreted as seconds.
package config

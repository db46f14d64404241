// Package config handles configuration loading and validation from
// environment variables and optional config files. It provides type-safe
// access to server, database, model, and plotting settings while keeping
// configuration details separate from business logic.
package config

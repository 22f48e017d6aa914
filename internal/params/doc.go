// Package params resolves work-item defaults from the environment.
//
// Defaults come from, in order of precedence: explicit CLI flags
// (handled by the caller), process environment variables, and a .env
// file in the project root. The .env file is read with godotenv, so the
// usual quoting rules apply.
package params

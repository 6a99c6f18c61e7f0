// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3510)
  - DatabaseURL: Connection string (default: file:sankalp.db)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - ScoringPath: Optional YAML scoring policy file
  - RatePerMin: Per-IP request budget (default: 120)

# CLI Flags

	-p        Server port
	-d        Database URL
	-t        Database driver (sqlite or postgres)
	-scoring  Scoring policy file
	-rate     Requests per minute per IP

# Environment Variables

Flags fall back to environment variables:

	PORT
	DATABASE_URL
	DATABASE_TYPE
	SCORING_CONFIG
	RATE_LIMIT

Flags take precedence over environment variables.
*/
package cliparse

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadDotEnv may be called first so a local .env file feeds the environment.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - JWTSecret: Secret for identity tokens (required)
  - IPHashSalt: Secret for IP HMAC (required)
  - BaseURL: Public base URL for share links (optional)
  - LogFile: Rotating log file path (optional)

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type
	--jwt-secret  Identity token secret
	--ip-salt     IP hash salt
	--base-url    Public base URL
	--log-file    Log file path

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	JWT_SECRET      → --jwt-secret
	IP_HASH_SALT    → --ip-salt
	PUBLIC_BASE_URL → --base-url
	LOG_FILE        → --log-file

CLI flags take precedence over environment variables.

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(conn, cfg)
*/
package cliparse

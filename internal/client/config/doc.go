// Package config loads runtime configuration for the NoteHub terminal client.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. NOTEHUB_* environment variables (NOTEHUB_API_URL, NOTEHUB_DB_PATH,
//     NOTEHUB_SESSION_TIMEOUT, ...).
//  4. Command-line flags -a, -d, -t, -i and -l.
//
// JSON example:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080/api",
//	  "database_path": "notehub.db",
//	  "session_timeout": "5s",
//	  "revalidate_interval": "30s",
//	  "vote_retries": 2,
//	  "reconcile_policy": "server",
//	  "log_backend": "zap"
//	}
package config

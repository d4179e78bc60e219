/*
Package log provides structured logging for the VSS engine using zerolog.

It wraps zerolog to give every component JSON-structured logging with a
shared global Logger, configurable level/format, and helper functions for
scoping child loggers to a request's tenant.

# Usage

	import "github.com/cuemby/vss/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

	log.Logger.Info().Msg("vss-server starting")

	reqLog := log.WithStore(userToken, storeID)
	reqLog.Info().Str("op", "put").Msg("batch accepted")

	log.Logger.Error().Err(err).Str("op", "get").Msg("record store read failed")

# Context Loggers

  - WithComponent: tag logs with a subsystem name (engine, transport, recordstore)
  - WithUser: scope logs to a user_token
  - WithStore: scope logs to a (user_token, store_id) pair

# Design Patterns

Global Logger Pattern:
  - Single package-level Logger instance, initialized once in main()
  - Child loggers built with .With() carry context without passing it
    explicitly through every function signature

Structured Logging Pattern:
  - Typed fields (.Str, .Int, .Err) instead of string interpolation,
    so logs stay queryable and never leak user data through format
    strings

# Security

Never log record Value bytes or full user_token values at Info level in
a multi-tenant deployment; prefer logging key and store_id, which are
sufficient to correlate an incident without exposing payload content.
*/
package log

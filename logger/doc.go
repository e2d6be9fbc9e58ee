// Package logger provides structured logging for chaincounter using zerolog.
//
// Components obtain a tagged logger with Get and log with a message plus an
// optional field map:
//
//	log := logger.Get("session")
//	log.Info("connected", logger.Fields(logger.FieldAccount, addr, logger.FieldChainID, id))
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
package logger

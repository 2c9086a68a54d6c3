// Package utils exposes helpers shared by the promptctl commands.
//
// ConfigurationLoader layers embedded defaults, configuration files and
// PROMPTCTL_ environment variables through Viper. LoggerFactory builds the
// diagnostic zap logger and the console logger used for command progress.
package utils

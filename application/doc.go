/*
Package application holds the pieces shared by recordseal executables.

Config

AppConfig and CommonConfig abstract the configuration file of an
executable from its encoding. TOML is the only supported encoding.
Relative paths inside a config file are resolved against the directory
of the file.

Logger

Logger is a thin wrapper around a zap SugaredLogger, configured by a
LoggerConfig section of the config file.

The auditor subpackage implements the sealing service itself: importing
datasets, publishing apex snapshots and checking datasets against them.
*/
package application

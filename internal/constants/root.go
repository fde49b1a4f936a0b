package constants

import "time"

const (
	AppName            = "feedlog"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/feedlog"
	DefaultDBPath      = "~/.config/feedlog/feedlog.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is the wire format for full feeding timestamps (YYYY-MM-DD HH:MM:SS)
	DateTimeFormat = "2006-01-02 15:04:05"

	// Custom day constants
	DayStartHour      = 4
	ReportDays        = 7
	DefaultDailyLimit = 6
	UnderfedThreshold = 5
	DefaultAmount     = 10 // grams
	DefaultTimezone   = "Local"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "feedlog-"
	BackupFileSuffix = ".db"

	// Server constants
	DefaultServerAddress   = ":8080"
	DefaultGracefulTimeout = 10 * time.Second
	DefaultCORSOrigin      = "http://localhost:3100"
	StreamPingInterval     = 25 * time.Second

	// Response messages
	MsgFeedingRecorded = "Feeding recorded successfully"
	MsgTodayReset      = "Today's feedings have been reset"
	MsgFeedingDeleted  = "Feeding deleted"
	MsgFeedingUpdated  = "Feeding time updated"
)

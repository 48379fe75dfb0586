package constants

import "time"

const (
	AppName             = "quitlog"
	DefaultKeyringUser  = "database-connection"
	DefaultConfigPath   = "~/.config/quitlog/quitlog.db"
	DefaultSettingsFile = "quitlog.toml"
	Version             = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "quitlog-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "quitlog-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.quitlog"
	TrayAppExecutable      = "quitlog-tray"
	TraySecretHeader       = "X-Quitlog-Secret"

	// Journey math
	LifeMinutesPerCigarette  = 5
	DefaultCigarettesPerPack = 20
	MinReductionDays         = 7

	// Stats cache
	DefaultCacheTTL = 5 * time.Second

	// Achievement writes in flight at once during reconciliation
	ReconcileWriteLimit = 4

	// Daily limit status thresholds
	LimitNearRatio = 0.8

	// State keys (the local key/value area)
	StateShownAwards    = "shown_award_notifications"
	StateSupportData    = "coffee_support_data"
	StateOnboardingDone = "onboarding_completed"

	// Support prompt thresholds
	SupportInteractionThreshold = 50
	SupportLaterThreshold       = 100

	// API defaults
	DefaultAPIHost = "127.0.0.1"
	DefaultAPIPort = 7420

	// Environment
	EnvDBConnection = "QUITLOG_DB_CONNECTION"
)
